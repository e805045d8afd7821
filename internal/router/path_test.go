package router

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"swaplens/internal/model"
)

func TestParsePathSingleHop(t *testing.T) {
	tokenA := common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	tokenB := common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")

	hops, err := ParsePath(encodePath([]common.Address{tokenA, tokenB}, []uint32{3000}))
	if err != nil {
		t.Fatalf("parse path: %v", err)
	}
	if len(hops) != 1 {
		t.Fatalf("expected 1 hop, got %d", len(hops))
	}
	if hops[0].TokenIn != tokenA || hops[0].TokenOut != tokenB {
		t.Fatalf("hop tokens mismatch: %+v", hops[0])
	}
	if hops[0].FeeTier != 3000 {
		t.Fatalf("fee tier mismatch: %d", hops[0].FeeTier)
	}
}

func TestParsePathMultiHopChaining(t *testing.T) {
	tokens := []common.Address{
		common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"),
		common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"),
		common.HexToAddress("0xcccccccccccccccccccccccccccccccccccccccc"),
		common.HexToAddress("0xdddddddddddddddddddddddddddddddddddddddd"),
	}
	fees := []uint32{500, 3000, 10000}

	hops, err := ParsePath(encodePath(tokens, fees))
	if err != nil {
		t.Fatalf("parse path: %v", err)
	}
	if len(hops) != 3 {
		t.Fatalf("expected 3 hops, got %d", len(hops))
	}
	for i, hop := range hops {
		if hop.TokenIn != tokens[i] || hop.TokenOut != tokens[i+1] {
			t.Fatalf("hop %d not chained: %+v", i, hop)
		}
		if hop.FeeTier != fees[i] {
			t.Fatalf("hop %d fee mismatch: %d", i, hop.FeeTier)
		}
	}
}

func TestParsePathInvalidLengths(t *testing.T) {
	for _, size := range []int{0, 19, 20, 21, 42, 44} {
		_, err := ParsePath(make([]byte, size))
		if !errors.Is(err, model.ErrInvalidPathEncoding) {
			t.Fatalf("length %d: expected ErrInvalidPathEncoding, got %v", size, err)
		}
	}

	if _, err := ParsePath(make([]byte, 43)); err != nil {
		t.Fatalf("length 43 should parse: %v", err)
	}
	if _, err := ParsePath(make([]byte, 66)); err != nil {
		t.Fatalf("length 66 should parse: %v", err)
	}
}

func TestReverseHops(t *testing.T) {
	tokenA := common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	tokenB := common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	tokenC := common.HexToAddress("0xcccccccccccccccccccccccccccccccccccccccc")

	// Output-first encoding: C <- B <- A.
	hops, err := ParsePath(encodePath([]common.Address{tokenC, tokenB, tokenA}, []uint32{3000, 500}))
	if err != nil {
		t.Fatalf("parse path: %v", err)
	}

	reversed := reverseHops(hops)
	if len(reversed) != 2 {
		t.Fatalf("expected 2 hops, got %d", len(reversed))
	}
	if reversed[0].TokenIn != tokenA || reversed[0].TokenOut != tokenB || reversed[0].FeeTier != 500 {
		t.Fatalf("first hop mismatch: %+v", reversed[0])
	}
	if reversed[1].TokenIn != tokenB || reversed[1].TokenOut != tokenC || reversed[1].FeeTier != 3000 {
		t.Fatalf("second hop mismatch: %+v", reversed[1])
	}
}

func encodePath(tokens []common.Address, fees []uint32) []byte {
	encoded := make([]byte, 0, len(tokens)*pathAddrLen+len(fees)*pathFeeLen)
	for i, token := range tokens {
		encoded = append(encoded, token.Bytes()...)
		if i < len(fees) {
			encoded = append(encoded, byte(fees[i]>>16), byte(fees[i]>>8), byte(fees[i]))
		}
	}
	return encoded
}
