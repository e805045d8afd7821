package engine

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"swaplens/internal/model"
)

func hop(tokenIn, tokenOut common.Address, logIndex uint64) poolHop {
	return poolHop{
		logIndex:  logIndex,
		tokenIn:   tokenIn,
		tokenOut:  tokenOut,
		amountIn:  big.NewInt(100),
		amountOut: big.NewInt(90),
	}
}

func intentWithPath(tokens ...common.Address) model.SwapIntent {
	path := make([]model.PathHop, 0, len(tokens)-1)
	for i := 0; i < len(tokens)-1; i++ {
		path = append(path, model.PathHop{TokenIn: tokens[i], TokenOut: tokens[i+1], FeeTier: 3000})
	}
	return model.SwapIntent{Method: model.MethodExactInput, Path: path, IsExactInput: true}
}

func TestBuildCandidatesChainsAndPrefixes(t *testing.T) {
	a := common.HexToAddress("0x01")
	b := common.HexToAddress("0x02")
	c := common.HexToAddress("0x03")

	hops := []poolHop{hop(a, b, 1), hop(b, c, 2)}

	candidates := buildCandidates(hops, nil)
	// [a->b], [a->b, b->c], [b->c], each without an intent.
	if len(candidates) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(candidates))
	}
	for _, candidate := range candidates {
		if candidate.intentIndex != -1 {
			t.Fatalf("expected intent index -1, got %d", candidate.intentIndex)
		}
	}
}

func TestBuildCandidatesBreaksUnchainedHops(t *testing.T) {
	a := common.HexToAddress("0x01")
	b := common.HexToAddress("0x02")
	x := common.HexToAddress("0x0a")
	y := common.HexToAddress("0x0b")

	hops := []poolHop{hop(a, b, 1), hop(x, y, 2)}

	candidates := buildCandidates(hops, nil)
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	for _, candidate := range candidates {
		if len(candidate.seq) != 1 {
			t.Fatalf("disjoint hops must not chain: %d", len(candidate.seq))
		}
	}
}

func TestScoreSequenceRanking(t *testing.T) {
	a := common.HexToAddress("0x01")
	b := common.HexToAddress("0x02")
	c := common.HexToAddress("0x03")

	intent := intentWithPath(a, b, c)

	exact := []poolHop{hop(a, b, 1), hop(b, c, 2)}
	reversed := []poolHop{hop(c, b, 1), hop(b, a, 2)}
	endpointsOnly := []poolHop{hop(a, c, 1)}
	unrelated := []poolHop{hop(b, a, 1)}

	exactScore := scoreSequence(exact, intent)
	reversedScore := scoreSequence(reversed, intent)
	endpointScore := scoreSequence(endpointsOnly, intent)
	unrelatedScore := scoreSequence(unrelated, intent)

	if exactScore <= reversedScore {
		t.Fatalf("exact path must outrank reversed: %d <= %d", exactScore, reversedScore)
	}
	if reversedScore <= endpointScore {
		t.Fatalf("reversed path must outrank endpoints: %d <= %d", reversedScore, endpointScore)
	}
	if endpointScore <= unrelatedScore {
		t.Fatalf("endpoint match must outrank unrelated: %d <= %d", endpointScore, unrelatedScore)
	}

	// Full path match: both endpoints, exact token sequence, exact hop count.
	if exactScore != 10+10+100+15 {
		t.Fatalf("exact score mismatch: %d", exactScore)
	}
}
