package router

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"swaplens/internal/model"
)

type exactInputSingleFixture struct {
	TokenIn           common.Address
	TokenOut          common.Address
	Fee               *big.Int
	Recipient         common.Address
	Deadline          *big.Int
	AmountIn          *big.Int
	AmountOutMinimum  *big.Int
	SqrtPriceLimitX96 *big.Int
}

type exactInputSingle02Fixture struct {
	TokenIn           common.Address
	TokenOut          common.Address
	Fee               *big.Int
	Recipient         common.Address
	AmountIn          *big.Int
	AmountOutMinimum  *big.Int
	SqrtPriceLimitX96 *big.Int
}

type exactOutputFixture struct {
	Path            []byte
	Recipient       common.Address
	Deadline        *big.Int
	AmountOut       *big.Int
	AmountInMaximum *big.Int
}

var (
	testTokenA    = common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	testTokenB    = common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	testTokenC    = common.HexToAddress("0xcccccccccccccccccccccccccccccccccccccccc")
	testRecipient = common.HexToAddress("0x9999999999999999999999999999999999999999")
)

func newTestDecoder(t *testing.T) *CallDecoder {
	t.Helper()
	decoder, err := NewCallDecoder(zap.NewNop())
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}
	return decoder
}

func packExactInputSingleV1(t *testing.T) []byte {
	t.Helper()
	parsed, err := SwapRouterABI()
	if err != nil {
		t.Fatalf("abi: %v", err)
	}
	data, err := parsed.Pack("exactInputSingle", exactInputSingleFixture{
		TokenIn:           testTokenA,
		TokenOut:          testTokenB,
		Fee:               big.NewInt(3000),
		Recipient:         testRecipient,
		Deadline:          big.NewInt(1_700_000_000),
		AmountIn:          big.NewInt(5_000_000),
		AmountOutMinimum:  big.NewInt(1),
		SqrtPriceLimitX96: big.NewInt(0),
	})
	if err != nil {
		t.Fatalf("pack exactInputSingle: %v", err)
	}
	return data
}

func TestDecodeExactInputSingleLegacy(t *testing.T) {
	decoder := newTestDecoder(t)

	plan, err := decoder.Decode(packExactInputSingleV1(t))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(plan.Intents) != 1 {
		t.Fatalf("expected 1 intent, got %d", len(plan.Intents))
	}

	intent := plan.Intents[0]
	if intent.Method != model.MethodExactInputSingle {
		t.Fatalf("method mismatch: %s", intent.Method)
	}
	if !intent.IsExactInput {
		t.Fatalf("expected exact-input intent")
	}
	if len(intent.Path) != 1 {
		t.Fatalf("expected 1 hop, got %d", len(intent.Path))
	}
	if intent.TokenIn() != testTokenA || intent.TokenOut() != testTokenB {
		t.Fatalf("path endpoints mismatch: %+v", intent.Path)
	}
	if intent.Path[0].FeeTier != 3000 {
		t.Fatalf("fee mismatch: %d", intent.Path[0].FeeTier)
	}
	if intent.Recipient != testRecipient {
		t.Fatalf("recipient mismatch: %s", intent.Recipient.Hex())
	}
	if intent.AmountSpecified.Cmp(big.NewInt(5_000_000)) != 0 {
		t.Fatalf("amount mismatch: %s", intent.AmountSpecified)
	}
}

func TestDecodeExactInputSingle02(t *testing.T) {
	decoder := newTestDecoder(t)

	parsed, err := SwapRouter02ABI()
	if err != nil {
		t.Fatalf("abi: %v", err)
	}
	data, err := parsed.Pack("exactInputSingle", exactInputSingle02Fixture{
		TokenIn:           testTokenB,
		TokenOut:          testTokenC,
		Fee:               big.NewInt(500),
		Recipient:         testRecipient,
		AmountIn:          big.NewInt(42),
		AmountOutMinimum:  big.NewInt(1),
		SqrtPriceLimitX96: big.NewInt(0),
	})
	if err != nil {
		t.Fatalf("pack exactInputSingle: %v", err)
	}

	plan, err := decoder.Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(plan.Intents) != 1 {
		t.Fatalf("expected 1 intent, got %d", len(plan.Intents))
	}
	if plan.Intents[0].TokenIn() != testTokenB || plan.Intents[0].TokenOut() != testTokenC {
		t.Fatalf("path endpoints mismatch: %+v", plan.Intents[0].Path)
	}
}

func TestDecodeExactOutputReversesPath(t *testing.T) {
	decoder := newTestDecoder(t)

	parsed, err := SwapRouterABI()
	if err != nil {
		t.Fatalf("abi: %v", err)
	}

	// Exact-output paths are encoded output token first.
	data, err := parsed.Pack("exactOutput", exactOutputFixture{
		Path:            encodePath([]common.Address{testTokenC, testTokenB, testTokenA}, []uint32{3000, 500}),
		Recipient:       testRecipient,
		Deadline:        big.NewInt(1_700_000_000),
		AmountOut:       big.NewInt(1_000),
		AmountInMaximum: big.NewInt(99_999),
	})
	if err != nil {
		t.Fatalf("pack exactOutput: %v", err)
	}

	plan, err := decoder.Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(plan.Intents) != 1 {
		t.Fatalf("expected 1 intent, got %d", len(plan.Intents))
	}

	intent := plan.Intents[0]
	if intent.IsExactInput {
		t.Fatalf("expected exact-output intent")
	}
	// Path must be in execution order after reversal.
	if intent.TokenIn() != testTokenA || intent.TokenOut() != testTokenC {
		t.Fatalf("path not reversed into execution order: %+v", intent.Path)
	}
	if intent.Path[0].FeeTier != 500 || intent.Path[1].FeeTier != 3000 {
		t.Fatalf("fee order mismatch: %+v", intent.Path)
	}
}

func TestDecodeMulticallSkipsUnknownSelectors(t *testing.T) {
	decoder := newTestDecoder(t)

	parsed, err := SwapRouterABI()
	if err != nil {
		t.Fatalf("abi: %v", err)
	}

	unknown := []byte{0xde, 0xad, 0xbe, 0xef, 0x00, 0x00}
	unwrap, err := parsed.Pack("unwrapWETH9", big.NewInt(1), testRecipient)
	if err != nil {
		t.Fatalf("pack unwrapWETH9: %v", err)
	}

	data, err := parsed.Pack("multicall", [][]byte{unknown, packExactInputSingleV1(t), unwrap})
	if err != nil {
		t.Fatalf("pack multicall: %v", err)
	}

	plan, err := decoder.Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(plan.Intents) != 1 {
		t.Fatalf("expected 1 intent, got %d", len(plan.Intents))
	}
	if len(plan.Actions) != 1 || plan.Actions[0].Kind != model.ActionUnwrapNative {
		t.Fatalf("expected unwrap action, got %+v", plan.Actions)
	}
	if !plan.HasUnwrap() {
		t.Fatalf("expected HasUnwrap")
	}
}

func TestDecodeMulticall02Deadline(t *testing.T) {
	decoder := newTestDecoder(t)

	parsed, err := SwapRouter02ABI()
	if err != nil {
		t.Fatalf("abi: %v", err)
	}

	data, err := parsed.Pack("multicall", big.NewInt(1_700_000_000), [][]byte{packExactInputSingleV1(t)})
	if err != nil {
		t.Fatalf("pack multicall: %v", err)
	}

	plan, err := decoder.Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(plan.Intents) != 1 {
		t.Fatalf("expected 1 intent, got %d", len(plan.Intents))
	}
}

func TestDecodeRejectsDeepNesting(t *testing.T) {
	decoder := newTestDecoder(t)

	parsed, err := SwapRouterABI()
	if err != nil {
		t.Fatalf("abi: %v", err)
	}

	data := packExactInputSingleV1(t)
	for i := 0; i < maxCallDepth+1; i++ {
		data, err = parsed.Pack("multicall", [][]byte{data})
		if err != nil {
			t.Fatalf("pack multicall: %v", err)
		}
	}

	if _, err := decoder.Decode(data); !errors.Is(err, model.ErrMalformedData) {
		t.Fatalf("expected ErrMalformedData, got %v", err)
	}
}

func TestDecodeTruncatedArgumentsFatal(t *testing.T) {
	decoder := newTestDecoder(t)

	data := packExactInputSingleV1(t)
	if _, err := decoder.Decode(data[:len(data)-7]); !errors.Is(err, model.ErrMalformedData) {
		t.Fatalf("expected ErrMalformedData, got %v", err)
	}
}

func TestDecodeUnknownTopLevelSelector(t *testing.T) {
	decoder := newTestDecoder(t)

	plan, err := decoder.Decode([]byte{0xde, 0xad, 0xbe, 0xef})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(plan.Intents) != 0 || len(plan.Actions) != 0 {
		t.Fatalf("expected empty plan, got %+v", plan)
	}
}

func TestDecodeShortInput(t *testing.T) {
	decoder := newTestDecoder(t)

	plan, err := decoder.Decode([]byte{0x01, 0x02})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(plan.Intents) != 0 {
		t.Fatalf("expected empty plan, got %+v", plan)
	}
}
