package model

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestSwapIntentPathAccessors(t *testing.T) {
	a := common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	b := common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	c := common.HexToAddress("0xcccccccccccccccccccccccccccccccccccccccc")

	intent := SwapIntent{
		Method: MethodExactInput,
		Path: []PathHop{
			{TokenIn: a, TokenOut: b, FeeTier: 500},
			{TokenIn: b, TokenOut: c, FeeTier: 3000},
		},
		IsExactInput: true,
	}

	if intent.TokenIn() != a || intent.TokenOut() != c {
		t.Fatalf("endpoints mismatch")
	}

	tokens := intent.PathTokens()
	if len(tokens) != 3 || tokens[0] != a || tokens[1] != b || tokens[2] != c {
		t.Fatalf("path tokens mismatch: %v", tokens)
	}

	var empty SwapIntent
	if empty.TokenIn() != (common.Address{}) || empty.TokenOut() != (common.Address{}) {
		t.Fatalf("empty intent must report zero endpoints")
	}
	if empty.PathTokens() != nil {
		t.Fatalf("empty intent must report nil tokens")
	}
}

func TestCallPlanHasUnwrap(t *testing.T) {
	plan := CallPlan{Actions: []NativeAction{{Kind: ActionSweepToken}}}
	if plan.HasUnwrap() {
		t.Fatalf("sweep alone is not an unwrap")
	}

	plan.Actions = append(plan.Actions, NativeAction{Kind: ActionUnwrapNative})
	if !plan.HasUnwrap() {
		t.Fatalf("expected unwrap")
	}
}

func TestSwapMethodString(t *testing.T) {
	cases := map[SwapMethod]string{
		MethodUnknown:           "unknown",
		MethodExactInputSingle:  "exactInputSingle",
		MethodExactOutputSingle: "exactOutputSingle",
		MethodExactInput:        "exactInput",
		MethodExactOutput:       "exactOutput",
	}
	for method, want := range cases {
		if got := method.String(); got != want {
			t.Fatalf("method %d: got %s, want %s", method, got, want)
		}
	}
}
