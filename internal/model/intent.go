package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// SwapMethod enumerates the recognized router swap methods.
type SwapMethod int

const (
	MethodUnknown SwapMethod = iota
	MethodExactInputSingle
	MethodExactOutputSingle
	MethodExactInput
	MethodExactOutput
)

// String returns the router method name.
func (m SwapMethod) String() string {
	switch m {
	case MethodExactInputSingle:
		return "exactInputSingle"
	case MethodExactOutputSingle:
		return "exactOutputSingle"
	case MethodExactInput:
		return "exactInput"
	case MethodExactOutput:
		return "exactOutput"
	default:
		return "unknown"
	}
}

// PathHop is one pool traversal in a swap path.
type PathHop struct {
	TokenIn  common.Address
	TokenOut common.Address
	FeeTier  uint32
}

// SwapIntent is one recognized swap call decoded from transaction input.
// The path always flows tokenIn to tokenOut in execution order; exact-output
// paths are reversed at decode time.
type SwapIntent struct {
	Method          SwapMethod
	Recipient       common.Address
	Path            []PathHop
	AmountSpecified *big.Int
	AmountLimit     *big.Int
	IsExactInput    bool
}

// TokenIn returns the entry token of the intent path.
func (in SwapIntent) TokenIn() common.Address {
	if len(in.Path) == 0 {
		return common.Address{}
	}
	return in.Path[0].TokenIn
}

// TokenOut returns the exit token of the intent path.
func (in SwapIntent) TokenOut() common.Address {
	if len(in.Path) == 0 {
		return common.Address{}
	}
	return in.Path[len(in.Path)-1].TokenOut
}

// PathTokens returns the token chain including both endpoints.
func (in SwapIntent) PathTokens() []common.Address {
	if len(in.Path) == 0 {
		return nil
	}
	tokens := make([]common.Address, 0, len(in.Path)+1)
	tokens = append(tokens, in.Path[0].TokenIn)
	for _, hop := range in.Path {
		tokens = append(tokens, hop.TokenOut)
	}
	return tokens
}

// NativeActionKind enumerates non-swap router commands that still matter for
// matching: native asset wrapping and router payout helpers.
type NativeActionKind int

const (
	ActionWrapNative NativeActionKind = iota
	ActionUnwrapNative
	ActionSweepToken
	ActionRefundNative
)

// NativeAction is a non-swap marker decoded from call data. It produces no
// SwapIntent but participates in recipient inference and native hints.
type NativeAction struct {
	Kind      NativeActionKind
	Token     common.Address // sweepToken only
	Recipient common.Address // zero when the call carries none
	Amount    *big.Int       // minimum or exact amount, method dependent
}

// CallPlan is everything decoded from one transaction's call data, in
// call-encounter order.
type CallPlan struct {
	Intents []SwapIntent
	Actions []NativeAction
}

// HasUnwrap reports whether the plan unwraps the native asset.
func (p CallPlan) HasUnwrap() bool {
	for _, action := range p.Actions {
		if action.Kind == ActionUnwrapNative {
			return true
		}
	}
	return false
}
