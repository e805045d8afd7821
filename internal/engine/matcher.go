package engine

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"swaplens/internal/model"
	"swaplens/internal/router"
)

// Universal Router recipient placeholders.
var (
	recipientSelf   = common.HexToAddress("0x0000000000000000000000000000000000000001")
	recipientRouter = common.HexToAddress("0x0000000000000000000000000000000000000002")
)

type resolvedCore struct {
	tokenIn   common.Address
	tokenOut  common.Address
	amountIn  *big.Int
	amountOut *big.Int
	sender    common.Address
	recipient common.Address
	nativeIn  bool
	nativeOut bool
}

// resolve determines the one authoritative tokenIn/tokenOut/amount pair for a
// transaction. Amounts always come from net log deltas; intents only pick the
// boundary tokens and the recipient. Ties between intents go to the first in
// encounter order.
func resolve(plan model.CallPlan, hops []poolHop, in Input) (resolvedCore, error) {
	net := netDeltas(hops)

	poolTokens := make(map[common.Address]struct{}, len(net))
	for token := range net {
		poolTokens[token] = struct{}{}
	}

	intents := usableIntents(plan.Intents, poolTokens)

	var tokenIn, tokenOut common.Address
	var matched *model.SwapIntent

	if len(intents) > 0 {
		tokenIn = selectTokenIn(intents)
		tokenOut = selectTokenOut(intents)
		matched = &intents[0]
	}

	// The logs are the source of truth; fall back to pure log inference when
	// intents are absent or their tokens do not carry net flow.
	if matched == nil || !netPositive(net, tokenIn) || !netNegative(net, tokenOut) {
		inferredIn, inferredOut, err := inferBoundary(net)
		if err != nil {
			return resolvedCore{}, err
		}
		if matched == nil {
			tokenIn, tokenOut = inferredIn, inferredOut
		} else {
			if !netPositive(net, tokenIn) {
				tokenIn = inferredIn
			}
			if !netNegative(net, tokenOut) {
				tokenOut = inferredOut
			}
		}
	}

	core := resolvedCore{
		tokenIn:   tokenIn,
		tokenOut:  tokenOut,
		amountIn:  new(big.Int).Set(net[tokenIn]),
		amountOut: new(big.Int).Neg(net[tokenOut]),
	}

	core.sender = in.From
	if core.sender == (common.Address{}) {
		core.sender = hops[0].sender
	}

	core.recipient = selectRecipient(matched, plan, hops, core)

	core.nativeIn = in.Value != nil && in.Value.Sign() > 0 && tokenIn == router.WETH9
	core.nativeOut = plan.HasUnwrap() && tokenOut == router.WETH9

	return core, nil
}

// netDeltas sums pool-perspective token flow across all hops. Intermediate
// tokens of a chained multi-hop swap cancel out.
func netDeltas(hops []poolHop) map[common.Address]*big.Int {
	net := make(map[common.Address]*big.Int)
	add := func(token common.Address, amount *big.Int) {
		if total, ok := net[token]; ok {
			total.Add(total, amount)
			return
		}
		net[token] = new(big.Int).Set(amount)
	}
	for _, hop := range hops {
		add(hop.tokenIn, hop.amountIn)
		add(hop.tokenOut, new(big.Int).Neg(hop.amountOut))
	}
	return net
}

// usableIntents keeps intents whose boundary tokens both appear in some
// observed pool pair. Unfilled intents cannot be matched to log flow.
func usableIntents(intents []model.SwapIntent, poolTokens map[common.Address]struct{}) []model.SwapIntent {
	out := make([]model.SwapIntent, 0, len(intents))
	for _, intent := range intents {
		if len(intent.Path) == 0 {
			continue
		}
		if _, ok := poolTokens[intent.TokenIn()]; !ok {
			continue
		}
		if _, ok := poolTokens[intent.TokenOut()]; !ok {
			continue
		}
		out = append(out, intent)
	}
	return out
}

// selectTokenIn picks the entry token of the first intent whose entry token
// is not produced as an output by any intent's hops. That token is the one
// supplied externally rather than by an intermediate hop, regardless of the
// order intents appear in the batch.
func selectTokenIn(intents []model.SwapIntent) common.Address {
	produced := make(map[common.Address]struct{})
	for _, intent := range intents {
		for _, hop := range intent.Path {
			produced[hop.TokenOut] = struct{}{}
		}
	}
	for _, intent := range intents {
		if _, ok := produced[intent.TokenIn()]; !ok {
			return intent.TokenIn()
		}
	}
	return intents[0].TokenIn()
}

// selectTokenOut picks the exit token of the last intent whose exit token is
// not consumed as an input by any intent's hops.
func selectTokenOut(intents []model.SwapIntent) common.Address {
	consumed := make(map[common.Address]struct{})
	for _, intent := range intents {
		for _, hop := range intent.Path {
			consumed[hop.TokenIn] = struct{}{}
		}
	}
	for i := len(intents) - 1; i >= 0; i-- {
		if _, ok := consumed[intents[i].TokenOut()]; !ok {
			return intents[i].TokenOut()
		}
	}
	return intents[len(intents)-1].TokenOut()
}

// inferBoundary derives the boundary token pair from net deltas alone: the
// one token flowing into pools and the one flowing out. Anything else is
// ambiguous and reported, not guessed.
func inferBoundary(net map[common.Address]*big.Int) (common.Address, common.Address, error) {
	var ins, outs []common.Address
	for token, delta := range net {
		switch delta.Sign() {
		case 1:
			ins = append(ins, token)
		case -1:
			outs = append(outs, token)
		}
	}
	if len(ins) != 1 || len(outs) != 1 {
		return common.Address{}, common.Address{}, model.ErrAmbiguousResolution
	}
	return ins[0], outs[0], nil
}

func netPositive(net map[common.Address]*big.Int, token common.Address) bool {
	delta, ok := net[token]
	return ok && delta.Sign() > 0
}

func netNegative(net map[common.Address]*big.Int, token common.Address) bool {
	delta, ok := net[token]
	return ok && delta.Sign() < 0
}

// selectRecipient resolves the final recipient. Router-directed outputs are
// paid out by a later sweepToken/unwrapWETH9, so those actions override the
// intent's own recipient field.
func selectRecipient(matched *model.SwapIntent, plan model.CallPlan, hops []poolHop, core resolvedCore) common.Address {
	if matched == nil {
		return hops[len(hops)-1].recipient
	}

	recipient := matched.Recipient
	switch recipient {
	case recipientSelf:
		return core.sender
	case recipientRouter:
		recipient = common.Address{}
	}

	if recipient != (common.Address{}) && !router.IsKnownRouter(recipient) {
		return recipient
	}

	final := recipient
	for _, action := range plan.Actions {
		switch action.Kind {
		case model.ActionSweepToken:
			if action.Token == core.tokenOut {
				final = action.Recipient
			}
		case model.ActionUnwrapNative:
			if action.Recipient != (common.Address{}) {
				final = action.Recipient
			}
		}
	}
	if final == recipientSelf || final == (common.Address{}) {
		return core.sender
	}
	return final
}
