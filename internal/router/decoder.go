package router

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"swaplens/internal/model"
)

// maxCallDepth bounds multicall nesting. Call data is attacker influenced.
const maxCallDepth = 16

// CallDecoder turns raw transaction input into a flat CallPlan.
type CallDecoder struct {
	registry map[[4]byte][]methodCandidate
	logger   *zap.Logger
}

// NewCallDecoder builds a call-data decoder over the shared selector registry.
func NewCallDecoder(logger *zap.Logger) (*CallDecoder, error) {
	registry, err := SelectorRegistry()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CallDecoder{registry: registry, logger: logger}, nil
}

// Decode walks the call-data tree and returns all swap intents and non-swap
// actions in call-encounter order. Unrecognized selectors yield an empty plan,
// not an error; structural ABI violations abort the whole decode.
func (d *CallDecoder) Decode(input []byte) (model.CallPlan, error) {
	var plan model.CallPlan
	if err := d.walk(input, 0, &plan); err != nil {
		return model.CallPlan{}, err
	}
	return plan, nil
}

func (d *CallDecoder) walk(input []byte, depth int, plan *model.CallPlan) error {
	if depth > maxCallDepth {
		return fmt.Errorf("%w: call nesting exceeds depth %d", model.ErrMalformedData, maxCallDepth)
	}
	if len(input) < 4 {
		return nil
	}

	var selector [4]byte
	copy(selector[:], input[:4])
	candidates, ok := d.registry[selector]
	if !ok {
		d.logger.Debug("skip unrecognized selector", zap.String("selector", fmt.Sprintf("0x%x", selector)))
		return nil
	}

	payload := input[4:]
	var lastErr error
	for _, candidate := range candidates {
		values, err := candidate.method.Inputs.Unpack(payload)
		if err != nil {
			lastErr = err
			continue
		}
		return d.apply(candidate, values, depth, plan)
	}
	return fmt.Errorf("%w: unpack %s: %v", model.ErrMalformedData, candidates[0].method.RawName, lastErr)
}

func (d *CallDecoder) apply(candidate methodCandidate, values []interface{}, depth int, plan *model.CallPlan) error {
	switch candidate.kind {
	case kindExactInputSingle, kindExactOutputSingle:
		intent, err := decodeSingleIntent(candidate, values)
		if err != nil {
			return err
		}
		plan.Intents = append(plan.Intents, intent)
		return nil

	case kindExactInput, kindExactOutput:
		intent, err := decodePathIntent(candidate, values)
		if err != nil {
			if errors.Is(err, model.ErrInvalidPathEncoding) {
				// Fatal for this one intent only.
				d.logger.Warn("skip intent with bad path", zap.String("method", candidate.method.RawName), zap.Error(err))
				return nil
			}
			return err
		}
		plan.Intents = append(plan.Intents, intent)
		return nil

	case kindMulticall:
		inner, err := multicallData(candidate, values)
		if err != nil {
			return err
		}
		for _, call := range inner {
			if err := d.walk(call, depth+1, plan); err != nil {
				return err
			}
		}
		return nil

	case kindExecute:
		commands, inputs, err := executeData(values)
		if err != nil {
			return err
		}
		d.decodeCommands(commands, inputs, plan)
		return nil

	case kindSweepToken:
		token, err := asAddress(values[0])
		if err != nil {
			return fmt.Errorf("%w: sweepToken token: %v", model.ErrMalformedData, err)
		}
		recipient, err := asAddress(values[2])
		if err != nil {
			return fmt.Errorf("%w: sweepToken recipient: %v", model.ErrMalformedData, err)
		}
		plan.Actions = append(plan.Actions, model.NativeAction{
			Kind:      model.ActionSweepToken,
			Token:     token,
			Recipient: recipient,
			Amount:    asBigOrZero(values[1]),
		})
		return nil

	case kindUnwrapNative:
		recipient, err := asAddress(values[1])
		if err != nil {
			return fmt.Errorf("%w: unwrapWETH9 recipient: %v", model.ErrMalformedData, err)
		}
		plan.Actions = append(plan.Actions, model.NativeAction{
			Kind:      model.ActionUnwrapNative,
			Recipient: recipient,
			Amount:    asBigOrZero(values[0]),
		})
		return nil

	case kindWrapNative:
		plan.Actions = append(plan.Actions, model.NativeAction{
			Kind:   model.ActionWrapNative,
			Amount: asBigOrZero(values[0]),
		})
		return nil

	case kindRefundNative:
		plan.Actions = append(plan.Actions, model.NativeAction{Kind: model.ActionRefundNative})
		return nil

	default:
		return fmt.Errorf("%w: kind %d", model.ErrUnrecognizedMethod, candidate.kind)
	}
}

// Params structs mirror the router ABI tuples field for field so
// abi.ConvertType can populate them.

type exactInputSingleParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	Fee               *big.Int
	Recipient         common.Address
	Deadline          *big.Int
	AmountIn          *big.Int
	AmountOutMinimum  *big.Int
	SqrtPriceLimitX96 *big.Int
}

type exactInputSingleParams02 struct {
	TokenIn           common.Address
	TokenOut          common.Address
	Fee               *big.Int
	Recipient         common.Address
	AmountIn          *big.Int
	AmountOutMinimum  *big.Int
	SqrtPriceLimitX96 *big.Int
}

type exactOutputSingleParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	Fee               *big.Int
	Recipient         common.Address
	Deadline          *big.Int
	AmountOut         *big.Int
	AmountInMaximum   *big.Int
	SqrtPriceLimitX96 *big.Int
}

type exactOutputSingleParams02 struct {
	TokenIn           common.Address
	TokenOut          common.Address
	Fee               *big.Int
	Recipient         common.Address
	AmountOut         *big.Int
	AmountInMaximum   *big.Int
	SqrtPriceLimitX96 *big.Int
}

type exactInputParams struct {
	Path             []byte
	Recipient        common.Address
	Deadline         *big.Int
	AmountIn         *big.Int
	AmountOutMinimum *big.Int
}

type exactInputParams02 struct {
	Path             []byte
	Recipient        common.Address
	AmountIn         *big.Int
	AmountOutMinimum *big.Int
}

type exactOutputParams struct {
	Path            []byte
	Recipient       common.Address
	Deadline        *big.Int
	AmountOut       *big.Int
	AmountInMaximum *big.Int
}

type exactOutputParams02 struct {
	Path            []byte
	Recipient       common.Address
	AmountOut       *big.Int
	AmountInMaximum *big.Int
}

func decodeSingleIntent(candidate methodCandidate, values []interface{}) (model.SwapIntent, error) {
	if len(values) != 1 {
		return model.SwapIntent{}, fmt.Errorf("%w: %s arg count %d", model.ErrMalformedData, candidate.method.RawName, len(values))
	}

	exactIn := candidate.kind == kindExactInputSingle
	var tokenIn, tokenOut, recipient common.Address
	var fee, amountSpecified, amountLimit *big.Int

	switch {
	case exactIn && candidate.legacy:
		p := abi.ConvertType(values[0], new(exactInputSingleParams)).(*exactInputSingleParams)
		tokenIn, tokenOut, recipient = p.TokenIn, p.TokenOut, p.Recipient
		fee, amountSpecified, amountLimit = p.Fee, p.AmountIn, p.AmountOutMinimum
	case exactIn:
		p := abi.ConvertType(values[0], new(exactInputSingleParams02)).(*exactInputSingleParams02)
		tokenIn, tokenOut, recipient = p.TokenIn, p.TokenOut, p.Recipient
		fee, amountSpecified, amountLimit = p.Fee, p.AmountIn, p.AmountOutMinimum
	case candidate.legacy:
		p := abi.ConvertType(values[0], new(exactOutputSingleParams)).(*exactOutputSingleParams)
		tokenIn, tokenOut, recipient = p.TokenIn, p.TokenOut, p.Recipient
		fee, amountSpecified, amountLimit = p.Fee, p.AmountOut, p.AmountInMaximum
	default:
		p := abi.ConvertType(values[0], new(exactOutputSingleParams02)).(*exactOutputSingleParams02)
		tokenIn, tokenOut, recipient = p.TokenIn, p.TokenOut, p.Recipient
		fee, amountSpecified, amountLimit = p.Fee, p.AmountOut, p.AmountInMaximum
	}

	method := model.MethodExactOutputSingle
	if exactIn {
		method = model.MethodExactInputSingle
	}

	return model.SwapIntent{
		Method:    method,
		Recipient: recipient,
		Path: []model.PathHop{{
			TokenIn:  tokenIn,
			TokenOut: tokenOut,
			FeeTier:  uint32(fee.Uint64()),
		}},
		AmountSpecified: amountSpecified,
		AmountLimit:     amountLimit,
		IsExactInput:    exactIn,
	}, nil
}

func decodePathIntent(candidate methodCandidate, values []interface{}) (model.SwapIntent, error) {
	if len(values) != 1 {
		return model.SwapIntent{}, fmt.Errorf("%w: %s arg count %d", model.ErrMalformedData, candidate.method.RawName, len(values))
	}

	exactIn := candidate.kind == kindExactInput
	var path []byte
	var recipient common.Address
	var amountSpecified, amountLimit *big.Int

	switch {
	case exactIn && candidate.legacy:
		p := abi.ConvertType(values[0], new(exactInputParams)).(*exactInputParams)
		path, recipient = p.Path, p.Recipient
		amountSpecified, amountLimit = p.AmountIn, p.AmountOutMinimum
	case exactIn:
		p := abi.ConvertType(values[0], new(exactInputParams02)).(*exactInputParams02)
		path, recipient = p.Path, p.Recipient
		amountSpecified, amountLimit = p.AmountIn, p.AmountOutMinimum
	case candidate.legacy:
		p := abi.ConvertType(values[0], new(exactOutputParams)).(*exactOutputParams)
		path, recipient = p.Path, p.Recipient
		amountSpecified, amountLimit = p.AmountOut, p.AmountInMaximum
	default:
		p := abi.ConvertType(values[0], new(exactOutputParams02)).(*exactOutputParams02)
		path, recipient = p.Path, p.Recipient
		amountSpecified, amountLimit = p.AmountOut, p.AmountInMaximum
	}

	hops, err := ParsePath(path)
	if err != nil {
		return model.SwapIntent{}, err
	}

	method := model.MethodExactInput
	if !exactIn {
		method = model.MethodExactOutput
		// Exact-output paths are encoded output first.
		hops = reverseHops(hops)
	}

	return model.SwapIntent{
		Method:          method,
		Recipient:       recipient,
		Path:            hops,
		AmountSpecified: amountSpecified,
		AmountLimit:     amountLimit,
		IsExactInput:    exactIn,
	}, nil
}

func multicallData(candidate methodCandidate, values []interface{}) ([][]byte, error) {
	idx := 0
	if !candidate.legacy {
		// multicall(uint256 deadline, bytes[] data)
		idx = 1
	}
	if len(values) <= idx {
		return nil, fmt.Errorf("%w: multicall arg count %d", model.ErrMalformedData, len(values))
	}
	inner, ok := values[idx].([][]byte)
	if !ok {
		return nil, fmt.Errorf("%w: multicall data type %T", model.ErrMalformedData, values[idx])
	}
	return inner, nil
}

func executeData(values []interface{}) ([]byte, [][]byte, error) {
	if len(values) < 2 {
		return nil, nil, fmt.Errorf("%w: execute arg count %d", model.ErrMalformedData, len(values))
	}
	commands, ok := values[0].([]byte)
	if !ok {
		return nil, nil, fmt.Errorf("%w: execute commands type %T", model.ErrMalformedData, values[0])
	}
	inputs, ok := values[1].([][]byte)
	if !ok {
		return nil, nil, fmt.Errorf("%w: execute inputs type %T", model.ErrMalformedData, values[1])
	}
	return commands, inputs, nil
}

func asAddress(value interface{}) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		return *v, nil
	default:
		return common.Address{}, fmt.Errorf("unsupported address type %T", value)
	}
}

func asBigOrZero(value interface{}) *big.Int {
	if v, ok := value.(*big.Int); ok && v != nil {
		return new(big.Int).Set(v)
	}
	return new(big.Int)
}
