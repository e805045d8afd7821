package router

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"go.uber.org/zap"

	"swaplens/internal/model"
)

// Universal Router command codes, lower 5 bits of each command byte.
const (
	urCommandMask    = 0x1f
	urV3SwapExactIn  = 0x00
	urV3SwapExactOut = 0x01
	urWrapNative     = 0x0b
	urUnwrapNative   = 0x0c
)

var (
	urSwapArgs abi.Arguments
	urWrapArgs abi.Arguments
	urArgsOnce sync.Once
	urArgsErr  error
)

// universalArguments returns the argument layouts for the supported commands:
// swaps are (recipient, amount, amountLimit, path, payerIsUser), wrap/unwrap
// are (recipient, amount).
func universalArguments() (abi.Arguments, abi.Arguments, error) {
	urArgsOnce.Do(func() {
		build := func(types ...string) (abi.Arguments, error) {
			args := make(abi.Arguments, 0, len(types))
			for _, t := range types {
				typ, err := abi.NewType(t, "", nil)
				if err != nil {
					return nil, fmt.Errorf("new type %s: %w", t, err)
				}
				args = append(args, abi.Argument{Type: typ})
			}
			return args, nil
		}

		urSwapArgs, urArgsErr = build("address", "uint256", "uint256", "bytes", "bool")
		if urArgsErr != nil {
			return
		}
		urWrapArgs, urArgsErr = build("address", "uint256")
	})
	return urSwapArgs, urWrapArgs, urArgsErr
}

// decodeCommands walks a Universal Router command byte string. Commands this
// engine does not model are skipped; a command input that fails to decode
// skips that command only.
func (d *CallDecoder) decodeCommands(commands []byte, inputs [][]byte, plan *model.CallPlan) {
	swapArgs, wrapArgs, err := universalArguments()
	if err != nil {
		d.logger.Error("universal router argument layouts unavailable", zap.Error(err))
		return
	}

	for i, command := range commands {
		if i >= len(inputs) {
			break
		}

		switch command & urCommandMask {
		case urV3SwapExactIn, urV3SwapExactOut:
			exactIn := command&urCommandMask == urV3SwapExactIn
			intent, err := decodeCommandSwap(swapArgs, inputs[i], exactIn)
			if err != nil {
				d.logger.Debug("skip universal router swap command",
					zap.Int("command_index", i), zap.Error(err))
				continue
			}
			plan.Intents = append(plan.Intents, intent)

		case urWrapNative, urUnwrapNative:
			kind := model.ActionWrapNative
			if command&urCommandMask == urUnwrapNative {
				kind = model.ActionUnwrapNative
			}
			action, err := decodeCommandWrap(wrapArgs, inputs[i], kind)
			if err != nil {
				d.logger.Debug("skip universal router wrap command",
					zap.Int("command_index", i), zap.Error(err))
				continue
			}
			plan.Actions = append(plan.Actions, action)

		default:
			// Permits, transfers, v2 swaps: outside this engine's scope.
		}
	}
}

func decodeCommandSwap(args abi.Arguments, input []byte, exactIn bool) (model.SwapIntent, error) {
	values, err := args.Unpack(input)
	if err != nil {
		return model.SwapIntent{}, fmt.Errorf("unpack swap command: %w", err)
	}
	if len(values) != 5 {
		return model.SwapIntent{}, fmt.Errorf("swap command arg count %d", len(values))
	}

	recipient, err := asAddress(values[0])
	if err != nil {
		return model.SwapIntent{}, err
	}
	amount := asBigOrZero(values[1])
	limit := asBigOrZero(values[2])
	path, ok := values[3].([]byte)
	if !ok {
		return model.SwapIntent{}, fmt.Errorf("swap command path type %T", values[3])
	}

	hops, err := ParsePath(path)
	if err != nil {
		return model.SwapIntent{}, err
	}

	method := model.MethodExactInput
	if !exactIn {
		method = model.MethodExactOutput
		hops = reverseHops(hops)
	}

	return model.SwapIntent{
		Method:          method,
		Recipient:       recipient,
		Path:            hops,
		AmountSpecified: amount,
		AmountLimit:     limit,
		IsExactInput:    exactIn,
	}, nil
}

func decodeCommandWrap(args abi.Arguments, input []byte, kind model.NativeActionKind) (model.NativeAction, error) {
	values, err := args.Unpack(input)
	if err != nil {
		return model.NativeAction{}, fmt.Errorf("unpack wrap command: %w", err)
	}
	if len(values) != 2 {
		return model.NativeAction{}, fmt.Errorf("wrap command arg count %d", len(values))
	}

	recipient, err := asAddress(values[0])
	if err != nil {
		return model.NativeAction{}, err
	}
	amount, _ := values[1].(*big.Int)
	if amount == nil {
		amount = new(big.Int)
	}

	return model.NativeAction{
		Kind:      kind,
		Recipient: recipient,
		Amount:    new(big.Int).Set(amount),
	}, nil
}
