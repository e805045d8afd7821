package router

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

type methodKind int

const (
	kindExactInputSingle methodKind = iota
	kindExactOutputSingle
	kindExactInput
	kindExactOutput
	kindMulticall
	kindSweepToken
	kindUnwrapNative
	kindRefundNative
	kindWrapNative
	kindExecute
)

// methodCandidate binds a selector to one decodable method layout. Candidates
// sharing a selector are tried in registration order.
type methodCandidate struct {
	kind   methodKind
	method abi.Method
	// legacy marks the deadline-bearing SwapRouter argument layout.
	legacy bool
}

var (
	selectorRegistry     map[[4]byte][]methodCandidate
	selectorRegistryOnce sync.Once
	selectorRegistryErr  error
)

// SelectorRegistry returns the process-wide selector lookup table. It is
// built once and read-only afterwards.
func SelectorRegistry() (map[[4]byte][]methodCandidate, error) {
	selectorRegistryOnce.Do(func() {
		selectorRegistry, selectorRegistryErr = buildRegistry()
	})
	return selectorRegistry, selectorRegistryErr
}

func buildRegistry() (map[[4]byte][]methodCandidate, error) {
	registry := make(map[[4]byte][]methodCandidate)

	register := func(parsed abi.ABI, legacy bool) error {
		for _, method := range parsed.Methods {
			kind, err := classifyMethod(method.RawName)
			if err != nil {
				return err
			}
			var selector [4]byte
			copy(selector[:], method.ID)
			registry[selector] = append(registry[selector], methodCandidate{
				kind:   kind,
				method: method,
				legacy: legacy,
			})
		}
		return nil
	}

	v1, err := SwapRouterABI()
	if err != nil {
		return nil, fmt.Errorf("parse swap router abi: %w", err)
	}
	if err := register(v1, true); err != nil {
		return nil, err
	}

	v2, err := SwapRouter02ABI()
	if err != nil {
		return nil, fmt.Errorf("parse swap router02 abi: %w", err)
	}
	if err := register(v2, false); err != nil {
		return nil, err
	}

	return registry, nil
}

func classifyMethod(rawName string) (methodKind, error) {
	switch rawName {
	case "exactInputSingle":
		return kindExactInputSingle, nil
	case "exactOutputSingle":
		return kindExactOutputSingle, nil
	case "exactInput":
		return kindExactInput, nil
	case "exactOutput":
		return kindExactOutput, nil
	case "multicall":
		return kindMulticall, nil
	case "sweepToken":
		return kindSweepToken, nil
	case "unwrapWETH9":
		return kindUnwrapNative, nil
	case "refundETH":
		return kindRefundNative, nil
	case "wrapETH":
		return kindWrapNative, nil
	case "execute":
		return kindExecute, nil
	default:
		return 0, fmt.Errorf("unsupported router method: %s", rawName)
	}
}
