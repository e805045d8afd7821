package router

import "github.com/ethereum/go-ethereum/common"

// WETH9 is the canonical wrapped-native token on mainnet.
var WETH9 = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")

// Known router deployments. Used for recipient inference only; decoding is
// selector driven.
var knownRouters = map[common.Address]struct{}{
	common.HexToAddress("0xE592427A0AEce92De3Edee1F18E0157C05861564"): {}, // SwapRouter
	common.HexToAddress("0x68b3465833fb72A70ecDF485E0e4C7bD8665Fc45"): {}, // SwapRouter02
	common.HexToAddress("0xEf1c6E67703c7BD7107eed8303Fbe6EC2554BF6B"): {}, // Universal Router
	common.HexToAddress("0x3fC91A3afd70395Cd496C647d5a6CC9D4B2b7FAD"): {}, // Universal Router v2
}

// IsKnownRouter reports whether addr is a known router deployment.
func IsKnownRouter(addr common.Address) bool {
	_, ok := knownRouters[addr]
	return ok
}
