package router

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"swaplens/internal/model"
)

const (
	pathAddrLen = 20
	pathFeeLen  = 3
	pathHopLen  = pathAddrLen + pathFeeLen
)

// ParsePath decodes the packed swap path encoding: 20-byte token addresses
// alternating with 3-byte big-endian fee tiers. The length must be
// 20 + 23k for k >= 1.
func ParsePath(encoded []byte) ([]model.PathHop, error) {
	if len(encoded) < pathAddrLen+pathHopLen || (len(encoded)-pathAddrLen)%pathHopLen != 0 {
		return nil, fmt.Errorf("%w: length %d", model.ErrInvalidPathEncoding, len(encoded))
	}

	hops := make([]model.PathHop, 0, (len(encoded)-pathAddrLen)/pathHopLen)
	tokenIn := common.BytesToAddress(encoded[:pathAddrLen])
	for offset := pathAddrLen; offset < len(encoded); offset += pathHopLen {
		fee := uint32(encoded[offset])<<16 | uint32(encoded[offset+1])<<8 | uint32(encoded[offset+2])
		tokenOut := common.BytesToAddress(encoded[offset+pathFeeLen : offset+pathHopLen])
		hops = append(hops, model.PathHop{TokenIn: tokenIn, TokenOut: tokenOut, FeeTier: fee})
		tokenIn = tokenOut
	}
	return hops, nil
}

// reverseHops flips an output-first path into execution order. Exact-output
// paths are encoded starting from the final output token.
func reverseHops(hops []model.PathHop) []model.PathHop {
	out := make([]model.PathHop, len(hops))
	for i, hop := range hops {
		out[len(hops)-1-i] = model.PathHop{
			TokenIn:  hop.TokenOut,
			TokenOut: hop.TokenIn,
			FeeTier:  hop.FeeTier,
		}
	}
	return out
}
