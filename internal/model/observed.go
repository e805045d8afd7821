package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ObservedSwap is one decoded pool Swap event. Sign convention follows the
// pool's perspective: a positive delta entered the pool, a negative delta left
// it toward the swapper.
type ObservedSwap struct {
	Pool      common.Address
	LogIndex  uint64
	Sender    common.Address
	Recipient common.Address
	Amount0   *big.Int
	Amount1   *big.Int
}

// PoolMeta captures the immutable pool fields needed to map deltas onto tokens.
type PoolMeta struct {
	Token0 common.Address
	Token1 common.Address
	Fee    uint32
}

// TokenMeta captures ERC20 metadata.
type TokenMeta struct {
	Address  common.Address
	Decimals uint8
	Symbol   string
	Name     string
}
