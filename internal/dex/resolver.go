package dex

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"swaplens/internal/chain"
	"swaplens/internal/model"
)

// PoolResolver loads pool token0/token1/fee via eth_call with an in-memory
// cache. Pool token ordering is immutable, so entries never expire.
type PoolResolver struct {
	chain  *chain.Client
	logger *zap.Logger

	mu    sync.RWMutex
	cache map[common.Address]model.PoolMeta
}

// NewPoolResolver builds a chain-backed pool metadata resolver.
func NewPoolResolver(chainClient *chain.Client, logger *zap.Logger) *PoolResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PoolResolver{
		chain:  chainClient,
		logger: logger,
		cache:  make(map[common.Address]model.PoolMeta),
	}
}

// PoolMetadata returns the token pair and fee tier of a pool.
func (r *PoolResolver) PoolMetadata(ctx context.Context, pool common.Address) (model.PoolMeta, error) {
	r.mu.RLock()
	meta, ok := r.cache[pool]
	r.mu.RUnlock()
	if ok {
		return meta, nil
	}

	if r.chain == nil {
		return model.PoolMeta{}, fmt.Errorf("chain client is nil")
	}

	poolABI, err := V3PoolABI()
	if err != nil {
		return model.PoolMeta{}, fmt.Errorf("parse pool abi: %w", err)
	}

	values, err := callContractMethod(ctx, r.chain, pool, poolABI, "token0")
	if err != nil {
		return model.PoolMeta{}, err
	}
	token0, err := asAddress(values[0])
	if err != nil {
		return model.PoolMeta{}, fmt.Errorf("token0: %w", err)
	}

	values, err = callContractMethod(ctx, r.chain, pool, poolABI, "token1")
	if err != nil {
		return model.PoolMeta{}, err
	}
	token1, err := asAddress(values[0])
	if err != nil {
		return model.PoolMeta{}, fmt.Errorf("token1: %w", err)
	}

	meta = model.PoolMeta{Token0: token0, Token1: token1}

	if values, err := callContractMethod(ctx, r.chain, pool, poolABI, "fee"); err == nil {
		if fee, err := asBigInt(values[0]); err == nil {
			meta.Fee = uint32(fee.Uint64())
		}
	} else {
		r.logger.Debug("fee call failed", zap.String("pool", pool.Hex()), zap.Error(err))
	}

	r.mu.Lock()
	r.cache[pool] = meta
	r.mu.Unlock()

	return meta, nil
}

// TokenResolver loads ERC20 decimals/symbol/name via eth_call with an
// in-memory cache.
type TokenResolver struct {
	chain  *chain.Client
	logger *zap.Logger

	mu    sync.RWMutex
	cache map[common.Address]model.TokenMeta
}

// NewTokenResolver builds a chain-backed token metadata resolver.
func NewTokenResolver(chainClient *chain.Client, logger *zap.Logger) *TokenResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenResolver{
		chain:  chainClient,
		logger: logger,
		cache:  make(map[common.Address]model.TokenMeta),
	}
}

// TokenMetadata returns ERC20 metadata for a token. Failures are reported as
// ErrTokenLookupFailed so callers can fall back to default decimals.
func (r *TokenResolver) TokenMetadata(ctx context.Context, token common.Address) (model.TokenMeta, error) {
	r.mu.RLock()
	meta, ok := r.cache[token]
	r.mu.RUnlock()
	if ok {
		return meta, nil
	}

	if r.chain == nil {
		return model.TokenMeta{}, fmt.Errorf("%w: chain client is nil", model.ErrTokenLookupFailed)
	}

	stringABI, err := erc20ABIStringInstance()
	if err != nil {
		return model.TokenMeta{}, fmt.Errorf("parse erc20 string abi: %w", err)
	}
	bytes32ABI, err := erc20ABIBytes32Instance()
	if err != nil {
		return model.TokenMeta{}, fmt.Errorf("parse erc20 bytes32 abi: %w", err)
	}

	meta = model.TokenMeta{Address: token}

	values, err := callContractMethod(ctx, r.chain, token, stringABI, "decimals")
	if err != nil {
		return model.TokenMeta{}, fmt.Errorf("%w: %s: %v", model.ErrTokenLookupFailed, token.Hex(), err)
	}
	decimals, err := asUint8(values[0])
	if err != nil {
		return model.TokenMeta{}, fmt.Errorf("%w: %s: %v", model.ErrTokenLookupFailed, token.Hex(), err)
	}
	meta.Decimals = decimals

	if values, err := callContractMethod(ctx, r.chain, token, stringABI, "symbol"); err == nil {
		if symbol, ok := values[0].(string); ok {
			meta.Symbol = symbol
		}
	} else if values, err := callContractMethod(ctx, r.chain, token, bytes32ABI, "symbol"); err == nil {
		if symbol, ok := bytes32ToString(values[0]); ok {
			meta.Symbol = symbol
		}
	} else {
		r.logger.Debug("symbol call failed", zap.String("token", token.Hex()), zap.Error(err))
	}

	if values, err := callContractMethod(ctx, r.chain, token, stringABI, "name"); err == nil {
		if name, ok := values[0].(string); ok {
			meta.Name = name
		}
	} else if values, err := callContractMethod(ctx, r.chain, token, bytes32ABI, "name"); err == nil {
		if name, ok := bytes32ToString(values[0]); ok {
			meta.Name = name
		}
	} else {
		r.logger.Debug("name call failed", zap.String("token", token.Hex()), zap.Error(err))
	}

	r.mu.Lock()
	r.cache[token] = meta
	r.mu.Unlock()

	return meta, nil
}

func callContractMethod(ctx context.Context, chainClient *chain.Client, contract common.Address, parsed abi.ABI, method string) ([]interface{}, error) {
	data, err := parsed.Pack(method)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &contract, Data: data}
	resp, err := chainClient.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return values, nil
}

func bytes32ToString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case [32]byte:
		return string(bytes.TrimRight(v[:], "\x00")), true
	case []byte:
		return string(bytes.TrimRight(v, "\x00")), true
	default:
		return "", false
	}
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

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case int8:
		return big.NewInt(int64(v)), nil
	case int16:
		return big.NewInt(int64(v)), nil
	case int32:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}

func asUint8(value interface{}) (uint8, error) {
	switch v := value.(type) {
	case uint8:
		return v, nil
	case uint16:
		return uint8(v), nil
	case uint32:
		return uint8(v), nil
	case uint64:
		return uint8(v), nil
	case *big.Int:
		return uint8(v.Uint64()), nil
	default:
		return 0, fmt.Errorf("unsupported uint8 type %T", value)
	}
}
