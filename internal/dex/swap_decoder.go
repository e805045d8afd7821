package dex

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	"swaplens/internal/model"
)

// swapDataWords is the non-indexed word count of the Swap event: amount0,
// amount1, sqrtPriceX96, liquidity, tick.
const swapDataWords = 5

// SwapLogDecoder recognizes pool Swap events in receipt logs.
type SwapLogDecoder struct {
	event  abi.Event
	topic0 common.Hash
}

// NewSwapLogDecoder builds a decoder over the pool Swap event schema.
func NewSwapLogDecoder() (*SwapLogDecoder, error) {
	poolABI, err := V3PoolABI()
	if err != nil {
		return nil, err
	}
	event := poolABI.Events["Swap"]
	return &SwapLogDecoder{event: event, topic0: event.ID}, nil
}

// Topic0 returns the Swap event signature hash.
func (d *SwapLogDecoder) Topic0() common.Hash {
	return d.topic0
}

// CanDecode checks whether topic0 matches the Swap event and the log shape
// fits the schema: two indexed address topics and five data words.
func (d *SwapLogDecoder) CanDecode(log model.LogRecord) bool {
	if len(log.Topics) != 3 {
		return false
	}
	if !strings.EqualFold(log.Topics[0], d.topic0.Hex()) {
		return false
	}
	data, err := hexutil.Decode(log.Data)
	if err != nil {
		return false
	}
	return len(data) == swapDataWords*32
}

// Decode converts one matching log into an ObservedSwap.
func (d *SwapLogDecoder) Decode(log model.LogRecord) (model.ObservedSwap, error) {
	if !common.IsHexAddress(log.Address) {
		return model.ObservedSwap{}, fmt.Errorf("invalid pool address: %s", log.Address)
	}
	pool := common.HexToAddress(log.Address)

	indexedTopics, err := parseTopicHashes(log.Topics[1:])
	if err != nil {
		return model.ObservedSwap{}, err
	}

	var indexed struct {
		Sender    common.Address
		Recipient common.Address
	}
	if err := abi.ParseTopics(&indexed, indexedArguments(d.event.Inputs), indexedTopics); err != nil {
		return model.ObservedSwap{}, fmt.Errorf("parse topics: %w", err)
	}

	data, err := hexutil.Decode(log.Data)
	if err != nil {
		return model.ObservedSwap{}, fmt.Errorf("invalid data: %w", err)
	}
	values, err := d.event.Inputs.NonIndexed().Unpack(data)
	if err != nil {
		return model.ObservedSwap{}, fmt.Errorf("unpack swap: %w", err)
	}
	if len(values) != swapDataWords {
		return model.ObservedSwap{}, fmt.Errorf("unexpected swap values: %d", len(values))
	}

	amount0, err := asBigInt(values[0])
	if err != nil {
		return model.ObservedSwap{}, err
	}
	amount1, err := asBigInt(values[1])
	if err != nil {
		return model.ObservedSwap{}, err
	}

	return model.ObservedSwap{
		Pool:      pool,
		LogIndex:  log.LogIndex,
		Sender:    indexed.Sender,
		Recipient: indexed.Recipient,
		Amount0:   amount0,
		Amount1:   amount1,
	}, nil
}

// DecodeAll scans logs in the given order and returns one ObservedSwap per
// matching log, preserving log order. Non-matching logs are ignored. Swaps
// whose deltas do not have opposite signs carry no directional information
// and are dropped.
func (d *SwapLogDecoder) DecodeAll(logs []model.LogRecord, logger *zap.Logger) []model.ObservedSwap {
	if logger == nil {
		logger = zap.NewNop()
	}

	swaps := make([]model.ObservedSwap, 0, len(logs))
	for _, log := range logs {
		if !d.CanDecode(log) {
			continue
		}
		swap, err := d.Decode(log)
		if err != nil {
			logger.Warn("drop undecodable swap log",
				zap.String("address", log.Address),
				zap.Uint64("log_index", log.LogIndex),
				zap.Error(err))
			continue
		}
		if swap.Amount0.Sign()*swap.Amount1.Sign() >= 0 {
			continue
		}
		swaps = append(swaps, swap)
	}
	return swaps
}

func parseTopicHashes(topics []string) ([]common.Hash, error) {
	out := make([]common.Hash, 0, len(topics))
	for _, topic := range topics {
		data, err := hexutil.Decode(topic)
		if err != nil {
			return nil, fmt.Errorf("invalid topic: %w", err)
		}
		if len(data) > 32 {
			return nil, fmt.Errorf("topic length %d", len(data))
		}
		out = append(out, common.BytesToHash(data))
	}
	return out, nil
}

func indexedArguments(args abi.Arguments) abi.Arguments {
	indexed := make(abi.Arguments, 0, len(args))
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}
