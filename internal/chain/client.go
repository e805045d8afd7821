package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"swaplens/internal/model"
)

// Client wraps go-ethereum RPC and provides helper methods.
type Client struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client
}

// NewClient creates a new chain client from the RPC URL.
func NewClient(ctx context.Context, rpcURL string) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrTransportError, err)
	}

	return &Client{
		rpcClient: rpcClient,
		ethClient: ethclient.NewClient(rpcClient),
	}, nil
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// GetChainID returns the chain ID.
func (c *Client) GetChainID(ctx context.Context) (*big.Int, error) {
	id, err := c.ethClient.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: chain id: %v", model.ErrTransportError, err)
	}
	return id, nil
}

// CallContract performs an eth_call for a contract method.
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return c.ethClient.CallContract(ctx, msg, blockNumber)
}

// Transaction is the already-fetched raw material for one decode: call input
// bytes, transaction envelope fields, and the receipt logs in log order.
type Transaction struct {
	Hash        common.Hash
	From        common.Address
	Input       []byte
	Value       *big.Int
	BlockNumber uint64
	ChainID     uint64
	Logs        []model.LogRecord
}

// FetchTransaction loads a mined transaction and its receipt logs. Missing
// transactions map to ErrTransactionNotFound, reverted ones to
// ErrTransactionReverted, everything else to ErrTransportError.
func (c *Client) FetchTransaction(ctx context.Context, hash common.Hash) (*Transaction, error) {
	tx, pending, err := c.ethClient.TransactionByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("%w: %s", model.ErrTransactionNotFound, hash.Hex())
		}
		return nil, fmt.Errorf("%w: get transaction: %v", model.ErrTransportError, err)
	}
	if pending {
		return nil, fmt.Errorf("%w: %s is pending", model.ErrTransactionNotFound, hash.Hex())
	}

	receipt, err := c.ethClient.TransactionReceipt(ctx, hash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("%w: receipt for %s", model.ErrTransactionNotFound, hash.Hex())
		}
		return nil, fmt.Errorf("%w: get receipt: %v", model.ErrTransportError, err)
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return nil, fmt.Errorf("%w: %s", model.ErrTransactionReverted, hash.Hex())
	}

	chainID, err := c.GetChainID(ctx)
	if err != nil {
		return nil, err
	}

	from, err := types.Sender(types.LatestSignerForChainID(chainID), tx)
	if err != nil {
		return nil, fmt.Errorf("%w: recover sender: %v", model.ErrTransportError, err)
	}

	logs := make([]model.LogRecord, 0, len(receipt.Logs))
	for _, log := range receipt.Logs {
		logs = append(logs, buildLogRecord(chainID.Uint64(), log))
	}

	return &Transaction{
		Hash:        hash,
		From:        from,
		Input:       tx.Data(),
		Value:       tx.Value(),
		BlockNumber: receipt.BlockNumber.Uint64(),
		ChainID:     chainID.Uint64(),
		Logs:        logs,
	}, nil
}

func buildLogRecord(chainID uint64, log *types.Log) model.LogRecord {
	topics := make([]string, 0, len(log.Topics))
	for _, topic := range log.Topics {
		topics = append(topics, topic.Hex())
	}

	return model.LogRecord{
		ChainID:     chainID,
		BlockNumber: log.BlockNumber,
		TxHash:      log.TxHash.Hex(),
		LogIndex:    uint64(log.Index),
		Address:     log.Address.Hex(),
		Topics:      topics,
		Data:        hexutil.Encode(log.Data),
	}
}
