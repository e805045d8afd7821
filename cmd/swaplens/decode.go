package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"swaplens/internal/chain"
	"swaplens/internal/config"
	"swaplens/internal/dex"
	"swaplens/internal/engine"
	"swaplens/internal/model"
	"swaplens/internal/storage"
	"swaplens/internal/storage/postgres"
)

func runDecode(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadDecode(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}

	hash, err := parseTxHash(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	eng, err := engine.New(
		dex.NewPoolResolver(chainClient, logger),
		dex.NewTokenResolver(chainClient, logger),
		logger,
	)
	if err != nil {
		return err
	}

	var tx *chain.Transaction
	err = chain.WithRetry(ctx, cfg.MaxRetries, cfg.RetryBackoff, func(ctx context.Context) error {
		var fetchErr error
		tx, fetchErr = chainClient.FetchTransaction(ctx, hash)
		return fetchErr
	})
	if err != nil {
		return err
	}

	out, err := eng.Decode(ctx, engine.Input{
		CallData:   tx.Input,
		Value:      tx.Value,
		From:       tx.From,
		Logs:       tx.Logs,
		Diagnostic: cfg.Diagnostic,
	})
	if err != nil {
		return err
	}

	var payload interface{}
	if cfg.Diagnostic {
		payload = out.Candidates
	} else {
		payload = out.Resolved
	}

	encoded, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	fmt.Println(string(encoded))

	if cfg.Diagnostic || out.Resolved == nil {
		return nil
	}

	record := model.SwapRecord{
		ChainID:      tx.ChainID,
		TxHash:       tx.Hash.Hex(),
		BlockNumber:  tx.BlockNumber,
		ResolvedSwap: *out.Resolved,
	}

	if cfg.Out != "" {
		sink := storage.NewJsonlStorage(cfg.Out)
		if err := sink.PutSwapBatch([]model.SwapRecord{record}); err != nil {
			return err
		}
		logger.Info("swap written", zap.String("out", cfg.Out))
	}

	if cfg.PgDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PgDSN)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.UpsertSwaps(ctx, []model.SwapRecord{record}); err != nil {
			return err
		}
		logger.Info("swap upserted", zap.String("tx", tx.Hash.Hex()))
	}

	return nil
}

func parseTxHash(raw string) (common.Hash, error) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "0x") || len(trimmed) != 66 {
		return common.Hash{}, fmt.Errorf("invalid transaction hash: %q", raw)
	}
	decoded, err := hexutil.Decode(trimmed)
	if err != nil {
		return common.Hash{}, fmt.Errorf("invalid transaction hash: %q", raw)
	}
	return common.BytesToHash(decoded), nil
}
