package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

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

func runBatch(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadBatch(cfgFile, cmd.Flags())
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
	if cfg.In == "" {
		return fmt.Errorf("input path is required")
	}
	if cfg.Out == "" {
		return fmt.Errorf("output path is required")
	}
	if cfg.Errors == "" {
		return fmt.Errorf("errors path is required")
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

	inputFile, err := os.Open(cfg.In)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer inputFile.Close()

	errorSink := storage.NewJsonlFailureStorage(cfg.Errors)
	sinks := []storage.Storage{storage.NewJsonlStorage(cfg.Out)}
	if cfg.PgDSN != "" {
		pgStore, err := postgres.NewStore(ctx, cfg.PgDSN)
		if err != nil {
			return err
		}
		defer pgStore.Close()
		sinks = append(sinks, pgStore)
	}

	logger.Info("batch start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("in", cfg.In),
		zap.String("out", cfg.Out),
		zap.String("errors", cfg.Errors),
	)

	scanner := bufio.NewScanner(inputFile)

	var total, resolved, failed int
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		total++

		record, err := decodeOne(ctx, chainClient, eng, cfg.MaxRetries, cfg.RetryBackoff, line)
		if err != nil {
			failed++
			writeFailure(errorSink, logger, model.DecodeFailure{TxHash: line, Error: err.Error()})
			continue
		}

		for _, sink := range sinks {
			if err := sink.PutSwapBatch([]model.SwapRecord{record}); err != nil {
				return err
			}
		}
		resolved++
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan input: %w", err)
	}

	logger.Info("batch complete",
		zap.Int("total", total),
		zap.Int("resolved", resolved),
		zap.Int("failed", failed),
	)

	return nil
}

func decodeOne(ctx context.Context, chainClient *chain.Client, eng *engine.Engine, maxRetries int, backoff time.Duration, raw string) (model.SwapRecord, error) {
	hash, err := parseTxHash(raw)
	if err != nil {
		return model.SwapRecord{}, err
	}

	var tx *chain.Transaction
	err = chain.WithRetry(ctx, maxRetries, backoff, func(ctx context.Context) error {
		var fetchErr error
		tx, fetchErr = chainClient.FetchTransaction(ctx, hash)
		return fetchErr
	})
	if err != nil {
		return model.SwapRecord{}, err
	}

	out, err := eng.Decode(ctx, engine.Input{
		CallData: tx.Input,
		Value:    tx.Value,
		From:     tx.From,
		Logs:     tx.Logs,
	})
	if err != nil {
		return model.SwapRecord{}, err
	}

	return model.SwapRecord{
		ChainID:      tx.ChainID,
		TxHash:       tx.Hash.Hex(),
		BlockNumber:  tx.BlockNumber,
		ResolvedSwap: *out.Resolved,
	}, nil
}

func writeFailure(sink *storage.JsonlFailureStorage, logger *zap.Logger, failure model.DecodeFailure) {
	if err := sink.PutFailure(failure); err != nil {
		logger.Warn("write decode failure", zap.Error(err))
	}
}
