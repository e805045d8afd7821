package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "swaplens",
		Short:        "Uniswap V3 swap transaction decoder",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	decodeCmd := &cobra.Command{
		Use:   "decode <tx-hash>",
		Short: "Decode a single swap transaction",
		Args:  cobra.ExactArgs(1),
		RunE:  runDecode,
	}

	decodeCmd.Flags().String("rpc", "", "Ethereum RPC URL")
	decodeCmd.Flags().Bool("diagnostic", false, "report every candidate match instead of one resolved swap")
	decodeCmd.Flags().String("out", "", "optional output JSONL path")
	decodeCmd.Flags().String("pg-dsn", "", "optional Postgres DSN")
	decodeCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	decodeCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	decodeCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(decodeCmd)

	batchCmd := &cobra.Command{
		Use:   "batch",
		Short: "Decode a file of transaction hashes",
		RunE:  runBatch,
	}

	batchCmd.Flags().String("rpc", "", "Ethereum RPC URL")
	batchCmd.Flags().String("in", "", "input file with one tx hash per line")
	batchCmd.Flags().String("out", "./data/swaps.jsonl", "output swaps JSONL path")
	batchCmd.Flags().String("errors", "./data/decode_errors.jsonl", "decode errors JSONL path")
	batchCmd.Flags().String("pg-dsn", "", "optional Postgres DSN")
	batchCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	batchCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	batchCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(batchCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
