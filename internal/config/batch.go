package config

import (
	"time"

	"github.com/spf13/pflag"
)

// BatchConfig holds configuration for the batch command.
type BatchConfig struct {
	RPCURL       string
	In           string
	Out          string
	Errors       string
	PgDSN        string
	MaxRetries   int
	RetryBackoff time.Duration
	LogLevel     string
}

// LoadBatch merges config file, environment variables, and flags into BatchConfig.
func LoadBatch(cfgFile string, flags *pflag.FlagSet) (BatchConfig, error) {
	v := newViper()

	v.SetDefault("out", "./data/swaps.jsonl")
	v.SetDefault("errors", "./data/decode_errors.jsonl")
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("log-level", "info")

	if err := bindAndRead(v, cfgFile, flags); err != nil {
		return BatchConfig{}, err
	}

	cfg := BatchConfig{
		RPCURL:       v.GetString("rpc"),
		In:           v.GetString("in"),
		Out:          v.GetString("out"),
		Errors:       v.GetString("errors"),
		PgDSN:        v.GetString("pg-dsn"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		LogLevel:     v.GetString("log-level"),
	}

	return cfg, nil
}
