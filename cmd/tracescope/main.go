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
		Use:          "tracescope",
		Short:        "EVM call-trace decoder",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Trace a call via debug_traceCall and decode it",
		RunE:  runSimulate,
	}

	simulateCmd.Flags().String("rpc", "", "JSON-RPC URL")
	simulateCmd.Flags().String("from", "", "sender address")
	simulateCmd.Flags().String("to", "", "recipient address (empty for contract creation)")
	simulateCmd.Flags().String("value", "", "call value (hex, e.g. 0xde0b6b3a7640000)")
	simulateCmd.Flags().String("data", "", "calldata (hex)")
	simulateCmd.Flags().String("block", "latest", "block tag or number")
	simulateCmd.Flags().StringSlice("abi", nil, "extra ABI JSON files (comma-separated)")
	simulateCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for caching and archival")
	simulateCmd.Flags().String("out", "./data/simulations.jsonl", "output JSONL path")
	simulateCmd.Flags().Int("max-retries", 3, "maximum trace retry attempts")
	simulateCmd.Flags().Duration("backoff", 500*time.Millisecond, "initial retry backoff")
	simulateCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(simulateCmd)

	decodeCmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode a raw trace JSON file offline",
		RunE:  runDecode,
	}

	decodeCmd.Flags().String("rpc", "", "optional JSON-RPC URL for token metadata")
	decodeCmd.Flags().String("in", "", "input raw trace JSON file")
	decodeCmd.Flags().StringSlice("abi", nil, "ABI JSON files (comma-separated)")
	decodeCmd.Flags().String("out", "./data/decoded.jsonl", "output JSONL path")
	decodeCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(decodeCmd)

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
