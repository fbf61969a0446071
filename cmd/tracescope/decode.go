package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"traceScope/internal/chain"
	"traceScope/internal/config"
	"traceScope/internal/model"
	"traceScope/internal/registry"
	"traceScope/internal/storage"
	"traceScope/internal/token"
	"traceScope/internal/trace"
	"traceScope/internal/transfer"
)

func runDecode(cmd *cobra.Command, _ []string) error {
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

	if cfg.In == "" {
		return fmt.Errorf("input path is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	data, err := os.ReadFile(cfg.In)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	var raw model.RawCallFrame
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse trace: %w", err)
	}

	reg := registry.NewRegistry(logger)
	reg.Load(registry.ERC20ABIJSON)
	if err := loadABIFiles(reg, cfg.ABIFiles); err != nil {
		return err
	}

	// Token metadata resolution needs a chain; without an RPC URL every
	// token degrades to the unknown sentinel.
	var resolver transfer.MetadataResolver
	if cfg.RPCURL != "" {
		chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
		if err != nil {
			return fmt.Errorf("connect rpc: %w", err)
		}
		defer chainClient.Close()
		resolver = token.NewResolver(chainClient, nil, logger)
	}

	logger.Info("decode start",
		zap.String("in", cfg.In),
		zap.Int("abi_files", len(cfg.ABIFiles)),
		zap.Bool("metadata_enabled", resolver != nil),
		zap.String("out", cfg.Out),
	)

	parsed := trace.Parse(&raw, reg)
	stats := trace.ComputeStats(parsed)

	extractor := transfer.NewExtractor(resolver, logger)
	extracted := extractor.Extract(ctx, parsed)

	result := &model.SimulationResult{
		Trace:         parsed,
		Stats:         stats,
		Transfers:     extracted.Transfers,
		TokenMetadata: extracted.TokenMetadata,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339Nano),
	}

	sink := storage.NewJsonlStorage(cfg.Out)
	if err := sink.PutResult(result); err != nil {
		return err
	}

	logger.Info("decode complete",
		zap.String("total_gas_used", model.BigString(stats.TotalGasUsed)),
		zap.Int("total_calls", stats.TotalCalls),
		zap.Int("max_depth", stats.MaxDepth),
		zap.Bool("has_error", stats.HasError),
		zap.Int("transfers", len(extracted.Transfers)),
	)

	return nil
}
