package main

import (
	"context"
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
	"traceScope/internal/storage/postgres"
	"traceScope/internal/token"
	"traceScope/internal/trace"
	"traceScope/internal/transfer"
)

func runSimulate(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadSimulate(cfgFile, cmd.Flags())
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
	if cfg.From == "" {
		return fmt.Errorf("from address is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	var store *postgres.Store
	if cfg.PGDSN != "" {
		store, err = postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
	}

	reg := registry.NewRegistry(logger)
	reg.Load(registry.ERC20ABIJSON)
	if err := loadABIFiles(reg, cfg.ABIFiles); err != nil {
		return err
	}

	request := model.TraceRequest{
		From:  cfg.From,
		To:    cfg.To,
		Value: cfg.Value,
		Data:  cfg.Data,
		Block: cfg.Block,
	}

	logger.Info("simulate start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("from", cfg.From),
		zap.String("to", cfg.To),
		zap.String("block", cfg.Block),
		zap.Int("abi_files", len(cfg.ABIFiles)),
		zap.String("out", cfg.Out),
	)

	var raw *model.RawCallFrame
	err = chain.WithRetry(ctx, cfg.MaxRetries, cfg.Backoff, func(ctx context.Context) error {
		var traceErr error
		raw, traceErr = chainClient.TraceCall(ctx, request, cfg.Block)
		return traceErr
	})
	if err != nil {
		return fmt.Errorf("trace call: %w", err)
	}

	parsed := trace.Parse(raw, reg)
	stats := trace.ComputeStats(parsed)

	var metaStore token.MetaStore
	if store != nil {
		metaStore = store
	}
	resolver := token.NewResolver(chainClient, metaStore, logger)
	extractor := transfer.NewExtractor(resolver, logger)
	extracted := extractor.Extract(ctx, parsed)

	result := &model.SimulationResult{
		Request:       request,
		Trace:         parsed,
		Stats:         stats,
		Transfers:     extracted.Transfers,
		TokenMetadata: extracted.TokenMetadata,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339Nano),
	}
	if chainID, err := chainClient.GetChainID(ctx); err == nil && chainID.IsUint64() {
		result.ChainID = chainID.Uint64()
	}

	sink := storage.NewJsonlStorage(cfg.Out)
	if err := sink.PutResult(result); err != nil {
		return err
	}
	if store != nil {
		if err := store.SaveSimulation(ctx, result); err != nil {
			logger.Warn("archive simulation failed", zap.Error(err))
		}
	}

	logger.Info("simulate complete",
		zap.String("total_gas_used", model.BigString(stats.TotalGasUsed)),
		zap.Int("total_calls", stats.TotalCalls),
		zap.Int("max_depth", stats.MaxDepth),
		zap.Bool("has_error", stats.HasError),
		zap.String("error_message", stats.ErrorMessage),
		zap.Int("transfers", len(extracted.Transfers)),
	)

	return nil
}

func loadABIFiles(reg *registry.Registry, paths []string) error {
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read abi file %s: %w", path, err)
		}
		reg.Load(string(data))
	}
	return nil
}
