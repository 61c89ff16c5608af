package main

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"stakeScope/internal/chain"
	"stakeScope/internal/config"
	"stakeScope/internal/explorer"
	"stakeScope/internal/indexer"
	"stakeScope/internal/pipeline"
)

// buildRunner resolves the selector, connects the configured log source and
// returns a pipeline runner plus a cleanup func.
func buildRunner(ctx context.Context, cfg config.Config, logger *zap.Logger, opts ...pipeline.Option) (*pipeline.Runner, func(), error) {
	contract, err := indexer.ParseAddress(cfg.Contract)
	if err != nil {
		return nil, nil, err
	}
	topic0, err := indexer.ResolveTopic0(cfg.Topic0, cfg.EventSignature)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {}
	var source indexer.PageSource
	switch cfg.Source {
	case config.SourceRPC:
		client, err := chain.NewClient(ctx, cfg.RPCURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect rpc: %w", err)
		}
		if err := client.EnsureChainID(ctx, cfg.ChainID); err != nil {
			client.Close()
			return nil, nil, err
		}
		cleanup = client.Close
		source = indexer.NewRPCSource(client, contract, topic0, cfg.RPCBatchSize, logger)
	default:
		client, err := explorer.NewClient(explorer.Config{
			BaseURL:  cfg.APIURL,
			APIKey:   cfg.APIKey,
			ChainID:  cfg.ChainID,
			Contract: strings.ToLower(contract.Hex()),
			Topic0:   topic0.Hex(),
			Timeout:  cfg.RequestTimeout,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		source = client
	}

	runner, err := pipeline.NewRunner(pipeline.Config{
		ChainID:       cfg.ChainID,
		Contract:      strings.ToLower(contract.Hex()),
		Topic0:        topic0.Hex(),
		Catalog:       cfg.Plans,
		FilterEnabled: cfg.FilterEnabled,
		FilterMode:    cfg.FilterMode,
		FilterFile:    cfg.FilterFile,
		Fetch: indexer.FetchConfig{
			PageSize:     cfg.PageSize,
			MaxPages:     cfg.MaxPages,
			MaxRetries:   cfg.MaxRetries,
			RetryBackoff: cfg.RetryBackoff,
		},
		TokenDecimals: cfg.TokenDecimals,
	}, source, logger, opts...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	logger.Info("pipeline configured",
		zap.String("source", cfg.Source),
		zap.Uint64("chain_id", cfg.ChainID),
		zap.String("contract", contract.Hex()),
		zap.String("topic0", topic0.Hex()),
		zap.Uint64s("plans", cfg.Plans.IDs()),
		zap.Bool("filter_enabled", cfg.FilterEnabled),
		zap.String("filter_mode", string(cfg.FilterMode)),
		zap.String("filter_file", cfg.FilterFile),
		zap.Int("page_size", cfg.PageSize),
		zap.Int("max_pages", cfg.MaxPages),
	)
	return runner, cleanup, nil
}
