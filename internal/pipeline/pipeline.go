package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"stakeScope/internal/indexer"
	"stakeScope/internal/metrics"
	"stakeScope/internal/model"
	"stakeScope/internal/report"
	"stakeScope/internal/staking"
	"stakeScope/internal/storage"
	"stakeScope/internal/wallet"
)

// Config holds the settings of one report run.
type Config struct {
	ChainID       uint64
	Contract      string
	Topic0        string
	Catalog       staking.PlanCatalog
	FilterEnabled bool
	FilterMode    report.FilterMode
	FilterFile    string
	Fetch         indexer.FetchConfig
	TokenDecimals int32
}

// Runner wires the wallet loader, fetcher, decoder and classifier into one pass.
type Runner struct {
	cfg     Config
	source  indexer.PageSource
	decoder *staking.Decoder
	logger  *zap.Logger
	metrics *metrics.Recorder
	sink    storage.EventSink
	now     func() time.Time
}

// Option customises a Runner.
type Option func(*Runner)

// WithMetrics records run statistics on m.
func WithMetrics(m *metrics.Recorder) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithEventSink forwards every decoded stake with a known plan to sink.
func WithEventSink(sink storage.EventSink) Option {
	return func(r *Runner) { r.sink = sink }
}

// NewRunner validates cfg and builds a Runner with its dependencies.
func NewRunner(cfg Config, source indexer.PageSource, logger *zap.Logger, opts ...Option) (*Runner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if source == nil {
		return nil, fmt.Errorf("page source is nil")
	}
	if cfg.FilterMode == "" {
		cfg.FilterMode = report.ModeExclude
	}
	if _, err := report.ParseFilterMode(string(cfg.FilterMode)); err != nil {
		return nil, err
	}
	decoder, err := staking.NewDecoder(cfg.Catalog)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		cfg:     cfg,
		source:  source,
		decoder: decoder,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run executes one full pass and returns the structured report.
//
// A fetch failure does not fail the run: the report covers what was fetched
// and Result.Partial reports true.
func (r *Runner) Run(ctx context.Context) (report.Result, error) {
	started := r.now()
	result, err := r.run(ctx)
	if r.metrics != nil {
		r.metrics.RecordRun(r.now().Sub(started), result.Partial(), len(result.Reconciliation.NotStaked), err)
	}
	return result, err
}

func (r *Runner) run(ctx context.Context) (report.Result, error) {
	result := report.Result{
		GeneratedAt:   r.now().UTC(),
		ChainID:       r.cfg.ChainID,
		Contract:      r.cfg.Contract,
		Topic0:        r.cfg.Topic0,
		FilterEnabled: r.cfg.FilterEnabled,
		FilterMode:    r.cfg.FilterMode,
	}

	wallets, stats, err := r.loadWallets()
	if err != nil {
		return result, err
	}
	result.WalletFile = stats
	result.FilterActive = r.cfg.FilterEnabled && stats.FilterActive()

	fetcher := indexer.NewFetcher(r.cfg.Fetch, r.source, r.logger)
	if r.metrics != nil {
		fetcher.WithObserver(r.metrics.ObservePage)
	}
	fetched, err := fetcher.FetchAll(ctx)
	result.Fetch = fetched
	if err != nil {
		return result, fmt.Errorf("fetch logs: %w", err)
	}

	classifier := report.NewClassifier(r.decoder.Catalog(), wallets, r.cfg.FilterEnabled, r.cfg.FilterMode)
	events := make([]model.StakeEvent, 0, len(fetched.Records))
	result.Stats.RecordsFetched = len(fetched.Records)
	for _, record := range fetched.Records {
		event, err := r.decoder.Decode(record)
		switch {
		case err == nil:
		case errors.Is(err, staking.ErrUnknownPlan):
			result.Stats.UnknownPlan++
			r.metrics.RecordRejected(metrics.ReasonUnknownPlan)
			continue
		default:
			result.Stats.NotDecodable++
			r.metrics.RecordRejected(metrics.ReasonNotDecodable)
			r.logger.Debug("skipping record", zap.String("tx_hash", record.TxHash), zap.Error(err))
			continue
		}

		result.Stats.Decoded++
		r.metrics.RecordDecoded()
		classifier.Add(event)
		events = append(events, event)
	}

	if r.sink != nil {
		if err := r.sink.PutEventBatch(events); err != nil {
			return result, fmt.Errorf("write events: %w", err)
		}
	}

	buckets := classifier.Buckets()
	result.Plans = report.Summarize(r.decoder.Catalog(), buckets.Qualifying, r.cfg.TokenDecimals)
	result.WalletSetPlans = report.Summarize(r.decoder.Catalog(), buckets.InWalletSet, r.cfg.TokenDecimals)
	result.Reconciliation = report.BuildReconciliation(wallets, buckets, result.FilterActive)
	result.Wallets, result.Totals = report.SummarizeWallets(events, wallets, r.cfg.TokenDecimals)

	r.logger.Info("report built",
		zap.Int("records", result.Stats.RecordsFetched),
		zap.Int("decoded", result.Stats.Decoded),
		zap.Int("not_decodable", result.Stats.NotDecodable),
		zap.Int("unknown_plan", result.Stats.UnknownPlan),
		zap.Int("unique_stakers", result.Totals.UniqueStakers),
		zap.Int("not_staked", len(result.Reconciliation.NotStaked)),
		zap.Bool("partial", result.Partial()),
	)
	return result, nil
}

func (r *Runner) loadWallets() (wallet.Set, wallet.LoadStats, error) {
	if !r.cfg.FilterEnabled {
		return wallet.NewSet(), wallet.LoadStats{Path: r.cfg.FilterFile, Status: wallet.StatusDisabled}, nil
	}
	set, stats, err := wallet.Load(r.cfg.FilterFile, r.logger)
	if err != nil {
		return wallet.Set{}, stats, fmt.Errorf("load wallet filter: %w", err)
	}
	return set, stats, nil
}
