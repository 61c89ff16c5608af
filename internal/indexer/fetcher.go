package indexer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"stakeScope/internal/model"
)

// Page is one page of raw log records from a PageSource.
type Page struct {
	Status    string
	Message   string
	Records   []model.LogRecord
	NoRecords bool
	Raw       []byte
}

// Failed reports whether the remote rejected the request.
func (p Page) Failed() bool {
	return p.Status != "" && p.Status != "1" && !p.NoRecords
}

// PageSource returns pages of matching log records, 1-indexed.
type PageSource interface {
	FetchPage(ctx context.Context, page, pageSize int) (Page, error)
}

// FetchFailure records why pagination stopped early.
type FetchFailure struct {
	Page    int    `json:"page"`
	Reason  string `json:"reason"`
	Message string `json:"message,omitempty"`
	Raw     string `json:"raw,omitempty"`
}

// FetchResult is everything fetched before pagination ended.
type FetchResult struct {
	Records []model.LogRecord `json:"-"`
	Pages   int               `json:"pages"`
	Total   int               `json:"records"`
	Failure *FetchFailure     `json:"failure,omitempty"`
}

// FetchConfig holds paging settings for the fetcher.
type FetchConfig struct {
	PageSize     int
	MaxPages     int
	MaxRetries   int
	RetryBackoff time.Duration
}

// PageObserver is notified after every page request.
type PageObserver func(page int, records int, err error)

// Fetcher pulls every page from a PageSource, one request at a time.
type Fetcher struct {
	cfg      FetchConfig
	source   PageSource
	logger   *zap.Logger
	observer PageObserver
}

// NewFetcher builds a Fetcher with its dependencies.
func NewFetcher(cfg FetchConfig, source PageSource, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{cfg: cfg, source: source, logger: logger}
}

// WithObserver registers a per-page callback.
func (f *Fetcher) WithObserver(observer PageObserver) *Fetcher {
	f.observer = observer
	return f
}

// FetchAll requests pages 1..N until an empty page or a failure.
//
// Remote and transport failures end pagination but are not returned as
// errors; they are recorded in FetchResult.Failure alongside the records
// fetched so far. Only a nil source, an invalid page size or a cancelled
// context produce an error.
func (f *Fetcher) FetchAll(ctx context.Context) (FetchResult, error) {
	if f.source == nil {
		return FetchResult{}, fmt.Errorf("page source is nil")
	}
	if f.cfg.PageSize <= 0 {
		return FetchResult{}, fmt.Errorf("page size must be greater than zero")
	}

	var result FetchResult
	for page := 1; ; page++ {
		if f.cfg.MaxPages > 0 && page > f.cfg.MaxPages {
			f.logger.Warn("max pages reached", zap.Int("max_pages", f.cfg.MaxPages))
			result.Failure = &FetchFailure{Page: page, Reason: "max pages reached"}
			break
		}

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		resp, err := f.fetchPageWithRetry(ctx, page)
		f.notify(page, len(resp.Records), err)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			f.logger.Error("page request failed", zap.Int("page", page), zap.Error(err))
			result.Failure = &FetchFailure{
				Page:   page,
				Reason: err.Error(),
				Raw:    string(resp.Raw),
			}
			break
		}
		result.Pages = page

		f.logger.Info("page fetched",
			zap.Int("page", page),
			zap.String("status", resp.Status),
			zap.String("message", resp.Message),
			zap.Int("records", len(resp.Records)),
		)

		if resp.Failed() {
			f.logger.Error("explorer returned failure status",
				zap.Int("page", page),
				zap.String("status", resp.Status),
				zap.String("message", resp.Message),
				zap.ByteString("response", resp.Raw),
			)
			result.Failure = &FetchFailure{
				Page:    page,
				Reason:  "remote status " + resp.Status,
				Message: resp.Message,
				Raw:     string(resp.Raw),
			}
			break
		}

		if len(resp.Records) == 0 {
			break
		}

		result.Records = append(result.Records, resp.Records...)
	}

	result.Total = len(result.Records)
	f.logger.Info("fetch complete",
		zap.Int("pages", result.Pages),
		zap.Int("records", result.Total),
		zap.Bool("partial", result.Failure != nil),
	)
	return result, nil
}

func (f *Fetcher) fetchPageWithRetry(ctx context.Context, page int) (Page, error) {
	var resp Page
	err := withRetry(ctx, f.cfg.MaxRetries, f.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		resp, err = f.source.FetchPage(ctx, page, f.cfg.PageSize)
		if err != nil {
			f.logger.Warn("fetch page failed", zap.Error(err), zap.Int("page", page))
		}
		return err
	})
	return resp, err
}

func (f *Fetcher) notify(page, records int, err error) {
	if f.observer != nil {
		f.observer(page, records, err)
	}
}
