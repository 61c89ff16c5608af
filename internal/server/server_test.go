package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"stakeScope/internal/indexer"
	"stakeScope/internal/metrics"
	"stakeScope/internal/model"
	"stakeScope/internal/report"
)

type countingReporter struct {
	mu    sync.Mutex
	calls int
	err   error
	delay time.Duration
}

func (r *countingReporter) Run(ctx context.Context) (report.Result, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	if r.err != nil {
		return report.Result{}, r.err
	}
	return report.Result{
		ChainID: 1,
		Plans: []report.PlanSummary{
			{PlanID: 1, Days: 30, Count: 1, Stakes: []model.StakeEvent{{Staker: "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa1", PlanID: 1}}},
		},
		Reconciliation: report.Reconciliation{
			WalletSetSize: 2,
			StakedWallets: 1,
			NotStaked:     []model.Address{"0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb2"},
		},
	}, nil
}

func (r *countingReporter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestReportIsCached(t *testing.T) {
	reporter := &countingReporter{}
	h := New(reporter, time.Minute, nil, nil).Handler()

	first := get(t, h, "/report")
	if first.Code != http.StatusOK || first.Header().Get("X-Cache") != "MISS" {
		t.Fatalf("first request: %d %s", first.Code, first.Header().Get("X-Cache"))
	}
	second := get(t, h, "/report/not-staked")
	if second.Header().Get("X-Cache") != "HIT" {
		t.Fatalf("second request should hit the cache")
	}
	if reporter.count() != 1 {
		t.Fatalf("expected 1 run, got %d", reporter.count())
	}

	var rec report.Reconciliation
	if err := json.Unmarshal(second.Body.Bytes(), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rec.NotStaked) != 1 || rec.NotStaked[0] != "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb2" {
		t.Fatalf("not staked mismatch: %+v", rec)
	}

	get(t, h, "/report?refresh=1")
	if reporter.count() != 2 {
		t.Fatalf("refresh should bypass the cache, runs = %d", reporter.count())
	}
}

func TestConcurrentMissesShareOneRun(t *testing.T) {
	reporter := &countingReporter{delay: 50 * time.Millisecond}
	h := New(reporter, time.Minute, nil, nil).Handler()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/report", nil))
		}()
	}
	wg.Wait()

	if reporter.count() != 1 {
		t.Fatalf("expected a single run, got %d", reporter.count())
	}
}

func TestReportErrorIsNotCached(t *testing.T) {
	reporter := &countingReporter{err: errors.New("explorer down")}
	h := New(reporter, time.Minute, nil, nil).Handler()

	if rec := get(t, h, "/report"); rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	get(t, h, "/report")
	if reporter.count() != 2 {
		t.Fatalf("failed runs must not be cached, runs = %d", reporter.count())
	}
}

func TestPartialHeader(t *testing.T) {
	reporter := &partialReporter{}
	h := New(reporter, time.Minute, nil, nil).Handler()
	if rec := get(t, h, "/report"); rec.Header().Get("X-Report-Partial") != "true" {
		t.Fatalf("partial report not flagged")
	}
}

type partialReporter struct{}

func (partialReporter) Run(context.Context) (report.Result, error) {
	return report.Result{Fetch: indexer.FetchResult{Failure: &indexer.FetchFailure{Page: 2, Reason: "remote status 0"}}}, nil
}

func TestPlanRoute(t *testing.T) {
	h := New(&countingReporter{}, time.Minute, nil, nil).Handler()

	rec := get(t, h, "/report/plans/1")
	if rec.Code != http.StatusOK {
		t.Fatalf("plan 1: %d", rec.Code)
	}
	var plan report.PlanSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &plan); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if plan.Days != 30 || plan.Count != 1 {
		t.Fatalf("plan mismatch: %+v", plan)
	}
	if rec := get(t, h, "/report/plans/7"); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown plan: %d", rec.Code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	recorder := metrics.NewRecorder()
	h := New(&countingReporter{}, time.Minute, recorder.Handler(), nil).Handler()

	if rec := get(t, h, "/healthz"); rec.Code != http.StatusOK {
		t.Fatalf("healthz: %d", rec.Code)
	}
	if rec := get(t, h, "/metrics"); rec.Code != http.StatusOK {
		t.Fatalf("metrics: %d", rec.Code)
	}
}
