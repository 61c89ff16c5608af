package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"stakeScope/internal/report"
)

const reportKey = "report"

// Reporter produces a fresh report on demand.
type Reporter interface {
	Run(ctx context.Context) (report.Result, error)
}

// Server exposes the latest report over HTTP.
type Server struct {
	reporter Reporter
	cache    *cache.Cache
	metrics  http.Handler
	logger   *zap.Logger
	router   *mux.Router

	// serialises pipeline runs so concurrent misses share one fetch
	runMu sync.Mutex
}

// New builds a Server caching results for ttl. metrics may be nil.
func New(reporter Reporter, ttl time.Duration, metrics http.Handler, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 25 * time.Second
	}
	s := &Server{
		reporter: reporter,
		cache:    cache.New(ttl, 2*ttl),
		metrics:  metrics,
		logger:   logger,
		router:   mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/report", s.handleReport).Methods(http.MethodGet)
	s.router.HandleFunc("/report/not-staked", s.handleNotStaked).Methods(http.MethodGet)
	s.router.HandleFunc("/report/plans/{id:[0-9]+}", s.handlePlan).Methods(http.MethodGet)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics).Methods(http.MethodGet)
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// current returns the cached report or runs the pipeline once.
func (s *Server) current(ctx context.Context, refresh bool) (report.Result, bool, error) {
	if !refresh {
		if cached, ok := s.cache.Get(reportKey); ok {
			return cached.(report.Result), true, nil
		}
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()

	if !refresh {
		if cached, ok := s.cache.Get(reportKey); ok {
			return cached.(report.Result), true, nil
		}
	}

	result, err := s.reporter.Run(ctx)
	if err != nil {
		return report.Result{}, false, err
	}
	s.cache.SetDefault(reportKey, result)
	return result, false, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	result, ok := s.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleNotStaked(w http.ResponseWriter, r *http.Request) {
	result, ok := s.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, result.Reconciliation)
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	result, ok := s.load(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]
	for _, plan := range result.Plans {
		if strconv.FormatUint(plan.PlanID, 10) == id {
			writeJSON(w, http.StatusOK, plan)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown plan " + id})
}

func (s *Server) load(w http.ResponseWriter, r *http.Request) (report.Result, bool) {
	refresh := r.URL.Query().Get("refresh") == "1"
	result, cached, err := s.current(r.Context(), refresh)
	if err != nil {
		s.logger.Error("report run failed", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return report.Result{}, false
	}
	if cached {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	if result.Partial() {
		w.Header().Set("X-Report-Partial", "true")
	}
	return result, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
