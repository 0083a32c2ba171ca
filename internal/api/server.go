// Package api provides the HTTP and WebSocket surface. It is a thin
// collaborator around the core: every candle payload conforms to the
// shared Candle schema before it reaches the strategy or backtester.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/atlas-desktop/orb-backtester/internal/backtester"
	"github.com/atlas-desktop/orb-backtester/internal/market"
	"github.com/atlas-desktop/orb-backtester/internal/sentiment"
	"github.com/atlas-desktop/orb-backtester/pkg/types"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// Server is the HTTP/WebSocket API server.
type Server struct {
	mu         sync.RWMutex
	logger     *zap.Logger
	config     types.ServerConfig
	router     *mux.Router
	httpServer *http.Server
	engine     *backtester.Engine
	backtests  map[string]*backtestState
}

// backtestState tracks a submitted backtest run.
type backtestState struct {
	ID      string                `json:"id"`
	Status  string                `json:"status"`
	Started time.Time             `json:"started"`
	Error   string                `json:"error,omitempty"`
	Result  *types.BacktestResult `json:"result,omitempty"`
}

// NewServer creates the API server. Completed backtests are held in
// memory for the lifetime of the process; each run is self-contained.
func NewServer(logger *zap.Logger, config types.ServerConfig) *Server {
	s := &Server{
		logger:    logger,
		config:    config,
		router:    mux.NewRouter(),
		engine:    backtester.NewEngine(logger),
		backtests: make(map[string]*backtestState),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(s.instrument)

	s.router.HandleFunc("/api/v1/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/api/v1/symbols", s.handleSymbols).Methods("GET")
	s.router.HandleFunc("/api/v1/candles/{symbol}", s.handleCandles).Methods("GET")
	s.router.HandleFunc("/api/v1/quote/{symbol}", s.handleQuote).Methods("GET")
	s.router.HandleFunc("/api/v1/sentiment/{symbol}", s.handleSentiment).Methods("GET")
	s.router.HandleFunc("/api/v1/backtest/run", s.handleRunBacktest).Methods("POST")
	s.router.HandleFunc("/api/v1/backtests", s.handleListBacktests).Methods("GET")
	s.router.HandleFunc("/api/v1/backtest/{id}", s.handleGetBacktest).Methods("GET")
	s.router.HandleFunc("/ws/ticks/{symbol}", s.handleTickStream)

	if s.config.EnableMetrics {
		s.router.Handle("/metrics", promhttp.Handler())
	}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	handler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}).Handler(s.router)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting API server", zap.String("addr", addr))
	return s.httpServer.ListenAndServe()
}

// Stop gracefully stops the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

func (s *Server) handleSymbols(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"symbols": market.Symbols(),
	})
}

// handleCandles generates one synthetic session for a symbol. The
// payload is the shared Candle schema, time-ascending.
func (s *Server) handleCandles(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	date := time.Now().UTC()
	if v := r.URL.Query().Get("date"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			http.Error(w, "invalid date, want YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		date = parsed
	}
	seed := queryInt64(r, "seed", date.Unix())

	day := market.GenerateDayBySymbol(symbol, seed, date, 0)
	if day == nil {
		http.Error(w, fmt.Sprintf("unknown ticker %q", symbol), http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ticker":       day.Ticker,
		"date":         day.Date.Format("2006-01-02"),
		"preMarketGap": day.PreMarketGap,
		"openPrice":    day.OpenPrice,
		"closePrice":   day.ClosePrice,
		"candles":      day.Candles,
		"count":        len(day.Candles),
	})
}

// handleQuote returns a single simulated quote.
func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	seed := queryInt64(r, "seed", time.Now().UnixNano())

	sim := market.NewTickSimulator(symbol, seed)
	if sim == nil {
		http.Error(w, fmt.Sprintf("unknown ticker %q", symbol), http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"symbol": sim.Symbol(),
		"tick":   sim.NextTick(),
	})
}

func (s *Server) handleSentiment(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	date := time.Now().UTC()
	if v := r.URL.Query().Get("date"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			http.Error(w, "invalid date, want YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		date = parsed
	}

	score := sentiment.ScoreFor(symbol, date)
	if score == nil {
		http.Error(w, fmt.Sprintf("unknown ticker %q", symbol), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, score)
}

// handleRunBacktest submits a backtest and returns its ID immediately.
func (s *Server) handleRunBacktest(w http.ResponseWriter, r *http.Request) {
	var cfg types.BacktestConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if cfg.ID == "" {
		cfg.ID = uuid.New().String()
	}

	state := &backtestState{
		ID:      cfg.ID,
		Status:  "running",
		Started: time.Now(),
	}
	s.mu.Lock()
	s.backtests[cfg.ID] = state
	s.mu.Unlock()

	backtestsStarted.Inc()

	go func() {
		started := time.Now()
		result, err := s.engine.Run(context.Background(), cfg)
		backtestDuration.Observe(time.Since(started).Seconds())

		s.mu.Lock()
		defer s.mu.Unlock()
		if err != nil {
			state.Status = "failed"
			state.Error = err.Error()
			s.logger.Error("Backtest failed", zap.String("id", cfg.ID), zap.Error(err))
			return
		}
		state.Status = "completed"
		state.Result = result
	}()

	writeJSON(w, http.StatusAccepted, map[string]any{
		"id":     cfg.ID,
		"status": state.Status,
	})
}

func (s *Server) handleGetBacktest(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.mu.RLock()
	state, ok := s.backtests[id]
	s.mu.RUnlock()
	if !ok {
		http.Error(w, "backtest not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// backtestListing is the per-run row returned by the list endpoint; the
// full result stays behind the per-ID endpoint.
type backtestListing struct {
	ID      string    `json:"id"`
	Ticker  string    `json:"ticker"`
	Status  string    `json:"status"`
	Started time.Time `json:"started"`
}

func (s *Server) handleListBacktests(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	listings := make([]backtestListing, 0, len(s.backtests))
	for _, state := range s.backtests {
		row := backtestListing{
			ID:      state.ID,
			Status:  state.Status,
			Started: state.Started,
		}
		if state.Result != nil {
			row.Ticker = state.Result.Config.Ticker
		}
		listings = append(listings, row)
	}
	s.mu.RUnlock()

	sort.Slice(listings, func(i, j int) bool {
		return listings[i].Started.After(listings[j].Started)
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"results": listings,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func queryInt64(r *http.Request, key string, fallback int64) int64 {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
