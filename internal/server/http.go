package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"pricestream/internal/domain"
	"pricestream/internal/infra"
	"pricestream/internal/service"
)

// Config carries the HTTP server settings.
type Config struct {
	Addr    string
	AppName string
	Version string
}

// Server hosts the dashboard page, its live feed and the JSON API.
type Server struct {
	cfg   Config
	feed  *service.Feed
	store domain.SymbolRepository
	srv   *http.Server
}

// New wires the routes and returns a server ready to Start. store may be
// nil; the recent-symbols endpoint then serves an empty list.
func New(cfg Config, feed *service.Feed, store domain.SymbolRepository) *Server {
	s := &Server{cfg: cfg, feed: feed, store: store}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/api/series", s.handleSeries)
	mux.HandleFunc("/api/symbol", s.handleSymbol)
	mux.HandleFunc("/api/recent", s.handleRecent)
	mux.HandleFunc("/api/chart.png", s.handleChartPNG)
	mux.HandleFunc("/healthz", s.handleHealth)

	s.srv = &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	return s
}

// Handler exposes the route table, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Start blocks serving HTTP until Shutdown or a listener error.
func (s *Server) Start() error {
	slog.Info("HTTP server listening", slog.String("addr", s.cfg.Addr))
	return s.srv.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	fmt.Fprint(w, indexHTML)
}

// handleSeries returns the full chart snapshot, the polling fallback for
// clients without a live socket.
func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.feed.Snapshot())
}

type symbolReq struct {
	Symbol string `json:"symbol"`
}

func (s *Server) handleSymbol(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<10)
	defer r.Body.Close()

	var req symbolReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	symbol := s.feed.SetSymbol(req.Symbol)
	writeJSON(w, map[string]any{"symbol": symbol})
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if q := r.URL.Query().Get("limit"); q != "" {
		if v, err := strconv.Atoi(q); err == nil && v > 0 && v <= 50 {
			limit = v
		}
	}

	symbols := []domain.WatchedSymbol{}
	if s.store != nil {
		rows, err := s.store.RecentSymbols(limit)
		if err != nil {
			slog.Warn("Recent symbols lookup failed", slog.Any("error", err))
		} else if rows != nil {
			symbols = rows
		}
	}

	writeJSON(w, map[string]any{
		"count":   len(symbols),
		"symbols": symbols,
	})
}

// handleChartPNG renders the current chart server-side, backing the Save
// button on the dashboard.
func (s *Server) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	width, height := 1000, 500
	if q := r.URL.Query().Get("width"); q != "" {
		if v, err := strconv.Atoi(q); err == nil && v >= 200 && v <= 4000 {
			width = v
		}
	}
	if q := r.URL.Query().Get("height"); q != "" {
		if v, err := strconv.Atoi(q); err == nil && v >= 200 && v <= 2000 {
			height = v
		}
	}

	snap := s.feed.Snapshot()

	var buf bytes.Buffer
	if err := RenderPNG(&buf, snap, width, height); err != nil {
		slog.Error("Chart render failed", slog.Any("error", err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	name := snap.Symbol
	if name == "" {
		name = "chart"
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Disposition", `attachment; filename="iex_`+name+`.png"`)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	length, capacity := s.feed.Fill()

	writeJSON(w, map[string]any{
		"ok":      true,
		"app":     s.cfg.AppName,
		"version": s.cfg.Version,
		"symbol":  s.feed.Symbol(),
		"window": map[string]int{
			"len":      length,
			"capacity": capacity,
		},
		"metrics": infra.GlobalMetrics.Snapshot(),
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	enc := json.NewEncoder(w)
	_ = enc.Encode(v)
}
