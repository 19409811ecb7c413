// Package api exposes a read-only REST surface over book depth, the trade
// tape, and replay progress, adapted from the teacher's own api package:
// Go 1.22+ method-pattern routing, writeJSON/writeError helpers, and a
// resolve-or-404 lookup pattern.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/ndrandal-quant/itchbook/internal/orderbook"
	"github.com/ndrandal-quant/itchbook/internal/persist"
)

// Server holds everything handlers need to answer a query.
type Server struct {
	books   map[string]*orderbook.Book // keyed by ticker
	store   *persist.Store             // nil when persistence is disabled
	started time.Time
}

// New constructs a Server. store may be nil if persistence wasn't
// configured; trade-tape endpoints then answer 503.
func New(books map[string]*orderbook.Book, store *persist.Store) *Server {
	return &Server{books: books, store: store, started: time.Now()}
}

// Register wires every route onto mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/books/{ticker}", s.handleBookDepth)
	mux.HandleFunc("GET /api/trades", s.handleTrades)
	mux.HandleFunc("GET /api/replay/status", s.handleReplayStatus)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) resolveTicker(w http.ResponseWriter, r *http.Request) (*orderbook.Book, bool) {
	ticker := r.PathValue("ticker")
	book, ok := s.books[ticker]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown ticker "+ticker)
		return nil, false
	}
	return book, true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"uptime_ms": time.Since(s.started).Milliseconds(),
	})
}

type levelDTO struct {
	Price  float64 `json:"price"`
	Volume uint32  `json:"volume"`
}

func (s *Server) handleBookDepth(w http.ResponseWriter, r *http.Request) {
	book, ok := s.resolveTicker(w, r)
	if !ok {
		return
	}
	n := parseIntParam(r, "depth", 10)

	toDTO := func(levels []orderbook.Level) []levelDTO {
		out := make([]levelDTO, len(levels))
		for i, l := range levels {
			out[i] = levelDTO{Price: float64(l.Price) / 10000, Volume: l.Volume}
		}
		return out
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"stock": book.Stock,
		"bids":  toDTO(book.Depth(orderbook.Buy, n)),
		"asks":  toDTO(book.Depth(orderbook.Sell, n)),
	})
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "persistence not configured")
		return
	}
	f := persist.TradeFilter{
		Stock: r.URL.Query().Get("ticker"),
		Limit: int64(parseIntParam(r, "limit", 100)),
	}
	if since := parseTimeParam(r, "since"); !since.IsZero() {
		f.Since = since
	}
	trades, err := s.store.Trades(r.Context(), f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, trades)
}

func (s *Server) handleReplayStatus(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "persistence not configured")
		return
	}
	capturePath := r.URL.Query().Get("capture")
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	state, found, err := s.store.LoadReplayState(ctx, capturePath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "no replay state for "+capturePath)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func parseIntParam(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func parseTimeParam(r *http.Request, name string) time.Time {
	v := r.URL.Query().Get(name)
	if v == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}
	}
	return t
}
