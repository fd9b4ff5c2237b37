// Package httpapi serves the host side of a duel: the websocket endpoint the
// joining peer dials, plus read-only JSON views of past matches and of the
// daily rack.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"wordduel/pkg/daily"
	"wordduel/pkg/history"
	"wordduel/pkg/match"
	"wordduel/pkg/tiles"
)

// HistoryReader is the part of history.Store the API reads from.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]history.Result, error)
	Tally(ctx context.Context) (map[string]int, error)
}

type Options struct {
	// Peer handles /ws. Usually a *transport.Acceptor.
	Peer    http.Handler
	History HistoryReader

	DailySalt  string
	RackSize   int
	BonusCount int

	// Now defaults to time.Now.
	Now func() time.Time
}

type Server struct {
	r    *chi.Mux
	opts Options
}

func New(opts Options) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Server{r: chi.NewRouter(), opts: opts}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)

	if opts.Peer != nil {
		s.r.Handle("/ws", opts.Peer)
	}

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second))
		r.Use(jsonContentType)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		r.Get("/daily", s.handleDaily)
		r.Route("/history", func(r chi.Router) {
			r.Get("/", s.handleRecent)
			r.Get("/tally", s.handleTally)
		})
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "not_found", "path": r.URL.Path})
		})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.r.ServeHTTP(w, r)
}

func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

type dailyRes struct {
	Date    string     `json:"date"`
	Rack    []string   `json:"rack"`
	Bonuses []bonusRes `json:"bonuses"`
}

type bonusRes struct {
	Index int    `json:"index"`
	Kind  string `json:"kind"`
}

// handleDaily returns the first rack of today's daily challenge.
func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	if s.opts.RackSize < 1 {
		http.Error(w, `{"error":"daily_disabled"}`, http.StatusServiceUnavailable)
		return
	}
	now := s.opts.Now()
	gen := tiles.NewGenerator(daily.Source(now, s.opts.DailySalt), s.opts.BonusCount)
	rack, bonuses := gen.Generate(s.opts.RackSize)

	res := dailyRes{Date: daily.DateKey(now), Rack: rack.Strings(), Bonuses: []bonusRes{}}
	for _, b := range bonuses {
		res.Bonuses = append(res.Bonuses, bonusRes{Index: b.Index, Kind: b.Kind.String()})
	}
	_ = json.NewEncoder(w).Encode(res)
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	if s.opts.History == nil {
		http.Error(w, `{"error":"history_disabled"}`, http.StatusServiceUnavailable)
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 200 {
			http.Error(w, `{"error":"bad_limit"}`, http.StatusBadRequest)
			return
		}
		limit = n
	}
	results, err := s.opts.History.Recent(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("load history")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	if results == nil {
		results = []history.Result{}
	}
	_ = json.NewEncoder(w).Encode(results)
}

func (s *Server) handleTally(w http.ResponseWriter, r *http.Request) {
	if s.opts.History == nil {
		http.Error(w, `{"error":"history_disabled"}`, http.StatusServiceUnavailable)
		return
	}
	tally, err := s.opts.History.Tally(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("load tally")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]int{
		"wins":   tally[string(match.OutcomeYou)],
		"losses": tally[string(match.OutcomeOpp)],
		"ties":   tally[string(match.OutcomeTie)],
	})
}
