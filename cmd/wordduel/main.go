package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"wordduel/internal/config"
	"wordduel/internal/httpapi"
	"wordduel/pkg/daily"
	"wordduel/pkg/history"
	"wordduel/pkg/lexicon"
	"wordduel/pkg/match"
	"wordduel/pkg/tiles"
	"wordduel/pkg/transport"
)

var (
	mode      = flag.String("mode", "sim", "sim, host or join")
	numGames  = flag.Int("n", 10, "Number of matches to simulate")
	peerURL   = flag.String("peer", "", "Websocket URL to join (defaults to WORDDUEL_PEER_URL)")
	useDaily  = flag.Bool("daily", false, "Draw racks from today's daily seed")
	skill     = flag.Float64("skill", -1, "Bot skill in [0,1] (defaults to WORDDUEL_BOT_SKILL)")
	fast      = flag.Float64("fast", 0, "Time scale; 0 means 0.01 in sim mode and 1 otherwise")
	rematches = flag.Int("rematches", 0, "Rematches to request after each match in host and join mode")
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	if *skill >= 0 {
		cfg.BotSkill = min(*skill, 1)
	}
	scale := *fast
	if scale <= 0 {
		scale = 1
		if *mode == "sim" {
			scale = 0.01
		}
	}

	mc := cfg.Match()
	if scale != 1 {
		mc = mc.Scaled(scale)
	}
	if err := mc.Validate(); err != nil {
		log.Fatal().Err(err).Msg("match config")
	}

	env := &env{
		cfg:    cfg,
		match:  mc,
		lex:    lexicon.Load(cfg.Lexicon(nil)),
		scorer: tiles.NewScorer(nil),
		scale:  scale,
	}
	if *useDaily {
		env.newGenerator = func() match.RackGenerator {
			return tiles.NewGenerator(daily.Source(time.Now(), cfg.DailySalt), mc.BonusCount)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "sim":
		runSim(ctx, env, *numGames)
	case "host":
		err = runHost(ctx, env)
	case "join":
		url := cfg.PeerURL
		if *peerURL != "" {
			url = *peerURL
		}
		err = runJoin(ctx, env, url)
	default:
		log.Fatal().Str("mode", *mode).Msg("unknown mode")
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("exited")
	}
}

// env holds what every session shares.
type env struct {
	cfg    config.Config
	match  match.Config
	lex    *lexicon.Lexicon
	scorer *tiles.Scorer
	scale  float64
	hist   *history.Store
	// newGenerator is nil unless racks come from a fixed seed.
	newGenerator func() match.RackGenerator
}

func (e *env) openHistory() {
	if e.cfg.HistoryDSN == "" {
		return
	}
	st, err := history.Open(e.cfg.HistoryDSN)
	if err != nil {
		log.Warn().Err(err).Str("dsn", e.cfg.HistoryDSN).Msg("history disabled")
		return
	}
	e.hist = st
}

func runHost(ctx context.Context, e *env) error {
	e.openHistory()
	if e.hist != nil {
		defer e.hist.Close()
	}

	local := match.NewPeer(e.cfg.Name)
	acc := transport.NewAcceptor(transport.Hello{PeerID: local.ID, Name: local.Name}, &log.Logger)

	opts := httpapi.Options{
		Peer:       acc,
		DailySalt:  e.cfg.DailySalt,
		RackSize:   e.match.RackSize,
		BonusCount: e.match.BonusCount,
	}
	if e.hist != nil {
		opts.History = e.hist
	}
	srv := &http.Server{Addr: e.cfg.Addr, Handler: httpapi.New(opts)}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", e.cfg.Addr).Str("peer", local.ID.String()).Msg("hosting")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		for {
			conn, err := acc.Accept(gctx)
			if err != nil {
				return err
			}
			playSession(gctx, e, local, conn)
		}
	})
	return g.Wait()
}

func runJoin(ctx context.Context, e *env, url string) error {
	e.openHistory()
	if e.hist != nil {
		defer e.hist.Close()
	}

	local := match.NewPeer(e.cfg.Name)
	dialCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	conn, err := transport.Dial(dialCtx, url, transport.Hello{PeerID: local.ID, Name: local.Name}, &log.Logger)
	if err != nil {
		return err
	}
	playSession(ctx, e, local, conn)
	return nil
}
