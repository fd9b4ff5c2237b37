package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"wordduel/pkg/bot"
	"wordduel/pkg/history"
	"wordduel/pkg/match"
	"wordduel/pkg/transport"
)

// playSession lets the local bot play over conn until the session closes or
// ctx is done.
func playSession(ctx context.Context, e *env, local match.Peer, conn *transport.Conn) {
	remote := match.Peer{ID: conn.Remote.PeerID, Name: conn.Remote.Name}
	logger := log.Logger.With().Str("remote", remote.Name).Logger()

	b := bot.New(e.lex, e.scorer, e.match.MinWordLength, nil)
	b.DelayScale = e.scale

	done := make(chan struct{})
	left := *rematches
	var (
		m      *match.Match
		driver *bot.Driver
	)
	opts := []match.Option{
		match.WithLogger(logger),
		match.WithHandler(func(ev match.Event) {
			driver.Handle(ev)
			switch ev := ev.(type) {
			case match.RoundEnded:
				logger.Info().
					Int("round", ev.Record.Round).
					Str("mine", ev.Record.YourWord).
					Str("theirs", ev.Record.OppWord).
					Int("my_total", ev.MyTotal).
					Int("opp_total", ev.OppTotal).
					Msg("round ended")
			case match.MatchEnded:
				logger.Info().
					Str("outcome", string(ev.Outcome)).
					Int("my_total", ev.MyTotal).
					Int("opp_total", ev.OppTotal).
					Bool("forfeit", ev.Forfeit).
					Msg("match ended")
				e.record(m.ID, local, remote, ev)
				if !ev.Forfeit && left > 0 {
					left--
					m.RequestRematch()
				}
			case match.SessionClosed:
				close(done)
			}
		}),
	}
	if e.newGenerator != nil {
		opts = append(opts, match.WithGenerator(e.newGenerator()))
	}
	m = match.New(e.match, e.lex, e.scorer, conn, opts...)
	driver = bot.NewDriver(b, e.cfg.BotSkill, m, nil).WithLogger(logger)

	go m.Run()
	defer m.Stop()
	go conn.Run(m.Receive, m.PeerGone)
	m.Connected(local, remote)

	select {
	case <-done:
	case <-ctx.Done():
		_ = conn.Close()
	}
}

// record stores a finished match. Failures are logged and otherwise ignored.
func (e *env) record(id uuid.UUID, local, remote match.Peer, ev match.MatchEnded) {
	if e.hist == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := e.hist.Record(ctx, history.FromMatch(id, local, remote, ev, time.Now().UTC())); err != nil {
		log.Warn().Err(err).Str("match", id.String()).Msg("record match")
	}
}
