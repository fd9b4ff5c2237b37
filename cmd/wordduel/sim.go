package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"wordduel/pkg/bot"
	"wordduel/pkg/match"
	"wordduel/pkg/transport"
)

// runSim plays n bot-vs-bot matches over an in-process pipe and prints the
// tally from bot A's side. Bot A plays at the configured skill, bot B at
// half of it.
func runSim(ctx context.Context, e *env, n int) {
	start := time.Now()
	var winsA, winsB, played int

	for i := 0; i < n; i++ {
		res, err := simulateMatch(ctx, e)
		if err != nil {
			log.Error().Err(err).Int("match", i+1).Msg("simulation stopped")
			break
		}
		played++
		switch res.Outcome {
		case match.OutcomeYou:
			winsA++
		case match.OutcomeOpp:
			winsB++
		}
	}

	elapsed := time.Since(start)
	fmt.Printf("%v matches were played\nBot A won %v matches, and Bot B won %v matches; %v matches were ties.\n",
		played,
		winsA,
		winsB,
		played-winsA-winsB,
	)
	fmt.Println("Took", elapsed)
}

type simSide struct {
	peer  match.Peer
	m     *match.Match
	ended chan match.MatchEnded
}

func newSimSide(e *env, name string, end *transport.PipeEnd, skill float64) *simSide {
	s := &simSide{
		peer:  match.NewPeer(name),
		ended: make(chan match.MatchEnded, 1),
	}
	logger := log.Logger.With().Str("bot", name).Logger().Level(zerolog.WarnLevel)

	b := bot.New(e.lex, e.scorer, e.match.MinWordLength, nil)
	b.DelayScale = e.scale

	var driver *bot.Driver
	opts := []match.Option{
		match.WithLogger(logger),
		match.WithHandler(func(ev match.Event) {
			driver.Handle(ev)
			if ev, ok := ev.(match.MatchEnded); ok {
				select {
				case s.ended <- ev:
				default:
				}
			}
		}),
	}
	if e.newGenerator != nil {
		opts = append(opts, match.WithGenerator(e.newGenerator()))
	}
	s.m = match.New(e.match, e.lex, e.scorer, end, opts...)
	driver = bot.NewDriver(b, skill, s.m, nil).WithLogger(logger)

	end.OnReceive(s.m.Receive)
	end.OnClose(s.m.PeerGone)
	return s
}

// simulateMatch returns bot A's MatchEnded.
func simulateMatch(ctx context.Context, e *env) (match.MatchEnded, error) {
	endA, endB := transport.NewPipe()
	a := newSimSide(e, "Alphonse", endA, e.cfg.BotSkill)
	b := newSimSide(e, "Sylvestre", endB, e.cfg.BotSkill/2)

	for _, s := range []*simSide{a, b} {
		go s.m.Run()
		defer s.m.Stop()
	}
	a.m.Connected(a.peer, b.peer)
	b.m.Connected(b.peer, a.peer)

	// A whole match plus slack.
	limit := e.match.Countdown +
		time.Duration(e.match.TotalRounds)*(e.match.RoundDuration+e.match.InterRoundDelay) +
		5*time.Second
	timeout := time.NewTimer(limit)
	defer timeout.Stop()

	var res match.MatchEnded
	select {
	case res = <-a.ended:
	case <-timeout.C:
		return res, fmt.Errorf("match did not end within %v", limit)
	case <-ctx.Done():
		return res, ctx.Err()
	}
	_ = endA.Close()
	return res, nil
}
