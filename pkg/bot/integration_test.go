package bot

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordduel/pkg/lexicon"
	"wordduel/pkg/match"
	"wordduel/pkg/tiles"
	"wordduel/pkg/transport"
)

type player struct {
	m      *match.Match
	ended  chan match.MatchEnded
	closed chan struct{}
}

func newPlayer(t *testing.T, cfg match.Config, lex *lexicon.Lexicon, end *transport.PipeEnd, skill float64) *player {
	t.Helper()
	nop := zerolog.Nop()
	p := &player{
		ended:  make(chan match.MatchEnded, 4),
		closed: make(chan struct{}),
	}
	b := New(lex, tiles.NewScorer(nil), cfg.MinWordLength, nil)
	b.DelayScale = 0.01

	var driver *Driver
	p.m = match.New(cfg, lex, tiles.NewScorer(nil), end,
		match.WithLogger(nop),
		match.WithHandler(func(ev match.Event) {
			driver.Handle(ev)
			switch e := ev.(type) {
			case match.MatchEnded:
				p.ended <- e
			case match.SessionClosed:
				close(p.closed)
			}
		}),
	)
	driver = NewDriver(b, skill, p.m, nil).WithLogger(nop)

	end.OnReceive(p.m.Receive)
	end.OnClose(p.m.PeerGone)
	go p.m.Run()
	t.Cleanup(p.m.Stop)
	return p
}

func TestBotsPlayMatchOverPipe(t *testing.T) {
	if testing.Short() {
		t.Skip("plays a real-time match")
	}
	nop := zerolog.Nop()
	lex := lexicon.Load(lexicon.Options{Tier: lexicon.TierAdult, Logger: &nop})
	cfg := match.DefaultConfig(lexicon.TierAdult).Scaled(0.01)
	require.NoError(t, cfg.Validate())

	a, b := transport.NewPipe()
	host := newPlayer(t, cfg, lex, a, 1)
	guest := newPlayer(t, cfg, lex, b, 0.3)

	hostPeer := match.Peer{ID: uuid.MustParse("00000000-0000-0000-0000-00000000000a"), Name: "ada"}
	guestPeer := match.Peer{ID: uuid.MustParse("00000000-0000-0000-0000-00000000000b"), Name: "bob"}
	host.m.Connected(hostPeer, guestPeer)
	guest.m.Connected(guestPeer, hostPeer)

	wait := func(ch chan match.MatchEnded) match.MatchEnded {
		select {
		case e := <-ch:
			return e
		case <-time.After(10 * time.Second):
			t.Fatal("match did not end")
		}
		return match.MatchEnded{}
	}
	hostEnd := wait(host.ended)
	guestEnd := wait(guest.ended)

	assert.False(t, hostEnd.Forfeit)
	assert.Len(t, hostEnd.History, cfg.TotalRounds)
	assert.Equal(t, hostEnd.MyTotal, guestEnd.OppTotal)
	assert.Equal(t, hostEnd.OppTotal, guestEnd.MyTotal)
	assert.Equal(t, hostEnd.Outcome, guestEnd.Outcome.Invert())
	assert.Positive(t, hostEnd.MyTotal)

	for _, p := range []*player{host, guest} {
		select {
		case <-p.closed:
		case <-time.After(10 * time.Second):
			t.Fatal("session not closed after grace")
		}
	}
}
