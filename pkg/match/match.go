// Package match implements the host-authoritative round protocol played by
// two peers.
//
// Each peer runs one Match. All state lives on the goroutine started by Run:
// public methods and timer callbacks only post commands to its inbox, and
// handle applies them one at a time. The host generates racks, owns the round
// timers and resolves rounds; the other side mirrors what it is told and
// submits its own words.
package match

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"wordduel/pkg/lexicon"
	"wordduel/pkg/protocol"
	"wordduel/pkg/tiles"
)

var (
	ErrNotPlaying       = errors.New("no round in progress")
	ErrAlreadySubmitted = errors.New("already submitted this round")
)

const inboxSize = 256

// Transport carries encoded messages to the peer. Send is fire and forget.
type Transport interface {
	Send([]byte) error
	Close() error
}

// RackGenerator produces the rack and bonus layout of a round.
type RackGenerator interface {
	Generate(letterCount int) (tiles.Rack, []tiles.BonusTile)
}

type Option func(*Match)

func WithScheduler(s Scheduler) Option {
	return func(m *Match) { m.sched = s }
}

func WithHandler(h Handler) Option {
	return func(m *Match) { m.notify = h }
}

func WithLogger(l zerolog.Logger) Option {
	return func(m *Match) { m.log = l }
}

// WithGenerator replaces the default frand-backed rack generator.
func WithGenerator(g RackGenerator) Option {
	return func(m *Match) { m.gen = g }
}

func WithID(id uuid.UUID) Option {
	return func(m *Match) { m.ID = id }
}

type Match struct {
	ID uuid.UUID

	inbox    chan any
	quit     chan struct{}
	stopOnce sync.Once

	cfg    Config
	lex    *lexicon.Lexicon
	scorer *tiles.Scorer
	gen    RackGenerator
	conn   Transport
	sched  Scheduler
	notify Handler
	log    zerolog.Logger

	state State
	// resolved guards the current round against a second resolution.
	resolved     bool
	roundStarted time.Time
	closed       bool

	timers      map[timerKind]*pendingTimer
	nextTimerID uint64
}

// New creates an idle match. The lexicon and scorer are shared and read
// only.
func New(cfg Config, lex *lexicon.Lexicon, scorer *tiles.Scorer, conn Transport, opts ...Option) *Match {
	m := &Match{
		ID:     uuid.New(),
		inbox:  make(chan any, inboxSize),
		quit:   make(chan struct{}),
		cfg:    cfg,
		lex:    lex,
		scorer: scorer,
		conn:   conn,
		sched:  SystemScheduler(),
		log:    log.Logger,
		timers: make(map[timerKind]*pendingTimer),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.gen == nil {
		m.gen = tiles.NewGenerator(nil, cfg.BonusCount)
	}
	m.log = m.log.With().Str("match", m.ID.String()).Logger()
	m.state.TotalRounds = cfg.TotalRounds
	return m
}

// Commands posted to the inbox.
type (
	findCmd      struct{}
	connectedCmd struct{ local, remote Peer }
	draftCmd     struct{ word string }
	submitCmd    struct {
		word string
		pass bool
	}
	receiveCmd  struct{ data []byte }
	peerGoneCmd struct{}
	rematchCmd  struct{}
	timerFired  struct {
		kind timerKind
		id   uint64
	}
	snapshotCmd struct{ reply chan State }
)

// Run processes commands until Stop is called.
func (m *Match) Run() {
	for {
		select {
		case <-m.quit:
			m.cancelAll()
			return
		case cmd := <-m.inbox:
			m.handle(cmd)
		}
	}
}

func (m *Match) Stop() {
	m.stopOnce.Do(func() {
		close(m.quit)
	})
}

func (m *Match) post(cmd any) {
	select {
	case m.inbox <- cmd:
	case <-m.quit:
	}
}

// Find marks the local side as looking for a peer.
func (m *Match) Find() {
	m.post(findCmd{})
}

// Connected starts the match once the transport has linked local and remote.
func (m *Match) Connected(local, remote Peer) {
	m.post(connectedCmd{local: local, remote: remote})
}

// SetDraft records the word currently being built. The host force-submits it
// when the round deadline passes.
func (m *Match) SetDraft(word string) {
	m.post(draftCmd{word: word})
}

// Submit validates, scores and commits word for the current round. Rejections
// are reported as SubmissionRejected events.
func (m *Match) Submit(word string) {
	m.post(submitCmd{word: word})
}

// Pass commits an empty word scoring 0.
func (m *Match) Pass() {
	m.post(submitCmd{pass: true})
}

// Receive hands a message from the transport to the match.
func (m *Match) Receive(b []byte) {
	m.post(receiveCmd{data: append([]byte(nil), b...)})
}

// PeerGone reports that the transport lost the peer.
func (m *Match) PeerGone() {
	m.post(peerGoneCmd{})
}

func (m *Match) RequestRematch() {
	m.post(rematchCmd{})
}

// Snapshot returns a copy of the current state. Run must be active.
func (m *Match) Snapshot() State {
	reply := make(chan State, 1)
	m.post(snapshotCmd{reply: reply})
	select {
	case s := <-reply:
		return s
	case <-m.quit:
		return State{}
	}
}

func (m *Match) handle(cmd any) {
	if c, ok := cmd.(snapshotCmd); ok {
		c.reply <- m.state.clone()
		return
	}
	if m.closed {
		m.log.Debug().Type("cmd", cmd).Msg("session closed, ignoring")
		return
	}

	switch c := cmd.(type) {
	case findCmd:
		if m.state.Phase == PhaseIdle {
			m.state.Phase = PhaseFinding
		}
	case connectedCmd:
		m.onConnected(c.local, c.remote)
	case draftCmd:
		if m.state.Phase == PhasePlaying && m.state.Mine == nil {
			m.state.Draft = c.word
		}
	case submitCmd:
		m.onLocalSubmit(c.word, c.pass)
	case receiveCmd:
		m.onMessage(c.data)
	case peerGoneCmd:
		m.onPeerGone()
	case rematchCmd:
		m.onLocalRematch()
	case timerFired:
		m.onTimer(c)
	default:
		m.log.Error().Type("cmd", cmd).Msg("unknown command")
	}
}

func (m *Match) onConnected(local, remote Peer) {
	if m.state.Phase != PhaseIdle && m.state.Phase != PhaseFinding {
		m.log.Warn().Str("phase", m.state.Phase.String()).Msg("already connected")
		return
	}

	m.state.Local = local
	m.state.Remote = remote
	m.state.IsHost = IsHost(local.ID, remote.ID)
	m.state.Phase = PhaseMatched
	m.log = m.log.With().Bool("host", m.state.IsHost).Str("peer", remote.ID.String()).Logger()
	if local.ID == remote.ID {
		m.log.Error().Msg("peers share an identifier, no host elected")
	}
	m.log.Info().Str("remote", remote.Name).Msg("match found")
	m.emit(MatchFound{Remote: remote, IsHost: m.state.IsHost})

	m.state.Phase = PhaseCountdown
	m.emit(CountdownStarted{Duration: m.cfg.Countdown})
	if m.state.IsHost {
		m.schedule(timerCountdown, m.cfg.Countdown)
	}
}

func (m *Match) onPeerGone() {
	switch {
	case m.state.Phase.inMatch():
		m.log.Info().Str("phase", m.state.Phase.String()).Msg("peer gone, winning by forfeit")
		m.endMatch(true)
	default:
		m.log.Info().Str("phase", m.state.Phase.String()).Msg("peer gone")
		m.close()
	}
}

func (m *Match) onTimer(c timerFired) {
	p := m.timers[c.kind]
	if p == nil || p.id != c.id {
		m.log.Debug().Stringer("timer", c.kind).Msg("stale timer")
		return
	}
	delete(m.timers, c.kind)

	switch c.kind {
	case timerCountdown, timerRematch:
		m.startRound(1)
	case timerNextRound:
		m.startRound(m.state.CurrentRound + 1)
	case timerDeadline:
		m.onDeadline()
	case timerGrace:
		m.log.Info().Msg("no rematch, closing session")
		m.close()
	}
}

func (m *Match) schedule(kind timerKind, d time.Duration) {
	m.cancel(kind)
	m.nextTimerID++
	id := m.nextTimerID
	t := m.sched.AfterFunc(d, func() {
		m.post(timerFired{kind: kind, id: id})
	})
	m.timers[kind] = &pendingTimer{id: id, timer: t}
}

func (m *Match) cancel(kind timerKind) {
	if p := m.timers[kind]; p != nil {
		p.timer.Stop()
		delete(m.timers, kind)
	}
}

func (m *Match) cancelAll() {
	for kind := range m.timers {
		m.cancel(kind)
	}
}

// close tears the session down. Nothing mutates the state afterwards.
func (m *Match) close() {
	m.cancelAll()
	m.closed = true
	if err := m.conn.Close(); err != nil {
		m.log.Debug().Err(err).Msg("close transport")
	}
	m.emit(SessionClosed{})
}

func (m *Match) emit(ev Event) {
	if m.notify != nil {
		m.notify(ev)
	}
}

func (m *Match) send(t string, payload any) {
	b, err := protocol.Encode(t, m.state.Epoch, payload)
	if err != nil {
		m.log.Error().Err(err).Str("type", t).Msg("encode message")
		return
	}
	if err := m.conn.Send(b); err != nil {
		m.log.Warn().Err(err).Str("type", t).Msg("send failed")
	}
}
