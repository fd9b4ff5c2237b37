package match

import (
	"strings"
	"time"

	"wordduel/pkg/protocol"
	"wordduel/pkg/tiles"
)

// onMessage decodes and applies a peer message. Anything malformed, stale or
// unexpected in the current phase is dropped without touching the state.
func (m *Match) onMessage(data []byte) {
	env, err := protocol.DecodeEnvelope(data)
	if err != nil {
		m.log.Debug().Err(err).Msg("dropping malformed message")
		return
	}
	if m.state.Phase < PhaseMatched {
		m.log.Debug().Str("type", env.T).Msg("dropping message before match")
		return
	}

	if env.E != m.state.Epoch {
		if m.acceptsRematchStart(env) {
			m.log.Debug().Int("epoch", env.E).Msg("round start acknowledges rematch")
			m.reset()
		} else {
			m.log.Debug().Str("type", env.T).Int("epoch", env.E).Int("current", m.state.Epoch).Msg("dropping message from other epoch")
			return
		}
	}

	switch env.T {
	case protocol.MsgRoundStart:
		rs, err := protocol.DecodePayload[protocol.RoundStart](env)
		if err != nil {
			m.log.Debug().Err(err).Msg("dropping bad round start")
			return
		}
		m.onRoundStart(rs)
	case protocol.MsgSubmission:
		sub, err := protocol.DecodePayload[protocol.Submission](env)
		if err != nil {
			m.log.Debug().Err(err).Msg("dropping bad submission")
			return
		}
		m.onSubmission(sub)
	case protocol.MsgRoundResult:
		res, err := protocol.DecodePayload[protocol.RoundResult](env)
		if err != nil {
			m.log.Debug().Err(err).Msg("dropping bad round result")
			return
		}
		m.onRoundResult(res)
	case protocol.MsgMatchResult:
		res, err := protocol.DecodePayload[protocol.MatchResult](env)
		if err != nil {
			m.log.Debug().Err(err).Msg("dropping bad match result")
			return
		}
		m.onMatchResult(res)
	case protocol.MsgRematchRequest:
		m.onRematchRequest()
	default:
		m.log.Debug().Str("type", env.T).Msg("dropping unknown message type")
	}
}

// acceptsRematchStart reports whether env is the first round of the next
// epoch arriving before the host's RematchRequest.
func (m *Match) acceptsRematchStart(env protocol.Envelope) bool {
	if env.T != protocol.MsgRoundStart || env.E != m.state.Epoch+1 {
		return false
	}
	if m.state.IsHost || m.state.Phase != PhaseMatchEnded || !m.state.RematchByMe {
		return false
	}
	rs, err := protocol.DecodePayload[protocol.RoundStart](env)
	return err == nil && rs.RoundNumber == 1
}

func (m *Match) onRoundStart(rs protocol.RoundStart) {
	round := int(rs.RoundNumber)
	switch {
	case m.state.IsHost:
		m.log.Debug().Msg("host ignoring round start")
		return
	case m.state.Phase == PhaseMatchEnded:
		m.log.Debug().Int("round", round).Msg("round start after match end")
		return
	case round <= m.state.CurrentRound:
		m.log.Debug().Int("round", round).Int("current", m.state.CurrentRound).Msg("dropping stale round start")
		return
	}

	rack, err := tiles.ParseRack(rs.Rack)
	if err != nil {
		m.log.Debug().Err(err).Msg("dropping round start with bad rack")
		return
	}
	bonuses, err := fromWireBonuses(rs.Bonuses, rack.Len())
	if err != nil {
		m.log.Debug().Err(err).Msg("dropping round start with bad bonuses")
		return
	}

	m.cancelAll()
	now := m.sched.Now()
	deadline := time.UnixMilli(int64(rs.Deadline))
	m.enterRound(round, rack, bonuses, deadline, now)

	lead := deadline.Sub(now) - m.cfg.SubmitLead
	if lead < 0 {
		lead = 0
	}
	m.schedule(timerDeadline, lead)
	m.emitRoundStarted()
}

func (m *Match) onSubmission(s protocol.Submission) {
	round := int(s.RoundNumber)
	switch {
	case m.state.Phase != PhasePlaying || m.resolved:
		m.log.Debug().Int("round", round).Str("phase", m.state.Phase.String()).Msg("dropping submission outside play")
		return
	case round != m.state.CurrentRound:
		m.log.Debug().Int("round", round).Int("current", m.state.CurrentRound).Msg("dropping submission for other round")
		return
	case m.state.Opp != nil:
		m.log.Debug().Int("round", round).Msg("dropping duplicate submission")
		return
	}

	word := strings.ToUpper(strings.TrimSpace(s.Word))
	score := int(s.Score)
	if m.state.IsHost && m.cfg.VerifyScores {
		score = m.verifiedScore(word)
		if score != int(s.Score) {
			m.log.Warn().Str("word", word).Uint("claimed", s.Score).Int("score", score).Msg("peer score corrected")
		}
	}

	m.state.Opp = &Submission{
		Word:  word,
		Score: score,
		At:    m.sched.Now().Sub(m.roundStarted),
	}
	m.emit(OpponentSubmitted{Round: round})

	if m.state.IsHost && m.state.Mine != nil {
		m.resolve()
	}
}

// verifiedScore recomputes a peer's score. Words that do not validate score 0.
func (m *Match) verifiedScore(word string) int {
	if word == "" {
		return 0
	}
	if err := m.lex.Validate(word, m.state.Rack, m.cfg.MinWordLength); err != nil {
		return 0
	}
	return m.scorer.Calculate(word, m.state.Rack, m.state.Bonuses)
}

// onRoundResult mirrors the host's resolution of the current round.
func (m *Match) onRoundResult(r protocol.RoundResult) {
	round := int(r.RoundNumber)
	switch {
	case m.state.IsHost:
		m.log.Debug().Msg("host ignoring round result")
		return
	case m.state.Phase != PhasePlaying || m.resolved:
		m.log.Debug().Int("round", round).Str("phase", m.state.Phase.String()).Msg("dropping round result outside play")
		return
	case round != m.state.CurrentRound:
		m.log.Debug().Int("round", round).Int("current", m.state.CurrentRound).Msg("dropping stale round result")
		return
	}
	winner, err := ParseOutcome(r.Winner)
	if err != nil {
		m.log.Debug().Err(err).Msg("dropping round result")
		return
	}

	m.resolved = true
	m.cancel(timerDeadline)
	if m.state.Opp == nil {
		// The host's submission was lost or is still behind this result.
		m.state.Opp = &Submission{Word: r.OppWord, Score: int(r.OppScore)}
		m.emit(OpponentSubmitted{Round: round})
	}
	rec := RoundRecord{
		Round:     round,
		YourWord:  r.YourWord,
		YourScore: int(r.YourScore),
		OppWord:   r.OppWord,
		OppScore:  int(r.OppScore),
		Winner:    winner,
	}
	m.state.History = append(m.state.History, rec)
	m.state.MyTotal = int(r.YourTotalScore)
	m.state.OppTotal = int(r.OppTotalScore)
	if r.TotalRounds > 0 {
		m.state.TotalRounds = int(r.TotalRounds)
	}
	m.state.Phase = PhaseRoundEnded
	m.log.Info().Int("round", round).Str("winner", string(winner)).Msg("round result")
	m.emit(RoundEnded{Record: rec, MyTotal: m.state.MyTotal, OppTotal: m.state.OppTotal})

	if m.state.CurrentRound >= m.state.TotalRounds {
		m.endMatch(false)
	}
}

// onMatchResult ends the match on a non-host whose final round result is
// late or lost. It is a no-op once the match has ended.
func (m *Match) onMatchResult(r protocol.MatchResult) {
	if m.state.IsHost || !m.state.Phase.inMatch() {
		return
	}
	if r.Final != nil {
		m.onRoundResult(*r.Final)
		if !m.state.Phase.inMatch() {
			return
		}
	}
	m.state.MyTotal = int(r.YourTotalScore)
	m.state.OppTotal = int(r.OppTotalScore)
	if r.TotalRounds > 0 {
		m.state.TotalRounds = int(r.TotalRounds)
	}
	m.endMatch(false)
}
