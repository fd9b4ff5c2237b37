package match

import (
	"strings"
	"time"

	"golang.org/x/exp/slices"

	"wordduel/pkg/protocol"
	"wordduel/pkg/tiles"
)

// startRound begins round n on the host: new rack, new deadline, RoundStart
// to the peer.
func (m *Match) startRound(n int) {
	if !m.state.IsHost {
		return
	}
	m.cancelAll()

	now := m.sched.Now()
	rack, bonuses := m.gen.Generate(m.cfg.RackSize)
	m.enterRound(n, rack, bonuses, now.Add(m.cfg.RoundDuration), now)

	m.send(protocol.MsgRoundStart, protocol.RoundStart{
		RoundNumber: uint(n),
		Rack:        rack.Strings(),
		Bonuses:     toWireBonuses(bonuses),
		Deadline:    uint64(m.state.Deadline.UnixMilli()),
	})
	m.schedule(timerDeadline, m.cfg.RoundDuration)
	m.emitRoundStarted()
}

func (m *Match) enterRound(n int, rack tiles.Rack, bonuses []tiles.BonusTile, deadline, now time.Time) {
	m.state.Phase = PhasePlaying
	m.state.CurrentRound = n
	m.state.Rack = rack
	m.state.Bonuses = bonuses
	m.state.Deadline = deadline
	m.state.Draft = ""
	m.state.Mine = nil
	m.state.Opp = nil
	m.resolved = false
	m.roundStarted = now
	m.log.Debug().Int("round", n).Str("rack", rack.AsString()).Msg("round started")
}

func (m *Match) emitRoundStarted() {
	m.emit(RoundStarted{
		Round:       m.state.CurrentRound,
		TotalRounds: m.state.TotalRounds,
		Rack:        tiles.Rack{Letters: slices.Clone(m.state.Rack.Letters)},
		Bonuses:     slices.Clone(m.state.Bonuses),
		Deadline:    m.state.Deadline,
	})
}

func (m *Match) onLocalSubmit(word string, pass bool) {
	switch {
	case m.state.Phase != PhasePlaying:
		m.emit(SubmissionRejected{Word: word, Err: ErrNotPlaying})
		return
	case m.state.Mine != nil:
		m.emit(SubmissionRejected{Word: word, Err: ErrAlreadySubmitted})
		return
	}

	if pass {
		m.commitLocal(Submission{}, false)
		return
	}
	word = strings.ToUpper(strings.TrimSpace(word))
	if err := m.lex.Validate(word, m.state.Rack, m.cfg.MinWordLength); err != nil {
		m.log.Debug().Err(err).Str("word", word).Msg("submission rejected")
		m.emit(SubmissionRejected{Word: word, Err: err})
		return
	}
	m.commitLocal(Submission{
		Word:  word,
		Score: m.scorer.Calculate(word, m.state.Rack, m.state.Bonuses),
	}, false)
}

// forceSubmit commits the current draft, or a pass when the draft does not
// validate.
func (m *Match) forceSubmit() {
	word := strings.ToUpper(strings.TrimSpace(m.state.Draft))
	sub := Submission{}
	if word != "" {
		if err := m.lex.Validate(word, m.state.Rack, m.cfg.MinWordLength); err != nil {
			m.log.Debug().Err(err).Str("draft", word).Msg("draft invalid at deadline")
		} else {
			sub = Submission{Word: word, Score: m.scorer.Calculate(word, m.state.Rack, m.state.Bonuses)}
		}
	}
	m.commitLocal(sub, true)
}

func (m *Match) commitLocal(sub Submission, forced bool) {
	sub.At = m.sched.Now().Sub(m.roundStarted)
	m.state.Mine = &sub

	m.send(protocol.MsgSubmission, protocol.Submission{
		RoundNumber: uint(m.state.CurrentRound),
		Word:        sub.Word,
		Score:       uint(sub.Score),
	})
	m.emit(Submitted{Round: m.state.CurrentRound, Submission: sub, Forced: forced})

	if m.state.IsHost && m.state.Opp != nil {
		m.resolve()
	}
}

func (m *Match) onDeadline() {
	if m.state.Phase != PhasePlaying {
		return
	}
	if m.state.Mine == nil {
		m.forceSubmit()
	}
	if m.state.IsHost {
		m.resolve()
	}
}

// resolve settles the current round on the host. Only the first call per
// round has an effect.
func (m *Match) resolve() {
	if m.resolved || m.state.Phase != PhasePlaying {
		return
	}
	m.resolved = true
	m.cancel(timerDeadline)

	var mine, opp Submission
	if m.state.Mine != nil {
		mine = *m.state.Mine
	}
	if m.state.Opp != nil {
		opp = *m.state.Opp
	}

	rec := RoundRecord{
		Round:     m.state.CurrentRound,
		YourWord:  mine.Word,
		YourScore: mine.Score,
		OppWord:   opp.Word,
		OppScore:  opp.Score,
		Winner:    compareScores(mine.Score, opp.Score),
	}
	m.state.MyTotal += mine.Score
	m.state.OppTotal += opp.Score
	m.state.History = append(m.state.History, rec)
	m.state.Phase = PhaseRoundEnded

	peer := rec.Flip()
	result := protocol.RoundResult{
		RoundNumber:    uint(peer.Round),
		TotalRounds:    uint(m.state.TotalRounds),
		YourWord:       peer.YourWord,
		YourScore:      uint(peer.YourScore),
		OppWord:        peer.OppWord,
		OppScore:       uint(peer.OppScore),
		Winner:         string(peer.Winner),
		YourTotalScore: uint(m.state.OppTotal),
		OppTotalScore:  uint(m.state.MyTotal),
	}
	m.send(protocol.MsgRoundResult, result)
	m.log.Info().
		Int("round", rec.Round).
		Str("word", rec.YourWord).Int("score", rec.YourScore).
		Str("oppWord", rec.OppWord).Int("oppScore", rec.OppScore).
		Str("winner", string(rec.Winner)).
		Msg("round resolved")
	m.emit(RoundEnded{Record: rec, MyTotal: m.state.MyTotal, OppTotal: m.state.OppTotal})

	if m.state.CurrentRound >= m.state.TotalRounds {
		m.send(protocol.MsgMatchResult, protocol.MatchResult{
			YourTotalScore: uint(m.state.OppTotal),
			OppTotalScore:  uint(m.state.MyTotal),
			TotalRounds:    uint(m.state.TotalRounds),
			Final:          &result,
		})
		m.endMatch(false)
		return
	}
	m.schedule(timerNextRound, m.cfg.InterRoundDelay)
}

// endMatch moves to MatchEnded. A forfeit always counts as a local win and
// closes the session; a regular end waits EndGrace for a rematch.
func (m *Match) endMatch(forfeit bool) {
	m.cancelAll()
	m.state.Phase = PhaseMatchEnded
	m.state.Mine = nil
	m.state.Opp = nil

	outcome := compareScores(m.state.MyTotal, m.state.OppTotal)
	if forfeit {
		outcome = OutcomeYou
	}
	m.log.Info().
		Str("outcome", string(outcome)).
		Bool("forfeit", forfeit).
		Int("total", m.state.MyTotal).
		Int("oppTotal", m.state.OppTotal).
		Msg("match ended")
	m.emit(MatchEnded{
		Outcome:  outcome,
		Forfeit:  forfeit,
		MyTotal:  m.state.MyTotal,
		OppTotal: m.state.OppTotal,
		History:  slices.Clone(m.state.History),
		Epoch:    m.state.Epoch,
	})

	if forfeit {
		m.close()
		return
	}
	m.schedule(timerGrace, m.cfg.EndGrace)
}

func toWireBonuses(bonuses []tiles.BonusTile) []protocol.Bonus {
	out := make([]protocol.Bonus, len(bonuses))
	for i, b := range bonuses {
		out[i] = protocol.Bonus{Index: uint(b.Index), Kind: b.Kind.String()}
	}
	return out
}

func fromWireBonuses(bonuses []protocol.Bonus, rackSize int) ([]tiles.BonusTile, error) {
	out := make([]tiles.BonusTile, 0, len(bonuses))
	for _, b := range bonuses {
		kind, err := tiles.ParseBonusKind(b.Kind)
		if err != nil {
			return nil, err
		}
		out = append(out, tiles.BonusTile{Index: int(b.Index), Kind: kind})
	}
	if err := tiles.ValidateBonuses(out, rackSize); err != nil {
		return nil, err
	}
	return out, nil
}
