package match

import (
	"wordduel/pkg/protocol"
	"wordduel/pkg/tiles"
)

func (m *Match) onLocalRematch() {
	if m.state.Phase != PhaseMatchEnded {
		m.log.Debug().Str("phase", m.state.Phase.String()).Msg("rematch outside match end")
		return
	}
	if m.state.RematchByMe {
		return
	}
	m.state.RematchByMe = true
	m.send(protocol.MsgRematchRequest, protocol.RematchRequest{})
	m.maybeRematch()
}

// onRematchRequest records the peer's request. A request that overtakes the
// final round result is kept until the match ends locally.
func (m *Match) onRematchRequest() {
	if m.state.RematchByOpp {
		return
	}
	m.state.RematchByOpp = true
	m.emit(RematchRequested{})
	m.maybeRematch()
}

func (m *Match) maybeRematch() {
	if m.state.Phase == PhaseMatchEnded && m.state.RematchByMe && m.state.RematchByOpp {
		m.reset()
	}
}

// reset starts the next epoch with a blank score sheet. The host schedules
// round 1; the other side waits for its RoundStart until EndGrace runs out.
func (m *Match) reset() {
	m.cancelAll()
	m.state.Epoch++
	m.state.Phase = PhaseMatched
	m.state.CurrentRound = 0
	m.state.TotalRounds = m.cfg.TotalRounds
	m.state.Rack = tiles.Rack{}
	m.state.Bonuses = nil
	m.state.Draft = ""
	m.state.Mine = nil
	m.state.Opp = nil
	m.state.MyTotal = 0
	m.state.OppTotal = 0
	m.state.History = nil
	m.state.RematchByMe = false
	m.state.RematchByOpp = false
	m.resolved = false

	m.log.Info().Int("epoch", m.state.Epoch).Msg("rematch")
	m.emit(RematchStarted{Epoch: m.state.Epoch})

	if m.state.IsHost {
		m.schedule(timerRematch, m.cfg.RematchDelay)
	} else {
		m.schedule(timerGrace, m.cfg.EndGrace)
	}
}
