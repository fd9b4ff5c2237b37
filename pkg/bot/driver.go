package bot

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"wordduel/pkg/match"
)

// Submitter is the side of a match the bot plays for.
type Submitter interface {
	SetDraft(word string)
	Submit(word string)
	Pass()
}

// Driver plays a match on behalf of a bot. Handle must be registered as (or
// called from) the match's event handler; it only schedules and never blocks.
type Driver struct {
	bot    *Bot
	skill  float64
	target Submitter
	sched  match.Scheduler
	log    zerolog.Logger

	pending match.Timer
}

// NewDriver returns a driver submitting to target. A nil scheduler uses the
// wall clock.
func NewDriver(b *Bot, skill float64, target Submitter, sched match.Scheduler) *Driver {
	if sched == nil {
		sched = match.SystemScheduler()
	}
	return &Driver{
		bot:    b,
		skill:  skill,
		target: target,
		sched:  sched,
		log:    log.Logger.With().Str("component", "bot").Logger(),
	}
}

func (d *Driver) WithLogger(l zerolog.Logger) *Driver {
	d.log = l.With().Str("component", "bot").Logger()
	return d
}

func (d *Driver) Handle(ev match.Event) {
	switch e := ev.(type) {
	case match.RoundStarted:
		d.cancel()
		dec := d.bot.Decide(e.Rack, e.Bonuses, d.skill)
		d.log.Debug().
			Int("round", e.Round).
			Str("word", dec.Word).
			Int("score", dec.Score).
			Dur("delay", dec.Delay).
			Msg("decided")
		target := d.target
		if dec.Word == "" {
			d.pending = d.sched.AfterFunc(dec.Delay, target.Pass)
			return
		}
		// Drafted now so a deadline that beats the delay still submits it.
		word := dec.Word
		target.SetDraft(word)
		d.pending = d.sched.AfterFunc(dec.Delay, func() {
			target.Submit(word)
		})
	case match.RoundEnded, match.MatchEnded, match.SessionClosed:
		d.cancel()
	case match.SubmissionRejected:
		d.log.Warn().Err(e.Err).Str("word", e.Word).Msg("bot word rejected")
	}
}

func (d *Driver) cancel() {
	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
}
