package match

import (
	"errors"
	"fmt"
	"time"

	"wordduel/pkg/lexicon"
)

var ErrInvalidConfig = errors.New("invalid match config")

type Config struct {
	TotalRounds   int
	RackSize      int
	BonusCount    int
	MinWordLength int

	// Countdown precedes round 1 only.
	Countdown       time.Duration
	RoundDuration   time.Duration
	InterRoundDelay time.Duration
	// RematchDelay is how long the host waits after a rematch handshake
	// before starting round 1.
	RematchDelay time.Duration
	// EndGrace is how long an ended match waits for a rematch before the
	// session is torn down.
	EndGrace time.Duration
	// SubmitLead is how long before the advertised deadline a non-host
	// force-submits its draft.
	SubmitLead time.Duration

	// VerifyScores makes the host recompute the score asserted by the peer
	// instead of trusting it.
	VerifyScores bool
}

// DefaultConfig returns the settings of a difficulty tier.
func DefaultConfig(tier lexicon.Tier) Config {
	cfg := Config{
		TotalRounds:     5,
		RackSize:        8,
		BonusCount:      3,
		MinWordLength:   3,
		Countdown:       3 * time.Second,
		RoundDuration:   45 * time.Second,
		InterRoundDelay: 3 * time.Second,
		RematchDelay:    time.Second,
		EndGrace:        30 * time.Second,
		SubmitLead:      250 * time.Millisecond,
	}
	if tier == lexicon.TierKids {
		cfg.TotalRounds = 3
		cfg.RackSize = 6
		cfg.BonusCount = 2
		cfg.MinWordLength = 2
		cfg.RoundDuration = 60 * time.Second
	}
	return cfg
}

// Scaled returns a copy with every duration multiplied by f. Used to run
// simulations faster than real time.
func (c Config) Scaled(f float64) Config {
	scale := func(d time.Duration) time.Duration {
		return time.Duration(float64(d) * f)
	}
	c.Countdown = scale(c.Countdown)
	c.RoundDuration = scale(c.RoundDuration)
	c.InterRoundDelay = scale(c.InterRoundDelay)
	c.RematchDelay = scale(c.RematchDelay)
	c.EndGrace = scale(c.EndGrace)
	c.SubmitLead = scale(c.SubmitLead)
	return c
}

func (c Config) Validate() error {
	switch {
	case c.TotalRounds < 1:
		return fmt.Errorf("%w: total rounds %d", ErrInvalidConfig, c.TotalRounds)
	case c.RackSize < 2 || c.RackSize > 16:
		return fmt.Errorf("%w: rack size %d", ErrInvalidConfig, c.RackSize)
	case c.BonusCount < 0 || c.BonusCount > c.RackSize:
		return fmt.Errorf("%w: bonus count %d", ErrInvalidConfig, c.BonusCount)
	case c.MinWordLength < 1 || c.MinWordLength > c.RackSize:
		return fmt.Errorf("%w: min word length %d", ErrInvalidConfig, c.MinWordLength)
	case c.RoundDuration <= 0:
		return fmt.Errorf("%w: round duration %v", ErrInvalidConfig, c.RoundDuration)
	case c.SubmitLead < 0 || c.SubmitLead >= c.RoundDuration:
		return fmt.Errorf("%w: submit lead %v", ErrInvalidConfig, c.SubmitLead)
	}
	return nil
}
