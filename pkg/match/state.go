package match

import (
	"fmt"
	"time"

	"golang.org/x/exp/slices"

	"wordduel/pkg/tiles"
)

// Outcome is a result seen from the local side.
type Outcome string

const (
	OutcomeYou Outcome = "you"
	OutcomeOpp Outcome = "opp"
	OutcomeTie Outcome = "tie"
)

func ParseOutcome(s string) (Outcome, error) {
	switch o := Outcome(s); o {
	case OutcomeYou, OutcomeOpp, OutcomeTie:
		return o, nil
	}
	return "", fmt.Errorf("unknown outcome %q", s)
}

// Invert returns the same outcome from the other side.
func (o Outcome) Invert() Outcome {
	switch o {
	case OutcomeYou:
		return OutcomeOpp
	case OutcomeOpp:
		return OutcomeYou
	}
	return o
}

func compareScores(mine, opp int) Outcome {
	switch {
	case mine > opp:
		return OutcomeYou
	case opp > mine:
		return OutcomeOpp
	}
	return OutcomeTie
}

// Submission is a committed word. At is relative to the round start.
type Submission struct {
	Word  string
	Score int
	At    time.Duration
}

type RoundRecord struct {
	Round     int
	YourWord  string
	YourScore int
	OppWord   string
	OppScore  int
	Winner    Outcome
}

// Flip projects the record into the opponent's frame.
func (r RoundRecord) Flip() RoundRecord {
	return RoundRecord{
		Round:     r.Round,
		YourWord:  r.OppWord,
		YourScore: r.OppScore,
		OppWord:   r.YourWord,
		OppScore:  r.YourScore,
		Winner:    r.Winner.Invert(),
	}
}

// State is the per-peer match record. Only the match goroutine mutates it;
// Snapshot hands out copies.
type State struct {
	Phase Phase
	// Epoch counts rematches; messages carry it to separate matches played
	// on the same connection.
	Epoch        int
	CurrentRound int
	TotalRounds  int
	Rack         tiles.Rack
	Bonuses      []tiles.BonusTile
	Deadline     time.Time
	Draft        string
	Mine         *Submission
	Opp          *Submission
	MyTotal      int
	OppTotal     int
	History      []RoundRecord
	IsHost       bool
	Local        Peer
	Remote       Peer
	RematchByMe  bool
	RematchByOpp bool
}

func (s State) clone() State {
	out := s
	out.Rack = tiles.Rack{Letters: slices.Clone(s.Rack.Letters)}
	out.Bonuses = slices.Clone(s.Bonuses)
	out.History = slices.Clone(s.History)
	if s.Mine != nil {
		mine := *s.Mine
		out.Mine = &mine
	}
	if s.Opp != nil {
		opp := *s.Opp
		out.Opp = &opp
	}
	return out
}
