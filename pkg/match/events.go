package match

import (
	"time"

	"wordduel/pkg/tiles"
)

// Event is a notification to the UI or bot collaborator. Handlers run on the
// match goroutine and must not block.
type Event interface {
	isEvent()
}

// Handler receives every event of a match.
type Handler func(Event)

type MatchFound struct {
	Remote Peer
	IsHost bool
}

type CountdownStarted struct {
	Duration time.Duration
}

type RoundStarted struct {
	Round       int
	TotalRounds int
	Rack        tiles.Rack
	Bonuses     []tiles.BonusTile
	Deadline    time.Time
}

// Submitted reports the local side's committed word.
type Submitted struct {
	Round      int
	Submission Submission
	Forced     bool
}

// SubmissionRejected reports a local word that failed validation. It is never
// sent to the peer.
type SubmissionRejected struct {
	Word string
	Err  error
}

type OpponentSubmitted struct {
	Round int
}

type RoundEnded struct {
	Record   RoundRecord
	MyTotal  int
	OppTotal int
}

type MatchEnded struct {
	Outcome  Outcome
	Forfeit  bool
	MyTotal  int
	OppTotal int
	History  []RoundRecord
	Epoch    int
}

type RematchRequested struct{}

type RematchStarted struct {
	Epoch int
}

// SessionClosed is the last event of a match.
type SessionClosed struct{}

func (MatchFound) isEvent()         {}
func (CountdownStarted) isEvent()   {}
func (RoundStarted) isEvent()       {}
func (Submitted) isEvent()          {}
func (SubmissionRejected) isEvent() {}
func (OpponentSubmitted) isEvent()  {}
func (RoundEnded) isEvent()         {}
func (MatchEnded) isEvent()         {}
func (RematchRequested) isEvent()   {}
func (RematchStarted) isEvent()     {}
func (SessionClosed) isEvent()      {}
