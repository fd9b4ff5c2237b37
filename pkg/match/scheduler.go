package match

import "time"

// Timer is a pending scheduled callback.
type Timer interface {
	Stop() bool
}

// Scheduler provides the clock and the delayed callbacks of a match. The
// callbacks run on their own goroutine and must only post back to the match.
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type systemScheduler struct{}

func (systemScheduler) Now() time.Time {
	return time.Now()
}

func (systemScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemScheduler is the wall clock scheduler.
func SystemScheduler() Scheduler {
	return systemScheduler{}
}

type timerKind int

const (
	timerCountdown timerKind = iota
	timerDeadline
	timerNextRound
	timerRematch
	timerGrace
)

func (k timerKind) String() string {
	switch k {
	case timerCountdown:
		return "countdown"
	case timerDeadline:
		return "deadline"
	case timerNextRound:
		return "nextRound"
	case timerRematch:
		return "rematch"
	case timerGrace:
		return "grace"
	}
	return "unknown"
}

type pendingTimer struct {
	id    uint64
	timer Timer
}
