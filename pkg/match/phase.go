package match

import "fmt"

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseFinding
	PhaseMatched
	PhaseCountdown
	PhasePlaying
	PhaseRoundEnded
	PhaseMatchEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseFinding:
		return "finding"
	case PhaseMatched:
		return "matched"
	case PhaseCountdown:
		return "countdown"
	case PhasePlaying:
		return "playing"
	case PhaseRoundEnded:
		return "roundEnded"
	case PhaseMatchEnded:
		return "matchEnded"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// inMatch reports whether a peer is connected and the match has not ended.
func (p Phase) inMatch() bool {
	return p >= PhaseMatched && p < PhaseMatchEnded
}
