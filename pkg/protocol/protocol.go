// Package protocol defines the messages exchanged by two match peers and
// their JSON envelope encoding.
package protocol

import (
	"encoding/json"
)

const (
	MsgRoundStart     = "round_start"
	MsgSubmission     = "submission"
	MsgRoundResult    = "round_result"
	MsgMatchResult    = "match_result"
	MsgRematchRequest = "rematch_request"
)

// Envelope wraps every payload. E is the sender's rematch epoch; receivers
// drop messages from an epoch they are not in.
type Envelope struct {
	T string          `json:"t"`
	E int             `json:"e"`
	P json.RawMessage `json:"p"` // raw payload bytes
}

type Bonus struct {
	Index uint   `json:"index"`
	Kind  string `json:"kind"`
}

// RoundStart is sent by the host when a round begins. Deadline is the round
// end in Unix milliseconds.
type RoundStart struct {
	RoundNumber uint     `json:"roundNumber"`
	Rack        []string `json:"rack"`
	Bonuses     []Bonus  `json:"bonuses"`
	Deadline    uint64   `json:"deadline"`
}

// Submission is a player's committed word. An empty word is a pass.
type Submission struct {
	RoundNumber uint   `json:"roundNumber"`
	Word        string `json:"word"`
	Score       uint   `json:"score"`
}

// RoundResult is sent by the host after resolving a round. All fields are
// from the receiver's point of view.
type RoundResult struct {
	RoundNumber    uint   `json:"roundNumber"`
	TotalRounds    uint   `json:"totalRounds"`
	YourWord       string `json:"yourWord"`
	YourScore      uint   `json:"yourScore"`
	OppWord        string `json:"oppWord"`
	OppScore       uint   `json:"oppScore"`
	Winner         string `json:"winner"`
	YourTotalScore uint   `json:"yourTotalScore"`
	OppTotalScore  uint   `json:"oppTotalScore"`
}

// MatchResult terminates a match. Totals are from the receiver's point of
// view. Final repeats the last RoundResult, which may arrive after it.
type MatchResult struct {
	YourTotalScore uint         `json:"yourTotalScore"`
	OppTotalScore  uint         `json:"oppTotalScore"`
	TotalRounds    uint         `json:"totalRounds"`
	Final          *RoundResult `json:"final,omitempty"`
}

type RematchRequest struct{}
