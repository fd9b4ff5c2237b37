// Package bot implements a computer opponent that picks a word from every
// valid play on a rack according to a skill level.
package bot

import (
	"math"
	"sort"
	"time"

	"github.com/samber/lo"
	"lukechampine.com/frand"

	"wordduel/pkg/lexicon"
	"wordduel/pkg/tiles"
)

// Candidate is a valid word on the current rack and its score.
type Candidate struct {
	Word  string
	Score int
}

// Decision is what the bot will submit and how long it waits before doing so.
// An empty Word is a pass.
type Decision struct {
	Word  string
	Score int
	Delay time.Duration
}

// Strategy picks one candidate. An empty candidate list yields the zero
// Candidate, a pass.
type Strategy interface {
	PickMove(cands []Candidate) Candidate
}

// Sort the candidates by score, longer words first on equal scores
type byScore []Candidate

func (list byScore) Len() int {
	return len(list)
}

func (list byScore) Swap(i, j int) {
	list[i], list[j] = list[j], list[i]
}

func (list byScore) Less(i, j int) bool {
	a, b := list[i], list[j]
	if a.Score != b.Score {
		// We want descending order, so we reverse the comparison
		return a.Score > b.Score
	}
	if len(a.Word) != len(b.Word) {
		return len(a.Word) > len(b.Word)
	}
	return a.Word < b.Word
}

// HighScore always picks the highest-scoring word.
type HighScore struct{}

func (HighScore) PickMove(cands []Candidate) Candidate {
	if len(cands) == 0 {
		return Candidate{}
	}
	sort.Sort(byScore(cands))
	return cands[0]
}

// OneOfNBest picks one of the N highest-scoring words at random.
type OneOfNBest struct {
	N      int
	Source tiles.Source
}

func (ofb OneOfNBest) PickMove(cands []Candidate) Candidate {
	if len(cands) == 0 {
		return Candidate{}
	}
	sort.Sort(byScore(cands))
	// Cut the list down to N, if it is longer than that
	if ofb.N > 0 && len(cands) > ofb.N {
		cands = cands[:ofb.N]
	}
	return cands[sourceOrDefault(ofb.Source).Intn(len(cands))]
}

// SkillWindow aims at the rank matching Skill, 1 being the best word and 0 the
// worst, and picks uniformly inside a window of WindowRatio of the candidate
// count on each side of it.
type SkillWindow struct {
	Skill       float64
	WindowRatio float64
	Source      tiles.Source
}

// DefaultWindowRatio is the half-width of the SkillWindow pick range.
const DefaultWindowRatio = 0.2

func (sw SkillWindow) PickMove(cands []Candidate) Candidate {
	if len(cands) == 0 {
		return Candidate{}
	}
	sort.Sort(byScore(cands))

	skill := clampSkill(sw.Skill)
	if skill >= 1 {
		return cands[0]
	}
	from, to := sw.Window(len(cands))
	return cands[from+sourceOrDefault(sw.Source).Intn(to-from+1)]
}

// Window returns the inclusive index range SkillWindow samples from for count
// candidates.
func (sw SkillWindow) Window(count int) (int, int) {
	if count <= 0 {
		return 0, -1
	}
	ratio := sw.WindowRatio
	if ratio <= 0 {
		ratio = DefaultWindowRatio
	}
	target := int(math.Round(float64(count-1) * (1 - clampSkill(sw.Skill))))
	half := int(float64(count) * ratio)
	return max(0, target-half), min(count-1, target+half)
}

// Delay range bounds in milliseconds at skill 1 and skill 0.
const (
	fastMinMs = 3000
	fastMaxMs = 6000
	slowMinMs = 8000
	slowMaxMs = 14000
)

// DelayRange returns the response delay bounds for skill. Lower skill waits
// longer.
func DelayRange(skill float64) (time.Duration, time.Duration) {
	s := clampSkill(skill)
	lerp := func(slow, fast int) time.Duration {
		return time.Duration(float64(slow)+(float64(fast)-float64(slow))*s) * time.Millisecond
	}
	return lerp(slowMinMs, fastMinMs), lerp(slowMaxMs, fastMaxMs)
}

type Bot struct {
	lex    *lexicon.Lexicon
	scorer *tiles.Scorer
	src    tiles.Source

	// MinLength is the shortest word the bot considers.
	MinLength int
	// DelayScale multiplies every sampled delay. Simulations use a small
	// value to play faster than real time.
	DelayScale float64
	// Strategy overrides the default SkillWindow pick.
	Strategy Strategy
}

// New returns a bot. A nil source uses frand.
func New(lex *lexicon.Lexicon, scorer *tiles.Scorer, minLength int, src tiles.Source) *Bot {
	if scorer == nil {
		scorer = tiles.NewScorer(nil)
	}
	return &Bot{
		lex:        lex,
		scorer:     scorer,
		src:        sourceOrDefault(src),
		MinLength:  minLength,
		DelayScale: 1,
	}
}

// Candidates lists every valid word on rack with its score, best first.
func (b *Bot) Candidates(rack tiles.Rack, bonuses []tiles.BonusTile) []Candidate {
	words := b.lex.FindAllValidWords(rack, b.MinLength)
	cands := lo.Map(words, func(w string, _ int) Candidate {
		return Candidate{Word: w, Score: b.scorer.Calculate(w, rack, bonuses)}
	})
	sort.Sort(byScore(cands))
	return cands
}

// Decide picks the word to play on rack at the given skill and samples the
// response delay.
func (b *Bot) Decide(rack tiles.Rack, bonuses []tiles.BonusTile, skill float64) Decision {
	strategy := b.Strategy
	if strategy == nil {
		strategy = SkillWindow{Skill: skill, Source: b.src}
	}
	pick := strategy.PickMove(b.Candidates(rack, bonuses))
	return Decision{
		Word:  pick.Word,
		Score: pick.Score,
		Delay: b.sampleDelay(skill),
	}
}

func (b *Bot) sampleDelay(skill float64) time.Duration {
	shortest, longest := DelayRange(skill)
	d := shortest + time.Duration(b.src.Intn(int((longest-shortest)/time.Millisecond)+1))*time.Millisecond
	return time.Duration(float64(d) * b.DelayScale)
}

func clampSkill(s float64) float64 {
	return math.Max(0, math.Min(1, s))
}

func sourceOrDefault(src tiles.Source) tiles.Source {
	if src == nil {
		return frand.New()
	}
	return src
}
