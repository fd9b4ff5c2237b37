// Package lexicon validates words against a rack and enumerates every word
// formable from one.
//
// A Lexicon holds an active tier index, a broader fallback index and an
// exact-match blocklist. It is built once and only read afterwards, so the
// local player and the bot can share it without locking.
package lexicon

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"

	"wordduel/pkg/tiles"
)

var (
	ErrEmptyWord        = errors.New("word is empty")
	ErrTooShort         = errors.New("word is too short")
	ErrLettersNotInRack = errors.New("letters not in rack")
	ErrBlocked          = errors.New("word is not allowed")
	ErrNotInDictionary  = errors.New("word not in dictionary")
)

// maxRackSize bounds subset enumeration in FindAllValidWords.
const maxRackSize = 16

type Tier int

const (
	TierKids Tier = iota
	TierAdult
)

func (t Tier) String() string {
	switch t {
	case TierKids:
		return "kids"
	case TierAdult:
		return "adult"
	default:
		return fmt.Sprintf("Tier(%d)", int(t))
	}
}

func ParseTier(s string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "kids":
		return TierKids, nil
	case "adult", "":
		return TierAdult, nil
	}
	return 0, fmt.Errorf("unknown tier %q", s)
}

type Lexicon struct {
	active   *Index
	fallback *Index
	blocked  map[string]struct{}
}

// New builds a lexicon. fallback may be nil.
func New(active, fallback *Index, blocklist []string) *Lexicon {
	l := &Lexicon{
		active:   active,
		fallback: fallback,
		blocked:  make(map[string]struct{}, len(blocklist)),
	}
	for _, w := range blocklist {
		if w, ok := Normalize(w); ok {
			l.blocked[w] = struct{}{}
		}
	}
	return l
}

// Options select the word lists used by Load.
type Options struct {
	Tier Tier
	// WordsFile overrides the embedded list of the active tier.
	WordsFile string
	// BlocklistFile overrides the embedded blocklist.
	BlocklistFile string
	Logger        *zerolog.Logger
}

// Load builds a lexicon from the configured files, falling back to the
// embedded lists. It never fails: a list that cannot be read is replaced by
// the embedded one, and if that is unavailable too, by an empty one.
func Load(opts Options) *Lexicon {
	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	logger = logger.With().Str("component", "lexicon").Logger()

	active := loadTier(logger, opts.Tier, opts.WordsFile)
	fallback := active
	if opts.Tier != TierAdult {
		fallback = loadTier(logger, TierAdult, "")
	}

	var blocklist []string
	var err error
	if opts.BlocklistFile != "" {
		blocklist, err = LoadBlocklist(opts.BlocklistFile)
		if err != nil {
			logger.Warn().Err(err).Str("file", opts.BlocklistFile).Msg("blocklist unreadable, using embedded")
		}
	}
	if blocklist == nil {
		blocklist, err = EmbeddedBlocklist()
		if err != nil {
			logger.Warn().Err(err).Msg("embedded blocklist unavailable")
		}
	}

	logger.Info().
		Str("tier", opts.Tier.String()).
		Int("words", active.Len()).
		Int("fallbackWords", fallback.Len()).
		Int("blocked", len(blocklist)).
		Msg("lexicon loaded")

	return New(active, fallback, blocklist)
}

func loadTier(logger zerolog.Logger, tier Tier, path string) *Index {
	if path != "" {
		dict, err := LoadDictionary(path)
		if err == nil {
			return NewIndex(dict)
		}
		logger.Warn().Err(err).Str("file", path).Str("tier", tier.String()).Msg("word list unreadable, using embedded")
	}
	dict, err := EmbeddedDictionary(tier)
	if err != nil {
		logger.Warn().Err(err).Str("tier", tier.String()).Msg("embedded word list unavailable, tier is empty")
		return NewIndex(nil)
	}
	return NewIndex(dict)
}

func (l *Lexicon) IsBlocked(word string) bool {
	_, ok := l.blocked[word]
	return ok
}

// Contains reports whether word is in the active tier or the fallback.
func (l *Lexicon) Contains(word string) bool {
	return l.active.Contains(word) || l.fallback.Contains(word)
}

// Validate checks word against rack and returns the first failing reason:
// ErrEmptyWord, ErrTooShort, ErrLettersNotInRack, ErrBlocked or
// ErrNotInDictionary. A word missing from the active tier is accepted when the
// fallback tier has it.
func (l *Lexicon) Validate(word string, rack tiles.Rack, minLength int) error {
	word = strings.ToUpper(strings.TrimSpace(word))
	if word == "" {
		return ErrEmptyWord
	}
	if len([]rune(word)) < minLength {
		return fmt.Errorf("%w: %d letters, need %d", ErrTooShort, len([]rune(word)), minLength)
	}
	if !rack.CanForm(word) {
		return ErrLettersNotInRack
	}
	if l.IsBlocked(word) {
		return ErrBlocked
	}
	if !l.Contains(word) {
		return ErrNotInDictionary
	}
	return nil
}

// FindAllValidWords returns every active-tier word of at least minLength
// letters that can be built from rack, sorted and without duplicates.
// Blocked words are left out.
//
// All 2^n subsets of rack positions are enumerated; n is small by
// construction and capped at maxRackSize.
func (l *Lexicon) FindAllValidWords(rack tiles.Rack, minLength int) []string {
	letters := rack.Letters
	if len(letters) > maxRackSize {
		letters = letters[:maxRackSize]
	}
	if minLength < 1 {
		minLength = 1
	}

	n := len(letters)
	seen := make(map[string]struct{})
	var out []string
	buf := make([]rune, 0, n)
	for mask := uint32(1); mask < 1<<n; mask++ {
		if bits.OnesCount32(mask) < minLength {
			continue
		}
		buf = buf[:0]
		for i := 0; i < n; i++ {
			if mask&(1<<i) != 0 {
				buf = append(buf, letters[i])
			}
		}
		slices.Sort(buf)
		sig := string(buf)
		if _, ok := seen[sig]; ok {
			continue
		}
		seen[sig] = struct{}{}

		for _, w := range l.active.Anagrams(sig) {
			if !l.IsBlocked(w) {
				out = append(out, w)
			}
		}
	}

	slices.Sort(out)
	return out
}
