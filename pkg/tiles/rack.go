package tiles

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	ErrTileNotInRack = errors.New("tile not in rack")
	ErrInvalidLetter = errors.New("invalid rack letter")
)

// Rack is the shared letter multiset of a round. Order only matters for
// display.
type Rack struct {
	Letters []rune
}

// NewRack builds a rack from a string of letters, uppercasing them.
func NewRack(letters string) Rack {
	return Rack{Letters: []rune(strings.ToUpper(letters))}
}

// ParseRack builds a rack from single-letter tokens as carried on the wire.
func ParseRack(tokens []string) (Rack, error) {
	letters := make([]rune, 0, len(tokens))
	for i, tok := range tokens {
		tok = strings.ToUpper(strings.TrimSpace(tok))
		r, size := utf8.DecodeRuneInString(tok)
		if size == 0 || size != len(tok) || !IsLetter(r) {
			return Rack{}, fmt.Errorf("%w: %q at %d", ErrInvalidLetter, tok, i)
		}
		letters = append(letters, r)
	}
	return Rack{Letters: letters}, nil
}

func (r Rack) Len() int {
	return len(r.Letters)
}

func (r Rack) Index(letter rune) int {
	for i, l := range r.Letters {
		if l == letter {
			return i
		}
	}
	return -1
}

func (r Rack) Contains(letter rune) bool {
	return r.Index(letter) >= 0
}

// Counts returns the letter multiset of the rack indexed by A..Z.
func (r Rack) Counts() [26]int {
	var counts [26]int
	for _, l := range r.Letters {
		if IsLetter(l) {
			counts[l-'A']++
		}
	}
	return counts
}

// CanForm reports whether every letter of word, with multiplicity, is
// available in the rack. A rack letter used once cannot be reused.
func (r Rack) CanForm(word string) bool {
	counts := r.Counts()
	for _, l := range word {
		if !IsLetter(l) {
			return false
		}
		counts[l-'A']--
		if counts[l-'A'] < 0 {
			return false
		}
	}
	return true
}

// Strings returns the rack as single-letter tokens.
func (r Rack) Strings() []string {
	out := make([]string, len(r.Letters))
	for i, l := range r.Letters {
		out[i] = string(l)
	}
	return out
}

func (r Rack) AsString() string {
	return string(r.Letters)
}

func (r Rack) IsEmpty() bool {
	return len(r.Letters) == 0
}
