package tiles

import (
	"errors"
	"fmt"
)

var ErrInvalidBonus = errors.New("invalid bonus tile")

type BonusKind int

const (
	DoubleLetter BonusKind = iota + 1
	TripleLetter
	DoubleWord
)

var bonusKinds = []BonusKind{DoubleLetter, TripleLetter, DoubleWord}

func (k BonusKind) String() string {
	switch k {
	case DoubleLetter:
		return "doubleLetter"
	case TripleLetter:
		return "tripleLetter"
	case DoubleWord:
		return "doubleWord"
	default:
		return fmt.Sprintf("BonusKind(%d)", int(k))
	}
}

// ParseBonusKind is the inverse of BonusKind.String.
func ParseBonusKind(s string) (BonusKind, error) {
	for _, k := range bonusKinds {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown kind %q", ErrInvalidBonus, s)
}

// LetterMultiplier is applied to the letter placed on the bonus position.
func (k BonusKind) LetterMultiplier() int {
	switch k {
	case DoubleLetter:
		return 2
	case TripleLetter:
		return 3
	}
	return 1
}

// WordMultiplier is applied to the whole word when the bonus position is used.
func (k BonusKind) WordMultiplier() int {
	if k == DoubleWord {
		return 2
	}
	return 1
}

// BonusTile marks a rack position carrying a multiplier.
type BonusTile struct {
	Index int
	Kind  BonusKind
}

// ValidateBonuses checks that bonus indices are unique and within a rack of
// the given size.
func ValidateBonuses(bonuses []BonusTile, rackSize int) error {
	seen := make(map[int]struct{}, len(bonuses))
	for _, b := range bonuses {
		if b.Index < 0 || b.Index >= rackSize {
			return fmt.Errorf("%w: index %d out of rack bounds %d", ErrInvalidBonus, b.Index, rackSize)
		}
		if _, dup := seen[b.Index]; dup {
			return fmt.Errorf("%w: duplicate index %d", ErrInvalidBonus, b.Index)
		}
		if b.Kind.LetterMultiplier() == 1 && b.Kind.WordMultiplier() == 1 {
			return fmt.Errorf("%w: %v", ErrInvalidBonus, b.Kind)
		}
		seen[b.Index] = struct{}{}
	}
	return nil
}
