package tiles

// Scorer computes word scores from a tile set's letter values and the bonus
// tiles of a rack. It holds no mutable state and is safe to share.
type Scorer struct {
	TileSet *TileSet
}

func NewScorer(ts *TileSet) *Scorer {
	if ts == nil {
		ts = DefaultTileSet
	}
	return &Scorer{TileSet: ts}
}

// Calculate returns the score of word played from rack with the given bonus
// tiles. Each letter claims the first unused rack position holding it; a
// letter or word bonus on a claimed position applies once. Letters that are
// not in the rack score their base value.
func (s *Scorer) Calculate(word string, rack Rack, bonuses []BonusTile) int {
	if word == "" {
		return 0
	}

	bonusAt := make(map[int]BonusKind, len(bonuses))
	for _, b := range bonuses {
		bonusAt[b.Index] = b.Kind
	}

	used := make([]bool, rack.Len())
	score := 0
	wordMultiplier := 1
	for _, letter := range word {
		value := s.TileSet.Values[letter]
		pos := -1
		for i, l := range rack.Letters {
			if !used[i] && l == letter {
				pos = i
				break
			}
		}
		if pos >= 0 {
			used[pos] = true
			if kind, ok := bonusAt[pos]; ok {
				value *= kind.LetterMultiplier()
				wordMultiplier *= kind.WordMultiplier()
			}
		}
		score += value
	}

	return score * wordMultiplier
}
