package tiles

import (
	"math"

	"golang.org/x/exp/slices"
	"lukechampine.com/frand"
)

const (
	DefaultVowelRatio = 0.35
	MinVowels         = 2
)

// Generator draws racks and bonus layouts. It is not safe for concurrent use;
// each match owns its own.
type Generator struct {
	TileSet    *TileSet
	VowelRatio float64
	BonusCount int
	Source     Source
}

// NewGenerator returns a generator over the default tile set. A nil source
// uses a fresh frand generator.
func NewGenerator(src Source, bonusCount int) *Generator {
	if src == nil {
		src = frand.New()
	}
	return &Generator{
		TileSet:    DefaultTileSet,
		VowelRatio: DefaultVowelRatio,
		BonusCount: bonusCount,
		Source:     src,
	}
}

// VowelCount is the number of vowels guaranteed in a rack of letterCount.
func (g *Generator) VowelCount(letterCount int) int {
	n := int(math.Round(float64(letterCount) * g.VowelRatio))
	if n < MinVowels {
		n = MinVowels
	}
	if n > letterCount {
		n = letterCount
	}
	return n
}

// Generate draws a shuffled rack of letterCount letters with a guaranteed
// vowel count, and places BonusCount bonus tiles on distinct positions.
// Bonuses are returned in index order.
func (g *Generator) Generate(letterCount int) (Rack, []BonusTile) {
	if letterCount <= 0 {
		return Rack{}, nil
	}

	bag := NewBag(g.TileSet, g.Source)
	letters := make([]rune, 0, letterCount)
	numVowels := g.VowelCount(letterCount)
	for len(letters) < numVowels {
		t, err := bag.Draw(IsVowel)
		if err != nil {
			break
		}
		letters = append(letters, t)
	}
	for len(letters) < letterCount {
		t, err := bag.Draw(func(r rune) bool { return !IsVowel(r) })
		if err != nil {
			break
		}
		letters = append(letters, t)
	}
	g.Source.Shuffle(len(letters), func(i, j int) {
		letters[i], letters[j] = letters[j], letters[i]
	})

	return Rack{Letters: letters}, g.placeBonuses(len(letters))
}

func (g *Generator) placeBonuses(rackSize int) []BonusTile {
	k := g.BonusCount
	if k > rackSize {
		k = rackSize
	}
	if k <= 0 {
		return nil
	}

	positions := make([]int, rackSize)
	for i := range positions {
		positions[i] = i
	}
	g.Source.Shuffle(rackSize, func(i, j int) {
		positions[i], positions[j] = positions[j], positions[i]
	})

	bonuses := make([]BonusTile, k)
	for i := 0; i < k; i++ {
		bonuses[i] = BonusTile{
			Index: positions[i],
			Kind:  bonusKinds[g.Source.Intn(len(bonusKinds))],
		}
	}
	slices.SortFunc(bonuses, func(a, b BonusTile) bool {
		return a.Index < b.Index
	})

	return bonuses
}
