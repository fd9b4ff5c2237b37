package tiles

import (
	"errors"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var ErrBagEmpty = errors.New("bag is empty")

// Source is the randomness used for drawing and shuffling. A seeded
// *math/rand.Rand gives reproducible racks, a *frand.RNG gives ordinary ones.
type Source interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

type TileSet struct {
	Count  map[rune]int
	Values map[rune]int
}

func initTileSet() *TileSet {
	tileCount := map[rune]int{
		'A': 9, 'B': 2, 'C': 2, 'D': 4, 'E': 12,
		'F': 2, 'G': 3, 'H': 2, 'I': 9, 'J': 1,
		'K': 1, 'L': 4, 'M': 2, 'N': 6, 'O': 8,
		'P': 2, 'Q': 1, 'R': 6, 'S': 4, 'T': 6,
		'U': 4, 'V': 2, 'W': 2, 'X': 1, 'Y': 2,
		'Z': 1,
	}

	return &TileSet{Count: tileCount, Values: tileValue}
}

var DefaultTileSet = initTileSet()

// Bag holds the undrawn tiles of one rack generation.
type Bag struct {
	Tiles []rune

	TileSet *TileSet
	src     Source
}

func NewBag(tileSet *TileSet, src Source) *Bag {
	b := &Bag{
		TileSet: tileSet,
		src:     src,
	}

	// Map order is random; fill in letter order so seeded draws repeat.
	letters := maps.Keys(tileSet.Count)
	slices.Sort(letters)
	for _, letter := range letters {
		for i := 0; i < tileSet.Count[letter]; i++ {
			b.Tiles = append(b.Tiles, letter)
		}
	}

	return b
}

func (b *Bag) TileCount() int {
	return len(b.Tiles)
}

// Draw removes and returns a random tile for which match returns true.
func (b *Bag) Draw(match func(rune) bool) (rune, error) {
	candidates := make([]int, 0, b.TileCount())
	for i, t := range b.Tiles {
		if match(t) {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return 0, ErrBagEmpty
	}

	i := candidates[b.src.Intn(len(candidates))]
	tile := b.Tiles[i]
	b.RemoveTile(i)

	return tile, nil
}

func (b *Bag) RemoveTile(i int) {
	// No need to keep order in bag
	end := b.TileCount() - 1
	b.Tiles[i] = b.Tiles[end]
	b.Tiles = b.Tiles[:end]
}
