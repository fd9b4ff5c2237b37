package tiles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScorerCalculate(t *testing.T) {
	s := NewScorer(DefaultTileSet)
	rack := NewRack("CATSDO")

	tests := []struct {
		name    string
		word    string
		rack    Rack
		bonuses []BonusTile
		want    int
	}{
		{
			name: "empty word",
			word: "",
			rack: rack,
			want: 0,
		},
		{
			name: "plain letters",
			word: "CAT",
			rack: rack,
			want: 3 + 1 + 1,
		},
		{
			name:    "double letter on a used position",
			word:    "CAT",
			rack:    rack,
			bonuses: []BonusTile{{Index: 0, Kind: DoubleLetter}},
			want:    3*2 + 1 + 1,
		},
		{
			name:    "triple letter on an unused position",
			word:    "CAT",
			rack:    rack,
			bonuses: []BonusTile{{Index: 4, Kind: TripleLetter}},
			want:    5,
		},
		{
			name: "double word applied after letter bonuses",
			word: "CATS",
			rack: rack,
			bonuses: []BonusTile{
				{Index: 0, Kind: TripleLetter},
				{Index: 3, Kind: DoubleWord},
			},
			want: (3*3 + 1 + 1 + 1) * 2,
		},
		{
			name: "two double words stack",
			word: "DOTS",
			rack: rack,
			bonuses: []BonusTile{
				{Index: 4, Kind: DoubleWord},
				{Index: 5, Kind: DoubleWord},
			},
			want: (2 + 1 + 1 + 1) * 4,
		},
		{
			name:    "repeated letter claims the next free position",
			word:    "TOOT",
			rack:    NewRack("TOOTXX"),
			bonuses: []BonusTile{{Index: 2, Kind: TripleLetter}},
			want:    1 + 1 + 3 + 1,
		},
		{
			name: "letter missing from rack scores base value",
			word: "CAZ",
			rack: rack,
			want: 3 + 1 + 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Calculate(tt.word, tt.rack, tt.bonuses))
		})
	}
}

func TestScorerIsDeterministic(t *testing.T) {
	s := NewScorer(nil)
	rack := NewRack("QUIZERST")
	bonuses := []BonusTile{{Index: 0, Kind: TripleLetter}, {Index: 3, Kind: DoubleWord}}

	first := s.Calculate("QUIZ", rack, bonuses)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, s.Calculate("QUIZ", rack, bonuses))
	}
	assert.Equal(t, (10*3+1+1+10)*2, first)
}

func TestScenarioCatScoresLetterSum(t *testing.T) {
	rack, err := ParseRack([]string{"C", "A", "T", "S", "D", "O"})
	assert.NoError(t, err)

	got := NewScorer(nil).Calculate("CAT", rack, nil)
	assert.Equal(t, Value('C')+Value('A')+Value('T'), got)
}
