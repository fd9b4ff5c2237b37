package tiles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRack(t *testing.T) {
	rack, err := ParseRack([]string{"c", " A ", "T"})
	require.NoError(t, err)
	assert.Equal(t, "CAT", rack.AsString())
	assert.Equal(t, []string{"C", "A", "T"}, rack.Strings())

	for _, bad := range [][]string{{"CA"}, {""}, {"1"}, {"É"}} {
		_, err := ParseRack(bad)
		assert.ErrorIs(t, err, ErrInvalidLetter, "tokens %v", bad)
	}
}

func TestRackCanForm(t *testing.T) {
	rack := NewRack("CATSDO")

	assert.True(t, rack.CanForm("CAT"))
	assert.True(t, rack.CanForm("DOCS"))
	assert.True(t, rack.CanForm(""))
	assert.False(t, rack.CanForm("TOOT"), "O used twice")
	assert.False(t, rack.CanForm("DOG"))
	assert.False(t, rack.CanForm("cat"))
}

func TestValidateBonuses(t *testing.T) {
	assert.NoError(t, ValidateBonuses([]BonusTile{{0, DoubleLetter}, {5, DoubleWord}}, 6))
	assert.ErrorIs(t, ValidateBonuses([]BonusTile{{6, DoubleLetter}}, 6), ErrInvalidBonus)
	assert.ErrorIs(t, ValidateBonuses([]BonusTile{{-1, DoubleLetter}}, 6), ErrInvalidBonus)
	assert.ErrorIs(t, ValidateBonuses([]BonusTile{{1, DoubleLetter}, {1, TripleLetter}}, 6), ErrInvalidBonus)
	assert.ErrorIs(t, ValidateBonuses([]BonusTile{{1, BonusKind(0)}}, 6), ErrInvalidBonus)
}

func TestParseBonusKind(t *testing.T) {
	for _, k := range []BonusKind{DoubleLetter, TripleLetter, DoubleWord} {
		got, err := ParseBonusKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseBonusKind("quadWord")
	assert.ErrorIs(t, err, ErrInvalidBonus)
}
