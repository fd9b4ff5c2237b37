package lexicon

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordduel/pkg/tiles"
)

func testLexicon(blocklist ...string) *Lexicon {
	active := NewIndex(&Dictionary{Words: []string{
		"CAT", "CATS", "ACT", "ACTS", "SCAT", "CAST", "COAT", "COATS", "TACO", "TACOS",
		"COT", "COTS", "DOC", "DOCS", "DOT", "DOTS", "COD", "CODS", "TOAD", "TOADS",
		"DOG", "AT", "TO", "SNOT", "TOOT",
	}})
	fallback := NewIndex(&Dictionary{Words: []string{"CAT", "COSTA", "SCOT", "ASCOT"}})
	return New(active, fallback, blocklist)
}

func TestValidate(t *testing.T) {
	lex := testLexicon("SCAT")
	rack := tiles.NewRack("CATSDO")

	tests := []struct {
		name      string
		word      string
		minLength int
		want      error
	}{
		{"valid", "CAT", 3, nil},
		{"lowercase is normalized", " cats ", 3, nil},
		{"empty", "", 3, ErrEmptyWord},
		{"blank", "   ", 3, ErrEmptyWord},
		{"too short", "AT", 3, ErrTooShort},
		{"short allowed by min length", "AT", 2, nil},
		{"letter not in rack", "DOG", 3, ErrLettersNotInRack},
		{"letter reused", "TOOT", 3, ErrLettersNotInRack},
		{"blocked even though in dictionary", "SCAT", 3, ErrBlocked},
		{"not in dictionary", "DACT", 3, ErrNotInDictionary},
		{"fallback tier accepted", "COSTA", 3, nil},
		{"too short checked before rack", "ZZ", 3, ErrTooShort},
		{"rack checked before blocklist", "SNOT", 3, ErrLettersNotInRack},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := lex.Validate(tt.word, rack, tt.minLength)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFindAllValidWords(t *testing.T) {
	lex := testLexicon("SCAT")
	rack := tiles.NewRack("CATSDO")

	got := lex.FindAllValidWords(rack, 3)
	want := []string{
		"ACT", "ACTS", "CAST", "CAT", "CATS", "COAT", "COATS", "COD", "CODS", "COT", "COTS",
		"DOC", "DOCS", "DOT", "DOTS", "TACO", "TACOS", "TOAD", "TOADS",
	}
	assert.Equal(t, want, got)

	for _, w := range got {
		assert.NoError(t, lex.Validate(w, rack, 3), w)
	}
}

func TestFindAllValidWordsMatchesBruteForce(t *testing.T) {
	lex := testLexicon()
	words := []string{
		"CAT", "CATS", "ACT", "ACTS", "SCAT", "CAST", "COAT", "COATS", "TACO", "TACOS",
		"COT", "COTS", "DOC", "DOCS", "DOT", "DOTS", "COD", "CODS", "TOAD", "TOADS",
		"DOG", "AT", "TO", "SNOT", "TOOT",
	}

	for _, letters := range []string{"CATSDO", "TOOTSN", "AAAA", "DOGTAC", "ST", ""} {
		rack := tiles.NewRack(letters)
		var want []string
		for _, w := range words {
			if len(w) >= 2 && rack.CanForm(w) {
				want = append(want, w)
			}
		}
		got := lex.FindAllValidWords(rack, 2)
		assert.ElementsMatch(t, want, got, "rack %s", letters)
	}
}

func TestFindAllValidWordsDuplicateLetters(t *testing.T) {
	lex := New(NewIndex(&Dictionary{Words: []string{"TOOT", "TOT", "OTTO"}}), nil, nil)

	got := lex.FindAllValidWords(tiles.NewRack("TOOTX"), 3)
	assert.Equal(t, []string{"OTTO", "TOOT", "TOT"}, got)
}

func TestSignature(t *testing.T) {
	assert.Equal(t, "ACT", Signature("CAT"))
	assert.Equal(t, Signature("TACO"), Signature("COAT"))
	assert.Equal(t, "", Signature(""))
}

func TestIndexAnagrams(t *testing.T) {
	ix := NewIndex(&Dictionary{Words: []string{"CAT", "ACT", "CAT", "DOG"}})
	assert.Equal(t, 3, ix.Len())
	assert.ElementsMatch(t, []string{"CAT", "ACT"}, ix.Anagrams("ACT"))
	assert.True(t, ix.Contains("DOG"))
	assert.False(t, ix.Contains("GOD"))

	var empty *Index
	assert.False(t, empty.Contains("CAT"))
	assert.Nil(t, empty.Anagrams("ACT"))
}

func TestReadDictionaryNormalizes(t *testing.T) {
	src := "# comment\ncat\n\n  Dog \nca-t\nCAT\nÉTÉ\n"
	dict, err := ReadDictionary(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []string{"CAT", "DOG"}, dict.Words)
}

func TestReadEntries(t *testing.T) {
	entries, err := ReadEntries(strings.NewReader(`[{"word":"cat"},{"word":"dog"},{"word":""}]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"CAT", "DOG"}, FromEntries(entries).Words)

	_, err = ReadEntries(strings.NewReader(`{"word":`))
	assert.Error(t, err)
}

func TestLoadDictionaryByExtension(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "words.txt")
	js := filepath.Join(dir, "words.json")
	require.NoError(t, os.WriteFile(txt, []byte("cat\ndog\n"), 0o600))
	require.NoError(t, os.WriteFile(js, []byte(`[{"word":"bird"}]`), 0o600))

	dict, err := LoadDictionary(txt)
	require.NoError(t, err)
	assert.Equal(t, []string{"CAT", "DOG"}, dict.Words)

	dict, err = LoadDictionary(js)
	require.NoError(t, err)
	assert.Equal(t, []string{"BIRD"}, dict.Words)

	_, err = LoadDictionary(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestEmbeddedLists(t *testing.T) {
	for _, tier := range []Tier{TierKids, TierAdult} {
		dict, err := EmbeddedDictionary(tier)
		require.NoError(t, err)
		assert.NotEmpty(t, dict.Words, tier.String())
		assert.Contains(t, dict.Words, "CAT")
	}

	blocked, err := EmbeddedBlocklist()
	require.NoError(t, err)
	assert.NotEmpty(t, blocked)
}

func TestLoadFallsBackOnMissingFile(t *testing.T) {
	nop := zerolog.Nop()
	lex := Load(Options{
		Tier:          TierKids,
		WordsFile:     filepath.Join(t.TempDir(), "nope.txt"),
		BlocklistFile: filepath.Join(t.TempDir(), "nope.txt"),
		Logger:        &nop,
	})

	rack := tiles.NewRack("CATSDO")
	assert.NoError(t, lex.Validate("CAT", rack, 2))
	// Not in the kids list, accepted through the adult fallback.
	assert.NoError(t, lex.Validate("COATS", rack, 2))
	assert.ErrorIs(t, lex.Validate("SNOT", tiles.NewRack("SNOTAE"), 2), ErrBlocked)

	kidsOnly := lex.FindAllValidWords(rack, 2)
	assert.Contains(t, kidsOnly, "CAT")
	assert.NotContains(t, kidsOnly, "COATS")
}

func TestEmptyLexiconRejects(t *testing.T) {
	lex := New(NewIndex(nil), nil, nil)
	assert.ErrorIs(t, lex.Validate("CAT", tiles.NewRack("CAT"), 3), ErrNotInDictionary)
	assert.Empty(t, lex.FindAllValidWords(tiles.NewRack("CAT"), 3))
}

func TestParseTier(t *testing.T) {
	tier, err := ParseTier("Kids")
	require.NoError(t, err)
	assert.Equal(t, TierKids, tier)

	tier, err = ParseTier("")
	require.NoError(t, err)
	assert.Equal(t, TierAdult, tier)

	_, err = ParseTier("toddler")
	assert.Error(t, err)
}
