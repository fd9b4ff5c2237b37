package lexicon

import (
	"bufio"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
)

//go:embed data/*.txt
var embedded embed.FS

// Dictionary is a normalized word list: uppercase ASCII letters only,
// deduplicated, in source order.
type Dictionary struct {
	Words []string
}

// Entry is one record of a JSON word list.
type Entry struct {
	Word string `json:"word"`
}

// Normalize uppercases and trims w, reporting false if the result is empty or
// contains anything but A-Z.
func Normalize(w string) (string, bool) {
	w = strings.ToUpper(strings.TrimSpace(w))
	if w == "" {
		return "", false
	}
	for _, r := range w {
		if r < 'A' || r > 'Z' {
			return "", false
		}
	}
	return w, true
}

func newDictionary(words []string) *Dictionary {
	normalized := lo.FilterMap(words, func(w string, _ int) (string, bool) {
		return Normalize(w)
	})
	return &Dictionary{Words: lo.Uniq(normalized)}
}

// ReadLines reads one word per line, skipping blank lines and # comments.
// Lines that do not normalize to a word are dropped.
func ReadLines(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}

// ReadDictionary reads a line-oriented word list.
func ReadDictionary(r io.Reader) (*Dictionary, error) {
	words, err := ReadLines(r)
	if err != nil {
		return nil, err
	}
	return newDictionary(words), nil
}

// ReadEntries decodes a JSON word list of the form [{"word": "..."}].
func ReadEntries(r io.Reader) ([]Entry, error) {
	var entries []Entry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode word entries: %w", err)
	}
	return entries, nil
}

// FromEntries builds a dictionary from decoded JSON entries.
func FromEntries(entries []Entry) *Dictionary {
	return newDictionary(lo.Map(entries, func(e Entry, _ int) string {
		return e.Word
	}))
}

// LoadDictionary reads a word list file. Files ending in .json are decoded as
// entries, anything else as one word per line.
func LoadDictionary(path string) (*Dictionary, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		entries, err := ReadEntries(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return FromEntries(entries), nil
	}
	return ReadDictionary(f)
}

// EmbeddedDictionary returns the word list compiled into the binary for tier.
func EmbeddedDictionary(tier Tier) (*Dictionary, error) {
	f, err := embedded.Open(fmt.Sprintf("data/%s.txt", tier))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadDictionary(f)
}

// LoadBlocklist reads a blocklist file, one word per line.
func LoadBlocklist(path string) ([]string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadLines(f)
}

// EmbeddedBlocklist returns the blocklist compiled into the binary.
func EmbeddedBlocklist() ([]string, error) {
	f, err := embedded.Open("data/blocklist.txt")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadLines(f)
}
