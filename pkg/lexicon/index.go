package lexicon

import (
	"golang.org/x/exp/slices"
)

// Index is a membership set plus an anagram index keyed by signature. It is
// immutable after NewIndex and safe for concurrent reads.
type Index struct {
	words    map[string]struct{}
	anagrams map[string][]string
}

// Signature returns the sorted-letter key shared by all anagrams of word.
func Signature(word string) string {
	letters := []rune(word)
	slices.Sort(letters)
	return string(letters)
}

func NewIndex(dict *Dictionary) *Index {
	ix := &Index{
		words:    make(map[string]struct{}),
		anagrams: make(map[string][]string),
	}
	if dict == nil {
		return ix
	}

	for _, word := range dict.Words {
		ix.insert(word)
	}

	return ix
}

func (ix *Index) insert(word string) {
	if _, ok := ix.words[word]; ok {
		return
	}
	ix.words[word] = struct{}{}
	sig := Signature(word)
	ix.anagrams[sig] = append(ix.anagrams[sig], word)
}

// Contains reports whether word is in the index. A nil index is empty.
func (ix *Index) Contains(word string) bool {
	if ix == nil {
		return false
	}
	_, ok := ix.words[word]
	return ok
}

// Anagrams returns the words whose signature is exactly sig. The returned
// slice must not be modified.
func (ix *Index) Anagrams(sig string) []string {
	if ix == nil {
		return nil
	}
	return ix.anagrams[sig]
}

func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.words)
}
