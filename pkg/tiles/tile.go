package tiles

import "strings"

const vowels = "AEIOU"

var tileValue = map[rune]int{
	'A': 1,
	'E': 1,
	'I': 1,
	'O': 1,
	'U': 1,
	'L': 1,
	'N': 1,
	'R': 1,
	'S': 1,
	'T': 1,
	'D': 2,
	'G': 2,
	'B': 3,
	'C': 3,
	'M': 3,
	'P': 3,
	'F': 4,
	'H': 4,
	'V': 4,
	'W': 4,
	'Y': 4,
	'K': 5,
	'J': 8,
	'X': 8,
	'Q': 10,
	'Z': 10,
}

// Value returns the point value of an uppercase letter, or 0 for anything
// that is not a tile.
func Value(letter rune) int {
	return tileValue[letter]
}

func IsVowel(letter rune) bool {
	return strings.ContainsRune(vowels, letter)
}

// IsLetter reports whether r is an uppercase ASCII letter.
func IsLetter(r rune) bool {
	return r >= 'A' && r <= 'Z'
}
