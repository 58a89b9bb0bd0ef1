package search

import (
	"unicode"
	"unicode/utf8"
)

// IndexRunes are the jump targets offered by the browser: 0 for the top,
// then A through Z.
var IndexRunes = []rune("0ABCDEFGHIJKLMNOPQRSTUVWXYZ")

// JumpIndex returns the position of the first entry in v whose title starts
// with c or any letter after it. '0' always jumps to the top. When nothing
// sorts at or after c the result is v.Len().
//
// The comparison assumes v is in key order, as an unfiltered view is.
func JumpIndex(v View, c rune) int {
	if c == '0' {
		return 0
	}
	c = unicode.ToUpper(c)

	i := 0
	for e := range v.All() {
		r, _ := utf8.DecodeRuneInString(e.Title())
		if unicode.ToUpper(r) >= c {
			return i
		}
		i++
	}
	return i
}
