package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJumpIndex(t *testing.T) {
	v := NewEngine().Filter(build("12 Monkeys", "Alien", "Brazil", "Dune", "heat", "Zodiac"), "")

	tests := []struct {
		c    rune
		want int
	}{
		{'0', 0},
		{'A', 1},
		{'a', 1},
		{'B', 2},
		{'C', 3},
		{'H', 4},
		{'Y', 5},
		{'Z', 5},
	}
	for _, tt := range tests {
		t.Run(string(tt.c), func(t *testing.T) {
			assert.Equal(t, tt.want, JumpIndex(v, tt.c))
		})
	}
}

func TestJumpIndex_PastEnd(t *testing.T) {
	v := NewEngine().Filter(build("Alien", "Brazil"), "")
	assert.Equal(t, v.Len(), JumpIndex(v, 'Q'))
}

func TestIndexRunes(t *testing.T) {
	assert.Len(t, IndexRunes, 27)
	assert.Equal(t, '0', IndexRunes[0])
	assert.Equal(t, 'Z', IndexRunes[26])
}
