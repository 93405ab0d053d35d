package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScorer_Ratio(t *testing.T) {
	scorer := NewScorer()

	t.Run("IdenticalStrings", func(t *testing.T) {
		assert.Equal(t, 1.0, scorer.Ratio("MARIA DA SILVA", "MARIA DA SILVA"))
	})

	t.Run("EmptyInput", func(t *testing.T) {
		assert.Equal(t, 0.0, scorer.Ratio("", "MARIA"))
		assert.Equal(t, 0.0, scorer.Ratio("MARIA", ""))
		assert.Equal(t, 0.0, scorer.Ratio("", ""))
	})

	t.Run("NoSharedCharacters", func(t *testing.T) {
		assert.Equal(t, 0.0, scorer.Ratio("ABC", "XYZ"))
	})

	t.Run("KnownRatio", func(t *testing.T) {
		// "abcd" vs "bcde": blocks "bcd" match, 2*3/(4+4) = 0.75
		assert.InDelta(t, 0.75, scorer.Ratio("abcd", "bcde"), 1e-9)
	})

	t.Run("Symmetric", func(t *testing.T) {
		pairs := [][2]string{
			{"MARIA DA SILVA", "MARIA SILVA"},
			{"JOSE SANTOS", "JOSE DOS SANTOS"},
			{"abcd", "bcde"},
		}
		for _, p := range pairs {
			assert.InDelta(t, scorer.Ratio(p[0], p[1]), scorer.Ratio(p[1], p[0]), 1e-9)
		}
	})

	t.Run("MonotonicInSharedLength", func(t *testing.T) {
		closer := scorer.Ratio("MARIA DA SILVA", "MARIA DA SILV")
		farther := scorer.Ratio("MARIA DA SILVA", "MARIA")
		assert.Greater(t, closer, farther)
	})

	t.Run("Bounded", func(t *testing.T) {
		score := scorer.Ratio("JOAO PEDRO ALMEIDA", "PEDRO ALMEIDA JOAO")
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	})
}

func TestScorer_Accepts(t *testing.T) {
	scorer := NewScorer()

	assert.True(t, scorer.Accepts(0.7, 0.7))
	assert.True(t, scorer.Accepts(0.9, 0.7))
	assert.False(t, scorer.Accepts(0.69, 0.7))
}

func TestLongestMatch(t *testing.T) {
	t.Run("FindsLongestBlock", func(t *testing.T) {
		i, j, size := longestMatch("xxabcyy", "zabcz", 0, 7, 0, 5)
		assert.Equal(t, 2, i)
		assert.Equal(t, 1, j)
		assert.Equal(t, 3, size)
	})

	t.Run("NoMatch", func(t *testing.T) {
		_, _, size := longestMatch("abc", "xyz", 0, 3, 0, 3)
		assert.Equal(t, 0, size)
	})
}
