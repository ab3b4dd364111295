package dispersion

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndices(t *testing.T) {
	text := []string{"1", "2", "1", "2", "3"}

	assert.Equal(t, []int{0, 2}, Indices([]string{"1"}, text))
	assert.Equal(t, []int{0, 2}, Indices([]string{"1", "2"}, text))
	assert.Nil(t, Indices([]string{"2", "1", "3"}, text))
}

func TestCriticalValue(t *testing.T) {
	assert.InDelta(t, 1.959964, criticalValue(0.05), 1e-6)
	assert.InDelta(t, 2.575829, criticalValue(0.01), 1e-6)
}

func TestNearestNeighbor1D(t *testing.T) {
	t.Run("Should report too few points as random", func(t *testing.T) {
		z, p := NearestNeighbor1D([]int{3}, 10, DefaultAlpha)
		assert.True(t, math.IsNaN(z))
		assert.Equal(t, Random, p)
	})

	t.Run("Should detect a tight cluster", func(t *testing.T) {
		_, p := NearestNeighbor1D([]int{10, 11, 13, 14, 15, 17}, 200, DefaultAlpha)
		assert.Equal(t, Clustered, p)
	})

	t.Run("Should detect dispersion", func(t *testing.T) {
		_, p := NearestNeighbor1D([]int{0, 30, 61, 90, 121, 150}, 100, DefaultAlpha)
		assert.Equal(t, Dispersed, p)
	})

	t.Run("Should report two points as random", func(t *testing.T) {
		_, p := NearestNeighbor1D([]int{1, 2}, 100, DefaultAlpha)
		assert.Equal(t, Random, p)
	})
}

func TestBound(t *testing.T) {
	lines := [][]string{{"1"}, {"2", "3"}, {"4"}, {"3"}}

	s, e, ok := Bound([]string{"3"}, lines)
	require.True(t, ok)
	assert.Equal(t, 1, s)
	assert.Equal(t, 3, e)

	_, _, ok = Bound([]string{"9"}, lines)
	assert.False(t, ok)
}

func TestAnalyze(t *testing.T) {
	// "5" appears in a burst in the middle; the filler codes are all distinct
	var lines [][]string
	filler := 100
	for i := 0; i < 40; i++ {
		line := []string{strconv.Itoa(filler), strconv.Itoa(filler + 1)}
		filler += 2
		if i >= 18 && i < 21 {
			line = append(line, "5", "5")
		}
		lines = append(lines, line)
	}
	lines = append(lines, []string{"?", "?", "?", "?"})

	clustered, dispersed := Analyze(lines, 4, DefaultAlpha)
	assert.Equal(t, []string{"5"}, clustered)
	assert.Empty(t, dispersed)
}
