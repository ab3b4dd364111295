// Package dispersion tests whether glyph occurrences cluster along the text.
package dispersion

import (
	"math"
	"slices"
	"sort"
)

// Pattern is the outcome of a nearest-neighbour test.
type Pattern string

const (
	Clustered Pattern = "clustered"
	Dispersed Pattern = "dispersed"
	Random    Pattern = "random"
)

// DefaultAlpha is the two-sided significance level.
const DefaultAlpha = 0.05

// Indices returns every position where glyph occurs as a contiguous run in text.
func Indices(glyph, text []string) []int {
	var out []int
	for i := 0; i+len(glyph) <= len(text); i++ {
		if slices.Equal(glyph, text[i:i+len(glyph)]) {
			out = append(out, i)
		}
	}
	return out
}

// NearestNeighbor1D compares the mean gap between sorted occurrence positions
// with the gap expected for uniformly random placement over length.
// Fewer than two points yield NaN and Random.
func NearestNeighbor1D(points []int, length int, alpha float64) (float64, Pattern) {
	n := len(points)
	if n < 2 {
		return math.NaN(), Random
	}
	gaps := make([]float64, n-1)
	mean := 0.0
	for i := 1; i < n; i++ {
		gaps[i-1] = float64(points[i] - points[i-1])
		mean += gaps[i-1]
	}
	mean /= float64(len(gaps))
	expected := float64(length) / float64(n+1)

	sd := math.NaN()
	if len(gaps) > 1 {
		ss := 0.0
		for _, g := range gaps {
			ss += (g - mean) * (g - mean)
		}
		sd = math.Sqrt(ss / float64(len(gaps)-1))
	}
	z := (mean - expected) / (sd / math.Sqrt(float64(n)))

	if math.Abs(z) > criticalValue(alpha) {
		if z < 0 {
			return z, Clustered
		}
		return z, Dispersed
	}
	return z, Random
}

// criticalValue is the standard normal quantile at 1-alpha/2.
func criticalValue(alpha float64) float64 {
	p := 1 - alpha/2
	return math.Sqrt2 * math.Erfinv(2*p-1)
}

// Bound returns the first and last line containing glyph.
func Bound(glyph []string, lines [][]string) (start, end int, ok bool) {
	start, end = -1, -1
	for i, line := range lines {
		if len(Indices(glyph, line)) > 0 {
			if start < 0 {
				start = i
			}
			end = i
		}
	}
	return start, end, start >= 0
}

// Analyze runs the nearest-neighbour test for every legible glyph occurring
// at least minCount times in the concatenated lines. Clustered glyphs are
// ordered by their line bounds, dispersed glyphs by code.
func Analyze(lines [][]string, minCount int, alpha float64) (clustered, dispersed []string) {
	var text []string
	for _, l := range lines {
		text = append(text, l...)
	}
	counts := make(map[string]int)
	for _, g := range text {
		counts[g]++
	}
	glyphs := make([]string, 0, len(counts))
	for g, c := range counts {
		if g != "?" && c >= minCount {
			glyphs = append(glyphs, g)
		}
	}
	sort.Strings(glyphs)

	type bounded struct {
		glyph      string
		start, end int
	}
	var cl []bounded
	for _, g := range glyphs {
		_, p := NearestNeighbor1D(Indices([]string{g}, text), len(text), alpha)
		switch p {
		case Clustered:
			s, e, _ := Bound([]string{g}, lines)
			cl = append(cl, bounded{g, s, e})
		case Dispersed:
			dispersed = append(dispersed, g)
		}
	}
	sort.SliceStable(cl, func(i, j int) bool {
		if cl[i].start != cl[j].start {
			return cl[i].start < cl[j].start
		}
		return cl[i].end < cl[j].end
	})
	for _, b := range cl {
		clustered = append(clustered, b.glyph)
	}
	return clustered, dispersed
}
