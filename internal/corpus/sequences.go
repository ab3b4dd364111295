package corpus

import (
	"slices"
	"strings"

	"glyphseg/internal/domain"
)

const (
	// LigatureSuffix marks a glyph fused with glyph 76.
	LigatureSuffix = ".76"
	// LigatureMarker is the token standing for a stripped LigatureSuffix.
	LigatureMarker = "<76>"
	// MinSequenceLen is the shortest sequence kept by ProcessSequences.
	MinSequenceLen = 4
)

// SplitSequences cuts every line before each glyph ending in LigatureSuffix.
// Glyphs after the last such glyph of a line are not emitted.
func SplitSequences(lines [][]string) [][]string {
	var seqs [][]string
	for _, line := range lines {
		i := 0
		for j := 1; j < len(line); j++ {
			if strings.HasSuffix(line[j], LigatureSuffix) {
				seqs = append(seqs, slices.Clone(line[i:j]))
				i = j
			}
		}
	}
	return seqs
}

// ProcessSequences replaces a leading ligature suffix with a LigatureMarker
// token after the head glyph. It returns all processed sequences and those
// with a non-empty head and at least MinSequenceLen tokens.
func ProcessSequences(seqs [][]string) (all, filtered [][]string) {
	all = make([][]string, 0, len(seqs))
	for _, s := range seqs {
		s = slices.Clone(s)
		if len(s) > 0 && strings.HasSuffix(s[0], LigatureSuffix) {
			s[0] = strings.TrimSuffix(s[0], LigatureSuffix)
			s = slices.Insert(s, 1, LigatureMarker)
		}
		all = append(all, s)
		if len(s) >= MinSequenceLen && s[0] != "" {
			filtered = append(filtered, s)
		}
	}
	return all, filtered
}

// Glyphs returns the glyph codes of each line.
func Glyphs(lines []domain.Line) [][]string {
	out := make([][]string, len(lines))
	for i, l := range lines {
		out[i] = l.Glyphs
	}
	return out
}
