package collocation

import "strings"

// Pattern groups sequences sharing a repetition shape.
type Pattern struct {
	Sequences [][]string
	Share     float64
}

// Similar reports whether two glyph codes share a dot-separated component.
func Similar(a, b string) bool {
	parts := make(map[string]struct{})
	for _, p := range strings.Split(a, ".") {
		parts[p] = struct{}{}
	}
	for _, p := range strings.Split(b, ".") {
		if _, ok := parts[p]; ok {
			return true
		}
	}
	return false
}

// RepetitionPatterns classifies sequences of at least three glyphs by which
// positions repeat: XYX (first~last), XXZ (first~third), XYY (third~last).
// Shares are relative to len(seqs).
func RepetitionPatterns(seqs [][]string) map[string]Pattern {
	rules := map[string]func(s []string) bool{
		"XYX": func(s []string) bool { return Similar(s[0], s[len(s)-1]) },
		"XXZ": func(s []string) bool { return Similar(s[0], s[2]) },
		"XYY": func(s []string) bool { return Similar(s[2], s[len(s)-1]) },
	}
	out := make(map[string]Pattern, len(rules))
	for name, match := range rules {
		var p Pattern
		for _, s := range seqs {
			if len(s) >= 3 && match(s) {
				p.Sequences = append(p.Sequences, s)
			}
		}
		if len(seqs) > 0 {
			p.Share = float64(len(p.Sequences)) / float64(len(seqs))
		}
		out[name] = p
	}
	return out
}
