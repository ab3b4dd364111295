package corpus

import "strings"

// applied in order; later rules see the output of earlier ones
var replacements = []struct{ old, new string }{
	{"(", ""},
	{")", ""},
	{"128", "001V.076"},
	{"-999", ""},
	{".076.", ".076-"},
	{"-022h-", "-"},
	{"-021h-", "-"},
}

// CleanLine strips transcription markup from a raw line and splits it into
// glyph codes.
func CleanLine(raw string) []string {
	for _, r := range replacements {
		raw = strings.ReplaceAll(raw, r.old, r.new)
	}
	parts := strings.Split(raw, "-")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Encode normalizes a raw glyph code by stripping leading zeros from every
// dot-separated part: "001V.076" becomes "1V.76".
func Encode(code string) string {
	parts := strings.Split(code, ".")
	for i, p := range parts {
		j := 0
		for j < len(p)-1 && p[j] == '0' && isDigit(p[j+1]) {
			j++
		}
		parts[i] = p[j:]
	}
	return strings.Join(parts, ".")
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
