package embedding

import (
	"regexp"
	"strings"
)

// Vectorizer converts a glyph line into a non-negative feature vector.
// Implementations require a preparation phase over the corpus.
type Vectorizer interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(text string) ([]float64, error)
	// Vocabulary returns the feature names in column order.
	Vocabulary() []string
}

// glyph codes: digits, optional variant letters, optional dotted ligature parts
var tokenPattern = regexp.MustCompile(`[0-9]+[a-zA-Z]*[.0-9]*[a-zA-Z]*`)

// Tokenize lowercases text and extracts glyph code tokens.
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// EmbedAll embeds every text with v.
func EmbedAll(v Vectorizer, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		vec, err := v.Embed(t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}
