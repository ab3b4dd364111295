// Package count provides a raw term-count vectorizer over glyph codes.
package count

import (
	"errors"
	"sort"

	"glyphseg/internal/embedding"
)

// Vectorizer maps text to raw glyph code counts over a sorted vocabulary.
type Vectorizer struct {
	vocabulary map[string]int
	terms      []string
	prepared   bool
}

func NewVectorizer() *Vectorizer {
	return &Vectorizer{vocabulary: make(map[string]int)}
}

func (v *Vectorizer) Name() string { return "count" }

func (v *Vectorizer) Prepare(corpus []string) error {
	if len(corpus) == 0 {
		return errors.New("empty corpus for count prepare")
	}
	seen := make(map[string]struct{})
	for _, text := range corpus {
		for _, tok := range embedding.Tokenize(text) {
			seen[tok] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return errors.New("no glyph codes found in corpus")
	}
	terms := make([]string, 0, len(seen))
	for t := range seen {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	v.terms = terms
	v.vocabulary = make(map[string]int, len(terms))
	for i, t := range terms {
		v.vocabulary[t] = i
	}
	v.prepared = true
	return nil
}

func (v *Vectorizer) Dimension() int { return len(v.terms) }

func (v *Vectorizer) Vocabulary() []string { return v.terms }

func (v *Vectorizer) Embed(text string) ([]float64, error) {
	if !v.prepared {
		return nil, errors.New("count vectorizer not prepared")
	}
	vec := make([]float64, len(v.terms))
	for _, tok := range embedding.Tokenize(text) {
		if idx, ok := v.vocabulary[tok]; ok {
			vec[idx]++
		}
	}
	return vec, nil
}
