package tfidf

import (
	"errors"
	"math"
	"sort"

	"glyphseg/internal/embedding"
)

// Vectorizer implements a TF-IDF vectorizer over glyph codes.
// It builds a vocabulary from the corpus and computes IDF values.
type Vectorizer struct {
	vocabulary map[string]int
	terms      []string
	idf        []float64
	dimension  int
	prepared   bool
}

// NewVectorizer creates an unprepared TF-IDF vectorizer.
func NewVectorizer() *Vectorizer {
	return &Vectorizer{vocabulary: make(map[string]int)}
}

// Name returns the identifier of this vectorizer implementation.
func (v *Vectorizer) Name() string { return "tfidf" }

// Prepare builds the vocabulary and IDF values from the provided corpus.
func (v *Vectorizer) Prepare(corpus []string) error {
	if len(corpus) == 0 {
		return errors.New("empty corpus for TF-IDF prepare")
	}
	// Build vocabulary and document frequencies
	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range embedding.Tokenize(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	// Create stable ordering for vocabulary
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	if len(terms) == 0 {
		return errors.New("no glyph codes found in corpus")
	}
	v.vocabulary = make(map[string]int, len(terms))
	v.terms = terms
	v.idf = make([]float64, len(terms))
	N := float64(len(corpus))
	for i, term := range terms {
		v.vocabulary[term] = i
		// Smoothed IDF
		v.idf[i] = math.Log((1+N)/(1+float64(df[term]))) + 1.0
	}
	v.dimension = len(terms)
	v.prepared = true
	return nil
}

// Dimension returns the dimensionality of the produced vectors.
func (v *Vectorizer) Dimension() int { return v.dimension }

// Vocabulary returns the sorted feature names.
func (v *Vectorizer) Vocabulary() []string { return v.terms }

// Embed computes the L2-normalized TF-IDF vector for the given text.
func (v *Vectorizer) Embed(text string) ([]float64, error) {
	if !v.prepared {
		return nil, errors.New("tfidf vectorizer not prepared")
	}
	vec := make([]float64, v.dimension)
	tf := make(map[int]int)
	total := 0
	for _, tok := range embedding.Tokenize(text) {
		if idx, ok := v.vocabulary[tok]; ok {
			tf[idx]++
			total++
		}
	}
	if total == 0 {
		return vec, nil
	}
	for idx, count := range tf {
		vec[idx] = float64(count) * v.idf[idx]
	}
	// L2 normalize
	norm := 0.0
	for _, x := range vec {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}
