// Package collocation scores recurring glyph n-grams within sequences.
package collocation

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

const (
	StartPad = "<s>"
	EndPad   = "</s>"
	// Unknown marks an illegible glyph.
	Unknown = "?"
	// MinFreq is the count an n-gram needs to be scored.
	MinFreq = 2

	small = 1e-20
)

// Measure selects how n-grams are ranked.
type Measure string

const (
	LikelihoodRatio Measure = "likelihood_ratio"
	Frequency       Measure = "frequency"
)

// Filter reports whether an n-gram should be discarded.
type Filter func(ngram []string) bool

// Scored is a ranked n-gram.
type Scored struct {
	Ngram []string
	Score float64
}

func (s Scored) String() string {
	return fmt.Sprintf("%s (%.3f)", strings.Join(s.Ngram, " "), s.Score)
}

// Finder counts n-grams of size 2 or 3 inside documents; n-grams never
// span two documents.
type Finder struct {
	n     int
	total int
	words map[string]int
	// pairs counts adjacent (w1,w2); gapped counts (w1,_,w3).
	pairs  map[[2]string]int
	gapped map[[2]string]int
	grams  map[[3]string]int
}

// NewFinder counts n-grams of size n over docs.
func NewFinder(n int, docs [][]string) (*Finder, error) {
	if n != 2 && n != 3 {
		return nil, fmt.Errorf("unsupported n-gram size %d", n)
	}
	f := &Finder{
		n:      n,
		words:  make(map[string]int),
		pairs:  make(map[[2]string]int),
		gapped: make(map[[2]string]int),
		grams:  make(map[[3]string]int),
	}
	for _, doc := range docs {
		for i, w := range doc {
			f.words[w]++
			f.total++
			if i+1 < len(doc) {
				f.pairs[[2]string{w, doc[i+1]}]++
			}
			if n == 3 && i+2 < len(doc) {
				f.gapped[[2]string{w, doc[i+2]}]++
				f.grams[[3]string{w, doc[i+1], doc[i+2]}]++
			}
		}
	}
	return f, nil
}

// Score ranks the n-grams seen at least MinFreq times that filter keeps,
// highest first, ties in lexical order. topN <= 0 returns all of them.
func (f *Finder) Score(measure Measure, filter Filter, topN int) []Scored {
	var out []Scored
	add := func(ngram []string, count int) {
		if count < MinFreq || (filter != nil && filter(ngram)) {
			return
		}
		s := float64(count)
		if measure != Frequency {
			s = likelihoodRatio(f.contingency(ngram, count), f.total)
		}
		out = append(out, Scored{Ngram: ngram, Score: s})
	}
	if f.n == 2 {
		for k, c := range f.pairs {
			add([]string{k[0], k[1]}, c)
		}
	} else {
		for k, c := range f.grams {
			add([]string{k[0], k[1], k[2]}, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return strings.Join(out[i].Ngram, "\x00") < strings.Join(out[j].Ngram, "\x00")
	})
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}

// contingency returns observed cell counts indexed by a bitmask where bit j
// set means position j holds some other word.
func (f *Finder) contingency(ngram []string, count int) []float64 {
	if f.n == 2 {
		nii := float64(count)
		nix := float64(f.words[ngram[0]])
		nxi := float64(f.words[ngram[1]])
		nxx := float64(f.total)
		noi := nxi - nii
		nio := nix - nii
		return []float64{nii, noi, nio, nxx - nii - noi - nio}
	}
	w1, w2, w3 := ngram[0], ngram[1], ngram[2]
	niii := float64(count)
	niix := float64(f.pairs[[2]string{w1, w2}])
	nixi := float64(f.gapped[[2]string{w1, w3}])
	nxii := float64(f.pairs[[2]string{w2, w3}])
	nixx := float64(f.words[w1])
	nxix := float64(f.words[w2])
	nxxi := float64(f.words[w3])
	nxxx := float64(f.total)

	noii := nxii - niii
	nioi := nixi - niii
	niio := niix - niii
	nooi := nxxi - niii - noii - nioi
	noio := nxix - niii - noii - niio
	nioo := nixx - niii - nioi - niio
	nooo := nxxx - niii - noii - nioi - niio - nooi - noio - nioo
	return []float64{niii, noii, nioi, nooi, niio, noio, nioo, nooo}
}

// likelihoodRatio is Dunning's G² over a 2^n contingency table.
func likelihoodRatio(cont []float64, total int) float64 {
	n := 0
	for 1<<n < len(cont) {
		n++
	}
	// marginal sums per position: in[j] when bit j clear, out[j] when set
	in := make([]float64, n)
	out := make([]float64, n)
	for i, c := range cont {
		for j := 0; j < n; j++ {
			if i&(1<<j) == 0 {
				in[j] += c
			} else {
				out[j] += c
			}
		}
	}
	denom := math.Pow(float64(total), float64(n-1))
	g := 0.0
	for i, obs := range cont {
		if obs <= 0 {
			continue
		}
		exp := 1.0
		for j := 0; j < n; j++ {
			if i&(1<<j) == 0 {
				exp *= in[j]
			} else {
				exp *= out[j]
			}
		}
		exp /= denom
		g += obs * math.Log(obs/(exp+small)+small)
	}
	return 2 * g
}

// Pad surrounds a sequence with StartPad and EndPad.
func Pad(seq []string) []string {
	out := make([]string, 0, len(seq)+2)
	out = append(out, StartPad)
	out = append(out, seq...)
	return append(out, EndPad)
}

func hasUnknown(w string) bool { return strings.Contains(w, Unknown) }

// BigramFilters keep, pass by pass, glyphs before a ligature marker, glyphs
// after it, and sequence-final glyphs.
func BigramFilters(marker string) []Filter {
	return []Filter{
		func(w []string) bool { return w[1] != marker || hasUnknown(w[0]) },
		func(w []string) bool { return w[0] != marker || hasUnknown(w[1]) },
		func(w []string) bool { return w[len(w)-1] != EndPad || hasUnknown(w[0]) },
	}
}

// TrigramFilters keep trigrams centered on the ligature marker.
func TrigramFilters(marker string) []Filter {
	return []Filter{
		func(w []string) bool { return w[1] != marker || hasUnknown(w[0]) || hasUnknown(w[2]) },
	}
}

// Collocations pads seqs, and for every filter pass returns the topN
// n-grams of size n under measure, concatenated in filter order.
func Collocations(seqs [][]string, n int, filters []Filter, measure Measure, topN int) ([]Scored, error) {
	padded := make([][]string, len(seqs))
	for i, s := range seqs {
		padded[i] = Pad(s)
	}
	f, err := NewFinder(n, padded)
	if err != nil {
		return nil, err
	}
	var out []Scored
	for _, filter := range filters {
		out = append(out, f.Score(measure, filter, topN)...)
	}
	return out, nil
}

// Bigrams scores ligature bigrams of seqs.
func Bigrams(seqs [][]string, marker string, measure Measure, topN int) ([]Scored, error) {
	return Collocations(seqs, 2, BigramFilters(marker), measure, topN)
}

// Trigrams scores ligature trigrams of seqs.
func Trigrams(seqs [][]string, marker string, measure Measure, topN int) ([]Scored, error) {
	return Collocations(seqs, 3, TrigramFilters(marker), measure, topN)
}
