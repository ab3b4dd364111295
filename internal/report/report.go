// Package report renders an analysis for machine consumption.
package report

import (
	"encoding/json"
	"io"
	"sort"

	"glyphseg/internal/collocation"
	"glyphseg/internal/service"
)

type diagnostic struct {
	K           int     `json:"k"`
	Breakpoints []int   `json:"breakpoints,omitempty"`
	Cost        float64 `json:"cost"`
	MSE         float64 `json:"mse"`
	AIC         float64 `json:"aic"`
	Degenerate  bool    `json:"degenerate,omitempty"`
	Skipped     string  `json:"skipped,omitempty"`
}

type region struct {
	Index       int      `json:"index"`
	Start       int      `json:"start"`
	End         int      `json:"end"`
	FirstLine   string   `json:"first_line"`
	LastLine    string   `json:"last_line"`
	Distinctive []string `json:"distinctive"`
}

type ngram struct {
	Ngram []string `json:"ngram"`
	Score float64  `json:"score"`
}

type pattern struct {
	Name  string  `json:"name"`
	Count int     `json:"count"`
	Share float64 `json:"share"`
}

type document struct {
	RunID       string        `json:"run_id,omitempty"`
	Sources     []string      `json:"sources"`
	Lines       int           `json:"lines"`
	Vectorizer  string        `json:"vectorizer"`
	Features    int           `json:"features"`
	CostModel   string        `json:"cost_model"`
	BestK       int           `json:"best_k"`
	BestAIC     float64       `json:"best_aic"`
	Breakpoints []int         `json:"breakpoints"`
	Diagnostics []diagnostic  `json:"diagnostics"`
	Segments    []region      `json:"segments"`
	Sequences   int           `json:"sequences"`
	Bigrams     []ngram       `json:"bigrams"`
	Trigrams    []ngram       `json:"trigrams"`
	Patterns    []pattern     `json:"patterns"`
	Clustered   []string      `json:"clustered"`
	Dispersed   []string      `json:"dispersed"`
}

// WriteJSON writes a as indented JSON.
func WriteJSON(w io.Writer, a *service.Analysis) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(build(a))
}

func build(a *service.Analysis) document {
	sel := a.Selection
	doc := document{
		RunID:       a.RunID,
		Sources:     nonNil(a.Sources),
		Lines:       len(a.Lines),
		Vectorizer:  a.Vectorizer,
		Features:    a.Features,
		CostModel:   a.CostModel,
		BestK:       sel.BestK,
		BestAIC:     sel.BestAIC,
		Breakpoints: nonNil(sel.Best.Breakpoints),
		Sequences:   a.Sequences,
		Bigrams:     scored(a.Bigrams),
		Trigrams:    scored(a.Trigrams),
		Clustered:   nonNil(a.Clustered),
		Dispersed:   nonNil(a.Dispersed),
	}
	for _, d := range sel.Diagnostics {
		row := diagnostic{K: d.K, Breakpoints: d.Breakpoints, Cost: d.Cost, MSE: d.MSE, AIC: d.AIC, Degenerate: d.Degenerate}
		if d.Err != nil {
			row.Skipped = d.Err.Error()
		}
		doc.Diagnostics = append(doc.Diagnostics, row)
	}
	for _, s := range a.Segments {
		doc.Segments = append(doc.Segments, region{
			Index:       s.Index,
			Start:       s.Start,
			End:         s.End,
			FirstLine:   a.Lines[s.Start].Label,
			LastLine:    a.Lines[s.End-1].Label,
			Distinctive: nonNil(s.Distinctive),
		})
	}
	for name, p := range a.Patterns {
		doc.Patterns = append(doc.Patterns, pattern{Name: name, Count: len(p.Sequences), Share: p.Share})
	}
	sort.Slice(doc.Patterns, func(i, j int) bool { return doc.Patterns[i].Name < doc.Patterns[j].Name })
	return doc
}

func scored(in []collocation.Scored) []ngram {
	out := make([]ngram, 0, len(in))
	for _, s := range in {
		out = append(out, ngram{Ngram: s.Ngram, Score: s.Score})
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
