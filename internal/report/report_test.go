package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glyphseg/internal/collocation"
	"glyphseg/internal/domain"
	"glyphseg/internal/segment"
	"glyphseg/internal/service"
)

func TestWriteJSON(t *testing.T) {
	lines := []domain.Line{
		{Label: "Aa1", Index: 0}, {Label: "Aa2", Index: 1},
		{Label: "Aa3", Index: 2}, {Label: "Aa4", Index: 3},
	}
	a := &service.Analysis{
		Sources:    []string{"a.csv"},
		Lines:      lines,
		Vectorizer: "count",
		Features:   3,
		CostModel:  "cosine",
		Selection: &segment.Selection{
			BestK:   1,
			BestAIC: -10,
			Best:    &segment.Partition{Breakpoints: []int{2}},
			Diagnostics: []segment.Diagnostic{
				{K: 1, Breakpoints: []int{2}, AIC: -10},
				{K: 2, Err: &segment.InfeasibleError{K: 2, N: 4, MinSize: 2, Jump: 1}},
			},
		},
		Segments: []domain.Segment{
			{Index: 0, Start: 0, End: 2, Distinctive: []string{"1"}},
			{Index: 1, Start: 2, End: 4},
		},
		Bigrams:  []collocation.Scored{{Ngram: []string{"1", "<76>"}, Score: 4.5}},
		Patterns: map[string]collocation.Pattern{"XYX": {Share: 0.5, Sequences: [][]string{{"1", "2", "1"}}}, "XXZ": {}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, a))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, float64(1), got["best_k"])
	assert.Equal(t, []any{float64(2)}, got["breakpoints"])

	diags := got["diagnostics"].([]any)
	require.Len(t, diags, 2)
	assert.NotContains(t, diags[0].(map[string]any), "skipped")
	assert.Contains(t, diags[1].(map[string]any)["skipped"], "cannot place 2 breakpoints")

	segs := got["segments"].([]any)
	require.Len(t, segs, 2)
	second := segs[1].(map[string]any)
	assert.Equal(t, "Aa3", second["first_line"])
	assert.Equal(t, "Aa4", second["last_line"])
	assert.Equal(t, []any{}, second["distinctive"])

	patterns := got["patterns"].([]any)
	require.Len(t, patterns, 2)
	assert.Equal(t, "XXZ", patterns[0].(map[string]any)["name"])
	assert.Equal(t, float64(1), patterns[1].(map[string]any)["count"])

	assert.Equal(t, []any{}, got["trigrams"])
	assert.Equal(t, []any{}, got["clustered"])
}
