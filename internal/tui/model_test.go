package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glyphseg/internal/domain"
	"glyphseg/internal/search"
	"glyphseg/internal/segment"
	"glyphseg/internal/service"
)

type fakePort struct {
	label string
}

func (f *fakePort) Search(q string) (*search.Match, error) {
	return &search.Match{Query: q, Labels: []string{"Aa1"}}, nil
}

func (f *fakePort) SimilarLines(label string, topK int) ([]domain.SearchResult, error) {
	f.label = label
	if label == "missing" {
		return nil, errors.New("unknown line")
	}
	return []domain.SearchResult{{Line: domain.Line{Label: "Aa2", Glyphs: []string{"1", "2"}}, Score: 0.9}}, nil
}

func testAnalysis(t *testing.T) *service.Analysis {
	t.Helper()
	rows := [][]float64{{1, 0}, {1, 0}, {0, 1}, {0, 1}}
	g, err := segment.BuildGram(rows)
	require.NoError(t, err)
	lines := make([]domain.Line, len(rows))
	for i := range lines {
		lines[i] = domain.Line{Label: "Aa" + string(rune('1'+i)), Index: i}
	}
	return &service.Analysis{
		Lines: lines,
		Gram:  g,
		Selection: &segment.Selection{
			BestK: 1,
			Best:  &segment.Partition{Breakpoints: []int{2}},
			Diagnostics: []segment.Diagnostic{
				{K: 1, Breakpoints: []int{2}, Degenerate: true},
				{K: 2, Err: segment.ErrInfeasibleBreakpointCount},
			},
		},
		Segments: []domain.Segment{{Index: 0, Start: 0, End: 2}, {Index: 1, Start: 2, End: 4}},
	}
}

func typeQuery(t *testing.T, m Model, q string) Model {
	t.Helper()
	m.input.SetValue(q)
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model)
}

func TestModel_Queries(t *testing.T) {
	port := &fakePort{}
	m := New(port, testAnalysis(t))

	m = typeQuery(t, m, "1 2")
	assert.Equal(t, viewResults, m.view)
	require.NotNil(t, m.match)
	assert.Contains(t, m.renderResults(), "Aa1")

	m = typeQuery(t, m, "@ Aa1")
	assert.Equal(t, " Aa1", port.label)
	assert.Nil(t, m.match)
	assert.Contains(t, m.renderResults(), "Aa2")

	m = typeQuery(t, m, "@missing")
	assert.True(t, strings.HasPrefix(m.status, "Error:"))
	assert.Equal(t, "No results yet.", m.renderResults())
}

func TestModel_Tabs(t *testing.T) {
	m := New(&fakePort{}, testAnalysis(t))
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, viewDiagnostics, next.(Model).view)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, viewResults, next.(Model).view)
}

func TestRenderHeatmap(t *testing.T) {
	a := testAnalysis(t)
	out := renderHeatmap(a, 40)
	rows := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, rows, 5)
	assert.Equal(t, "  |", strings.TrimRight(rows[0], " "))
	assert.Equal(t, "██  ", rows[1])
	assert.Equal(t, "  ██", rows[4])
}

func TestRenderDiagnostics(t *testing.T) {
	out := renderDiagnostics(testAnalysis(t))
	assert.Contains(t, out, "mse floor")
	assert.Contains(t, out, "skipped")
}
