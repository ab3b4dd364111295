package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"glyphseg/internal/domain"
	"glyphseg/internal/search"
	"glyphseg/internal/service"
)

// AnalysisPort is the TUI-facing subset of the analysis service.
type AnalysisPort interface {
	Search(query string) (*search.Match, error)
	SimilarLines(label string, topK int) ([]domain.SearchResult, error)
}

type view int

const (
	viewSegments view = iota
	viewDiagnostics
	viewGram
	viewGlyphs
	viewResults
	viewCount
)

var viewNames = [...]string{"Segments", "Diagnostics", "Similarity", "Glyphs", "Results"}

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	service  AnalysisPort
	analysis *service.Analysis
	input    textinput.Model
	viewport viewport.Model
	view     view
	status   string
	ready    bool

	match   *search.Match
	similar []domain.SearchResult
	anchor  string
}

// New creates a new TUI model instance.
func New(svc AnalysisPort, a *service.Analysis) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "glyph codes to search, or @label for similar lines"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		service:  svc,
		analysis: a,
		input:    ti,
		viewport: vp,
		status:   fmt.Sprintf("%d lines, K=%d. Tab switches views.", len(a.Lines), a.Selection.BestK),
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header and tabs, status, spacer
		vh := msg.Height - reserved
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.render())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "tab":
			m.view = (m.view + 1) % viewCount
			m.viewport.SetContent(m.render())
			m.viewport.GotoTop()
			return m, nil
		case "shift+tab":
			m.view = (m.view + viewCount - 1) % viewCount
			m.viewport.SetContent(m.render())
			m.viewport.GotoTop()
			return m, nil
		case "up", "down", "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		case "enter":
			if q := strings.TrimSpace(m.input.Value()); q != "" {
				m.runQuery(q)
				m.view = viewResults
				m.viewport.SetContent(m.render())
				m.viewport.GotoTop()
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) runQuery(q string) {
	m.match, m.similar, m.anchor = nil, nil, ""
	if label, ok := strings.CutPrefix(q, "@"); ok {
		res, err := m.service.SimilarLines(label, 10)
		if err != nil {
			m.status = "Error: " + err.Error()
			return
		}
		m.similar, m.anchor = res, strings.TrimSpace(label)
		m.status = fmt.Sprintf("%d lines similar to %s", len(res), m.anchor)
		return
	}
	match, err := m.service.Search(q)
	if err != nil {
		m.status = "Error: " + err.Error()
		return
	}
	m.match = match
	m.status = fmt.Sprintf("%q found in %d lines", match.Query, len(match.Labels))
}

// View renders the TUI layout and current view.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Glyph Segmentation")
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	body := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + m.tabs() + "\n" + body + "\n" + input + "\n" + status
}

func (m Model) tabs() string {
	parts := make([]string, len(viewNames))
	for i, name := range viewNames {
		if view(i) == m.view {
			parts[i] = activeTabStyle.Render(name)
		} else {
			parts[i] = tabStyle.Render(name)
		}
	}
	return strings.Join(parts, " ")
}

func (m Model) render() string {
	switch m.view {
	case viewDiagnostics:
		return renderDiagnostics(m.analysis)
	case viewGram:
		return renderHeatmap(m.analysis, m.viewport.Width-4)
	case viewGlyphs:
		return renderGlyphs(m.analysis)
	case viewResults:
		return m.renderResults()
	default:
		return renderSegments(m.analysis)
	}
}

func renderSegments(a *service.Analysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s over %s vectors (%d features), breakpoints %v\n",
		a.CostModel, a.Vectorizer, a.Features, a.Selection.Best.Breakpoints)
	for _, s := range a.Segments {
		first, last := a.Lines[s.Start].Label, a.Lines[s.End-1].Label
		b.WriteString("\n")
		b.WriteString(titleStyle.Render(fmt.Sprintf("Segment %d  lines %d-%d  (%s .. %s)", s.Index+1, s.Start, s.End-1, first, last)))
		b.WriteString("\n")
		b.WriteString(highlightStyle.Render(strings.Join(s.Distinctive, " ")))
		b.WriteString("\n")
	}
	return b.String()
}

func renderDiagnostics(a *service.Analysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%4s  %12s  %12s  %12s  %s\n", "K", "cost", "mse", "aic", "breakpoints")
	for _, d := range a.Selection.Diagnostics {
		if d.Skipped() {
			fmt.Fprintf(&b, "%4d  skipped: %v\n", d.K, d.Err)
			continue
		}
		line := fmt.Sprintf("%4d  %12.4f  %12.4g  %12.4f  %v", d.K, d.Cost, d.MSE, d.AIC, d.Breakpoints)
		if d.Degenerate {
			line += "  (mse floor)"
		}
		if d.K == a.Selection.BestK {
			line = highlightStyle.Render(line + "  *")
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

var shades = []rune(" ░▒▓█")

// renderHeatmap draws the Gram matrix, averaging blocks so the map fits in
// width columns. Segment breakpoints are marked along the top.
func renderHeatmap(a *service.Analysis, width int) string {
	n := a.Gram.Len()
	cells := min(n, max(width, 10))
	step := float64(n) / float64(cells)

	var b strings.Builder
	marks := []rune(strings.Repeat(" ", cells))
	for _, bk := range a.Selection.Best.Breakpoints {
		if c := int(float64(bk) / step); c < cells {
			marks[c] = '|'
		}
	}
	b.WriteString(string(marks) + "\n")
	for r := 0; r < cells; r++ {
		r0, r1 := int(float64(r)*step), max(int(float64(r+1)*step), int(float64(r)*step)+1)
		for c := 0; c < cells; c++ {
			c0, c1 := int(float64(c)*step), max(int(float64(c+1)*step), int(float64(c)*step)+1)
			sum, cnt := 0.0, 0
			for i := r0; i < r1 && i < n; i++ {
				for j := c0; j < c1 && j < n; j++ {
					sum += a.Gram.At(i, j)
					cnt++
				}
			}
			b.WriteRune(shade(sum / float64(max(cnt, 1))))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func shade(v float64) rune {
	if v <= 0 {
		return shades[0]
	}
	i := int(v * float64(len(shades)))
	if i >= len(shades) {
		i = len(shades) - 1
	}
	return shades[i]
}

func renderGlyphs(a *service.Analysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d sequences\n\n", a.Sequences)
	b.WriteString(titleStyle.Render("Bigrams") + "\n")
	for _, s := range a.Bigrams {
		b.WriteString("  " + s.String() + "\n")
	}
	b.WriteString(titleStyle.Render("Trigrams") + "\n")
	for _, s := range a.Trigrams {
		b.WriteString("  " + s.String() + "\n")
	}
	names := make([]string, 0, len(a.Patterns))
	for name := range a.Patterns {
		names = append(names, name)
	}
	sort.Strings(names)
	b.WriteString(titleStyle.Render("Repetition") + "\n")
	for _, name := range names {
		p := a.Patterns[name]
		fmt.Fprintf(&b, "  %s  %d sequences (%.1f%%)\n", name, len(p.Sequences), 100*p.Share)
	}
	b.WriteString(titleStyle.Render("Clustered") + "\n  " + strings.Join(a.Clustered, " ") + "\n")
	b.WriteString(titleStyle.Render("Dispersed") + "\n  " + strings.Join(a.Dispersed, " ") + "\n")
	return b.String()
}

func (m Model) renderResults() string {
	switch {
	case m.match != nil:
		if len(m.match.Labels) == 0 {
			return fmt.Sprintf("No lines contain %q.", m.match.Query)
		}
		return titleStyle.Render(m.match.Query) + "\n" + strings.Join(m.match.Labels, "\n")
	case m.anchor != "":
		var b strings.Builder
		b.WriteString(titleStyle.Render("Similar to "+m.anchor) + "\n")
		for _, r := range m.similar {
			fmt.Fprintf(&b, "%-12s %.3f  %s\n", r.Line.Label, r.Score, r.Line.Text())
		}
		return b.String()
	}
	return "No results yet."
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	titleStyle     = lipgloss.NewStyle().Bold(true).Underline(true)
	tabStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Padding(0, 1)
	activeTabStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("10")).Padding(0, 1)
)
