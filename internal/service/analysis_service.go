package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"glyphseg/internal/collocation"
	"glyphseg/internal/config"
	"glyphseg/internal/corpus"
	"glyphseg/internal/dispersion"
	"glyphseg/internal/domain"
	"glyphseg/internal/embedding"
	"glyphseg/internal/logger"
	"glyphseg/internal/search"
	"glyphseg/internal/segment"
	"glyphseg/internal/store"
)

// ErrNotAnalyzed is returned by queries issued before a successful Analyze.
var ErrNotAnalyzed = errors.New("no corpus analysed yet")

// Settings tunes one analysis.
type Settings struct {
	CostModel  string
	MinSize    int
	Jump       int
	Candidates []int
	Workers    int
	MaxLines   int
	// ForceK skips model selection when non-negative.
	ForceK int

	DistinctiveTopN int
	CollocationTopN int
	ClusterMinCount int
	ClusterAlpha    float64
}

// SettingsFromConfig copies the analysis settings out of cfg. Model
// selection is not forced.
func SettingsFromConfig(cfg *config.AppConfig) Settings {
	return Settings{
		CostModel:       cfg.Segmentation.Cost,
		MinSize:         cfg.Segmentation.MinSize,
		Jump:            cfg.Segmentation.Jump,
		Candidates:      cfg.Segmentation.Candidates,
		Workers:         cfg.Segmentation.Workers,
		MaxLines:        cfg.Segmentation.MaxLines,
		ForceK:          -1,
		DistinctiveTopN: cfg.Analysis.DistinctiveTopN,
		CollocationTopN: cfg.Analysis.CollocationTopN,
		ClusterMinCount: cfg.Analysis.ClusterMinCount,
		ClusterAlpha:    cfg.Analysis.ClusterAlpha,
	}
}

// RunStore persists finished analyses.
type RunStore interface {
	Save(run store.Run) (store.Run, error)
}

// Analysis is the result of segmenting one corpus.
type Analysis struct {
	RunID      string
	Sources    []string
	Lines      []domain.Line
	Vectorizer string
	CostModel  string
	Features   int
	Gram       *segment.GramMatrix
	Selection  *segment.Selection
	Segments   []domain.Segment

	Bigrams   []collocation.Scored
	Trigrams  []collocation.Scored
	Patterns  map[string]collocation.Pattern
	Sequences int

	Clustered []string
	Dispersed []string
}

// AnalysisService runs the segmentation pipeline and answers queries about
// the last analysed corpus.
type AnalysisService struct {
	vectorizer embedding.Vectorizer
	chunker    domain.Chunker
	summarizer domain.Summarizer
	lines      domain.LineStore
	runs       RunStore
	settings   Settings
	log        logger.Logger

	analysis *Analysis
	index    *search.Index
	byLabel  map[string]int
}

// NewAnalysisService wires the pipeline. runs may be nil to skip persistence.
func NewAnalysisService(v embedding.Vectorizer, ch domain.Chunker, sum domain.Summarizer, lines domain.LineStore, runs RunStore, settings Settings, log logger.Logger) *AnalysisService {
	if log == nil {
		log = logger.Nop()
	}
	return &AnalysisService{
		vectorizer: v,
		chunker:    ch,
		summarizer: sum,
		lines:      lines,
		runs:       runs,
		settings:   settings,
		log:        log,
	}
}

// Analysis returns the last successful analysis, or nil.
func (s *AnalysisService) Analysis() *Analysis { return s.analysis }

// Analyze loads paths and segments the resulting corpus.
func (s *AnalysisService) Analyze(ctx context.Context, paths []string) (*Analysis, error) {
	lines, err := corpus.Load(paths...)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	s.log.Info("corpus loaded", "files", len(paths), "lines", len(lines))

	texts := make([]string, len(lines))
	for i, l := range lines {
		texts[i] = l.Text()
	}
	if err := s.vectorizer.Prepare(texts); err != nil {
		return nil, fmt.Errorf("prepare %s vectorizer: %w", s.vectorizer.Name(), err)
	}
	rows, err := embedding.EmbedAll(s.vectorizer, texts)
	if err != nil {
		return nil, fmt.Errorf("vectorize lines: %w", err)
	}

	engine, err := segment.NewEngine(rows, s.engineOptions()...)
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}
	sel, err := s.selectPartition(ctx, engine)
	if err != nil {
		return nil, err
	}
	s.log.Info("segmentation selected", "k", sel.BestK, "aic", sel.BestAIC, "breakpoints", sel.Best.Breakpoints)

	segments, err := s.chunker.Chunk(lines, sel.Best.Breakpoints)
	if err != nil {
		return nil, fmt.Errorf("chunk segments: %w", err)
	}
	segTexts := make([]string, len(segments))
	for i, sg := range segments {
		segTexts[i] = sg.Text
	}
	distinct, err := s.summarizer.Summarize(segTexts, s.settings.DistinctiveTopN)
	if err != nil {
		return nil, fmt.Errorf("distinctive glyphs: %w", err)
	}
	for i := range segments {
		segments[i].Distinctive = distinct[i]
	}

	a := &Analysis{
		Sources:    paths,
		Lines:      lines,
		Vectorizer: s.vectorizer.Name(),
		CostModel:  engine.CostModel(),
		Features:   s.vectorizer.Dimension(),
		Gram:       engine.Gram(),
		Selection:  sel,
		Segments:   segments,
	}
	if err := s.analyzeGlyphs(a); err != nil {
		return nil, err
	}

	if err := s.lines.Init(s.vectorizer.Dimension()); err != nil {
		return nil, fmt.Errorf("init line store: %w", err)
	}
	if err := s.lines.Upsert(lines, rows); err != nil {
		return nil, fmt.Errorf("index lines: %w", err)
	}

	if s.runs != nil {
		run, err := s.runs.Save(RunRecord(a))
		if err != nil {
			return nil, fmt.Errorf("save run: %w", err)
		}
		a.RunID = run.ID
		s.log.Debug("run saved", "id", run.ID)
	}

	s.analysis = a
	s.index = search.NewIndex(lines)
	s.byLabel = make(map[string]int, len(lines))
	for i, l := range lines {
		if _, dup := s.byLabel[l.Label]; !dup {
			s.byLabel[l.Label] = i
		}
	}
	return a, nil
}

func (s *AnalysisService) engineOptions() []segment.Option {
	opts := []segment.Option{
		segment.WithMinSize(s.settings.MinSize),
		segment.WithJump(s.settings.Jump),
		segment.WithWorkers(s.settings.Workers),
		segment.WithMaxLines(s.settings.MaxLines),
		segment.WithLogger(s.log),
	}
	if s.settings.CostModel == "l2" {
		opts = append(opts, segment.WithCostModel(segment.L2Model{}))
	}
	return opts
}

// selectPartition scans the configured candidates, or evaluates the single
// forced K and surfaces its own error when it cannot be partitioned.
func (s *AnalysisService) selectPartition(ctx context.Context, engine *segment.Engine) (*segment.Selection, error) {
	candidates := s.settings.Candidates
	if s.settings.ForceK >= 0 {
		candidates = []int{s.settings.ForceK}
	}
	sel, err := engine.Select(ctx, candidates)
	if err == nil {
		return sel, nil
	}
	if s.settings.ForceK >= 0 && sel != nil && len(sel.Diagnostics) == 1 && sel.Diagnostics[0].Err != nil {
		err = sel.Diagnostics[0].Err
	}
	return nil, fmt.Errorf("select segmentation: %w", err)
}

func (s *AnalysisService) analyzeGlyphs(a *Analysis) error {
	glyphs := corpus.Glyphs(a.Lines)
	_, seqs := corpus.ProcessSequences(corpus.SplitSequences(glyphs))
	a.Sequences = len(seqs)

	var err error
	a.Bigrams, err = collocation.Bigrams(seqs, corpus.LigatureMarker, collocation.LikelihoodRatio, s.settings.CollocationTopN)
	if err != nil {
		return fmt.Errorf("bigram collocations: %w", err)
	}
	a.Trigrams, err = collocation.Trigrams(seqs, corpus.LigatureMarker, collocation.LikelihoodRatio, s.settings.CollocationTopN)
	if err != nil {
		return fmt.Errorf("trigram collocations: %w", err)
	}
	a.Patterns = collocation.RepetitionPatterns(seqs)
	a.Clustered, a.Dispersed = dispersion.Analyze(glyphs, s.settings.ClusterMinCount, s.settings.ClusterAlpha)
	return nil
}

// Search finds the lines containing the glyph n-gram in query.
func (s *AnalysisService) Search(query string) (*search.Match, error) {
	if s.index == nil {
		return nil, ErrNotAnalyzed
	}
	return s.index.Query(query)
}

// SimilarLines returns up to topK lines most similar to the line labelled
// label, excluding the line itself.
func (s *AnalysisService) SimilarLines(label string, topK int) ([]domain.SearchResult, error) {
	if s.analysis == nil {
		return nil, ErrNotAnalyzed
	}
	label = strings.TrimSpace(label)
	i, ok := s.byLabel[label]
	if !ok {
		return nil, fmt.Errorf("unknown line %q", label)
	}
	if topK <= 0 {
		topK = 5
	}
	line := s.analysis.Lines[i]
	vec, err := s.vectorizer.Embed(line.Text())
	if err != nil {
		return nil, err
	}
	res, err := s.lines.Search(vec, topK+1)
	if err != nil {
		return nil, err
	}
	out := make([]domain.SearchResult, 0, topK)
	for _, r := range res {
		if r.Line.Index == line.Index && r.Line.Label == line.Label {
			continue
		}
		if len(out) == topK {
			break
		}
		out = append(out, r)
	}
	return out, nil
}

// RunRecord converts a to its persisted form.
func RunRecord(a *Analysis) store.Run {
	sel := a.Selection
	diags := make([]store.Diagnostic, len(sel.Diagnostics))
	for i, d := range sel.Diagnostics {
		diags[i] = store.Diagnostic{
			K:           d.K,
			Breakpoints: d.Breakpoints,
			Cost:        d.Cost,
			MSE:         d.MSE,
			AIC:         d.AIC,
			Degenerate:  d.Degenerate,
		}
		if d.Err != nil {
			diags[i].Error = d.Err.Error()
		}
	}
	return store.Run{
		Sources:     a.Sources,
		Lines:       len(a.Lines),
		CostModel:   a.CostModel,
		BestK:       sel.BestK,
		BestAIC:     sel.BestAIC,
		Breakpoints: sel.Best.Breakpoints,
		Diagnostics: diags,
	}
}
