package segment

import (
	"context"
	"fmt"

	"glyphseg/internal/logger"
)

// DefaultMaxLines bounds the corpus size so the O(n²) tables stay in memory.
const DefaultMaxLines = 5000

type options struct {
	minSize  int
	jump     int
	workers  int
	maxLines int
	model    CostModel
	log      logger.Logger
}

// Option configures an Engine.
type Option func(*options)

// WithMinSize sets the minimum segment length.
func WithMinSize(n int) Option { return func(o *options) { o.minSize = n } }

// WithJump restricts breakpoints to multiples of n.
func WithJump(n int) Option { return func(o *options) { o.jump = n } }

// WithWorkers sets how many candidate K values are evaluated concurrently.
func WithWorkers(n int) Option { return func(o *options) { o.workers = n } }

// WithMaxLines sets the largest accepted corpus. Zero or less disables the check.
func WithMaxLines(n int) Option { return func(o *options) { o.maxLines = n } }

// WithCostModel replaces the cosine cost. Models implementing MinSizeFitter
// are fitted with the WithMinSize value; any other model must produce a Cost
// with that min size or NewEngine fails with ErrMalformedInput.
func WithCostModel(m CostModel) Option { return func(o *options) { o.model = m } }

// WithLogger sets the logger used for scan warnings.
func WithLogger(l logger.Logger) Option { return func(o *options) { o.log = l } }

// Engine owns the Gram matrix and cost tables of one corpus and answers
// partition and model-selection requests against them.
type Engine struct {
	rows  [][]float64
	gram  *GramMatrix
	cost  Cost
	part  *Partitioner
	sel   *Selector
	model string
	log   logger.Logger
}

// NewEngine builds the similarity model for rows.
func NewEngine(rows [][]float64, opts ...Option) (*Engine, error) {
	o := options{
		minSize:  DefaultMinSize,
		jump:     1,
		workers:  1,
		maxLines: DefaultMaxLines,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Nop()
	}
	if len(rows) == 0 {
		return nil, ErrEmptyCorpus
	}
	if o.maxLines > 0 && len(rows) > o.maxLines {
		return nil, fmt.Errorf("%w: %d lines exceeds limit of %d", ErrCorpusTooLarge, len(rows), o.maxLines)
	}
	if o.minSize < 1 {
		return nil, malformed("min size %d must be positive", o.minSize)
	}

	gram, err := BuildGram(rows)
	if err != nil {
		return nil, err
	}
	var (
		cost  Cost
		model = "cosine"
	)
	switch m := o.model.(type) {
	case nil, CosineModel, *CosineModel:
		cost, err = NewCosineCost(gram, o.minSize)
	case MinSizeFitter:
		model = m.Name()
		cost, err = m.FitMinSize(rows, o.minSize)
	default:
		model = m.Name()
		cost, err = m.Fit(rows)
		if err == nil && cost.MinSize() != o.minSize {
			err = malformed("model fitted with min size %d, want %d", cost.MinSize(), o.minSize)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("fit %s cost: %w", model, err)
	}
	part, err := NewPartitioner(cost, o.jump)
	if err != nil {
		return nil, err
	}
	sel, err := NewSelector(rows, part, o.workers, o.log)
	if err != nil {
		return nil, err
	}
	o.log.Debug("segmentation engine ready", "lines", len(rows), "features", len(rows[0]), "cost", model, "min_size", o.minSize, "jump", o.jump)
	return &Engine{rows: rows, gram: gram, cost: cost, part: part, sel: sel, model: model, log: o.log}, nil
}

// Len returns the number of lines.
func (e *Engine) Len() int { return len(e.rows) }

// Gram returns the cached similarity matrix.
func (e *Engine) Gram() *GramMatrix { return e.gram }

// Cost returns the fitted cost.
func (e *Engine) Cost() Cost { return e.cost }

// CostModel names the fitted cost.
func (e *Engine) CostModel() string { return e.model }

// Partition returns the optimal partition with k breakpoints.
func (e *Engine) Partition(k int) (*Partition, error) {
	return e.part.Partition(k)
}

// Select runs model selection over the candidate breakpoint counts.
func (e *Engine) Select(ctx context.Context, candidates []int) (*Selection, error) {
	return e.sel.Select(ctx, candidates)
}
