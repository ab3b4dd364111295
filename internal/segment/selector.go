package segment

import (
	"context"
	"fmt"
	"math"
	"slices"

	"golang.org/x/sync/errgroup"

	"glyphseg/internal/logger"
)

// MSEFloor bounds the reconstruction error inside the AIC logarithm.
// Candidates at or below it all score n*log(MSEFloor) + 2*(K+1).
const MSEFloor = 1e-12

// Diagnostic is one row of the model-selection table.
type Diagnostic struct {
	K           int
	Breakpoints []int
	Cost        float64
	MSE         float64
	AIC         float64
	// Degenerate marks an MSE at or below MSEFloor.
	Degenerate bool
	// Err is set when K was skipped.
	Err error
}

// Skipped reports whether the candidate failed to partition.
func (d Diagnostic) Skipped() bool { return d.Err != nil }

// Selection is the outcome of a model-selection scan.
type Selection struct {
	BestK       int
	BestAIC     float64
	Best        *Partition
	Diagnostics []Diagnostic
}

// AIC returns n*log(mse) + 2*segments, flooring mse at MSEFloor.
// degenerate is true when the floor was applied.
func AIC(n int, mse float64, segments int) (aic float64, degenerate bool) {
	if mse <= MSEFloor {
		mse = MSEFloor
		degenerate = true
	}
	return float64(n)*math.Log(mse) + 2*float64(segments), degenerate
}

// Selector scans candidate breakpoint counts and picks the one minimizing AIC.
type Selector struct {
	rows    [][]float64
	part    *Partitioner
	workers int
	log     logger.Logger
}

// NewSelector scores partitions from part against the original rows.
func NewSelector(rows [][]float64, part *Partitioner, workers int, log logger.Logger) (*Selector, error) {
	if part == nil {
		return nil, malformed("nil partitioner")
	}
	if len(rows) != part.cost.Len() {
		return nil, malformed("%d rows for a cost fitted on %d lines", len(rows), part.cost.Len())
	}
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Selector{rows: rows, part: part, workers: workers, log: log}, nil
}

// Select partitions the corpus for every K in candidates and returns the
// best-scoring one. Infeasible candidates are skipped and kept in the
// diagnostic table. Ties on AIC go to the smaller K.
func (s *Selector) Select(ctx context.Context, candidates []int) (*Selection, error) {
	ks := normalizeCandidates(candidates)
	if len(ks) == 0 {
		return nil, fmt.Errorf("%w: no candidate breakpoint counts", ErrNoFeasibleSegmentation)
	}

	diags := make([]Diagnostic, len(ks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, k := range ks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			diags[i] = s.evaluate(k)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sel := &Selection{BestK: -1, BestAIC: math.Inf(1), Diagnostics: diags}
	for _, d := range diags {
		if d.Skipped() {
			s.log.Warn("skipping breakpoint count", "k", d.K, "err", d.Err)
			continue
		}
		if d.Degenerate {
			s.log.Debug("reconstruction error at floor", "k", d.K, "floor", MSEFloor)
		}
		if d.AIC < sel.BestAIC {
			sel.BestK = d.K
			sel.BestAIC = d.AIC
			sel.Best = &Partition{Breakpoints: d.Breakpoints, Cost: d.Cost}
		}
	}
	if sel.Best == nil {
		return sel, ErrNoFeasibleSegmentation
	}
	s.log.Debug("model selection finished", "best_k", sel.BestK, "aic", sel.BestAIC, "candidates", len(ks))
	return sel, nil
}

func (s *Selector) evaluate(k int) Diagnostic {
	p, err := s.part.Partition(k)
	if err != nil {
		return Diagnostic{K: k, Err: err}
	}
	mse := ReconstructionMSE(s.rows, p.Breakpoints)
	aic, degenerate := AIC(len(s.rows), mse, k+1)
	return Diagnostic{
		K:           k,
		Breakpoints: p.Breakpoints,
		Cost:        p.Cost,
		MSE:         mse,
		AIC:         aic,
		Degenerate:  degenerate,
	}
}

// ReconstructionMSE replaces every row by its segment mean and returns the
// total squared error divided by the number of rows.
func ReconstructionMSE(rows [][]float64, breakpoints []int) float64 {
	n := len(rows)
	if n == 0 {
		return 0
	}
	d := len(rows[0])
	mean := make([]float64, d)
	total := 0.0
	for _, sp := range Spans(breakpoints, n) {
		clear(mean)
		for i := sp.Start; i < sp.End; i++ {
			for f, v := range rows[i] {
				mean[f] += v
			}
		}
		inv := 1 / float64(sp.Len())
		for f := range mean {
			mean[f] *= inv
		}
		for i := sp.Start; i < sp.End; i++ {
			for f, v := range rows[i] {
				diff := v - mean[f]
				total += diff * diff
			}
		}
	}
	return total / float64(n)
}

func normalizeCandidates(ks []int) []int {
	out := slices.Clone(ks)
	slices.Sort(out)
	return slices.Compact(out)
}
