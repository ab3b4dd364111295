package segment

import (
	"errors"
	"fmt"
)

var (
	// ErrNotEnoughPoints is returned when a cost query spans fewer lines than the minimum segment size.
	ErrNotEnoughPoints = errors.New("not enough points in segment")
	// ErrInfeasibleBreakpointCount is returned when K breakpoints cannot fit the corpus.
	ErrInfeasibleBreakpointCount = errors.New("infeasible breakpoint count")
	// ErrNoFeasibleSegmentation is returned when no candidate K could be partitioned.
	ErrNoFeasibleSegmentation = errors.New("no feasible segmentation")
	// ErrEmptyCorpus is returned when the input matrix has no rows.
	ErrEmptyCorpus = errors.New("empty corpus")
	// ErrMalformedInput is returned for ragged rows, non-finite values or out-of-range indices.
	ErrMalformedInput = errors.New("malformed input")
	// ErrCorpusTooLarge is returned when the quadratic tables would exceed the configured line limit.
	ErrCorpusTooLarge = errors.New("corpus too large")
)

// NotEnoughPointsError describes a cost query on a segment shorter than MinSize.
type NotEnoughPointsError struct {
	Start   int
	End     int
	MinSize int
}

func (e *NotEnoughPointsError) Error() string {
	return fmt.Sprintf("segment [%d,%d) has %d points, need at least %d", e.Start, e.End, e.End-e.Start, e.MinSize)
}

func (e *NotEnoughPointsError) Unwrap() error { return ErrNotEnoughPoints }

// InfeasibleError describes a breakpoint count that cannot be satisfied.
type InfeasibleError struct {
	K       int
	N       int
	MinSize int
	Jump    int
}

func (e *InfeasibleError) Error() string {
	return fmt.Sprintf("cannot place %d breakpoints in %d lines (min_size=%d, jump=%d)", e.K, e.N, e.MinSize, e.Jump)
}

func (e *InfeasibleError) Unwrap() error { return ErrInfeasibleBreakpointCount }

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedInput, fmt.Sprintf(format, args...))
}
