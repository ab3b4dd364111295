package chunker

import (
	"fmt"
	"strings"

	"glyphseg/internal/domain"
)

// BreakpointChunker groups consecutive lines into segments at breakpoints.
type BreakpointChunker struct{}

func NewBreakpointChunker() *BreakpointChunker { return &BreakpointChunker{} }

// Chunk returns len(breakpoints)+1 segments covering lines. Breakpoints are
// 0-based, strictly increasing and strictly inside (0, len(lines)).
func (c *BreakpointChunker) Chunk(lines []domain.Line, breakpoints []int) ([]domain.Segment, error) {
	if len(lines) == 0 {
		return nil, nil
	}
	bounds := make([]int, 0, len(breakpoints)+2)
	bounds = append(bounds, 0)
	for _, b := range breakpoints {
		if b <= bounds[len(bounds)-1] || b >= len(lines) {
			return nil, fmt.Errorf("invalid breakpoint %d for %d lines", b, len(lines))
		}
		bounds = append(bounds, b)
	}
	bounds = append(bounds, len(lines))

	segments := make([]domain.Segment, 0, len(bounds)-1)
	for i := 0; i+1 < len(bounds); i++ {
		start, end := bounds[i], bounds[i+1]
		texts := make([]string, 0, end-start)
		for _, l := range lines[start:end] {
			texts = append(texts, l.Text())
		}
		segments = append(segments, domain.Segment{
			Index: i,
			Start: start,
			End:   end,
			Text:  strings.Join(texts, " "),
		})
	}
	return segments, nil
}
