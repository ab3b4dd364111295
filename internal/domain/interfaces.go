package domain

import "strings"

// Line is one transcribed glyph line of the corpus.
type Line struct {
	// Label identifies the line in the source (e.g. "Ca1" or "tablet.txt:3").
	Label  string
	Index  int
	Glyphs []string
}

// Text joins the glyph codes with single spaces.
func (l Line) Text() string {
	return JoinGlyphs(l.Glyphs)
}

// Segment is a contiguous run of lines produced by a partition.
type Segment struct {
	Index int
	// Start and End are 0-based line indices, End exclusive.
	Start int
	End   int
	Text  string
	// Distinctive holds the highest-weighted glyph codes of the segment.
	Distinctive []string
}

// SearchResult is a line matching a similarity query.
type SearchResult struct {
	Line  Line
	Score float64
}

// Chunker groups lines into segments at the given breakpoints.
type Chunker interface {
	Chunk(lines []Line, breakpoints []int) ([]Segment, error)
}

// LineStore keeps line vectors and answers similarity queries.
type LineStore interface {
	Init(dimension int) error
	Upsert(lines []Line, vectors [][]float64) error
	Search(vector []float64, topK int) ([]SearchResult, error)
	Clear() error
}

// Summarizer extracts the distinctive glyph codes of each segment text.
type Summarizer interface {
	Summarize(segments []string, topN int) ([][]string, error)
}

// JoinGlyphs joins glyph codes with single spaces.
func JoinGlyphs(glyphs []string) string {
	return strings.Join(glyphs, " ")
}
