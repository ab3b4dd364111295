// Package search finds glyph n-grams in an indexed corpus.
package search

import (
	"fmt"
	"regexp"
	"strings"

	"glyphseg/internal/domain"
)

// Index holds the encoded text of every line, in corpus order.
type Index struct {
	labels []string
	texts  []string
}

// Match lists the lines containing a glyph n-gram.
type Match struct {
	Query  string
	Labels []string
}

// NewIndex indexes lines. The index does not retain the slice.
func NewIndex(lines []domain.Line) *Index {
	idx := &Index{
		labels: make([]string, len(lines)),
		texts:  make([]string, len(lines)),
	}
	for i, l := range lines {
		idx.labels[i] = l.Label
		idx.texts[i] = l.Text()
	}
	return idx
}

// Len returns the number of indexed lines.
func (idx *Index) Len() int { return len(idx.labels) }

// Glyphs matches each query as consecutive glyph codes separated by exactly
// one character and bounded by word boundaries. Queries without matches
// are omitted.
func (idx *Index) Glyphs(queries [][]string) ([]Match, error) {
	var out []Match
	for _, q := range queries {
		if len(q) == 0 {
			continue
		}
		re, err := compile(q)
		if err != nil {
			return nil, err
		}
		m := Match{Query: strings.Join(q, " ")}
		for i, text := range idx.texts {
			if re.MatchString(text) {
				m.Labels = append(m.Labels, idx.labels[i])
			}
		}
		if len(m.Labels) > 0 {
			out = append(out, m)
		}
	}
	return out, nil
}

// Query matches a whitespace-separated glyph n-gram.
func (idx *Index) Query(query string) (*Match, error) {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty query")
	}
	res, err := idx.Glyphs([][]string{fields})
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return &Match{Query: strings.Join(fields, " ")}, nil
	}
	return &res[0], nil
}

func compile(glyphs []string) (*regexp.Regexp, error) {
	quoted := make([]string, len(glyphs))
	for i, g := range glyphs {
		quoted[i] = regexp.QuoteMeta(g)
	}
	return regexp.Compile(`\b` + strings.Join(quoted, "(.)") + `\b`)
}
