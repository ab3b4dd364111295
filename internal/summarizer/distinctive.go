package summarizer

import (
	"sort"

	"glyphseg/internal/embedding/tfidf"
)

// DistinctiveSummarizer ranks the glyph codes of each segment by TF-IDF
// weight computed across the segments.
type DistinctiveSummarizer struct{}

// NewDistinctiveSummarizer creates a TF-IDF based segment summarizer.
func NewDistinctiveSummarizer() *DistinctiveSummarizer {
	return &DistinctiveSummarizer{}
}

// Summarize returns, for each segment text, up to topN glyph codes with a
// positive weight, heaviest first. Equal weights keep vocabulary order.
func (s *DistinctiveSummarizer) Summarize(segments []string, topN int) ([][]string, error) {
	if topN <= 0 {
		topN = 10
	}
	if len(segments) == 0 {
		return nil, nil
	}
	v := tfidf.NewVectorizer()
	if err := v.Prepare(segments); err != nil {
		return nil, err
	}
	vocab := v.Vocabulary()
	out := make([][]string, len(segments))
	for i, text := range segments {
		vec, err := v.Embed(text)
		if err != nil {
			return nil, err
		}
		idxs := make([]int, 0, len(vec))
		for j, w := range vec {
			if w > 0 {
				idxs = append(idxs, j)
			}
		}
		sort.SliceStable(idxs, func(a, b int) bool { return vec[idxs[a]] > vec[idxs[b]] })
		if len(idxs) > topN {
			idxs = idxs[:topN]
		}
		glyphs := make([]string, len(idxs))
		for k, j := range idxs {
			glyphs[k] = vocab[j]
		}
		out[i] = glyphs
	}
	return out, nil
}
