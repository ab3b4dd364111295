package memory

import (
	"errors"
	"math"
	"sort"
	"sync"

	"glyphseg/internal/domain"
)

// Storage is a simple in-memory line store using brute-force cosine similarity.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float64
	lines     []domain.Line
}

func NewStorage() *Storage { return &Storage{} }

func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.vectors = nil
	s.lines = nil
	return nil
}

// Upsert stores L2-normalized copies of vectors.
func (s *Storage) Upsert(lines []domain.Line, vectors [][]float64) error {
	if len(lines) != len(vectors) {
		return errors.New("lines and vectors length mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		if len(v) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	for _, v := range vectors {
		s.vectors = append(s.vectors, normalized(v))
	}
	s.lines = append(s.lines, lines...)
	return nil
}

// Search returns the topK lines by cosine similarity, ties in insertion order.
func (s *Storage) Search(vector []float64, topK int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(vector) != s.dimension {
		return nil, errors.New("vector dimension mismatch")
	}
	if topK <= 0 {
		topK = 5
	}
	q := normalized(vector)
	scores := make([]float64, len(s.vectors))
	for i := range s.vectors {
		scores[i] = dot(s.vectors[i], q)
	}
	idxs := argsortDesc(scores)
	if topK > len(idxs) {
		topK = len(idxs)
	}
	results := make([]domain.SearchResult, 0, topK)
	for i := 0; i < topK; i++ {
		j := idxs[i]
		results = append(results, domain.SearchResult{Line: s.lines[j], Score: scores[j]})
	}
	return results, nil
}

func (s *Storage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = nil
	s.lines = nil
	return nil
}

func normalized(v []float64) []float64 {
	out := make([]float64, len(v))
	norm := math.Sqrt(dot(v, v))
	if norm == 0 {
		return out
	}
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func argsortDesc(vals []float64) []int {
	idxs := make([]int, len(vals))
	for i := range vals {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(a, b int) bool { return vals[idxs[a]] > vals[idxs[b]] })
	return idxs
}
