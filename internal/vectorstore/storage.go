package vectorstore

import "glyphseg/internal/domain"

// Storage persists line vectors and supports similarity search.
type Storage interface {
	Init(dimension int) error
	Upsert(lines []domain.Line, vectors [][]float64) error
	Search(vector []float64, topK int) ([]domain.SearchResult, error)
	Clear() error
}
