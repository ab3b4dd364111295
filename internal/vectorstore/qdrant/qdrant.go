package qdrant

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"glyphseg/internal/domain"
)

// Storage is a minimal REST client to Qdrant.
// It assumes cosine distance and recreates the collection on Init.
type Storage struct {
	url        string
	apiKey     string
	collection string
	dimension  int
	client     *http.Client
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func NewStorage(cfg Config) *Storage {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	collection := cfg.Collection
	if collection == "" {
		collection = "glyph_lines"
	}
	return &Storage{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: collection,
		client:     &http.Client{Timeout: timeout},
	}
}

func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.dimension = dimension
	// vocabulary size changes between corpora, so the collection is rebuilt
	if err := s.Clear(); err != nil {
		return err
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	return s.do(http.MethodPut, s.collectionURL(""), body, nil)
}

// Upsert stores each line under its corpus index.
func (s *Storage) Upsert(lines []domain.Line, vectors [][]float64) error {
	if len(lines) != len(vectors) {
		return errors.New("lines and vectors length mismatch")
	}
	points := make([]map[string]any, len(lines))
	for i, l := range lines {
		if len(vectors[i]) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
		points[i] = map[string]any{
			"id":     l.Index,
			"vector": vectors[i],
			"payload": map[string]any{
				"label":  l.Label,
				"index":  l.Index,
				"glyphs": l.Glyphs,
			},
		}
	}
	body := map[string]any{"points": points}
	return s.do(http.MethodPut, s.collectionURL("/points?wait=true"), body, nil)
}

type point struct {
	Score   float64 `json:"score"`
	Payload struct {
		Label  string   `json:"label"`
		Index  int      `json:"index"`
		Glyphs []string `json:"glyphs"`
	} `json:"payload"`
}

func (s *Storage) Search(vector []float64, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	var resp struct {
		Result []point `json:"result"`
	}
	if err := s.do(http.MethodPost, s.collectionURL("/points/search"), req, &resp); err != nil {
		return nil, err
	}
	results := make([]domain.SearchResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		line := domain.Line{Label: r.Payload.Label, Index: r.Payload.Index, Glyphs: r.Payload.Glyphs}
		results = append(results, domain.SearchResult{Line: line, Score: r.Score})
	}
	return results, nil
}

// Clear drops the collection. A missing collection is not an error.
func (s *Storage) Clear() error {
	err := s.do(http.MethodDelete, s.collectionURL(""), nil, nil)
	var se *statusError
	if errors.As(err, &se) && se.code == http.StatusNotFound {
		return nil
	}
	return err
}

func (s *Storage) collectionURL(suffix string) string {
	return fmt.Sprintf("%s/collections/%s%s", s.url, s.collection, suffix)
}

type statusError struct {
	method, url string
	code        int
	status      string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("qdrant %s %s failed: %s", e.method, e.url, e.status)
}

func (s *Storage) do(method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return &statusError{method: method, url: url, code: resp.StatusCode, status: resp.Status}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
