package qdrant

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glyphseg/internal/domain"
)

type fakeQdrant struct {
	mu       sync.Mutex
	requests []string
	points   []map[string]any
	apiKey   string
}

func (f *fakeQdrant) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	f.apiKey = r.Header.Get("api-key")
	switch {
	case r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNotFound)
	case r.Method == http.MethodPut && r.URL.Path == "/collections/lines/points":
		var body struct {
			Points []map[string]any `json:"points"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.points = body.Points
	case r.Method == http.MethodPost:
		var out struct {
			Result []map[string]any `json:"result"`
		}
		for i, p := range f.points {
			out.Result = append(out.Result, map[string]any{"score": 1 - 0.5*float64(i), "payload": p["payload"]})
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}

func TestStorage(t *testing.T) {
	fake := &fakeQdrant{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	s := NewStorage(Config{URL: srv.URL, APIKey: "secret", Collection: "lines"})
	require.NoError(t, s.Init(2))

	lines := []domain.Line{
		{Label: "Aa1", Index: 0, Glyphs: []string{"1", "2"}},
		{Label: "Aa2", Index: 1, Glyphs: []string{"3"}},
	}
	require.NoError(t, s.Upsert(lines, [][]float64{{1, 0}, {0, 1}}))

	res, err := s.Search([]float64{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, lines[0], res[0].Line)
	assert.Equal(t, 1.0, res[0].Score)
	assert.Equal(t, "Aa2", res[1].Line.Label)

	assert.Equal(t, []string{
		"DELETE /collections/lines",
		"PUT /collections/lines",
		"PUT /collections/lines/points",
		"POST /collections/lines/points/search",
	}, fake.requests)
	assert.Equal(t, "secret", fake.apiKey)
}

func TestStorage_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewStorage(Config{URL: srv.URL})
	assert.Error(t, s.Init(0))
	assert.Error(t, s.Init(2))

	s.dimension = 2
	assert.Error(t, s.Upsert([]domain.Line{{}}, nil))
	assert.Error(t, s.Upsert([]domain.Line{{}}, [][]float64{{1}}))
	_, err := s.Search([]float64{1, 0}, 1)
	assert.Error(t, err)
}
