package corpus

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanLine(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"plain", "001-002-003", []string{"001", "002", "003"}},
		{"parentheses", "(001)-002", []string{"001", "002"}},
		{"glyph 128", "128-004", []string{"001V.076", "004"}},
		{"erasure", "001-999-002", []string{"001", "002"}},
		{"ligature split", "001.076.002", []string{"001.076", "002"}},
		{"dropped fillers", "001-022h-002-021h-003", []string{"001", "002", "003"}},
		{"empty parts", "-001--002-", []string{"001", "002"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanLine(tt.raw))
		})
	}
}

func TestEncode(t *testing.T) {
	tests := map[string]string{
		"001V.076": "1V.76",
		"022h":     "22h",
		"600":      "600",
		"000":      "0",
		"?":        "?",
		"010.001":  "10.1",
	}
	for in, want := range tests {
		assert.Equal(t, want, Encode(in), in)
	}
}

func TestRead(t *testing.T) {
	t.Run("Should read label and glyph columns from CSV", func(t *testing.T) {
		recs, err := Read(strings.NewReader("Ca1,001-002\r\n\nCa2,003-004,extra\n"), "C.csv", true)
		require.NoError(t, err)

		assert.Equal(t, []Record{{Label: "Ca1", Raw: "001-002"}, {Label: "Ca2", Raw: "003-004"}}, recs)
	})

	t.Run("Should fail on a row without glyph column", func(t *testing.T) {
		_, err := Read(strings.NewReader("Ca1\n"), "C.csv", true)
		assert.ErrorContains(t, err, "line 1")
	})

	t.Run("Should label plain text lines by position", func(t *testing.T) {
		recs, err := Read(strings.NewReader("001-002\n\n003\n"), "t.txt", false)
		require.NoError(t, err)

		assert.Equal(t, []Record{{Label: "t.txt:1", Raw: "001-002"}, {Label: "t.txt:3", Raw: "003"}}, recs)
	})
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "A.csv")
	b := filepath.Join(dir, "B.txt")
	require.NoError(t, os.WriteFile(a, []byte("Aa1,001-128\nAa2,(010)-999-002\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("004.076.005\n"), 0o644))

	lines, err := Load(a, b)
	require.NoError(t, err)

	require.Len(t, lines, 3)
	assert.Equal(t, "Aa1", lines[0].Label)
	assert.Equal(t, []string{"1", "1V.76"}, lines[0].Glyphs)
	assert.Equal(t, []string{"10", "2"}, lines[1].Glyphs)
	assert.Equal(t, "B.txt:1", lines[2].Label)
	assert.Equal(t, 2, lines[2].Index)
	assert.Equal(t, "4.76 5", lines[2].Text())

	_, err = Load(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = Load(empty)
	assert.ErrorIs(t, err, ErrNoLines)
}

func TestSequences(t *testing.T) {
	lines := [][]string{
		{"1", "2", "3.76", "4", "5", "6", "7.76", "8"},
		{"9.76", "10"},
	}

	seqs := SplitSequences(lines)
	assert.Equal(t, [][]string{{"1", "2"}, {"3.76", "4", "5", "6"}}, seqs)

	all, filtered := ProcessSequences(seqs)
	assert.Equal(t, [][]string{{"1", "2"}, {"3", "<76>", "4", "5", "6"}}, all)
	assert.Equal(t, [][]string{{"3", "<76>", "4", "5", "6"}}, filtered)
	// input untouched
	assert.Equal(t, "3.76", seqs[1][0])
}

func TestProcessSequences_EmptyHead(t *testing.T) {
	_, filtered := ProcessSequences([][]string{{".76", "1", "2", "3"}})
	assert.Empty(t, filtered)
}

func TestProcessSequences_KeepsUnknownGlyphs(t *testing.T) {
	all, filtered := ProcessSequences([][]string{{"3.76", "?", "4", "5"}})
	want := [][]string{{"3", "<76>", "?", "4", "5"}}
	assert.Equal(t, want, all)
	assert.Equal(t, want, filtered)
}
