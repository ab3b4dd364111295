// Package corpus reads transcribed glyph lines and turns them into
// normalized glyph code sequences.
package corpus

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"glyphseg/internal/domain"
)

// ErrNoLines is returned when the given sources hold no glyph lines.
var ErrNoLines = errors.New("no glyph lines found")

// Record is one raw line of a source file.
type Record struct {
	Label string
	Raw   string
}

// ReadFile reads records from path. Files ending in .csv hold
// "label,glyphs" rows; any other file holds one glyph line per text line.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	recs, err := Read(f, filepath.Base(path), strings.EqualFold(filepath.Ext(path), ".csv"))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return recs, nil
}

// Read parses records from r. name labels lines of non-CSV sources.
func Read(r io.Reader, name string, csv bool) ([]Record, error) {
	var recs []Record
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		if !csv {
			recs = append(recs, Record{Label: name + ":" + strconv.Itoa(lineNo), Raw: strings.TrimSpace(text)})
			continue
		}
		fields := strings.Split(text, ",")
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: expected label,glyphs", lineNo)
		}
		recs = append(recs, Record{Label: strings.TrimSpace(fields[0]), Raw: strings.TrimSpace(fields[1])})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}

// Lines cleans and encodes records into indexed lines.
func Lines(recs []Record) []domain.Line {
	lines := make([]domain.Line, 0, len(recs))
	for _, r := range recs {
		codes := CleanLine(r.Raw)
		glyphs := make([]string, len(codes))
		for i, c := range codes {
			glyphs[i] = Encode(c)
		}
		lines = append(lines, domain.Line{Label: r.Label, Index: len(lines), Glyphs: glyphs})
	}
	return lines
}

// Load reads, cleans and encodes every path into one ordered line sequence.
func Load(paths ...string) ([]domain.Line, error) {
	var recs []Record
	for _, p := range paths {
		r, err := ReadFile(p)
		if err != nil {
			return nil, err
		}
		recs = append(recs, r...)
	}
	if len(recs) == 0 {
		return nil, ErrNoLines
	}
	return Lines(recs), nil
}
