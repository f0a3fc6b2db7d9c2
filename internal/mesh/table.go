package mesh

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// tableReader reads point tables (.csv, .tsv): a header row of array names and one
// row per point. Columns that do not parse as numbers in every row are dropped.
type tableReader struct{}

func (tableReader) CanRead(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv")
}

func (tableReader) Read(data []byte, name string) (*PolyData, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comma = sniffDelimiter(data)

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty point table")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	var rows [][]string
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, rec)
	}
	return pointTable(name, header, rows)
}

// pointTable turns a header and rows of cells into a shape, one array per numeric column.
func pointTable(name string, header []string, rows [][]string) (*PolyData, error) {
	p := NewPolyData(name, len(rows))
	for j, h := range header {
		col := strings.TrimSpace(h)
		if col == "" {
			continue
		}
		vals := make([]float64, len(rows))
		numeric := true
		for i, row := range rows {
			if j >= len(row) {
				numeric = false
				break
			}
			x, ok := parseNumeric(row[j])
			if !ok {
				numeric = false
				break
			}
			vals[i] = x
		}
		if !numeric {
			continue
		}
		if err := p.AddArray(&Array{Name: col, Components: 1, Values: vals}); err != nil {
			return nil, err
		}
	}
	if len(p.order) == 0 {
		return nil, errors.New("point table has no numeric columns")
	}
	return p, nil
}

// sniffDelimiter picks the most frequent of tab, semicolon and comma in the first line.
func sniffDelimiter(data []byte) rune {
	line := data
	if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
		line = data[:idx]
	}
	best, bestCount := ',', bytes.Count(line, []byte{','})
	for _, d := range []rune{';', '\t'} {
		if c := bytes.Count(line, []byte(string(d))); c > bestCount {
			best, bestCount = d, c
		}
	}
	return best
}

// parseNumeric parses a number written with either '.' or ',' as decimal
// separator, dropping thousands separators.
func parseNumeric(s string) (float64, bool) {
	raw := strings.ReplaceAll(s, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	dec := '.'
	cpos := strings.LastIndex(raw, ",")
	dpos := strings.LastIndex(raw, ".")
	if cpos >= 0 && (dpos < 0 || cpos > dpos) {
		dec = ','
	}
	for _, sep := range []rune{',', '.', ' '} {
		if sep != dec {
			raw = strings.ReplaceAll(raw, string(sep), "")
		}
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
