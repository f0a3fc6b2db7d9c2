package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/KaramelBytes/meshstats-cli/internal/utils"
)

// ConvertLocale rewrites comma-delimited CSV text for comma-decimal locales:
// the delimiter becomes ';' and '.' becomes ',' inside numeric cells only.
// Text cells such as shape and field names are left as they are, and blank
// rows are preserved.
func ConvertLocale(text string) (string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = ';'

	next := 1
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse csv: %w", err)
		}
		// csv.Reader drops blank lines; put them back.
		line, _ := r.FieldPos(0)
		if line > next {
			w.Flush()
			buf.WriteString(strings.Repeat("\n", line-next))
		}
		for i, cell := range rec {
			if isNumeric(cell) {
				rec[i] = strings.ReplaceAll(cell, ".", ",")
			}
		}
		if err := w.Write(rec); err != nil {
			return "", fmt.Errorf("write csv: %w", err)
		}
		last := len(rec) - 1
		endLine, _ := r.FieldPos(last)
		next = endLine + strings.Count(rec[last], "\n") + 1
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("write csv: %w", err)
	}
	if blank := strings.Count(text, "\n") - next + 1; blank > 0 {
		buf.WriteString(strings.Repeat("\n", blank))
	}
	return buf.String(), nil
}

func isNumeric(cell string) bool {
	if cell == "" {
		return false
	}
	_, err := strconv.ParseFloat(cell, 64)
	return err == nil
}

// ApplyLocale converts the CSV file at path in place. The rewrite is atomic:
// on failure the original file is left intact.
func ApplyLocale(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	out, err := ConvertLocale(string(data))
	if err != nil {
		return fmt.Errorf("convert %s: %w", path, err)
	}
	if err := utils.SafeWriteFile(path, []byte(out)); err != nil {
		return fmt.Errorf("rewrite %s: %w", path, err)
	}
	return nil
}
