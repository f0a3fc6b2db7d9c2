package mesh

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// xlsxReader reads a point table from the first sheet of a workbook, with the
// same header convention as CSV point tables.
type xlsxReader struct{}

func (xlsxReader) CanRead(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

func (xlsxReader) Read(data []byte, name string) (*PolyData, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}
	return pointTable(name, rows[0], rows[1:])
}
