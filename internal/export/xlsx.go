package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/meshstats-cli/internal/aggregate"
)

const maxSheetName = 31

// writeWorkbook saves one sheet per field. Numbers are stored as numeric cells,
// so the spreadsheet application applies its own locale.
func writeWorkbook(path string, fields aggregate.FieldRecords, percentiles []float64) error {
	f := excelize.NewFile()
	defer f.Close()

	first := f.GetSheetName(0)
	used := map[string]bool{}
	for i, field := range aggregate.SortedKeys(fields) {
		sheet := SheetName(field, used)
		if i == 0 {
			if err := f.SetSheetName(first, sheet); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("new sheet %q: %w", sheet, err)
		}
		if err := writeSheet(f, sheet, fields[field], percentiles); err != nil {
			return fmt.Errorf("sheet %q: %w", sheet, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, shapes aggregate.ShapeRecords, percentiles []float64) error {
	header := make([]any, 0, 5+len(percentiles))
	for _, c := range Columns(percentiles) {
		header = append(header, c)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, shape := range aggregate.SortedKeys(shapes) {
		rec := shapes[shape]
		row := []any{shape, rec.Min, rec.Max, rec.Mean, rec.Std}
		for _, p := range percentiles {
			if v, ok := rec.Percentile(p); ok {
				row = append(row, v)
			} else {
				row = append(row, nil)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// SheetName turns a field name into a valid, unique worksheet name.
func SheetName(field string, used map[string]bool) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, field)
	name = strings.Trim(name, "'")
	if name == "" {
		name = "Sheet"
	}
	name = truncate(name, maxSheetName)
	base := name
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := "~" + strconv.Itoa(n)
		name = truncate(base, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
