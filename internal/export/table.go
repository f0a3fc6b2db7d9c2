package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/KaramelBytes/meshstats-cli/internal/aggregate"
	"github.com/KaramelBytes/meshstats-cli/internal/stats"
)

// Columns returns the table header: shape name, the four moments and one
// column per percentile threshold.
func Columns(percentiles []float64) []string {
	cols := []string{"Shape", "Min", "Max", "Mean", "SD"}
	for _, p := range percentiles {
		cols = append(cols, CentileLabel(p))
	}
	return cols
}

// CentileLabel names a percentile column, e.g. "5th centile".
func CentileLabel(threshold float64) string {
	if threshold == math.Trunc(threshold) {
		return humanize.Ordinal(int(threshold)) + " centile"
	}
	return FormatValue(threshold) + "th centile"
}

// FormatValue renders a stored value with the shortest exact representation,
// so values rounded at record time are written back unchanged.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// recordRow is one table row; percentiles the record lacks stay empty.
func recordRow(shape string, rec *stats.Record, percentiles []float64) []string {
	row := []string{shape, FormatValue(rec.Min), FormatValue(rec.Max), FormatValue(rec.Mean), FormatValue(rec.Std)}
	for _, p := range percentiles {
		if v, ok := rec.Percentile(p); ok {
			row = append(row, FormatValue(v))
		} else {
			row = append(row, "")
		}
	}
	return row
}

// WriteField writes one field's table: a title row holding the field name,
// the header, then one row per shape in name order.
func WriteField(w io.Writer, field string, shapes aggregate.ShapeRecords, percentiles []float64) error {
	cw := csv.NewWriter(w)
	if err := writeFieldRows(cw, field, shapes, percentiles); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func writeFieldRows(cw *csv.Writer, field string, shapes aggregate.ShapeRecords, percentiles []float64) error {
	if err := cw.Write([]string{field}); err != nil {
		return fmt.Errorf("write title: %w", err)
	}
	if err := cw.Write(Columns(percentiles)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, shape := range aggregate.SortedKeys(shapes) {
		if err := cw.Write(recordRow(shape, shapes[shape], percentiles)); err != nil {
			return fmt.Errorf("write row %q: %w", shape, err)
		}
	}
	return nil
}

// WriteRegion writes every field of a region into one document: a title row
// holding the region name, then one field table per field in name order, each
// followed by a blank row.
func WriteRegion(w io.Writer, region string, fields aggregate.FieldRecords, percentiles []float64) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{region}); err != nil {
		return fmt.Errorf("write title: %w", err)
	}
	for _, field := range aggregate.SortedKeys(fields) {
		if err := writeFieldRows(cw, field, fields[field], percentiles); err != nil {
			return fmt.Errorf("field %q: %w", field, err)
		}
		if err := cw.Write([]string{""}); err != nil {
			return fmt.Errorf("write separator: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// FileOptions control how a single export file is encoded.
type FileOptions struct {
	Format      Format
	Locale      Locale
	Percentiles []float64
}

// ExportField writes one field's table to path.
func ExportField(path, field string, shapes aggregate.ShapeRecords, opt FileOptions) error {
	if opt.Format == FormatXLSX {
		return writeWorkbook(path, aggregate.FieldRecords{field: shapes}, opt.Percentiles)
	}
	return writeCSV(path, opt.Locale, func(w io.Writer) error {
		return WriteField(w, field, shapes, opt.Percentiles)
	})
}

// ExportRegion writes all of a region's field tables to path.
func ExportRegion(path, region string, fields aggregate.FieldRecords, opt FileOptions) error {
	if opt.Format == FormatXLSX {
		return writeWorkbook(path, fields, opt.Percentiles)
	}
	return writeCSV(path, opt.Locale, func(w io.Writer) error {
		return WriteRegion(w, region, fields, opt.Percentiles)
	})
}

// writeCSV writes the file with dot decimals first; the comma locale is applied
// afterwards as a separate pass over the finished file.
func writeCSV(path string, locale Locale, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if locale == LocaleComma {
		if err := ApplyLocale(path); err != nil {
			return err
		}
	}
	return nil
}
