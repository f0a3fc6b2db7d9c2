// Package display renders run results and shape catalogs as terminal tables.
package display

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/KaramelBytes/meshstats-cli/internal/aggregate"
	"github.com/KaramelBytes/meshstats-cli/internal/export"
	"github.com/KaramelBytes/meshstats-cli/internal/mesh"
)

func newTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	// Names are case-sensitive; keep them as given.
	tbl.Style().Format.Header = text.FormatDefault
	tbl.Style().Format.Footer = text.FormatDefault
	tbl.Style().Title.Format = text.FormatDefault
	return tbl
}

// Render writes one table per (region, field), shapes sorted by name.
func Render(w io.Writer, store *aggregate.Store, percentiles []float64) error {
	regions := store.Regions()
	if len(regions) == 0 {
		_, err := fmt.Fprintln(w, "No statistics recorded")
		return err
	}
	header := table.Row{}
	for _, c := range export.Columns(percentiles) {
		header = append(header, c)
	}
	for _, region := range regions {
		for _, field := range store.Fields(region) {
			tbl := newTable()
			tbl.SetTitle("%s / %s", region, field)
			tbl.AppendHeader(header)
			shapes := store.Shapes(region, field)
			for _, shape := range shapes {
				rec, _ := store.Get(region, field, shape)
				row := table.Row{shape,
					export.FormatValue(rec.Min), export.FormatValue(rec.Max),
					export.FormatValue(rec.Mean), export.FormatValue(rec.Std)}
				for _, p := range percentiles {
					if v, ok := rec.Percentile(p); ok {
						row = append(row, export.FormatValue(v))
					} else {
						row = append(row, "")
					}
				}
				tbl.AppendRow(row)
			}
			tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d shapes", len(shapes))})
			if _, err := fmt.Fprintf(w, "%s\n\n", tbl.Render()); err != nil {
				return err
			}
		}
	}
	return nil
}

// Catalog lists the loaded shapes, then the fields and regions they share.
func Catalog(w io.Writer, shapes []mesh.Shape, cat mesh.Catalog) error {
	tbl := newTable()
	tbl.SetTitle("Shapes")
	tbl.AppendHeader(table.Row{"Shape", "Points", "Arrays"})
	for _, s := range shapes {
		points := "-"
		if p, ok := s.(interface{ Points() int }); ok {
			points = humanize.Comma(int64(p.Points()))
		}
		tbl.AppendRow(table.Row{s.Name(), points, len(s.ArrayNames())})
	}
	if _, err := fmt.Fprintf(w, "%s\n\n", tbl.Render()); err != nil {
		return err
	}

	names := newTable()
	names.AppendHeader(table.Row{"Kind", "Name"})
	for _, f := range cat.Fields {
		names.AppendRow(table.Row{"field", f})
	}
	for _, r := range cat.Regions {
		names.AppendRow(table.Row{"region", r})
	}
	names.AppendFooter(table.Row{fmt.Sprintf("%d fields, %d regions", len(cat.Fields), len(cat.Regions))})
	_, err := fmt.Fprintf(w, "%s\n", names.Render())
	return err
}
