// Package export writes aggregated statistics to CSV or XLSX files, one file
// per field or per region, under a caller-controlled overwrite policy.
package export

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/KaramelBytes/meshstats-cli/internal/aggregate"
	"github.com/KaramelBytes/meshstats-cli/internal/stats"
	"github.com/KaramelBytes/meshstats-cli/internal/utils"
)

// Layout selects how files are arranged on disk.
type Layout string

const (
	// LayoutSeparate writes <dir>/<region>/<field>.<ext>.
	LayoutSeparate Layout = "separate"
	// LayoutSingle writes <dir>/<region>.<ext> holding every field.
	LayoutSingle Layout = "single"
)

// ParseLayout validates a layout name.
func ParseLayout(s string) (Layout, error) {
	switch Layout(strings.ToLower(s)) {
	case LayoutSeparate:
		return LayoutSeparate, nil
	case LayoutSingle:
		return LayoutSingle, nil
	}
	return "", fmt.Errorf("unknown layout %q (use separate or single)", s)
}

// Format selects the file encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unknown format %q (use csv or xlsx)", s)
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string { return "." + string(f) }

// Locale selects the decimal convention of CSV output.
type Locale string

const (
	// LocaleDot writes ',' delimited cells with '.' decimals.
	LocaleDot Locale = "dot"
	// LocaleComma writes ';' delimited cells with ',' decimals.
	LocaleComma Locale = "comma"
)

// ParseLocale validates a locale name.
func ParseLocale(s string) (Locale, error) {
	switch strings.ToLower(s) {
	case "dot", ".":
		return LocaleDot, nil
	case "comma", ",":
		return LocaleComma, nil
	}
	return "", fmt.Errorf("unknown locale %q (use dot or comma)", s)
}

// Options configure an export batch.
type Options struct {
	Dir         string
	Layout      Layout
	Format      Format
	Locale      Locale
	Percentiles []float64
}

// FileError records a file or directory that could not be written.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string { return fmt.Sprintf("%s: %v", e.Path, e.Err) }
func (e *FileError) Unwrap() error { return e.Err }

// Report lists what happened to each destination of a batch.
type Report struct {
	Written []string
	Skipped []string
	Failed  []*FileError
}

// Exporter writes a store's contents under Dir. Each Export call is one batch
// for the purposes of the overwrite policy.
type Exporter struct {
	Options
	Confirm Confirmer
	Logger  *slog.Logger
}

// New returns an Exporter. A nil confirm never overwrites; a nil logger discards.
func New(opt Options, confirm Confirmer, logger *slog.Logger) *Exporter {
	if confirm == nil {
		confirm = Always(Skip)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opt.Layout == "" {
		opt.Layout = LayoutSeparate
	}
	if opt.Format == "" {
		opt.Format = FormatCSV
	}
	if opt.Locale == "" {
		opt.Locale = LocaleDot
	}
	if opt.Percentiles == nil {
		opt.Percentiles = stats.DefaultPercentiles
	}
	return &Exporter{Options: opt, Confirm: confirm, Logger: logger}
}

// Export writes every region in the store. A directory that cannot be created
// only fails the files of its own region. The returned error is reserved for
// failures that stop the whole export: an unusable destination or a failing
// Confirmer.
//
// The overwrite policy applies per batch. In the single layout the whole export
// is one batch; in the separate layout each region directory is its own batch,
// so "all" and "none" answers do not carry over to the next region.
func (e *Exporter) Export(store *aggregate.Store) (*Report, error) {
	if err := utils.EnsureDir(e.Dir); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	rep := &Report{}
	b := &batch{confirm: e.Confirm}
	fopt := FileOptions{Format: e.Format, Locale: e.Locale, Percentiles: e.Percentiles}
	ext := e.Format.Ext()
	regionPaths := newPathSet()

	for _, region := range store.Regions() {
		fields := store.Region(region)
		switch e.Layout {
		case LayoutSingle:
			path := regionPaths.claim(filepath.Join(e.Dir, utils.SafeName(region)), ext)
			err := e.writeOne(b, rep, path, func() error {
				return ExportRegion(path, region, fields, fopt)
			})
			if err != nil {
				return rep, err
			}
		default:
			b = &batch{confirm: e.Confirm}
			dir := regionPaths.claim(filepath.Join(e.Dir, utils.SafeName(region)), "")
			if err := utils.EnsureDir(dir); err != nil {
				e.Logger.Warn("region directory failed", "region", region, "err", err)
				rep.Failed = append(rep.Failed, &FileError{Path: dir, Err: err})
				continue
			}
			fieldPaths := newPathSet()
			for _, field := range aggregate.SortedKeys(fields) {
				path := fieldPaths.claim(filepath.Join(dir, utils.SafeName(field)), ext)
				shapes := fields[field]
				err := e.writeOne(b, rep, path, func() error {
					return ExportField(path, field, shapes, fopt)
				})
				if err != nil {
					return rep, err
				}
			}
		}
	}
	return rep, nil
}

// pathSet hands out destination paths that are unique within one export, so two
// names that sanitize alike do not land on the same file.
type pathSet map[string]bool

func newPathSet() pathSet { return pathSet{} }

// claim returns base+ext, or base~N+ext for the first N >= 2 not yet handed out.
func (s pathSet) claim(base, ext string) string {
	path := base + ext
	for n := 2; s[strings.ToLower(path)]; n++ {
		path = base + "~" + strconv.Itoa(n) + ext
	}
	s[strings.ToLower(path)] = true
	return path
}

func (e *Exporter) writeOne(b *batch, rep *Report, path string, write func() error) error {
	exists, err := utils.FileExists(path)
	if err != nil {
		rep.Failed = append(rep.Failed, &FileError{Path: path, Err: err})
		return nil
	}
	ok, err := b.admit(path, exists)
	if err != nil {
		return err
	}
	if !ok {
		e.Logger.Debug("skipped", "path", path)
		rep.Skipped = append(rep.Skipped, path)
		return nil
	}
	if err := write(); err != nil {
		e.Logger.Warn("export failed", "path", path, "err", err)
		rep.Failed = append(rep.Failed, &FileError{Path: path, Err: err})
		return nil
	}
	e.Logger.Debug("written", "path", path)
	rep.Written = append(rep.Written, path)
	return nil
}
