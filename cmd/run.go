package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/meshstats-cli/internal/aggregate"
	cfgpkg "github.com/KaramelBytes/meshstats-cli/internal/config"
	"github.com/KaramelBytes/meshstats-cli/internal/display"
	"github.com/KaramelBytes/meshstats-cli/internal/engine"
	"github.com/KaramelBytes/meshstats-cli/internal/export"
	"github.com/KaramelBytes/meshstats-cli/internal/mesh"
	"github.com/KaramelBytes/meshstats-cli/internal/session"
	"github.com/KaramelBytes/meshstats-cli/internal/stats"
)

var (
	runFields      []string
	runRegions     []string
	runAllFields   bool
	runAllRegions  bool
	runPrecision   int
	runPercentiles string
	runQuiet       bool
	runNoSave      bool
	runExport      exportFlags
)

var runCmd = &cobra.Command{
	Use:   "run <shape files...>",
	Short: "Compute statistics for fields and regions and export them",
	Long: `Compute min, max, mean, standard deviation and percentiles of each selected field,
for each selected region, on every shape. Region "Entire Shape" covers all points;
other regions are mask arrays whose entries equal to 1 select a point.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		shapes, err := mesh.LoadAll(args)
		if err != nil {
			return err
		}
		cat := mesh.Classify(shapes, c.RegionSuffix)
		fields, err := pick("field", runFields, runAllFields, cat.Fields, nil)
		if err != nil {
			return err
		}
		regions, err := pick("region", runRegions, runAllRegions, cat.Regions, []string{mesh.EntireShape})
		if err != nil {
			return err
		}

		opt := stats.Options{Precision: c.Precision, Percentiles: c.Percentiles}
		if cmd.Flags().Changed("precision") {
			opt.Precision = runPrecision
		}
		if err := stats.ValidatePrecision(opt.Precision); err != nil {
			return err
		}
		if cmd.Flags().Changed("percentiles") {
			if opt.Percentiles, err = parsePercentiles(runPercentiles); err != nil {
				return err
			}
		}
		if opt.Percentiles, err = stats.NormalizePercentiles(opt.Percentiles); err != nil {
			return err
		}

		out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
		logger := newLogger(errOut)
		store := aggregate.New()
		res := engine.NewRunner(opt, logger).Run(shapes, fields, regions, store)
		for _, f := range res.Failures {
			warn(errOut, "%v", f)
		}
		if res.Recorded == 0 {
			return errors.New("no statistics could be computed")
		}
		if !runQuiet {
			if err := display.Render(out, store, opt.Percentiles); err != nil {
				return err
			}
		}
		success(out, "Computed %d record(s) for %d shape(s), %d field(s), %d region(s)",
			res.Recorded, len(shapes), len(fields), len(regions))

		if !runNoSave {
			names := make([]string, len(shapes))
			for i, s := range shapes {
				names[i] = s.Name()
			}
			run := session.New(names, fields, regions, opt.Precision, opt.Percentiles, store, res.Failures)
			if err := run.Save(c.RunsDir); err != nil {
				warn(errOut, "failed to save run: %v", err)
			} else {
				success(out, "Saved run %s", run.ID)
			}
		}
		return writeExport(cmd, store, c, opt.Percentiles, &runExport, logger)
	},
}

// pick resolves the names requested for kind against those available.
func pick(kind string, requested []string, all bool, available, fallback []string) ([]string, error) {
	if all {
		if len(available) == 0 {
			return nil, fmt.Errorf("no %s is shared by all shapes", kind)
		}
		return available, nil
	}
	if len(requested) == 0 {
		if fallback != nil {
			return fallback, nil
		}
		return nil, fmt.Errorf("specify --%s or --all-%ss (available: %s)", kind, kind, strings.Join(available, ", "))
	}
	seen := map[string]bool{}
	var out []string
	for _, name := range requested {
		if !contains(available, name) {
			return nil, fmt.Errorf("unknown %s %q (available: %s)", kind, name, strings.Join(available, ", "))
		}
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// exportFlags are the destination flags shared by run and export.
type exportFlags struct {
	output    string
	layout    string
	format    string
	locale    string
	overwrite string
}

func (f *exportFlags) register(c *cobra.Command) {
	c.Flags().StringVarP(&f.output, "output", "o", "", "destination directory (default from config)")
	c.Flags().StringVar(&f.layout, "layout", "", "file layout: separate (one file per field) or single (one file per region)")
	c.Flags().StringVar(&f.format, "format", "", "file format: csv or xlsx")
	c.Flags().StringVar(&f.locale, "locale", "", "CSV decimal convention: dot or comma")
	c.Flags().StringVar(&f.overwrite, "overwrite", "", "existing files: ask, yes or no")
}

func (f *exportFlags) reset() {
	*f = exportFlags{}
}

// options merges the flags that were set over the configuration.
func (f *exportFlags) options(cmd *cobra.Command, c *cfgpkg.Global, percentiles []float64) (export.Options, overwriteMode, error) {
	pickStr := func(flag, val, def string) string {
		if cmd.Flags().Changed(flag) {
			return val
		}
		return def
	}
	opt := export.Options{Dir: pickStr("output", f.output, c.OutputDir), Percentiles: percentiles}
	var err error
	if opt.Layout, err = export.ParseLayout(pickStr("layout", f.layout, c.Layout)); err != nil {
		return opt, "", err
	}
	if opt.Format, err = export.ParseFormat(pickStr("format", f.format, c.Format)); err != nil {
		return opt, "", err
	}
	if opt.Locale, err = export.ParseLocale(pickStr("locale", f.locale, c.Locale)); err != nil {
		return opt, "", err
	}
	mode, err := parseOverwrite(pickStr("overwrite", f.overwrite, c.Overwrite))
	if err != nil {
		return opt, "", err
	}
	if opt.Dir == "" {
		opt.Dir = "."
	}
	return opt, mode, nil
}

func writeExport(cmd *cobra.Command, store *aggregate.Store, c *cfgpkg.Global, percentiles []float64, f *exportFlags, logger *slog.Logger) error {
	opt, mode, err := f.options(cmd, c, percentiles)
	if err != nil {
		return err
	}
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	ex := export.New(opt, confirmerFor(mode, cmd.InOrStdin(), out), logger)
	rep, err := ex.Export(store)
	if rep != nil {
		for _, p := range rep.Skipped {
			warn(errOut, "skipped existing %s", p)
		}
		for _, fe := range rep.Failed {
			warn(errOut, "could not write %v", fe)
		}
		success(out, "Wrote %d file(s) to %s", len(rep.Written), opt.Dir)
	}
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringSliceVarP(&runFields, "field", "f", nil, "field to summarize (repeatable)")
	runCmd.Flags().StringSliceVarP(&runRegions, "region", "r", nil, "region to summarize (repeatable, default \"Entire Shape\")")
	runCmd.Flags().BoolVar(&runAllFields, "all-fields", false, "summarize every shared field")
	runCmd.Flags().BoolVar(&runAllRegions, "all-regions", false, "summarize every shared region")
	runCmd.Flags().IntVar(&runPrecision, "precision", 3, "decimals kept in each statistic, at most 15 (negative disables rounding)")
	runCmd.Flags().StringVar(&runPercentiles, "percentiles", "", "comma-separated percentile thresholds, e.g. 5,50,95")
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "do not print the result tables")
	runCmd.Flags().BoolVar(&runNoSave, "no-save", false, "do not record the run in history")
	runExport.register(runCmd)
}
