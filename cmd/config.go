package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/meshstats-cli/internal/config"
	"github.com/KaramelBytes/meshstats-cli/internal/export"
	"github.com/KaramelBytes/meshstats-cli/internal/stats"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set meshstats configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "precision: %d\n", c.Precision)
		fmt.Fprintf(out, "percentiles: %s\n", joinFloats(c.Percentiles))
		fmt.Fprintf(out, "region_suffix: %s\n", c.RegionSuffix)
		fmt.Fprintf(out, "layout: %s\n", c.Layout)
		fmt.Fprintf(out, "format: %s\n", c.Format)
		fmt.Fprintf(out, "locale: %s\n", c.Locale)
		fmt.Fprintf(out, "overwrite: %s\n", c.Overwrite)
		fmt.Fprintf(out, "output_dir: %s\n", c.OutputDir)
		fmt.Fprintf(out, "runs_dir: %s\n", c.RunsDir)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		if err := setKey(c, key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		success(cmd.OutOrStdout(), "Saved config (%s = %s)", key, val)
		return nil
	},
}

func setKey(c *cfgpkg.Global, key, val string) error {
	switch key {
	case "precision":
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid int for precision: %w", err)
		}
		if err := stats.ValidatePrecision(i); err != nil {
			return err
		}
		c.Precision = i
	case "percentiles":
		p, err := parsePercentiles(val)
		if err != nil {
			return err
		}
		c.Percentiles = p
	case "region_suffix":
		c.RegionSuffix = val
	case "layout":
		l, err := export.ParseLayout(val)
		if err != nil {
			return err
		}
		c.Layout = string(l)
	case "format":
		f, err := export.ParseFormat(val)
		if err != nil {
			return err
		}
		c.Format = string(f)
	case "locale":
		l, err := export.ParseLocale(val)
		if err != nil {
			return err
		}
		c.Locale = string(l)
	case "overwrite":
		if _, err := parseOverwrite(val); err != nil {
			return err
		}
		c.Overwrite = strings.ToLower(val)
	case "output_dir":
		c.OutputDir = val
	case "runs_dir":
		c.RunsDir = val
	default:
		return fmt.Errorf("unknown key: %s (known: %s)", key, strings.Join(cfgpkg.Keys, ", "))
	}
	return nil
}

// parsePercentiles reads a comma-separated threshold list such as "5,50,95".
func parsePercentiles(val string) ([]float64, error) {
	var out []float64
	for _, part := range strings.Split(val, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		f, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid percentile %q: %w", part, err)
		}
		out = append(out, f)
	}
	return stats.NormalizePercentiles(out)
}

func joinFloats(vs []float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
