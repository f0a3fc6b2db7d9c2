package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/meshstats-cli/internal/config"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "meshstats",
	Short: "meshstats: descriptive statistics over mesh point-data arrays",
	Long: `meshstats loads surface meshes (legacy VTK, CSV/TSV or XLSX point tables), computes
min, max, mean, standard deviation and percentiles of scalar fields per shape and
per region of interest, and exports the tables as CSV or XLSX.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("✗ Error:"), err)
		os.Exit(1)
	}
}

func init() {
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.meshstats/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to ensureConfig
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c
}

// ensureConfig returns the loaded configuration, loading it on first use.
func ensureConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg = c
	return cfg, nil
}

// newLogger returns the diagnostics logger: warnings by default, everything with --debug.
func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

var (
	okMark   = color.New(color.FgGreen).SprintFunc()
	warnMark = color.New(color.FgYellow).SprintFunc()
)

func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", okMark("✓"), fmt.Sprintf(format, args...))
}

func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", warnMark("⚠ Warning:"), fmt.Sprintf(format, args...))
}
