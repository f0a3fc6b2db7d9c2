package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/meshstats-cli/internal/display"
	"github.com/KaramelBytes/meshstats-cli/internal/mesh"
)

var inspectSuffix string

var inspectCmd = &cobra.Command{
	Use:   "inspect <shape files...>",
	Short: "List the fields and regions shared by a set of shapes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		shapes, err := mesh.LoadAll(args)
		if err != nil {
			return err
		}
		suffix := c.RegionSuffix
		if cmd.Flags().Changed("region-suffix") {
			suffix = inspectSuffix
		}
		return display.Catalog(cmd.OutOrStdout(), shapes, mesh.Classify(shapes, suffix))
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVar(&inspectSuffix, "region-suffix", "", "array name suffix marking region masks (default from config)")
}
