package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/meshstats-cli/internal/session"
)

var exportOpts exportFlags

var exportCmd = &cobra.Command{
	Use:   "export [run-id]",
	Short: "Export a saved run again (latest by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		var run *session.Run
		if len(args) == 1 {
			run, err = session.Load(c.RunsDir, args[0])
		} else {
			run, err = session.Latest(c.RunsDir)
		}
		if err != nil {
			return err
		}
		return writeExport(cmd, run.Store, c, run.Percentiles, &exportOpts, newLogger(cmd.ErrOrStderr()))
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportOpts.register(exportCmd)
}
