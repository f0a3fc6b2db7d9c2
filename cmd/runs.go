package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/meshstats-cli/internal/session"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List saved runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		runs, err := session.List(c.RunsDir)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(out, "(no runs)")
			return nil
		}
		tbl := table.NewWriter()
		tbl.SetStyle(table.StyleLight)
		tbl.AppendHeader(table.Row{"ID", "Created", "Shapes", "Fields", "Regions", "Failures"})
		for _, r := range runs {
			tbl.AppendRow(table.Row{r.ID, humanize.Time(r.CreatedAt), len(r.Shapes), len(r.Fields), len(r.Regions), len(r.Failures)})
		}
		fmt.Fprintln(out, tbl.Render())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
}
