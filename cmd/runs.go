package cmd

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/filmcorr-cli/internal/report"
	"github.com/KaramelBytes/filmcorr-cli/internal/run"
	"github.com/KaramelBytes/filmcorr-cli/internal/utils"
)

var runsDir string

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List or inspect saved analysis runs",
}

func runsRoot() string {
	if runsDir != "" {
		return runsDir
	}
	return cfg.OutputDir
}

// shortID trims a run id for listings.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved runs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		runs, err := run.List(runsRoot())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(out, "(no runs)")
			return nil
		}
		rows := make([][]string, 0, len(runs))
		for _, m := range runs {
			rows = append(rows, []string{
				shortID(m.ID),
				m.Command,
				humanize.Time(m.StartedAt),
				m.Input,
				humanize.Comma(int64(m.RowsKept)),
				strconv.Itoa(len(m.Artifacts)),
				strconv.Itoa(len(m.HighPairs)),
			})
		}
		left, right := report.AlignLeft, report.AlignRight
		g := report.Grid{
			Headers: []string{"id", "command", "started", "input", "rows", "charts", "pairs"},
			Rows:    rows,
			Aligns:  []report.Align{left, left, left, left, right, right, right},
		}
		fmt.Fprintln(out, g.Render())
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a run manifest (id prefixes are accepted)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := run.Find(runsRoot(), args[0])
		if err != nil {
			return err
		}
		b, err := utils.PrettyJSON(m)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.PersistentFlags().StringVar(&runsDir, "dir", "", "runs directory (default output_dir from config)")
}
