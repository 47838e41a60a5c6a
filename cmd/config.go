package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/filmcorr-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set filmcorr configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "input: %s\n", cfg.Input)
		if cfg.Delimiter != "" {
			fmt.Fprintf(out, "delimiter: %s\n", cfg.Delimiter)
		}
		if cfg.Sheet != "" {
			fmt.Fprintf(out, "sheet: %s\n", cfg.Sheet)
		}
		if cfg.MaxRows > 0 {
			fmt.Fprintf(out, "max_rows: %d\n", cfg.MaxRows)
		}
		if len(cfg.NullMarkers) > 0 {
			fmt.Fprintf(out, "null_markers: %s\n", strings.Join(cfg.NullMarkers, ","))
		}
		fmt.Fprintf(out, "budget_column: %s\n", cfg.BudgetColumn)
		fmt.Fprintf(out, "gross_column: %s\n", cfg.GrossColumn)
		fmt.Fprintf(out, "released_column: %s\n", cfg.ReleasedColumn)
		fmt.Fprintf(out, "company_column: %s\n", cfg.CompanyColumn)
		fmt.Fprintf(out, "year_column: %s\n", cfg.YearColumn)
		fmt.Fprintf(out, "row_policy: %s\n", cfg.RowPolicy)
		fmt.Fprintf(out, "threshold: %.3f\n", cfg.Threshold)
		fmt.Fprintf(out, "dedupe_pairs: %t\n", cfg.DedupePairs)
		fmt.Fprintf(out, "sample_rows: %d\n", cfg.SampleRows)
		fmt.Fprintf(out, "plots: %t\n", cfg.Plots)
		fmt.Fprintf(out, "plot_format: %s\n", cfg.PlotFormat)
		fmt.Fprintf(out, "output_dir: %s\n", cfg.OutputDir)
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", cfg.LogFormat)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Long:  "Set a config value and save to disk. Keys: " + strings.Join(cfgpkg.Keys, ", "),
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		if err := cfg.Set(key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
