package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/filmcorr-cli/internal/pipeline"
)

var corrEncode bool

var corrCmd = &cobra.Command{
	Use:   "corr [file]",
	Short: "Compute the correlation matrix and high-correlation pairs only",
	Long: `Load a dataset and correlate its numeric columns without cleaning. Nulls are
skipped pairwise. With --encode, text columns are replaced by category codes
first and the pair list is taken from the encoded matrix.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := pipelineOptions(cmd, args)
		if err != nil {
			return err
		}
		opts.Encode = corrEncode
		return execute(cmd, "corr", opts, func(ctx context.Context, r *pipeline.Runner) (*pipeline.Result, error) {
			return r.Correlate(ctx, opts)
		})
	},
}

func init() {
	rootCmd.AddCommand(corrCmd)
	addAnalysisFlags(corrCmd)
	corrCmd.Flags().BoolVar(&corrEncode, "encode", false, "encode text columns as category codes before correlating")
}
