package main

import (
	"stock_backtest/internal/feature/backtest/transport/cli"

	"github.com/spf13/cobra"
)

var flagFile string

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run every backtest listed in a YAML file",
	Long: `Run the backtests listed in a YAML file concurrently. The file may pin the
price source and the annualisation calendar; an empty run list backtests every
active symbol with default parameters.`,
	Example: "  backtest batch -f configs/runs.example.yaml",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := cli.LoadBatchFile(flagFile)
		if err != nil {
			return err
		}
		reqs, err := f.Requests()
		if err != nil {
			return err
		}

		opts := runOptions{source: flagSource, calendar: f.Calendar}
		if opts.source == "" {
			opts.source = f.Source
		}
		return execute(cmd, opts, reqs)
	},
}

func init() {
	batchCmd.Flags().StringVarP(&flagFile, "file", "f", "", "YAML batch file")
	_ = batchCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(batchCmd)
}
