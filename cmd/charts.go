package cmd

import (
	"github.com/spf13/cobra"
)

var chartsCmd = &cobra.Command{
	Use:   "charts",
	Short: "Print chart data frames as JSON",
	Long: "Print the numeric frames behind the cost charts: cost components, " +
		"economic context, per-level distribution, duration medians and program rankings.",
	RunE: runCharts,
}

func init() {
	rootCmd.AddCommand(chartsCmd)
}

func runCharts(_ *cobra.Command, _ []string) error {
	engine, err := loadEngine(engineOptions())
	if err != nil {
		return err
	}
	snap, err := engine.Snapshot(flagNYBaseline)
	if err != nil {
		return err
	}
	return printJSON(map[string]any{
		"ny_baseline_usd": snap.NYBaselineUSD,
		"charts":          snap.Charts,
	})
}
