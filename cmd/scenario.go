package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/edcost/internal/cli"
	"github.com/theirongolddev/edcost/internal/export"
	"github.com/theirongolddev/edcost/internal/model"
	"github.com/theirongolddev/edcost/internal/policy"
	"github.com/theirongolddev/edcost/internal/server"
)

var (
	flagTuitionCut    string
	flagLivingSubsidy string
	flagTarget        string
	flagTop           int
	flagXLSX          string
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Apply tuition and living-cost levers and measure the gap to a target",
	Example: "  edcost scenario --tuition-cut 20 --living-subsidy 10 --target 35000\n" +
		"  edcost scenario -c germany --top 5",
	RunE: runScenario,
}

func init() {
	f := scenarioCmd.Flags()
	f.StringVar(&flagTuitionCut, "tuition-cut", "", "Tuition reduction in percent, 0-100 (default from config)")
	f.StringVar(&flagLivingSubsidy, "living-subsidy", "", "Living-cost subsidy in percent, 0-100 (default from config)")
	f.StringVar(&flagTarget, "target", "", "Annual affordability target in USD (default from config)")
	f.IntVar(&flagTop, "top", 0, "Programs in the gap table (default from config)")
	f.StringVar(&flagXLSX, "xlsx", "", "Also write the scenario tables to this XLSX file")
	rootCmd.AddCommand(scenarioCmd)
}

// scenarioParams layers the lever flags over the configured scenario.
func scenarioParams() (policy.Params, error) {
	return policy.ParseParams(map[string]string{
		policy.ParamTuitionCut:    flagTuitionCut,
		policy.ParamLivingSubsidy: flagLivingSubsidy,
		policy.ParamTargetAnnual:  flagTarget,
	}, baseParams())
}

func runScenario(cmd *cobra.Command, _ []string) error {
	params, err := scenarioParams()
	if err != nil {
		return err
	}
	opts := engineOptions()
	if cmd.Flags().Changed("top") {
		if flagTop <= 0 {
			return &model.ValidationError{Field: "top", Value: strconv.Itoa(flagTop), Reason: "must be a positive integer"}
		}
		opts.TopN = flagTop
	}

	engine, err := loadEngine(opts)
	if err != nil {
		return err
	}
	result, err := engine.Scenario(params)
	if err != nil {
		return err
	}

	if flagXLSX != "" {
		if err := writeWorkbook(flagXLSX, result); err != nil {
			return err
		}
	}
	if flagJSON {
		return printJSON(server.NewScenarioResponse(result))
	}
	if len(result.Adjusted) == 0 {
		printEmpty()
		return nil
	}

	base, err := engine.Summary(params.NYBaselineUSD)
	if err != nil && !errors.Is(err, model.ErrEmptyTable) {
		return err
	}
	adj := result.Summary

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("SCENARIO  tuition %s · living %s · target %s",
		cli.FormatLever(params.Levers.TuitionCutPct),
		cli.FormatLever(params.Levers.LivingSubsidyPct),
		cli.FormatCost(params.TargetAnnualUSD))))
	fmt.Println()

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Base", "Scenario", "Change"},
		Rows: [][]string{
			{"Median annual cost",
				cli.FormatCost(base.TotalAnnual.Median),
				cli.FormatCost(adj.TotalAnnual.Median),
				cli.FormatDelta(adj.TotalAnnual.Median, base.TotalAnnual.Median)},
			{"Mean annual cost",
				cli.FormatCost(base.TotalAnnual.Mean),
				cli.FormatCost(adj.TotalAnnual.Mean),
				cli.FormatDelta(adj.TotalAnnual.Mean, base.TotalAnnual.Mean)},
			{"Median affordability",
				cli.FormatIndex(base.Affordability.Median),
				cli.RenderAffordability(adj.Affordability.Median),
				fmt.Sprintf("%+.1f", adj.Affordability.Median-base.Affordability.Median)},
			{"---"},
			{"Programs above target",
				"",
				cli.FormatNumber(int64(countAboveTarget(result.Adjusted, params.TargetAnnualUSD))),
				""},
		},
	}))
	fmt.Println()

	progRows := make([][]string, 0, len(result.Gaps.Programs))
	for _, g := range result.Gaps.Programs {
		progRows = append(progRows, []string{
			cli.Truncate(g.Institution, 32),
			cli.Truncate(g.Program, 24),
			g.Country,
			string(g.Level),
			cli.FormatCost(g.TotalAnnualUSD),
			cli.RenderGap(g.GapToTargetUSD),
		})
	}
	if len(progRows) == 0 {
		fmt.Println(cli.RenderMuted(fmt.Sprintf("  Every program is at or below %s.", cli.FormatCost(params.TargetAnnualUSD))))
	} else {
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   fmt.Sprintf("Largest Gaps to %s (top %d)", cli.FormatCost(params.TargetAnnualUSD), engine.TopN()),
			Headers: []string{"Institution", "Program", "Country", "Level", "Annual", "Gap"},
			Rows:    progRows,
		}))
	}
	fmt.Println()

	aggRows := make([][]string, 0, len(result.Gaps.Aggregate))
	for _, g := range result.Gaps.Aggregate {
		aggRows = append(aggRows, []string{
			g.Country,
			string(g.Level),
			cli.FormatNumber(int64(g.Programs)),
			cli.FormatCost(g.MeanTotalAnnualUSD),
			cli.RenderGap(g.MeanGapToTargetUSD),
			cli.FormatPercent(g.ShareAboveTarget),
			cli.FormatPercent(g.TuitionShare),
			cli.FormatPercent(g.LivingShare),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Gap by Country & Level",
		Headers: []string{"Country", "Level", "Programs", "Mean", "Mean Gap", "Above", "Tuition", "Living"},
		Rows:    aggRows,
	}))
	return nil
}

func countAboveTarget(rows []model.AdjustedRecord, target float64) int {
	n := 0
	for _, r := range rows {
		if r.TotalAnnualUSD > target {
			n++
		}
	}
	return n
}

func writeWorkbook(path string, res *policy.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := export.WriteScenario(f, res); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Wrote %s\n", path)
	}
	return nil
}
