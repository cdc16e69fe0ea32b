package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/edcost/internal/cli"
	"github.com/theirongolddev/edcost/internal/model"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Cost and affordability summary of the dataset",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(_ *cobra.Command, _ []string) error {
	engine, err := loadEngine(engineOptions())
	if err != nil {
		return err
	}

	summary, err := engine.Summary(flagNYBaseline)
	if errors.Is(err, model.ErrEmptyTable) {
		if flagJSON {
			return printJSON(map[string]any{"ny_baseline_usd": flagNYBaseline, "summary": nil})
		}
		printEmpty()
		return nil
	}
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(map[string]any{"ny_baseline_usd": flagNYBaseline, "summary": summary})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("EDUCATION COSTS  %s programs", cli.FormatNumber(int64(summary.Programs)))))
	fmt.Println()

	ta, af, gap := summary.TotalAnnual, summary.Affordability, summary.PolicyGap
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Programs", cli.FormatNumber(int64(summary.Programs))},
			{"Countries", cli.FormatNumber(int64(len(summary.ByCountry)))},
			{"NY baseline", cli.FormatCost(flagNYBaseline) + "/yr"},
			{"---"},
			{"Annual cost (median)", cli.FormatCost(ta.Median)},
			{"Annual cost (mean)", cli.FormatCost(ta.Mean)},
			{"Annual cost (range)", cli.FormatCost(ta.Min) + " - " + cli.FormatCost(ta.Max)},
			{"---"},
			{"Affordability (median)", cli.RenderAffordability(af.Median)},
			{"Affordability (range)", cli.FormatIndex(af.Min) + " - " + cli.FormatIndex(af.Max)},
			{"Policy gap (range)", cli.RenderGap(gap.Min) + " - " + cli.RenderGap(gap.Max)},
		},
	}))
	fmt.Println()

	levelRows := make([][]string, 0, len(summary.ByLevel))
	for _, l := range summary.ByLevel {
		levelRows = append(levelRows, []string{
			string(l.Level),
			cli.FormatNumber(int64(l.Programs)),
			cli.FormatCost(l.MedianTotalAnnualUSD),
			cli.FormatCost(l.MeanTotalAnnualUSD),
			cli.RenderAffordability(l.MeanAffordability),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "By Level",
		Headers: []string{"Level", "Programs", "Median", "Mean", "Afford."},
		Rows:    levelRows,
	}))
	fmt.Println()

	const topCountries = 10
	countries := summary.ByCountry
	if len(countries) > topCountries {
		countries = countries[:topCountries]
	}
	countryRows := make([][]string, 0, len(countries))
	for _, c := range countries {
		countryRows = append(countryRows, []string{
			c.Country,
			cli.FormatNumber(int64(c.Programs)),
			cli.FormatCost(c.MeanTotalAnnualUSD),
			cli.RenderAffordability(c.MeanAffordability),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Countries",
		Headers: []string{"Country", "Programs", "Mean", "Afford."},
		Rows:    countryRows,
	}))
	if len(summary.ByCountry) > topCountries {
		fmt.Println(cli.RenderMuted(fmt.Sprintf("  %d more countries; see `edcost insights`",
			len(summary.ByCountry)-topCountries)))
	}
	fmt.Println(cli.RenderMuted("  Affordability 100 = New York parity; higher is cheaper."))
	return nil
}
