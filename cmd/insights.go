package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/edcost/internal/cli"
	"github.com/theirongolddev/edcost/internal/model"
)

var flagInsightLimit int

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Policy gap by country and level, and country comparison",
	RunE:  runInsights,
}

func init() {
	insightsCmd.Flags().IntVarP(&flagInsightLimit, "limit", "n", 25, "Max rows per table (0 = all)")
	rootCmd.AddCommand(insightsCmd)
}

func runInsights(_ *cobra.Command, _ []string) error {
	if flagInsightLimit < 0 {
		return &model.ValidationError{Field: "limit", Value: fmt.Sprint(flagInsightLimit), Reason: "must not be negative"}
	}
	engine, err := loadEngine(engineOptions())
	if err != nil {
		return err
	}
	summary, err := engine.Summary(flagNYBaseline)
	if errors.Is(err, model.ErrEmptyTable) {
		if flagJSON {
			return printJSON(map[string]any{"country_level": []any{}, "comparison": []any{}})
		}
		printEmpty()
		return nil
	}
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(map[string]any{
			"country_level": summary.CountryLevel,
			"comparison":    summary.Comparison,
		})
	}

	cl := limitRows(summary.CountryLevel, flagInsightLimit)
	clRows := make([][]string, 0, len(cl))
	for _, r := range cl {
		clRows = append(clRows, []string{
			r.Country,
			string(r.Level),
			cli.FormatNumber(int64(r.Programs)),
			cli.FormatCost(r.MeanTotalAnnualUSD),
			cli.RenderAffordability(r.MeanAffordability),
			cli.FormatPercent(r.ShareAboveMedian),
		})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Policy Gap by Country & Level",
		Headers: []string{"Country", "Level", "Programs", "Mean", "Afford.", "Above Median"},
		Rows:    clRows,
	}))
	footnote(len(cl), len(summary.CountryLevel))
	fmt.Println()

	cmp := limitRows(summary.Comparison, flagInsightLimit)
	cmpRows := make([][]string, 0, len(cmp))
	for _, c := range cmp {
		cmpRows = append(cmpRows, []string{
			c.Country,
			cli.FormatNumber(int64(c.Programs)),
			cli.FormatCost(c.MinTotalAnnualUSD),
			cli.FormatCost(c.MeanTotalAnnualUSD),
			cli.FormatCost(c.MaxTotalAnnualUSD),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Country Comparison",
		Headers: []string{"Country", "Programs", "Min", "Mean", "Max"},
		Rows:    cmpRows,
	}))
	footnote(len(cmp), len(summary.Comparison))
	return nil
}

func limitRows[T any](rows []T, limit int) []T {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}

func footnote(shown, total int) {
	if shown < total {
		fmt.Println(cli.RenderMuted(fmt.Sprintf("  Showing %d of %d rows.", shown, total)))
	}
}
