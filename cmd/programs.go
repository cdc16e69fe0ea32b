package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/edcost/internal/cli"
	"github.com/theirongolddev/edcost/internal/model"
	"github.com/theirongolddev/edcost/internal/policy"
)

var (
	flagSort  string
	flagLimit int
)

var programsCmd = &cobra.Command{
	Use:   "programs",
	Short: "Normalized annual cost of every program",
	RunE:  runPrograms,
}

func init() {
	programsCmd.Flags().StringVar(&flagSort, "sort", "total", "Sort by: total, affordability or gap")
	programsCmd.Flags().IntVarP(&flagLimit, "limit", "n", 20, "Max programs to show (0 = all)")
	rootCmd.AddCommand(programsCmd)
}

// rankerFor maps a --sort value onto its ranking.
func rankerFor(sortBy string) (func([]model.NormalizedRecord) []model.NormalizedRecord, error) {
	switch strings.ToLower(sortBy) {
	case "total", "":
		return policy.RankByTotal[model.NormalizedRecord], nil
	case "affordability":
		return policy.RankByAffordability[model.NormalizedRecord], nil
	case "gap":
		return policy.RankByPolicyGap[model.NormalizedRecord], nil
	}
	return nil, &model.ValidationError{Field: "sort", Value: sortBy, Reason: "must be total, affordability or gap"}
}

func runPrograms(_ *cobra.Command, _ []string) error {
	rank, err := rankerFor(flagSort)
	if err != nil {
		return err
	}
	if flagLimit < 0 {
		return &model.ValidationError{Field: "limit", Value: fmt.Sprint(flagLimit), Reason: "must not be negative"}
	}

	engine, err := loadEngine(engineOptions())
	if err != nil {
		return err
	}
	snap, err := engine.Snapshot(flagNYBaseline)
	if err != nil {
		return err
	}

	ranked := rank(snap.Table)
	total := len(ranked)
	if flagLimit > 0 && len(ranked) > flagLimit {
		ranked = ranked[:flagLimit]
	}

	if flagJSON {
		return printJSON(map[string]any{
			"ny_baseline_usd": flagNYBaseline,
			"sort":            strings.ToLower(flagSort),
			"total":           total,
			"programs":        ranked,
		})
	}
	if total == 0 {
		printEmpty()
		return nil
	}

	rows := make([][]string, 0, len(ranked))
	for _, r := range ranked {
		p := r.Program
		rows = append(rows, []string{
			cli.Truncate(p.Institution, 32),
			cli.Truncate(p.Program, 24),
			cli.Truncate(p.City+", "+p.Country, 24),
			string(p.Level),
			cli.FormatCost(r.DirectAnnualUSD),
			cli.FormatCost(r.IndirectAnnualUSD),
			cli.FormatCost(r.TotalAnnualUSD),
			cli.RenderAffordability(r.AffordabilityIndex),
			cli.RenderGap(r.PolicyGapUSD),
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Programs by %s", strings.ToLower(flagSort)),
		Headers: []string{"Institution", "Program", "Location", "Level", "Direct", "Indirect", "Total", "Afford.", "vs Median"},
		Rows:    rows,
	}))
	if len(ranked) < total {
		fmt.Println(cli.RenderMuted(fmt.Sprintf("  Showing %d of %d. Use --limit 0 for all.", len(ranked), total)))
	}
	return nil
}
