// Package export writes scenario results as XLSX workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/theirongolddev/edcost/internal/model"
	"github.com/theirongolddev/edcost/internal/policy"
)

// Sheet names in the order they appear in the workbook.
const (
	SheetProgramGaps = "Program Gaps"
	SheetAggregate   = "By Country & Level"
	SheetPrograms    = "Adjusted Programs"
	SheetParams      = "Scenario"
)

// ContentType is the MIME type of the workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	usdFormat = "#,##0"
	pctFormat = "0.0%"
)

type sheetWriter struct {
	f      *excelize.File
	header int
	usd    int
	pct    int
}

// WriteScenario writes res as a workbook to w: the program gap table, the
// aggregate gap table, the full adjusted table and the parameters used.
func WriteScenario(w io.Writer, res *policy.Result) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sw, err := newSheetWriter(f)
	if err != nil {
		return err
	}

	if err := f.SetSheetName(f.GetSheetName(0), SheetProgramGaps); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	for _, name := range []string{SheetAggregate, SheetPrograms, SheetParams} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("adding sheet %s: %w", name, err)
		}
	}

	steps := []func() error{
		func() error { return sw.programGaps(res.Gaps.Programs) },
		func() error { return sw.aggregate(res.Gaps.Aggregate) },
		func() error { return sw.adjusted(res.Adjusted) },
		func() error { return sw.params(res.Params) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func newSheetWriter(f *excelize.File) (*sheetWriter, error) {
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	usd, err := f.NewStyle(&excelize.Style{CustomNumFmt: &usdFormat})
	if err != nil {
		return nil, fmt.Errorf("usd style: %w", err)
	}
	pct, err := f.NewStyle(&excelize.Style{CustomNumFmt: &pctFormat})
	if err != nil {
		return nil, fmt.Errorf("percent style: %w", err)
	}
	return &sheetWriter{f: f, header: header, usd: usd, pct: pct}, nil
}

// table writes headers and rows starting at A1, then applies column styles.
// styles maps a 1-based column to a style ID.
func (sw *sheetWriter) table(sheet string, headers []string, rows [][]any, styles map[int]int) error {
	if err := sw.f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("%s header: %w", sheet, err)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := sw.f.SetCellStyle(sheet, "A1", last, sw.header); err != nil {
		return fmt.Errorf("%s header style: %w", sheet, err)
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+1, err)
		}
	}
	if len(rows) == 0 {
		return nil
	}

	for col, style := range styles {
		top, _ := excelize.CoordinatesToCellName(col, 2)
		bottom, _ := excelize.CoordinatesToCellName(col, len(rows)+1)
		if err := sw.f.SetCellStyle(sheet, top, bottom, style); err != nil {
			return fmt.Errorf("%s column %d style: %w", sheet, col, err)
		}
	}
	return nil
}

func (sw *sheetWriter) programGaps(gaps []model.ProgramGap) error {
	rows := make([][]any, 0, len(gaps))
	for _, g := range gaps {
		rows = append(rows, []any{
			g.Index, g.Country, g.City, g.Institution, g.Program, string(g.Level),
			g.TotalAnnualUSD, g.GapToTargetUSD,
		})
	}
	return sw.table(SheetProgramGaps,
		[]string{"Index", "Country", "City", "Institution", "Program", "Level", "Total Annual USD", "Gap to Target USD"},
		rows, map[int]int{7: sw.usd, 8: sw.usd})
}

func (sw *sheetWriter) aggregate(groups []model.GapRow) error {
	rows := make([][]any, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, []any{
			g.Country, string(g.Level), g.Programs, g.MeanTotalAnnualUSD, g.MeanGapToTargetUSD,
			g.ShareAboveTarget, g.TuitionShare, g.LivingShare,
		})
	}
	return sw.table(SheetAggregate,
		[]string{"Country", "Level", "Programs", "Mean Total USD", "Mean Gap USD", "Share Above Target", "Tuition Share", "Living Share"},
		rows, map[int]int{4: sw.usd, 5: sw.usd, 6: sw.pct, 7: sw.pct, 8: sw.pct})
}

func (sw *sheetWriter) adjusted(table []model.AdjustedRecord) error {
	rows := make([][]any, 0, len(table))
	for _, r := range table {
		p := r.Program
		rows = append(rows, []any{
			r.Index, p.Country, p.City, p.Institution, p.Program, string(p.Level), p.DurationYears,
			r.TuitionAnnualUSD, r.DirectAnnualUSD, r.IndirectAnnualUSD, r.TotalAnnualUSD,
			r.AffordabilityIndex, r.PolicyGapUSD,
		})
	}
	return sw.table(SheetPrograms,
		[]string{"Index", "Country", "City", "Institution", "Program", "Level", "Duration Years",
			"Tuition USD", "Direct USD", "Indirect USD", "Total USD", "Affordability Index", "Policy Gap USD"},
		rows, map[int]int{8: sw.usd, 9: sw.usd, 10: sw.usd, 11: sw.usd, 13: sw.usd})
}

func (sw *sheetWriter) params(p policy.Params) error {
	return sw.table(SheetParams,
		[]string{"Parameter", "Value"},
		[][]any{
			{policy.ParamNYBaseline, p.NYBaselineUSD},
			{policy.ParamTargetAnnual, p.TargetAnnualUSD},
			{policy.ParamTuitionCut, p.Levers.TuitionCutPct},
			{policy.ParamLivingSubsidy, p.Levers.LivingSubsidyPct},
		}, nil)
}
