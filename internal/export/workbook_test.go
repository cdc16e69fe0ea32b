package export

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/theirongolddev/edcost/internal/model"
	"github.com/theirongolddev/edcost/internal/policy"
)

func scenario(t *testing.T, p policy.Params) *policy.Result {
	t.Helper()
	ds := &model.Dataset{ID: "export", Programs: []model.Program{
		{
			Country: "Germany", City: "Munich", Institution: "TU Munich", Program: "Computer Science",
			Level: model.LevelMaster, DurationYears: 2, TuitionUSD: 20000, RentUSD: 1000,
			VisaFeeUSD: 500, InsuranceUSD: 800, LivingCostIndex: 80, ExchangeRate: 0.92,
		},
		{
			Country: "India", City: "Pune", Institution: "Pune University", Program: "Economics",
			Level: model.LevelMaster, DurationYears: 2, TuitionUSD: 3000, RentUSD: 300,
			VisaFeeUSD: 100, InsuranceUSD: 200, LivingCostIndex: 30, ExchangeRate: 83,
		},
	}}
	engine, err := policy.NewEngine(ds, policy.Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	require.NoError(t, err)
	res, err := engine.Scenario(p)
	require.NoError(t, err)
	return res
}

func openWorkbook(t *testing.T, res *policy.Result) *excelize.File {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, WriteScenario(&buf, res))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestWriteScenarioSheets(t *testing.T) {
	f := openWorkbook(t, scenario(t, policy.DefaultParams()))
	assert.Equal(t, []string{SheetProgramGaps, SheetAggregate, SheetPrograms, SheetParams}, f.GetSheetList())
}

func TestWriteScenarioProgramGaps(t *testing.T) {
	f := openWorkbook(t, scenario(t, policy.DefaultParams()))

	rows, err := f.GetRows(SheetProgramGaps)
	require.NoError(t, err)
	require.Len(t, rows, 2, "header plus one program above 40k")
	assert.Equal(t, "Gap to Target USD", rows[0][7])
	assert.Equal(t, "TU Munich", rows[1][3])

	raw, err := f.GetCellValue(SheetProgramGaps, "H2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "14100", raw)
}

func TestWriteScenarioAggregateAndParams(t *testing.T) {
	p := policy.DefaultParams()
	p.Levers.TuitionCutPct = 50
	f := openWorkbook(t, scenario(t, p))

	rows, err := f.GetRows(SheetAggregate)
	require.NoError(t, err)
	assert.Len(t, rows, 3, "header plus Germany and India")

	params, err := f.GetRows(SheetParams)
	require.NoError(t, err)
	require.Len(t, params, 5)
	assert.Equal(t, policy.ParamTuitionCut, params[3][0])
	assert.Equal(t, "50", params[3][1])

	adjusted, err := f.GetRows(SheetPrograms)
	require.NoError(t, err)
	assert.Len(t, adjusted, 3)
}

func TestWriteScenarioNoGaps(t *testing.T) {
	p := policy.DefaultParams()
	p.TargetAnnualUSD = 1e6
	f := openWorkbook(t, scenario(t, p))

	rows, err := f.GetRows(SheetProgramGaps)
	require.NoError(t, err)
	assert.Len(t, rows, 1, "header only")
}
