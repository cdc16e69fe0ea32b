package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/edcost/internal/model"
	"github.com/theirongolddev/edcost/internal/server"
)

const csvHeader = "Country,City,University,Program,Level,Duration_Years,Tuition_USD,Living_Cost_Index,Rent_USD,Visa_Fee_USD,Insurance_USD,Exchange_Rate"

// Munich totals 54100 and Pune 14700 against the default 26000 baseline.
const csvRows = `Germany,Munich,TU Munich,Computer Science,Master,2,20000,80,1000,500,800,0.92
India,Pune,Pune University,Economics,Master,2,3000,30,300,100,200,83
`

func writeDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "programs.csv")
	require.NoError(t, os.WriteFile(path, []byte(csvHeader+"\n"+csvRows), 0o600))
	return path
}

// resetFlags restores every flag to its default between runs, since cobra
// keeps parsed values on the package-level commands.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// run executes the CLI with args and returns what it wrote to stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("EDCOST_DATA", "")
	t.Setenv("EDCOST_NY_BASELINE", "")
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	r, w, err := os.Pipe()
	require.NoError(t, err)
	stdout := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = stdout }()

	done := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		done <- buf.Bytes()
	}()

	rootCmd.SetArgs(append([]string{"-q", "--no-cache"}, args...))
	runErr := rootCmd.Execute()
	_ = w.Close()
	out := <-done
	return string(out), runErr
}

func TestScenarioJSON(t *testing.T) {
	data := writeDataset(t)
	out, err := run(t, "scenario", "--json", "-d", data, "--target", "40000")
	require.NoError(t, err)

	var resp server.ScenarioResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	require.Len(t, resp.ProgramGaps, 1)
	assert.Equal(t, "TU Munich", resp.ProgramGaps[0].Institution)
	assert.InDelta(t, 14100, resp.ProgramGaps[0].GapToTargetUSD, 1e-6)
	assert.Len(t, resp.Adjusted, 2)
	require.NotNil(t, resp.Summary)
	assert.Equal(t, 2, resp.Summary.Programs)
}

func TestScenarioTuitionCut(t *testing.T) {
	data := writeDataset(t)
	out, err := run(t, "scenario", "--json", "-d", data, "--tuition-cut", "100", "--target", "40000")
	require.NoError(t, err)

	var resp server.ScenarioResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	assert.Empty(t, resp.ProgramGaps)
	assert.InDelta(t, 100, resp.Params.Levers.TuitionCutPct, 1e-9)
}

func TestScenarioRejectsBadLever(t *testing.T) {
	data := writeDataset(t)
	_, err := run(t, "scenario", "-d", data, "--living-subsidy", "150")
	require.Error(t, err)
	assert.Equal(t, 2, exitCode(err))

	var ve *model.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "living_subsidy", ve.Field)
}

func TestScenarioRejectsBadTop(t *testing.T) {
	data := writeDataset(t)
	_, err := run(t, "scenario", "-d", data, "--top", "0")
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
}

func TestScenarioWorkbook(t *testing.T) {
	data := writeDataset(t)
	out := filepath.Join(t.TempDir(), "scenario.xlsx")
	_, err := run(t, "scenario", "--json", "-d", data, "--xlsx", out)
	require.NoError(t, err)

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestSummaryJSON(t *testing.T) {
	data := writeDataset(t)
	out, err := run(t, "summary", "--json", "-d", data)
	require.NoError(t, err)

	var resp struct {
		NYBaselineUSD float64               `json:"ny_baseline_usd"`
		Summary       *model.InsightSummary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	assert.InDelta(t, 26000, resp.NYBaselineUSD, 1e-9)
	require.NotNil(t, resp.Summary)
	assert.Equal(t, 2, resp.Summary.Programs)
	assert.InDelta(t, 54100, resp.Summary.TotalAnnual.Max, 1e-6)
}

func TestSummaryBaselineFlag(t *testing.T) {
	data := writeDataset(t)
	out, err := run(t, "summary", "--json", "-d", data, "--ny-baseline", "30000")
	require.NoError(t, err)

	var resp struct {
		NYBaselineUSD float64 `json:"ny_baseline_usd"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	assert.InDelta(t, 30000, resp.NYBaselineUSD, 1e-9)
}

func TestSummaryEmptyAfterFilter(t *testing.T) {
	data := writeDataset(t)
	out, err := run(t, "summary", "-d", data, "--country", "atlantis")
	require.NoError(t, err)
	assert.Contains(t, out, "No programs found.")
}

func TestProgramsSortAndLimit(t *testing.T) {
	data := writeDataset(t)
	out, err := run(t, "programs", "--json", "-d", data, "--sort", "gap", "--limit", "1")
	require.NoError(t, err)

	var resp struct {
		Total    int                      `json:"total"`
		Programs []model.NormalizedRecord `json:"programs"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	assert.Equal(t, 2, resp.Total)
	require.Len(t, resp.Programs, 1)
	assert.Equal(t, "Munich", resp.Programs[0].Program.City)
}

func TestProgramsRejectsUnknownSort(t *testing.T) {
	data := writeDataset(t)
	_, err := run(t, "programs", "-d", data, "--sort", "name")
	require.Error(t, err)
	assert.Equal(t, 2, exitCode(err))
}

func TestLevelFlagValidated(t *testing.T) {
	data := writeDataset(t)
	_, err := run(t, "summary", "-d", data, "--level", "diploma")
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
}

func TestMalformedDataIsIntegrityError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path,
		[]byte(csvHeader+"\nGermany,Munich,TU Munich,CS,Master,2,abc,80,1000,500,800,1\n"), 0o600))

	_, err := run(t, "summary", "-d", path)
	require.Error(t, err)
	assert.True(t, model.IsDataIntegrity(err))
	assert.Equal(t, 1, exitCode(err))
}

func TestErrorMessage(t *testing.T) {
	ve := &model.ValidationError{Field: "tuition_cut", Value: "abc", Reason: "must be a number"}
	assert.Equal(t, ve.Message(), errorMessage(fmt.Errorf("wrapped: %w", ve)))
	assert.Equal(t, "error: boom", errorMessage(errors.New("boom")))
}

func TestLimitRows(t *testing.T) {
	rows := []int{1, 2, 3}
	assert.Equal(t, []int{1, 2}, limitRows(rows, 2))
	assert.Equal(t, rows, limitRows(rows, 0))
	assert.Equal(t, rows, limitRows(rows, 10))
}
