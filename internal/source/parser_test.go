package source

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/theirongolddev/edcost/internal/model"
)

const header = "Country,City,University,Program,Level,Duration_Years,Tuition_USD,Living_Cost_Index,Rent_USD,Visa_Fee_USD,Insurance_USD,Exchange_Rate"

// writeTable creates a temp CSV file and returns a DiscoveredFile for it.
func writeTable(t *testing.T, lines ...string) DiscoveredFile {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "programs.csv")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return DiscoveredFile{Path: path, Name: "programs"}
}

func TestParseFile_Rows(t *testing.T) {
	df := writeTable(t,
		header,
		"USA,Cambridge,Harvard University,Computer Science,Master,2,55400,83.5,2200,160,1500,1.00",
		"Germany,Munich,TU Munich,Mechanical Engineering,bachelor,3.5,500,70.2,1100,75,1200,0.92",
	)

	result := ParseFile(df)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if len(result.Programs) != 2 {
		t.Fatalf("Programs = %d, want 2", len(result.Programs))
	}

	p := result.Programs[0]
	if p.Institution != "Harvard University" {
		t.Errorf("Institution = %q, want Harvard University", p.Institution)
	}
	if p.Level != model.LevelMaster {
		t.Errorf("Level = %q, want Master", p.Level)
	}
	if p.TuitionUSD != 55400 || p.RentUSD != 2200 || p.VisaFeeUSD != 160 || p.InsuranceUSD != 1500 {
		t.Errorf("costs = %+v", p)
	}
	if p.LivingCostIndex != 83.5 {
		t.Errorf("LivingCostIndex = %v, want 83.5", p.LivingCostIndex)
	}

	q := result.Programs[1]
	if q.Level != model.LevelBachelor {
		t.Errorf("Level = %q, want Bachelor", q.Level)
	}
	if q.DurationYears != 3.5 {
		t.Errorf("DurationYears = %v, want 3.5", q.DurationYears)
	}
	if q.ExchangeRate != 0.92 {
		t.Errorf("ExchangeRate = %v, want 0.92", q.ExchangeRate)
	}
}

func TestParse_OptionalExchangeRate(t *testing.T) {
	in := "country,city,institution,program,level,duration_years,tuition_usd,living_cost_index,rent_usd,visa_fee_usd,insurance_usd\n" +
		"UK,London,UCL,Law,PhD,3,\"28,000\",88,1800,490,800\n"

	programs, err := Parse(strings.NewReader(in), "input")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(programs) != 1 {
		t.Fatalf("Programs = %d, want 1", len(programs))
	}
	if programs[0].ExchangeRate != 1 {
		t.Errorf("ExchangeRate = %v, want default 1", programs[0].ExchangeRate)
	}
	if programs[0].TuitionUSD != 28000 {
		t.Errorf("TuitionUSD = %v, want 28000", programs[0].TuitionUSD)
	}
}

func TestParse_HeaderOnly(t *testing.T) {
	programs, err := Parse(strings.NewReader(header+"\n"), "input")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(programs) != 0 {
		t.Errorf("Programs = %d, want 0", len(programs))
	}
}

func TestParse_Rejects(t *testing.T) {
	good := "USA,Boston,MIT,Physics,Master,2,50000,83,2100,160,1500,1"
	tests := []struct {
		name  string
		input string
		row   int
		field string
	}{
		{"empty input", "", 0, ""},
		{"missing column", "Country,City,Level\nUSA,Boston,Master", 0, ""},
		{"non-numeric tuition", header + "\n" + good + "\nUSA,Boston,MIT,Physics,Master,2,lots,83,2100,160,1500,1", 2, ColTuitionUSD},
		{"negative rent", header + "\nUSA,Boston,MIT,Physics,Master,2,50000,83,-1,160,1500,1", 1, ColRentUSD},
		{"zero duration", header + "\nUSA,Boston,MIT,Physics,Master,0,50000,83,2100,160,1500,1", 1, ColDurationYears},
		{"unknown level", header + "\nUSA,Boston,MIT,Physics,Diploma,2,50000,83,2100,160,1500,1", 1, ColLevel},
		{"empty country", header + "\n,Boston,MIT,Physics,Master,2,50000,83,2100,160,1500,1", 1, ColCountry},
		{"missing field", header + "\nUSA,Boston,MIT,Physics,Master,2,50000", 1, ""},
		{"empty visa", header + "\nUSA,Boston,MIT,Physics,Master,2,50000,83,2100,,1500,1", 1, ColVisaFeeUSD},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			programs, err := Parse(strings.NewReader(tt.input), "input.csv")
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if programs != nil {
				t.Errorf("Programs = %d, want none on failure", len(programs))
			}
			var de *model.DataIntegrityError
			if !errors.As(err, &de) {
				t.Fatalf("error %T is not a DataIntegrityError", err)
			}
			if de.Source != "input.csv" {
				t.Errorf("Source = %q, want input.csv", de.Source)
			}
			if de.Row != tt.row {
				t.Errorf("Row = %d, want %d", de.Row, tt.row)
			}
			if de.Field != tt.field {
				t.Errorf("Field = %q, want %q", de.Field, tt.field)
			}
		})
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{"42", 42, false},
		{" 3.5 ", 3.5, false},
		{"12,500", 12500, false},
		{"-7", -7, false},
		{"", 0, true},
		{"abc", 0, true},
		{"NaN", 0, true},
		{"Inf", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseNumber(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseNumber(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseNumber(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

// FuzzParse checks the parser never panics and never returns a program
// that breaks the row invariants.
func FuzzParse(f *testing.F) {
	f.Add(header + "\nUSA,Boston,MIT,Physics,Master,2,50000,83,2100,160,1500,1")
	f.Add(header + "\nUK,London,UCL,Law,PhD,3,\"28,000\",88,1800,490,800,")
	f.Add(header + "\n\"unterminated")
	f.Add("Country\n")
	f.Add("")

	f.Fuzz(func(t *testing.T, data string) {
		programs, err := Parse(strings.NewReader(data), "fuzz")
		if err != nil {
			return
		}
		for _, p := range programs {
			if !p.Level.Valid() {
				t.Errorf("invalid level %q accepted", p.Level)
			}
			if !(p.DurationYears > 0) {
				t.Errorf("non-positive duration %v accepted", p.DurationYears)
			}
			if p.TuitionUSD < 0 || p.RentUSD < 0 || p.VisaFeeUSD < 0 || p.InsuranceUSD < 0 {
				t.Errorf("negative cost accepted: %+v", p)
			}
		}
	})
}
