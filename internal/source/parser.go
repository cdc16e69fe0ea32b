// Package source discovers and parses CSV and XLSX tables of education programs.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/theirongolddev/edcost/internal/model"
)

// Column names as they appear in the dataset header.
const (
	ColCountry         = "Country"
	ColCity            = "City"
	ColInstitution     = "Institution"
	ColProgram         = "Program"
	ColLevel           = "Level"
	ColDurationYears   = "Duration_Years"
	ColTuitionUSD      = "Tuition_USD"
	ColRentUSD         = "Rent_USD"
	ColVisaFeeUSD      = "Visa_Fee_USD"
	ColInsuranceUSD    = "Insurance_USD"
	ColLivingCostIndex = "Living_Cost_Index"
	ColExchangeRate    = "Exchange_Rate"
)

var requiredColumns = []string{
	ColCountry, ColCity, ColInstitution, ColProgram, ColLevel,
	ColDurationYears, ColTuitionUSD, ColRentUSD, ColVisaFeeUSD,
	ColInsuranceUSD, ColLivingCostIndex,
}

// columnAliases maps alternative header spellings onto canonical names.
var columnAliases = map[string]string{
	"university": ColInstitution,
}

// ParseResult holds the output of parsing a single CSV file.
type ParseResult struct {
	File     DiscoveredFile
	Programs []model.Program
	Err      error
}

// ParseFile reads one program table, choosing the format by extension. A
// malformed row rejects the whole file with a *model.DataIntegrityError.
func ParseFile(df DiscoveredFile) ParseResult {
	if isWorkbook(df.Path) {
		programs, err := ParseWorkbook(df.Path)
		return ParseResult{File: df, Programs: programs, Err: err}
	}

	f, err := os.Open(df.Path)
	if err != nil {
		return ParseResult{File: df, Err: err}
	}
	defer func() { _ = f.Close() }()

	programs, err := Parse(f, df.Path)
	return ParseResult{File: df, Programs: programs, Err: err}
}

// Parse reads a CSV program table from r. name identifies the input in errors.
func Parse(r io.Reader, name string) ([]model.Program, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	return parseRows(cr.Read, name)
}

// parseRows consumes a header row then data rows from next until io.EOF.
func parseRows(next func() ([]string, error), name string) ([]model.Program, error) {
	header, err := next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &model.DataIntegrityError{Source: name, Reason: "missing header row"}
		}
		return nil, &model.DataIntegrityError{Source: name, Reason: err.Error()}
	}
	cols, err := mapHeader(header)
	if err != nil {
		return nil, &model.DataIntegrityError{Source: name, Reason: err.Error()}
	}

	var programs []model.Program
	for row := 1; ; row++ {
		rec, err := next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &model.DataIntegrityError{Source: name, Row: row, Reason: err.Error()}
		}
		p, field, err := parseRecord(rec, cols)
		if err != nil {
			return nil, &model.DataIntegrityError{Source: name, Row: row, Field: field, Reason: err.Error()}
		}
		programs = append(programs, p)
	}
	return programs, nil
}

// mapHeader resolves column positions, ignoring case, surrounding space and a
// leading byte order mark.
func mapHeader(header []string) (map[string]int, error) {
	canonical := make(map[string]string, len(requiredColumns)+len(columnAliases)+1)
	for _, c := range requiredColumns {
		canonical[strings.ToLower(c)] = c
	}
	canonical[strings.ToLower(ColExchangeRate)] = ColExchangeRate
	for alias, c := range columnAliases {
		canonical[alias] = c
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if c, ok := canonical[key]; ok {
			if _, dup := cols[c]; dup {
				return nil, fmt.Errorf("duplicate column %q", c)
			}
			cols[c] = i
		}
	}

	var missing []string
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

func parseRecord(rec []string, cols map[string]int) (model.Program, string, error) {
	// Spreadsheet rows drop trailing empty cells.
	cell := func(i int) string {
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	text := func(col string) string {
		return cell(cols[col])
	}

	p := model.Program{
		Country:     text(ColCountry),
		City:        text(ColCity),
		Institution: text(ColInstitution),
		Program:     text(ColProgram),
	}
	if p.Country == "" {
		return p, ColCountry, errors.New("empty value")
	}

	lvl, ok := model.ParseLevel(text(ColLevel))
	if !ok {
		return p, ColLevel, fmt.Errorf("unknown level %q", text(ColLevel))
	}
	p.Level = lvl

	numbers := []struct {
		col string
		dst *float64
	}{
		{ColDurationYears, &p.DurationYears},
		{ColTuitionUSD, &p.TuitionUSD},
		{ColRentUSD, &p.RentUSD},
		{ColVisaFeeUSD, &p.VisaFeeUSD},
		{ColInsuranceUSD, &p.InsuranceUSD},
		{ColLivingCostIndex, &p.LivingCostIndex},
	}
	for _, n := range numbers {
		v, err := ParseNumber(text(n.col))
		if err != nil {
			return p, n.col, err
		}
		if v < 0 {
			return p, n.col, errors.New("must not be negative")
		}
		*n.dst = v
	}
	if p.DurationYears <= 0 {
		return p, ColDurationYears, errors.New("must be positive")
	}

	p.ExchangeRate = 1
	if i, ok := cols[ColExchangeRate]; ok {
		if s := cell(i); s != "" {
			v, err := ParseNumber(s)
			if err != nil {
				return p, ColExchangeRate, err
			}
			p.ExchangeRate = v
		}
	}
	return p, "", nil
}

// ParseNumber parses a finite decimal, allowing thousands separators such as "12,500".
func ParseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty value")
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return v, nil
}
