package pipeline

import (
	"strings"

	"github.com/theirongolddev/edcost/internal/model"
)

// Filter narrows a dataset before normalization. Empty fields match everything.
type Filter struct {
	Country string
	Level   string
	Query   string
}

// IsZero reports whether the filter matches every program.
func (f Filter) IsZero() bool {
	return f.Country == "" && f.Level == "" && f.Query == ""
}

// Apply returns the filtered dataset. The result has its own identity derived
// from the source dataset and the filter, so memoized results never mix.
func (f Filter) Apply(ds *model.Dataset) *model.Dataset {
	if f.IsZero() {
		return ds
	}
	programs := FilterByCountry(ds.Programs, f.Country)
	programs = FilterByLevel(programs, f.Level)
	programs = FilterByQuery(programs, f.Query)
	return &model.Dataset{
		ID:       ds.ID + "|country=" + f.Country + "|level=" + f.Level + "|q=" + f.Query,
		Programs: programs,
	}
}

// FilterByCountry returns programs whose country contains the given substring.
func FilterByCountry(programs []model.Program, country string) []model.Program {
	if country == "" {
		return programs
	}
	var result []model.Program
	for _, p := range programs {
		if containsIgnoreCase(p.Country, country) {
			result = append(result, p)
		}
	}
	return result
}

// FilterByLevel returns programs at the given level. Unknown level names match nothing.
func FilterByLevel(programs []model.Program, level string) []model.Program {
	if level == "" {
		return programs
	}
	lvl, ok := model.ParseLevel(level)
	if !ok {
		return nil
	}
	var result []model.Program
	for _, p := range programs {
		if p.Level == lvl {
			result = append(result, p)
		}
	}
	return result
}

// FilterByQuery matches a substring against city, institution and program name.
func FilterByQuery(programs []model.Program, query string) []model.Program {
	if query == "" {
		return programs
	}
	var result []model.Program
	for _, p := range programs {
		if containsIgnoreCase(p.City, query) ||
			containsIgnoreCase(p.Institution, query) ||
			containsIgnoreCase(p.Program, query) {
			result = append(result, p)
		}
	}
	return result
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
