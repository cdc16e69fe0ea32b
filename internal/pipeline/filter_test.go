package pipeline

import (
	"testing"

	"github.com/theirongolddev/edcost/internal/model"
)

func filterFixture() *model.Dataset {
	return &model.Dataset{ID: "base", Programs: []model.Program{
		{Country: "United States", City: "Boston", Institution: "MIT", Program: "Physics", Level: model.LevelMaster},
		{Country: "United Kingdom", City: "London", Institution: "UCL", Program: "Law", Level: model.LevelBachelor},
		{Country: "Germany", City: "Munich", Institution: "TU Munich", Program: "Physics", Level: model.LevelPhD},
	}}
}

func TestFilterApply(t *testing.T) {
	ds := filterFixture()
	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"zero", Filter{}, 3},
		{"country substring", Filter{Country: "united"}, 2},
		{"level", Filter{Level: "phd"}, 1},
		{"unknown level", Filter{Level: "diploma"}, 0},
		{"query program", Filter{Query: "physics"}, 2},
		{"query city", Filter{Query: "lond"}, 1},
		{"combined", Filter{Country: "United", Query: "physics"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.Apply(ds)
			if got.Len() != tt.want {
				t.Errorf("Apply(%+v) = %d programs, want %d", tt.filter, got.Len(), tt.want)
			}
		})
	}
}

func TestFilterApplyIdentity(t *testing.T) {
	ds := filterFixture()
	if got := (Filter{}).Apply(ds); got != ds {
		t.Error("zero filter should return the dataset itself")
	}

	a := Filter{Country: "Germany"}.Apply(ds)
	b := Filter{Level: "PhD"}.Apply(ds)
	if a.ID == ds.ID || a.ID == b.ID {
		t.Errorf("filtered IDs must be distinct: %q %q %q", ds.ID, a.ID, b.ID)
	}
	if again := (Filter{Country: "Germany"}).Apply(ds); again.ID != a.ID {
		t.Errorf("same filter gave IDs %q and %q", a.ID, again.ID)
	}
	if len(ds.Programs) != 3 {
		t.Error("source dataset modified")
	}
}
