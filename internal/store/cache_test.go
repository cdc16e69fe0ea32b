package store

import (
	"path/filepath"
	"testing"

	"github.com/theirongolddev/edcost/internal/model"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache", "programs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func samplePrograms() []model.Program {
	return []model.Program{
		{Country: "USA", City: "Boston", Institution: "MIT", Program: "Physics", Level: model.LevelMaster,
			DurationYears: 2, TuitionUSD: 50000, RentUSD: 2100, VisaFeeUSD: 160, InsuranceUSD: 1500,
			LivingCostIndex: 83, ExchangeRate: 1},
		{Country: "Germany", City: "Berlin", Institution: "TU Berlin", Program: "Informatics", Level: model.LevelBachelor,
			DurationYears: 3, TuitionUSD: 300, RentUSD: 900, VisaFeeUSD: 75, InsuranceUSD: 1100,
			LivingCostIndex: 68, ExchangeRate: 0.92},
	}
}

func TestSaveAndLoadPrograms(t *testing.T) {
	c := openTestCache(t)
	want := samplePrograms()

	if err := c.SaveFile("/data/a.csv", want, 100, 2048); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	tracked, err := c.GetTrackedFiles()
	if err != nil {
		t.Fatalf("GetTrackedFiles: %v", err)
	}
	if fi := tracked["/data/a.csv"]; fi.MtimeNs != 100 || fi.SizeBytes != 2048 {
		t.Errorf("tracked = %+v, want mtime 100 size 2048", fi)
	}

	got, err := c.LoadPrograms([]string{"/data/a.csv"})
	if err != nil {
		t.Fatalf("LoadPrograms: %v", err)
	}
	if len(got["/data/a.csv"]) != len(want) {
		t.Fatalf("loaded %d programs, want %d", len(got["/data/a.csv"]), len(want))
	}
	for i, p := range got["/data/a.csv"] {
		if p != want[i] {
			t.Errorf("program %d = %+v, want %+v", i, p, want[i])
		}
	}
}

func TestSaveFileReplaces(t *testing.T) {
	c := openTestCache(t)
	if err := c.SaveFile("/data/a.csv", samplePrograms(), 100, 2048); err != nil {
		t.Fatal(err)
	}
	if err := c.SaveFile("/data/a.csv", samplePrograms()[:1], 200, 1024); err != nil {
		t.Fatal(err)
	}

	got, err := c.LoadPrograms([]string{"/data/a.csv"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got["/data/a.csv"]) != 1 {
		t.Errorf("loaded %d programs, want 1 after replace", len(got["/data/a.csv"]))
	}

	tracked, err := c.GetTrackedFiles()
	if err != nil {
		t.Fatal(err)
	}
	if tracked["/data/a.csv"].MtimeNs != 200 {
		t.Errorf("MtimeNs = %d, want 200", tracked["/data/a.csv"].MtimeNs)
	}
}

func TestPrune(t *testing.T) {
	c := openTestCache(t)
	for _, p := range []string{"/data/a.csv", "/data/b.csv"} {
		if err := c.SaveFile(p, samplePrograms(), 1, 1); err != nil {
			t.Fatal(err)
		}
	}

	n, err := c.Prune([]string{"/data/a.csv"})
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned %d files, want 1", n)
	}

	got, err := c.LoadPrograms([]string{"/data/a.csv", "/data/b.csv"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := got["/data/b.csv"]; ok {
		t.Error("programs of pruned file still cached")
	}
	if len(got["/data/a.csv"]) != 2 {
		t.Errorf("kept file has %d programs, want 2", len(got["/data/a.csv"]))
	}
}

func TestOpenTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "programs.db")
	for i := 0; i < 2; i++ {
		c, err := Open(path)
		if err != nil {
			t.Fatalf("Open #%d: %v", i+1, err)
		}
		_ = c.Close()
	}
}
