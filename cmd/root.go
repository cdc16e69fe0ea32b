// Package cmd implements the edcost CLI commands.
package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/edcost/internal/cli"
	"github.com/theirongolddev/edcost/internal/config"
	"github.com/theirongolddev/edcost/internal/logging"
	"github.com/theirongolddev/edcost/internal/model"
	"github.com/theirongolddev/edcost/internal/pipeline"
	"github.com/theirongolddev/edcost/internal/policy"
	"github.com/theirongolddev/edcost/internal/store"
)

var (
	flagData       string
	flagNYBaseline float64
	flagCountry    string
	flagLevel      string
	flagQuery      string
	flagNoCache    bool
	flagQuiet      bool
	flagJSON       bool
	flagVerbose    bool
)

// cfg is loaded once per invocation before any command runs.
var cfg = config.DefaultConfig()

var rootCmd = &cobra.Command{
	Use:   "edcost",
	Short: "International education cost policy engine",
	Long: "Normalize international program costs, summarize affordability, " +
		"and test tuition and living-cost policy levers against a target.",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE:              runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "  %s\n", errorMessage(err))
		os.Exit(exitCode(err))
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagData, "data", "d", "", "Dataset CSV file or directory (default from config)")
	pf.Float64Var(&flagNYBaseline, "ny-baseline", policy.DefaultNYBaselineUSD, "New York living-cost baseline in USD per year")
	pf.StringVarP(&flagCountry, "country", "c", "", "Filter to country (substring match)")
	pf.StringVarP(&flagLevel, "level", "l", "", "Filter to level: Bachelor, Master or PhD")
	pf.StringVar(&flagQuery, "query", "", "Filter to programs matching text in any name field")
	pf.BoolVar(&flagNoCache, "no-cache", false, "Skip SQLite cache, reparse everything")
	pf.BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	pf.BoolVar(&flagJSON, "json", false, "Print machine-readable JSON")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging")
}

// setup loads config, applies flag overrides and installs the logger.
func setup(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load()
	if err != nil {
		return err
	}
	cfg = loaded

	if !cmd.Flags().Changed("ny-baseline") {
		flagNYBaseline = cfg.General.NYBaselineUSD
	}
	if flagData == "" {
		flagData = config.DataPath(cfg)
	}
	if flagLevel != "" {
		if _, ok := model.ParseLevel(flagLevel); !ok {
			return &model.ValidationError{Field: "level", Value: flagLevel, Reason: "must be Bachelor, Master or PhD"}
		}
	}

	level := cfg.Log.Level
	if flagVerbose {
		level = "debug"
	}
	_, err = logging.Setup(level, cfg.Log.Format)
	return err
}

// errorMessage prefers the user-facing form of validation errors.
func errorMessage(err error) string {
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		return ve.Message()
	}
	return "error: " + err.Error()
}

// exitCode is 2 for invalid input and 1 for everything else.
func exitCode(err error) int {
	if model.IsValidation(err) {
		return 2
	}
	return 1
}

func currentFilter() pipeline.Filter {
	return pipeline.Filter{Country: flagCountry, Level: flagLevel, Query: flagQuery}
}

// loadData is the shared data loading path used by all commands.
// Uses SQLite cache when available for fast subsequent runs.
func loadData() (*model.Dataset, error) {
	var progressFn pipeline.ProgressFunc
	if !flagQuiet {
		progressFn = cli.NewLoadProgress(os.Stderr, "  Parsing tables").Update
	}

	ds, err := loadCached(progressFn)
	if err != nil {
		return nil, err
	}
	if ds == nil {
		result, err := pipeline.Load(flagData, progressFn)
		if err != nil {
			return nil, err
		}
		if !flagQuiet {
			if result.TotalFiles == 0 {
				fmt.Fprintf(os.Stderr, "  No CSV or XLSX tables found at %s\n", flagData)
			} else {
				fmt.Fprintf(os.Stderr, "  Parsed %s programs across %d countries\n",
					cli.FormatNumber(int64(result.Dataset.Len())), result.CountryCount)
			}
		}
		ds = result.Dataset
	}
	return currentFilter().Apply(ds), nil
}

// loadCached returns nil without error when the cache cannot be used, so the
// caller falls back to a full parse. Malformed data is still an error.
func loadCached(progressFn pipeline.ProgressFunc) (*model.Dataset, error) {
	if flagNoCache {
		return nil, nil
	}
	cache, err := store.Open(pipeline.CachePath())
	if err != nil {
		slog.Warn("cache unavailable, doing full parse", "error", err)
		return nil, nil
	}
	defer cache.Close()

	cr, err := pipeline.LoadWithCache(flagData, cache, progressFn)
	if err != nil {
		if model.IsDataIntegrity(err) {
			return nil, err
		}
		slog.Warn("cache error, falling back to full parse", "error", err)
		return nil, nil
	}
	if !flagQuiet && cr.TotalFiles > 0 {
		if cr.Reparsed == 0 {
			fmt.Fprintf(os.Stderr, "  Loaded %s programs from cache (%d countries)\n",
				cli.FormatNumber(int64(cr.Dataset.Len())), cr.CountryCount)
		} else {
			fmt.Fprintf(os.Stderr, "  %d cached + %d reparsed files (%s programs)\n",
				cr.CacheHits, cr.Reparsed, cli.FormatNumber(int64(cr.Dataset.Len())))
		}
	}
	return cr.Dataset, nil
}

func engineOptions() policy.Options {
	return policy.Options{
		MaxRows:     cfg.Policy.MaxRows,
		MemoEntries: cfg.Policy.MemoEntries,
		TopN:        cfg.Policy.TopN,
		Logger:      slog.Default(),
	}
}

// baseParams is the configured scenario with the baseline flag applied.
func baseParams() policy.Params {
	return policy.Params{
		NYBaselineUSD:   flagNYBaseline,
		TargetAnnualUSD: cfg.Policy.TargetAnnualUSD,
		Levers: model.Levers{
			TuitionCutPct:    cfg.Policy.TuitionCutPct,
			LivingSubsidyPct: cfg.Policy.LivingSubsidyPct,
		},
	}
}

// loadEngine loads the dataset and binds an engine to it.
func loadEngine(opts policy.Options) (*policy.Engine, error) {
	ds, err := loadData()
	if err != nil {
		return nil, err
	}
	return policy.NewEngine(ds, opts)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printEmpty() {
	fmt.Println("\n  No programs found.")
	if !currentFilter().IsZero() {
		fmt.Println("  Try loosening --country, --level or --query.")
	}
}
