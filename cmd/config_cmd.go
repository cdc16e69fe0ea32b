package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/edcost/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Data path:    %s\n", config.DataPath(cfg))
	fmt.Printf("    NY baseline:  $%.0f/yr\n", cfg.General.NYBaselineUSD)
	fmt.Println()

	fmt.Println("  [Policy]")
	fmt.Printf("    Target:         $%.0f/yr\n", cfg.Policy.TargetAnnualUSD)
	fmt.Printf("    Tuition cut:    %g%%\n", cfg.Policy.TuitionCutPct)
	fmt.Printf("    Living subsidy: %g%%\n", cfg.Policy.LivingSubsidyPct)
	fmt.Printf("    Top N:          %d\n", cfg.Policy.TopN)
	fmt.Printf("    Max rows:       %d\n", cfg.Policy.MaxRows)
	fmt.Printf("    Memo entries:   %d\n", cfg.Policy.MemoEntries)
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address: %s\n", cfg.Server.Addr)
	fmt.Println()

	fmt.Println("  [Log]")
	fmt.Printf("    Level:  %s\n", cfg.Log.Level)
	fmt.Printf("    Format: %s\n", cfg.Log.Format)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	if err := cfg.Validate(); err != nil {
		fmt.Println("  Problems:")
		fmt.Printf("    %v\n", err)
		fmt.Println()
	}

	fmt.Println("  Run `edcost setup` to reconfigure.")
	return nil
}
