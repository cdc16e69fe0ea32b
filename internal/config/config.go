// Package config reads and writes the edcost TOML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds all edcost configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Policy     PolicyConfig     `toml:"policy"`
	Server     ServerConfig     `toml:"server"`
	Log        LogConfig        `toml:"log"`
	Appearance AppearanceConfig `toml:"appearance"`
}

// GeneralConfig holds dataset location and the cost baseline.
type GeneralConfig struct {
	DataPath      string  `toml:"data_path,omitempty"`
	NYBaselineUSD float64 `toml:"ny_baseline_usd"`
}

// PolicyConfig holds the default scenario and engine limits.
type PolicyConfig struct {
	TargetAnnualUSD  float64 `toml:"target_annual_usd"`
	TuitionCutPct    float64 `toml:"tuition_cut_pct"`
	LivingSubsidyPct float64 `toml:"living_subsidy_pct"`
	TopN             int     `toml:"top_n"`
	MaxRows          int     `toml:"max_rows"`
	MemoEntries      int     `toml:"memo_entries"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// LogConfig holds structured logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			NYBaselineUSD: 26000,
		},
		Policy: PolicyConfig{
			TargetAnnualUSD: 40000,
			TopN:            15,
			MaxRows:         100000,
			MemoEntries:     256,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8790",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "edcost")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "edcost")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
// Environment overrides are applied on top.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overrides the data path and baseline from EDCOST_DATA and EDCOST_NY_BASELINE.
func applyEnv(cfg *Config) error {
	if p := os.Getenv("EDCOST_DATA"); p != "" {
		cfg.General.DataPath = p
	}
	if s := os.Getenv("EDCOST_NY_BASELINE"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("parsing EDCOST_NY_BASELINE: %w", err)
		}
		cfg.General.NYBaselineUSD = v
	}
	return nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// DataPath returns the dataset location with a leading ~ expanded.
// It falls back to International_Education_Costs.csv in the working directory.
func DataPath(cfg Config) string {
	p := cfg.General.DataPath
	if p == "" {
		return "International_Education_Costs.csv"
	}
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

// Validate reports every setting outside its allowed range.
func (c Config) Validate() error {
	var errs []error
	if !(c.General.NYBaselineUSD > 0) {
		errs = append(errs, fmt.Errorf("general.ny_baseline_usd must be positive, got %v", c.General.NYBaselineUSD))
	}
	if !(c.Policy.TargetAnnualUSD >= 0) {
		errs = append(errs, fmt.Errorf("policy.target_annual_usd must not be negative, got %v", c.Policy.TargetAnnualUSD))
	}
	for name, v := range map[string]float64{
		"policy.tuition_cut_pct":    c.Policy.TuitionCutPct,
		"policy.living_subsidy_pct": c.Policy.LivingSubsidyPct,
	} {
		if !(v >= 0 && v <= 100) {
			errs = append(errs, fmt.Errorf("%s must be between 0 and 100, got %v", name, v))
		}
	}
	for name, v := range map[string]int{
		"policy.top_n":        c.Policy.TopN,
		"policy.max_rows":     c.Policy.MaxRows,
		"policy.memo_entries": c.Policy.MemoEntries,
	} {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", name, v))
		}
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}
