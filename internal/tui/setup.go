package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/edcost/internal/cli"
	"github.com/theirongolddev/edcost/internal/config"
	"github.com/theirongolddev/edcost/internal/model"
	"github.com/theirongolddev/edcost/internal/policy"
	"github.com/theirongolddev/edcost/internal/tui/theme"
)

// SetupValues holds the first-run wizard answers as typed.
type SetupValues struct {
	DataPath   string
	NYBaseline string
	Target     string
	Theme      string
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func setupValuesFrom(p policy.Params, themeName string) SetupValues {
	return SetupValues{
		NYBaseline: formatAmount(p.NYBaselineUSD),
		Target:     formatAmount(p.TargetAnnualUSD),
		Theme:      themeName,
	}
}

// SetupValuesFromConfig seeds the wizard with the current configuration.
func SetupValuesFromConfig(cfg config.Config) SetupValues {
	return SetupValues{
		DataPath:   cfg.General.DataPath,
		NYBaseline: formatAmount(cfg.General.NYBaselineUSD),
		Target:     formatAmount(cfg.Policy.TargetAnnualUSD),
		Theme:      cfg.Appearance.Theme,
	}
}

// Apply parses the typed amounts onto p.
func (v SetupValues) Apply(p policy.Params) (policy.Params, error) {
	return policy.ParseParams(map[string]string{
		policy.ParamNYBaseline:   v.NYBaseline,
		policy.ParamTargetAnnual: v.Target,
	}, p)
}

// validateParam reuses the engine's parameter rules for one form field.
func validateParam(key string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New("required")
		}
		_, err := policy.ParseParams(map[string]string{key: s}, policy.DefaultParams())
		var ve *model.ValidationError
		if errors.As(err, &ve) {
			return errors.New(ve.Message())
		}
		return err
	}
}

// NewSetupForm builds the first-run wizard. programs and dataPath describe
// the dataset found so far; programs < 0 hides the note.
func NewSetupForm(vals *SetupValues, programs int, dataPath string) *huh.Form {
	welcome := "Set the defaults edcost uses for every report."
	if programs >= 0 {
		welcome = fmt.Sprintf("Found %s programs in %s.\n\n%s",
			cli.FormatNumber(int64(programs)), dataPath, welcome)
	}

	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, name := range theme.Names() {
		themeOpts = append(themeOpts, huh.NewOption(name, name))
	}
	if !theme.Known(vals.Theme) {
		vals.Theme = theme.FlexokiDark.Name
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to edcost").
				Description(welcome),
			huh.NewInput().
				Title("Dataset path").
				Description("CSV file or directory of CSV files. Leave blank to keep the current path.").
				Value(&vals.DataPath),
			huh.NewInput().
				Title("New York living-cost baseline (USD per year)").
				Description("Cost of living at index 100.").
				Value(&vals.NYBaseline).
				Validate(validateParam(policy.ParamNYBaseline)),
			huh.NewInput().
				Title("Affordability target (USD per year)").
				Value(&vals.Target).
				Validate(validateParam(policy.ParamTargetAnnual)),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.Theme),
		),
	).WithTheme(huh.ThemeDracula())
}

// SaveSetup merges the wizard answers into the config file.
func SaveSetup(vals SetupValues) error {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}

	p, err := vals.Apply(policy.Params{
		NYBaselineUSD:   cfg.General.NYBaselineUSD,
		TargetAnnualUSD: cfg.Policy.TargetAnnualUSD,
	})
	if err != nil {
		return err
	}
	if dp := strings.TrimSpace(vals.DataPath); dp != "" {
		cfg.General.DataPath = dp
	}
	cfg.General.NYBaselineUSD = p.NYBaselineUSD
	cfg.Policy.TargetAnnualUSD = p.TargetAnnualUSD
	if theme.Known(vals.Theme) {
		cfg.Appearance.Theme = vals.Theme
	}
	return config.Save(cfg)
}
