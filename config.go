package main

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed default-config.yaml
var defaultConfigYAML string

// HouseholdConfig describes the person being planned for
type HouseholdConfig struct {
	Name          string  `yaml:"name" toml:"name"`
	CurrentAge    int     `yaml:"current_age" toml:"current_age"`
	RetirementAge int     `yaml:"retirement_age" toml:"retirement_age"`
	EndAge        int     `yaml:"end_age" toml:"end_age"`       // Planning horizon, e.g. 95
	CPPAnnual     float64 `yaml:"cpp_annual" toml:"cpp_annual"` // Canada Pension Plan, today's dollars
	OASAnnual     float64 `yaml:"oas_annual" toml:"oas_annual"` // Old Age Security, today's dollars
}

// AccountConfig is the opening state of one account
type AccountConfig struct {
	Name         string  `yaml:"name" toml:"name"`
	Balance      float64 `yaml:"balance" toml:"balance"`
	AnnualReturn float64 `yaml:"annual_return" toml:"annual_return"`
}

// AccountsConfig holds the three accounts
type AccountsConfig struct {
	TaxDeferred AccountConfig `yaml:"tax_deferred" toml:"tax_deferred"` // RRSP
	TaxFree     AccountConfig `yaml:"tax_free" toml:"tax_free"`         // TFSA
	Taxable     AccountConfig `yaml:"taxable" toml:"taxable"`           // Non-registered
}

// PlanConfig holds the household's saving and spending intentions
type PlanConfig struct {
	AnnualSavings  float64 `yaml:"annual_savings" toml:"annual_savings"`
	AnnualSpending float64 `yaml:"annual_spending" toml:"annual_spending"` // After-tax target in today's dollars
}

// AssumptionsConfig holds the economic assumptions
type AssumptionsConfig struct {
	ReturnRate    float64 `yaml:"return_rate" toml:"return_rate"`
	InflationRate float64 `yaml:"inflation_rate" toml:"inflation_rate"`
	RuinThreshold float64 `yaml:"ruin_threshold" toml:"ruin_threshold"`
}

// TaxConfig selects the regional rate and optionally overrides the tables
type TaxConfig struct {
	Region          string             `yaml:"region" toml:"region"`
	FederalBrackets []TaxBracket       `yaml:"federal_brackets,omitempty" toml:"federal_brackets,omitempty"`
	RegionalRates   map[string]float64 `yaml:"regional_rates,omitempty" toml:"regional_rates,omitempty"`
}

// OptimizerConfig picks which policies are compared and how many run at once
type OptimizerConfig struct {
	Workers              int      `yaml:"workers" toml:"workers"`
	ContributionPolicies []string `yaml:"contribution_policies,omitempty" toml:"contribution_policies,omitempty"` // Empty = all
	WithdrawalPolicies   []string `yaml:"withdrawal_policies,omitempty" toml:"withdrawal_policies,omitempty"`
}

// SensitivityConfig holds the return-rate sweep range
type SensitivityConfig struct {
	ReturnMin float64 `yaml:"return_min" toml:"return_min"`
	ReturnMax float64 `yaml:"return_max" toml:"return_max"`
	StepSize  float64 `yaml:"step_size" toml:"step_size"`
}

// LoggingConfig holds the log level
type LoggingConfig struct {
	Level string `yaml:"level" toml:"level"`
}

// OutputConfig holds where reports are written
type OutputConfig struct {
	Dir string `yaml:"dir" toml:"dir"`
}

// Config holds the complete configuration
type Config struct {
	Household   HouseholdConfig    `yaml:"household" toml:"household"`
	Accounts    AccountsConfig     `yaml:"accounts" toml:"accounts"`
	Plan        PlanConfig         `yaml:"plan" toml:"plan"`
	Assumptions AssumptionsConfig  `yaml:"assumptions" toml:"assumptions"`
	Tax         TaxConfig          `yaml:"tax" toml:"tax"`
	Limits      ContributionLimits `yaml:"limits" toml:"limits"`
	Optimizer   OptimizerConfig    `yaml:"optimizer" toml:"optimizer"`
	Sensitivity SensitivityConfig  `yaml:"sensitivity" toml:"sensitivity"`
	Logging     LoggingConfig      `yaml:"logging" toml:"logging"`
	Output      OutputConfig       `yaml:"output" toml:"output"`
}

func isTOML(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".toml")
}

// LoadConfig loads configuration from a YAML or TOML file (chosen by extension).
// Percentages such as "5%" are accepted in either format.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config, err := parseConfig(preprocessPercentages(string(data)), isTOML(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}

	applyEnvOverrides(config)
	return config, nil
}

func parseConfig(content string, asTOML bool) (*Config, error) {
	var config Config
	var err error
	if asTOML {
		err = toml.Unmarshal([]byte(content), &config)
	} else {
		err = yaml.Unmarshal([]byte(content), &config)
	}
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// SaveConfig saves configuration as YAML or TOML (chosen by extension)
func SaveConfig(config *Config, filename string) error {
	var data []byte
	var err error
	if isTOML(filename) {
		data, err = toml.Marshal(config)
	} else {
		data, err = yaml.Marshal(config)
	}
	if err != nil {
		return err
	}

	header := []byte(`# Retirement Plan Configuration
#   Percentages: 0.05 or 5%
#   Money: dollars (e.g., 100000 = $100k)
#   Tax regions: ON, BC, QC, AB, MB, SK, NS, NB, NL, PE
#
`)
	return os.WriteFile(filename, append(header, data...), 0644)
}

// LoadDefaultConfig loads the configuration compiled into the binary
func LoadDefaultConfig() (*Config, error) {
	config, err := parseConfig(preprocessPercentages(defaultConfigYAML), false)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded config: %w", err)
	}
	return config, nil
}

var percentPattern = regexp.MustCompile(`([:=]\s*)(-?\d+\.?\d*)%`)

// preprocessPercentages converts values like "5%" to "0.05"
func preprocessPercentages(content string) string {
	return percentPattern.ReplaceAllStringFunc(content, func(match string) string {
		parts := percentPattern.FindStringSubmatch(match)
		if len(parts) >= 3 {
			num, err := strconv.ParseFloat(parts[2], 64)
			if err == nil {
				return parts[1] + strconv.FormatFloat(num/100.0, 'f', -1, 64)
			}
		}
		return match
	})
}

// applyEnvOverrides lets the environment override logging and output settings
func applyEnvOverrides(config *Config) {
	if level := os.Getenv("RETIREPLAN_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if dir := os.Getenv("RETIREPLAN_OUTPUT_DIR"); dir != "" {
		config.Output.Dir = dir
	}
}

// GetAssumptions returns the economic assumptions, using defaults for unset values
func (c *Config) GetAssumptions() Assumptions {
	a := DefaultAssumptions()
	if c.Assumptions.ReturnRate != 0 {
		a.ReturnRate = c.Assumptions.ReturnRate
	}
	if c.Assumptions.InflationRate != 0 {
		a.InflationRate = c.Assumptions.InflationRate
	}
	if c.Assumptions.RuinThreshold > 0 {
		a.RuinThreshold = c.Assumptions.RuinThreshold
	}
	return a
}

// GetLimits returns the contribution caps, using defaults for unset values
func (c *Config) GetLimits() ContributionLimits {
	limits := DefaultContributionLimits()
	if c.Limits.TaxFreeCap > 0 {
		limits.TaxFreeCap = c.Limits.TaxFreeCap
	}
	if c.Limits.TaxDeferredCap > 0 {
		limits.TaxDeferredCap = c.Limits.TaxDeferredCap
	}
	return limits
}

// GetRegion returns the tax region, defaulting to ON
func (c *Config) GetRegion() string {
	if strings.TrimSpace(c.Tax.Region) == "" {
		return DefaultRegion
	}
	return strings.ToUpper(strings.TrimSpace(c.Tax.Region))
}

// GetWorkers returns the optimizer worker count (at least 1)
func (c *Config) GetWorkers() int {
	if c.Optimizer.Workers < 1 {
		return 1
	}
	return c.Optimizer.Workers
}

// GetLogLevel returns the log level, defaulting to info
func (c *Config) GetLogLevel() string {
	if c.Logging.Level == "" {
		return "info"
	}
	return c.Logging.Level
}

// GetOutputDir returns where reports go, defaulting to ./reports
func (c *Config) GetOutputDir() string {
	if c.Output.Dir == "" {
		return "reports"
	}
	return c.Output.Dir
}

// GetSensitivityRange returns the return-rate sweep, defaulting to 2%..8% in 1% steps
func (c *Config) GetSensitivityRange() (min, max, step float64) {
	min, max, step = c.Sensitivity.ReturnMin, c.Sensitivity.ReturnMax, c.Sensitivity.StepSize
	if min == 0 && max == 0 {
		min, max = 0.02, 0.08
	}
	if step <= 0 {
		step = 0.01
	}
	return min, max, step
}

// YearsWorking is the number of accumulation years before retirement
func (c *Config) YearsWorking() int {
	return c.Household.RetirementAge - c.Household.CurrentAge
}

// TaxCalculator builds the calculator for the configured region and tables
func (c *Config) TaxCalculator() *TaxCalculator {
	return NewTaxCalculatorWithBrackets(c.GetRegion(), c.Tax.FederalBrackets, c.Tax.RegionalRates)
}

// PolicyRegistry builds the standard policies using the configured caps
func (c *Config) PolicyRegistry() *PolicyRegistry {
	return NewPolicyRegistry(c.GetLimits())
}

// BuildProfile validates the config and constructs the household profile
func (c *Config) BuildProfile() (*Profile, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	h := c.Household
	accountFrom := func(ac AccountConfig, kind AccountKind) Account {
		name := ac.Name
		if name == "" {
			name = kind.String()
		}
		return NewAccount(name, kind, ac.Balance, ac.AnnualReturn)
	}
	return NewProfile(
		h.Name, h.CurrentAge, h.EndAge, h.CPPAnnual, h.OASAnnual,
		accountFrom(c.Accounts.TaxDeferred, TaxDeferred),
		accountFrom(c.Accounts.TaxFree, TaxFree),
		accountFrom(c.Accounts.Taxable, Taxable),
	), nil
}
