// Package config provides configuration management for the backtester.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/hamedasgari20/covered-call-strategy/internal/backtest"
	"github.com/hamedasgari20/covered-call-strategy/internal/models"
	"github.com/hamedasgari20/covered-call-strategy/internal/strategy"
	"github.com/hamedasgari20/covered-call-strategy/internal/volatility"
)

// Defaults applied before validation.
const (
	defaultRollFrequencyDays = 21
	defaultVolWindowDays     = 30
	defaultRemoteTimeout     = "10s"
	defaultStoragePath       = "runs.json"
	defaultDashboardPort     = 8080
)

// ErrInvalid wraps every validation failure so callers can detect
// configuration errors as a class.
var ErrInvalid = errors.New("invalid configuration")

// Config represents the complete application configuration.
type Config struct {
	Backtest   BacktestConfig   `yaml:"backtest"`
	Strategy   StrategyConfig   `yaml:"strategy"`
	Volatility VolatilityConfig `yaml:"volatility"`
	Data       DataConfig       `yaml:"data"`
	Storage    StorageConfig    `yaml:"storage"`
	Dashboard  DashboardConfig  `yaml:"dashboard"`
}

// BacktestConfig defines the capital and rate inputs for a run.
type BacktestConfig struct {
	InitialCapital float64 `yaml:"initial_capital"`
	RiskFreeRate   float64 `yaml:"risk_free_rate"`
}

// StrategyConfig defines the covered-call parameters.
type StrategyConfig struct {
	RollFrequencyDays      int     `yaml:"roll_frequency_days"`
	RollSchedule           string  `yaml:"roll_schedule"` // fixed | monthly
	MoneynessOffset        float64 `yaml:"moneyness_offset"`
	AssignmentPolicy       string  `yaml:"assignment_policy"` // physical_delivery | cash_settled
	RepurchaseOnAssignment bool    `yaml:"repurchase_on_assignment"`
	FeePerWrite            float64 `yaml:"fee_per_write"`
	FeePct                 float64 `yaml:"fee_pct"`
}

// VolatilityConfig defines the estimator feeding the pricing model.
type VolatilityConfig struct {
	WindowDays int    `yaml:"window_days"`
	Estimator  string `yaml:"estimator"` // close | ewma
}

// DataConfig defines where the price series comes from. This is a
// collaborator concern: the core only ever sees the loaded series.
type DataConfig struct {
	CSVPath string       `yaml:"csv_path"`
	Remote  RemoteConfig `yaml:"remote"`
}

// RemoteConfig defines the optional HTTP data endpoint.
type RemoteConfig struct {
	BaseURL string `yaml:"base_url"`
	Symbol  string `yaml:"symbol"`
	Start   string `yaml:"start"` // YYYY-MM-DD
	End     string `yaml:"end"`   // YYYY-MM-DD
	Timeout string `yaml:"timeout"`
}

// StorageConfig defines where run history is persisted.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// DashboardConfig defines the results HTTP server.
type DashboardConfig struct {
	Port      int    `yaml:"port"`
	AuthToken string `yaml:"auth_token"`
}

// Load reads and parses the configuration file from the specified path.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- configPath is a user-provided config file path
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var config Config
	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(&config); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Strategy.RollFrequencyDays == 0 {
		c.Strategy.RollFrequencyDays = defaultRollFrequencyDays
	}
	if c.Strategy.RollSchedule == "" {
		c.Strategy.RollSchedule = string(strategy.ScheduleFixed)
	}
	if c.Strategy.AssignmentPolicy == "" {
		c.Strategy.AssignmentPolicy = string(models.PhysicalDelivery)
	}
	if c.Volatility.WindowDays == 0 {
		c.Volatility.WindowDays = defaultVolWindowDays
	}
	if c.Volatility.Estimator == "" {
		c.Volatility.Estimator = string(volatility.EstimatorClose)
	}
	if c.Data.Remote.Timeout == "" {
		c.Data.Remote.Timeout = defaultRemoteTimeout
	}
	if c.Storage.Path == "" {
		c.Storage.Path = defaultStoragePath
	}
	if c.Dashboard.Port == 0 {
		c.Dashboard.Port = defaultDashboardPort
	}
}

// Validate checks that all configuration values are valid and consistent.
// Every failure wraps ErrInvalid.
func (c *Config) Validate() error {
	// The engine owns the parameter rules; reuse them so the CLI and
	// the engine can never disagree about what is malformed.
	if err := c.Params().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if _, err := time.ParseDuration(c.Data.Remote.Timeout); err != nil {
		return fmt.Errorf("%w: data.remote.timeout: %v", ErrInvalid, err)
	}
	if c.Data.Remote.BaseURL != "" {
		if c.Data.Remote.Symbol == "" {
			return fmt.Errorf("%w: data.remote.symbol is required when data.remote.base_url is set", ErrInvalid)
		}
		start, err := time.Parse("2006-01-02", c.Data.Remote.Start)
		if err != nil {
			return fmt.Errorf("%w: data.remote.start: %v", ErrInvalid, err)
		}
		end, err := time.Parse("2006-01-02", c.Data.Remote.End)
		if err != nil {
			return fmt.Errorf("%w: data.remote.end: %v", ErrInvalid, err)
		}
		if end.Before(start) {
			return fmt.Errorf("%w: data.remote.end %s precedes start %s",
				ErrInvalid, c.Data.Remote.End, c.Data.Remote.Start)
		}
	}
	if c.Dashboard.Port < 0 || c.Dashboard.Port > 65535 {
		return fmt.Errorf("%w: dashboard.port must be in [0, 65535], got %d", ErrInvalid, c.Dashboard.Port)
	}

	return nil
}

// Params derives the engine parameter struct from the file-level config.
func (c *Config) Params() backtest.Params {
	return backtest.Params{
		InitialCapital:         c.Backtest.InitialCapital,
		RiskFreeRate:           c.Backtest.RiskFreeRate,
		RollFrequencyDays:      c.Strategy.RollFrequencyDays,
		ScheduleMode:           strategy.ScheduleMode(c.Strategy.RollSchedule),
		MoneynessOffset:        c.Strategy.MoneynessOffset,
		AssignmentPolicy:       models.AssignmentPolicy(c.Strategy.AssignmentPolicy),
		RepurchaseOnAssignment: c.Strategy.RepurchaseOnAssignment,
		FeePerWrite:            c.Strategy.FeePerWrite,
		FeePct:                 c.Strategy.FeePct,
		VolWindow:              c.Volatility.WindowDays,
		VolEstimator:           volatility.Estimator(c.Volatility.Estimator),
	}
}

// RemoteTimeout returns the configured remote fetch timeout.
func (c *Config) RemoteTimeout() time.Duration {
	d, err := time.ParseDuration(c.Data.Remote.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// RemoteRange returns the configured remote fetch date range.
func (c *Config) RemoteRange() (start, end time.Time, err error) {
	start, err = time.Parse("2006-01-02", c.Data.Remote.Start)
	if err != nil {
		return start, end, fmt.Errorf("data.remote.start: %w", err)
	}
	end, err = time.Parse("2006-01-02", c.Data.Remote.End)
	if err != nil {
		return start, end, fmt.Errorf("data.remote.end: %w", err)
	}
	return start, end, nil
}
