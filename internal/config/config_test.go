package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

const minimalConfig = `
backtest:
  initial_capital: 10000
  risk_free_rate: 0.03
strategy:
  moneyness_offset: 0.05
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Strategy.RollFrequencyDays != 21 {
		t.Errorf("roll_frequency_days = %d, want default 21", cfg.Strategy.RollFrequencyDays)
	}
	if cfg.Strategy.RollSchedule != "fixed" {
		t.Errorf("roll_schedule = %q, want default fixed", cfg.Strategy.RollSchedule)
	}
	if cfg.Strategy.AssignmentPolicy != "physical_delivery" {
		t.Errorf("assignment_policy = %q, want default physical_delivery", cfg.Strategy.AssignmentPolicy)
	}
	if cfg.Volatility.WindowDays != 30 {
		t.Errorf("window_days = %d, want default 30", cfg.Volatility.WindowDays)
	}
	if cfg.Volatility.Estimator != "close" {
		t.Errorf("estimator = %q, want default close", cfg.Volatility.Estimator)
	}
	if cfg.Storage.Path != "runs.json" {
		t.Errorf("storage.path = %q, want default runs.json", cfg.Storage.Path)
	}
	if cfg.Dashboard.Port != 8080 {
		t.Errorf("dashboard.port = %d, want default 8080", cfg.Dashboard.Port)
	}
	if got := cfg.RemoteTimeout(); got != 10*time.Second {
		t.Errorf("RemoteTimeout = %v, want 10s", got)
	}
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("TEST_DASH_TOKEN", "s3cret")
	cfg, err := Load(writeConfig(t, minimalConfig+`
dashboard:
  auth_token: ${TEST_DASH_TOKEN}
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Dashboard.AuthToken != "s3cret" {
		t.Errorf("auth_token = %q, want expanded env value", cfg.Dashboard.AuthToken)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := Load(writeConfig(t, minimalConfig+`
bogus_section:
  key: value
`))
	if err == nil {
		t.Error("unknown top-level section should be rejected")
	}

	_, err = Load(writeConfig(t, `
backtest:
  initial_capital: 10000
  starting_cash: 5000
`))
	if err == nil {
		t.Error("unknown nested field should be rejected")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing file should be an error")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"zero capital", `
backtest:
  risk_free_rate: 0.03
`},
		{"negative rate", `
backtest:
  initial_capital: 10000
  risk_free_rate: -0.01
`},
		{"bad schedule", minimalConfig + `
  roll_schedule: weekly
`},
		{"bad policy", minimalConfig + `
  assignment_policy: auto
`},
		{"bad estimator", minimalConfig + `
volatility:
  estimator: garch
`},
		{"bad timeout", minimalConfig + `
data:
  remote:
    timeout: soon
`},
		{"remote without symbol", minimalConfig + `
data:
  remote:
    base_url: https://example.com
    start: 2024-01-02
    end: 2024-06-28
`},
		{"remote end before start", minimalConfig + `
data:
  remote:
    base_url: https://example.com
    symbol: SPY
    start: 2024-06-28
    end: 2024-01-02
`},
		{"port out of range", minimalConfig + `
dashboard:
  port: 99999
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("got %v, want ErrInvalid", err)
			}
		})
	}
}

func TestParamsDerivation(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
backtest:
  initial_capital: 25000
  risk_free_rate: 0.04
strategy:
  roll_frequency_days: 42
  roll_schedule: monthly
  moneyness_offset: 0.03
  assignment_policy: cash_settled
  repurchase_on_assignment: true
  fee_per_write: 0.65
  fee_pct: 0.01
volatility:
  window_days: 60
  estimator: ewma
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	p := cfg.Params()
	if p.InitialCapital != 25000 || p.RiskFreeRate != 0.04 {
		t.Errorf("backtest params = %v / %v", p.InitialCapital, p.RiskFreeRate)
	}
	if p.RollFrequencyDays != 42 || string(p.ScheduleMode) != "monthly" {
		t.Errorf("schedule params = %d / %s", p.RollFrequencyDays, p.ScheduleMode)
	}
	if string(p.AssignmentPolicy) != "cash_settled" || !p.RepurchaseOnAssignment {
		t.Errorf("policy params = %s / %v", p.AssignmentPolicy, p.RepurchaseOnAssignment)
	}
	if p.FeePerWrite != 0.65 || p.FeePct != 0.01 {
		t.Errorf("fee params = %v / %v", p.FeePerWrite, p.FeePct)
	}
	if p.VolWindow != 60 || string(p.VolEstimator) != "ewma" {
		t.Errorf("volatility params = %d / %s", p.VolWindow, p.VolEstimator)
	}
}

func TestRemoteRange(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig+`
data:
  remote:
    base_url: https://example.com
    symbol: SPY
    start: 2024-01-02
    end: 2024-06-28
    timeout: 30s
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	start, end, err := cfg.RemoteRange()
	if err != nil {
		t.Fatalf("RemoteRange: %v", err)
	}
	if start.Format("2006-01-02") != "2024-01-02" || end.Format("2006-01-02") != "2024-06-28" {
		t.Errorf("range = %s to %s", start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	if cfg.RemoteTimeout() != 30*time.Second {
		t.Errorf("RemoteTimeout = %v, want 30s", cfg.RemoteTimeout())
	}
}
