package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/openbooks-dev/openbooks/internal/model"
)

// Config represents the top-level openbooks.yaml configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	NATS     NATSConfig     `yaml:"nats"`
	Tenant   string         `yaml:"tenant"`
	Fiscal   FiscalConfig   `yaml:"fiscal"`
	Accounts AccountsConfig `yaml:"accounts"`
	LogLevel string         `yaml:"log_level"`
}

// DatabaseConfig locates the SQLite database file.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// NATSConfig points at the message bus. An empty URL disables publishing.
type NATSConfig struct {
	URL string `yaml:"url,omitempty"`
}

// FiscalConfig defines the fiscal year boundaries.
type FiscalConfig struct {
	YearStart string `yaml:"year_start"` // "MM-DD" format, e.g. "01-01"
}

// AccountsConfig holds the account-code inference table and closing target.
type AccountsConfig struct {
	RetainedEarnings string `yaml:"retained_earnings"`
	// Inference maps the leading digit of an account code to a category,
	// used when an account is created without an explicit type.
	Inference map[string]model.AccountType `yaml:"inference,omitempty"`
}

// DefaultInference returns the standard leading-digit mapping:
// 1-2 asset, 3-4 liability, 5 equity, 6-7 revenue, 8-9 expense.
func DefaultInference() map[string]model.AccountType {
	return map[string]model.AccountType{
		"1": model.AccountTypeAsset,
		"2": model.AccountTypeAsset,
		"3": model.AccountTypeLiability,
		"4": model.AccountTypeLiability,
		"5": model.AccountTypeEquity,
		"6": model.AccountTypeRevenue,
		"7": model.AccountTypeRevenue,
		"8": model.AccountTypeExpense,
		"9": model.AccountTypeExpense,
	}
}

// Default returns a Config with sensible defaults for a new project.
func Default(tenant string) *Config {
	return &Config{
		Database: DatabaseConfig{Path: "openbooks.db"},
		Tenant:   tenant,
		Fiscal:   FiscalConfig{YearStart: "01-01"},
		Accounts: AccountsConfig{
			RetainedEarnings: "5900",
			Inference:        DefaultInference(),
		},
		LogLevel: "info",
	}
}

// Load reads an openbooks.yaml file from disk and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Accounts.Inference == nil {
		cfg.Accounts.Inference = DefaultInference()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate checks the config at startup. A broken inference table is a
// startup error, not a posting-time surprise.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("config: database.path is required")
	}
	if c.Tenant == "" {
		return fmt.Errorf("config: tenant is required")
	}
	if c.Accounts.RetainedEarnings == "" {
		return fmt.Errorf("config: accounts.retained_earnings is required")
	}
	for digit, typ := range c.Accounts.Inference {
		if len(digit) != 1 || digit[0] < '0' || digit[0] > '9' {
			return fmt.Errorf("config: inference key %q is not a single digit", digit)
		}
		if !typ.Valid() {
			return fmt.Errorf("config: inference value %q for digit %s is not a valid account type", typ, digit)
		}
	}
	return nil
}
