package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbooks-dev/openbooks/internal/model"
)

func TestDefault(t *testing.T) {
	cfg := Default("acme")
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "acme", cfg.Tenant)
	assert.Equal(t, "openbooks.db", cfg.Database.Path)
	assert.Equal(t, "5900", cfg.Accounts.RetainedEarnings)
	assert.Equal(t, model.AccountTypeEquity, cfg.Accounts.Inference["5"])
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openbooks.yaml")
	cfg := Default("acme")
	cfg.NATS.URL = "nats://localhost:4222"
	cfg.LogLevel = "debug"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Tenant, loaded.Tenant)
	assert.Equal(t, cfg.NATS.URL, loaded.NATS.URL)
	assert.Equal(t, cfg.LogLevel, loaded.LogLevel)
	assert.Equal(t, cfg.Accounts.Inference, loaded.Accounts.Inference)
}

func TestLoad_InferenceDefaultsWhenOmitted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openbooks.yaml")
	raw := `database:
  path: books.db
tenant: acme
accounts:
  retained_earnings: "5900"
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, model.AccountTypeAsset, cfg.Accounts.Inference["1"])
	assert.Equal(t, model.AccountTypeExpense, cfg.Accounts.Inference["9"])
}

func TestValidate(t *testing.T) {
	cfg := Default("acme")
	cfg.Tenant = ""
	assert.Error(t, cfg.Validate())

	cfg = Default("acme")
	cfg.Database.Path = ""
	assert.Error(t, cfg.Validate())

	cfg = Default("acme")
	cfg.Accounts.RetainedEarnings = ""
	assert.Error(t, cfg.Validate())

	cfg = Default("acme")
	cfg.Accounts.Inference["10"] = model.AccountTypeAsset
	assert.Error(t, cfg.Validate(), "multi-digit inference key")

	cfg = Default("acme")
	cfg.Accounts.Inference["1"] = model.AccountType("crypto")
	assert.Error(t, cfg.Validate(), "unknown account type")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
