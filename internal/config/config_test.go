package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigPrecedenceFlagOverEnv(t *testing.T) {
	t.Parallel()

	cfgPath := writeConfigFile(t, `
[store]
path = "/from/file.db"
`)

	flagPath := "/from/flag.db"
	cfg, err := Load(LoadOptions{
		ConfigPath: cfgPath,
		Env: map[string]string{
			"BAMBOO_STORE_PATH": "/from/env.db",
		},
		Flags: FlagOverrides{
			StorePath: &flagPath,
		},
	})
	require.NoError(t, err)
	require.Equal(t, "/from/flag.db", cfg.Store.Path)
}

func TestLoadConfigPrecedenceEnvOverFile(t *testing.T) {
	t.Parallel()

	cfgPath := writeConfigFile(t, `
[ledger]
list_limit = 20
`)

	cfg, err := Load(LoadOptions{
		ConfigPath: cfgPath,
		Env: map[string]string{
			"BAMBOO_LEDGER_LIST_LIMIT": "75",
			"BAMBOO_HOME":              t.TempDir(),
		},
	})
	require.NoError(t, err)
	require.Equal(t, 75, cfg.Ledger.ListLimit)
}

func TestLoadConfigPrecedenceFileOverDefault(t *testing.T) {
	t.Parallel()

	cfgPath := writeConfigFile(t, `
[ledger]
default_currency = "XOF"
`)

	cfg, err := Load(LoadOptions{
		ConfigPath: cfgPath,
		Env:        map[string]string{"BAMBOO_HOME": t.TempDir()},
	})
	require.NoError(t, err)
	require.Equal(t, "XOF", cfg.Ledger.DefaultCurrency)
	require.Equal(t, "BAM", cfg.Ledger.ReferencePrefix)
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	cfg, err := Load(LoadOptions{
		ConfigPath: filepath.Join(t.TempDir(), "missing.toml"),
		Env:        map[string]string{"BAMBOO_HOME": home},
	})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, "bamboo.db"), cfg.Store.Path)
	require.Equal(t, "FCFA", cfg.Ledger.DefaultCurrency)
	require.Equal(t, "Côte d'Ivoire", cfg.Ledger.DefaultCountry)
	require.Equal(t, 50, cfg.Ledger.ListLimit)
	require.Equal(t, int64(1), cfg.Ledger.NodeID)
	require.Equal(t, "info", cfg.Logging.Level)
	require.False(t, cfg.Metrics.Enabled)
	require.Equal(t, "127.0.0.1:9464", cfg.Metrics.Addr)
}

func TestLoadConfigFromTOMLParsesAllSupportedFields(t *testing.T) {
	t.Parallel()

	cfgPath := writeConfigFile(t, `
[store]
path = "/var/lib/bamboo/ledger.db"

[ledger]
default_currency = "EUR"
default_country = "Gabon"
reference_prefix = "BGX"
list_limit = 25
node_id = 7

[logging]
level = "debug"
file = "/tmp/bamboo.log"
max_size_mb = 42
max_files = 9

[metrics]
enabled = true
addr = "0.0.0.0:9100"
`)

	cfg, err := Load(LoadOptions{
		ConfigPath: cfgPath,
	})
	require.NoError(t, err)
	require.Equal(t, "/var/lib/bamboo/ledger.db", cfg.Store.Path)
	require.Equal(t, "EUR", cfg.Ledger.DefaultCurrency)
	require.Equal(t, "Gabon", cfg.Ledger.DefaultCountry)
	require.Equal(t, "BGX", cfg.Ledger.ReferencePrefix)
	require.Equal(t, 25, cfg.Ledger.ListLimit)
	require.Equal(t, int64(7), cfg.Ledger.NodeID)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, "/tmp/bamboo.log", cfg.Logging.File)
	require.Equal(t, 42, cfg.Logging.MaxSizeMB)
	require.Equal(t, 9, cfg.Logging.MaxFiles)
	require.True(t, cfg.Metrics.Enabled)
	require.Equal(t, "0.0.0.0:9100", cfg.Metrics.Addr)
}

func TestLoadConfigValidationRejectsInvalidValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		contents string
	}{
		{name: "zero-list-limit", contents: "[ledger]\nlist_limit = 0\n"},
		{name: "node-id-out-of-range", contents: "[ledger]\nnode_id = 2048\n"},
		{name: "node-id-zero", contents: "[ledger]\nnode_id = 0\n"},
		{name: "empty-prefix", contents: "[ledger]\nreference_prefix = \"\"\n"},
		{name: "unknown-log-level", contents: "[logging]\nlevel = \"chatty\"\n"},
		{name: "bad-metrics-addr", contents: "[metrics]\naddr = \"nope\"\n"},
		{name: "malformed-toml", contents: "[ledger\n"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfgPath := writeConfigFile(t, tt.contents)
			_, err := Load(LoadOptions{
				ConfigPath: cfgPath,
				Env:        map[string]string{"BAMBOO_HOME": t.TempDir()},
			})
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoadConfigRejectsMalformedEnv(t *testing.T) {
	t.Parallel()

	_, err := Load(LoadOptions{
		ConfigPath: filepath.Join(t.TempDir(), "missing.toml"),
		Env: map[string]string{
			"BAMBOO_HOME":            t.TempDir(),
			"BAMBOO_METRICS_ENABLED": "maybe",
		},
	})
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadConfigPathFromEnv(t *testing.T) {
	t.Parallel()

	cfgPath := writeConfigFile(t, `
[ledger]
reference_prefix = "ENV"
`)

	cfg, err := Load(LoadOptions{
		Env: map[string]string{
			"BAMBOO_CONFIG_PATH": cfgPath,
			"BAMBOO_HOME":        t.TempDir(),
		},
	})
	require.NoError(t, err)
	require.Equal(t, "ENV", cfg.Ledger.ReferencePrefix)
}

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(p, []byte(contents), 0o600))
	return p
}

func TestLoadConfigLogCompressFromFileAndEnv(t *testing.T) {
	t.Parallel()

	cfgPath := writeConfigFile(t, `
[logging]
compress = true
`)

	cfg, err := Load(LoadOptions{
		ConfigPath: cfgPath,
		Env:        map[string]string{"BAMBOO_HOME": t.TempDir()},
	})
	require.NoError(t, err)
	require.True(t, cfg.Logging.Compress)

	cfg, err = Load(LoadOptions{
		ConfigPath: cfgPath,
		Env: map[string]string{
			"BAMBOO_HOME":         t.TempDir(),
			"BAMBOO_LOG_COMPRESS": "false",
		},
	})
	require.NoError(t, err)
	require.False(t, cfg.Logging.Compress)

	_, err = Load(LoadOptions{
		ConfigPath: cfgPath,
		Env: map[string]string{
			"BAMBOO_HOME":         t.TempDir(),
			"BAMBOO_LOG_COMPRESS": "sometimes",
		},
	})
	require.ErrorIs(t, err, ErrInvalidConfig)
}
