package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	defaultCurrency        = "FCFA"
	defaultCountry         = "Côte d'Ivoire"
	defaultReferencePrefix = "BAM"
	defaultListLimit       = 50
	defaultNodeID          = 1
	minNodeID              = 1
	maxNodeID              = 1023
	defaultLogLevel        = "info"
	defaultLogMaxSizeMB    = 10
	defaultLogMaxFiles     = 5
	defaultMetricsAddr     = "127.0.0.1:9464"
	storeFileName          = "bamboo.db"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Store   StoreConfig   `toml:"store"`
	Ledger  LedgerConfig  `toml:"ledger"`
	Logging LoggingConfig `toml:"logging"`
	Metrics MetricsConfig `toml:"metrics"`
}

type StoreConfig struct {
	Path string `toml:"path"`
}

type LedgerConfig struct {
	DefaultCurrency string `toml:"default_currency"`
	DefaultCountry  string `toml:"default_country"`
	ReferencePrefix string `toml:"reference_prefix"`
	ListLimit       int    `toml:"list_limit"`
	NodeID          int64  `toml:"node_id"`
}

type LoggingConfig struct {
	Level     string `toml:"level"`
	File      string `toml:"file"`
	MaxSizeMB int    `toml:"max_size_mb"`
	MaxFiles  int    `toml:"max_files"`
	Compress  bool   `toml:"compress"`
}

type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

type LoadOptions struct {
	ConfigPath string
	Env        map[string]string
	Flags      FlagOverrides
}

type FlagOverrides struct {
	StorePath   *string
	LogLevel    *string
	MetricsAddr *string
}

// DefaultConfig returns the built-in settings. Store.Path is left empty and
// resolved by Load, since it depends on the environment.
func DefaultConfig() Config {
	return Config{
		Ledger: LedgerConfig{
			DefaultCurrency: defaultCurrency,
			DefaultCountry:  defaultCountry,
			ReferencePrefix: defaultReferencePrefix,
			ListLimit:       defaultListLimit,
			NodeID:          defaultNodeID,
		},
		Logging: LoggingConfig{
			Level:     defaultLogLevel,
			File:      "",
			MaxSizeMB: defaultLogMaxSizeMB,
			MaxFiles:  defaultLogMaxFiles,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    defaultMetricsAddr,
		},
	}
}

// Load resolves configuration with precedence defaults < file < env < flags.
func Load(opts LoadOptions) (Config, error) {
	cfg := DefaultConfig()

	configPath, err := resolveConfigPath(opts)
	if err != nil {
		return Config{}, fmt.Errorf("resolve config path: %w", err)
	}
	if err := loadAndApplyFile(configPath, &cfg); err != nil {
		return Config{}, err
	}

	if err := applyEnvOverrides(&cfg, opts); err != nil {
		return Config{}, err
	}
	applyFlagOverrides(&cfg, opts.Flags)

	if cfg.Store.Path == "" {
		home, err := bambooHome(opts)
		if err != nil {
			return Config{}, fmt.Errorf("resolve store path: %w", err)
		}
		cfg.Store.Path = filepath.Join(home, storeFileName)
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

type rawConfig struct {
	Store   *rawStore   `toml:"store"`
	Ledger  *rawLedger  `toml:"ledger"`
	Logging *rawLogging `toml:"logging"`
	Metrics *rawMetrics `toml:"metrics"`
}

type rawStore struct {
	Path *string `toml:"path"`
}

type rawLedger struct {
	DefaultCurrency *string `toml:"default_currency"`
	DefaultCountry  *string `toml:"default_country"`
	ReferencePrefix *string `toml:"reference_prefix"`
	ListLimit       *int    `toml:"list_limit"`
	NodeID          *int64  `toml:"node_id"`
}

type rawLogging struct {
	Level     *string `toml:"level"`
	File      *string `toml:"file"`
	MaxSizeMB *int    `toml:"max_size_mb"`
	MaxFiles  *int    `toml:"max_files"`
	Compress  *bool   `toml:"compress"`
}

type rawMetrics struct {
	Enabled *bool   `toml:"enabled"`
	Addr    *string `toml:"addr"`
}

func loadAndApplyFile(path string, cfg *Config) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file %q: %w", path, err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: parse TOML file %q: %v", ErrInvalidConfig, path, err)
	}

	applyRawConfig(cfg, raw)
	return nil
}

func applyRawConfig(cfg *Config, raw rawConfig) {
	if raw.Store != nil {
		setValue(raw.Store.Path, &cfg.Store.Path)
	}

	if raw.Ledger != nil {
		setValue(raw.Ledger.DefaultCurrency, &cfg.Ledger.DefaultCurrency)
		setValue(raw.Ledger.DefaultCountry, &cfg.Ledger.DefaultCountry)
		setValue(raw.Ledger.ReferencePrefix, &cfg.Ledger.ReferencePrefix)
		setValue(raw.Ledger.ListLimit, &cfg.Ledger.ListLimit)
		setValue(raw.Ledger.NodeID, &cfg.Ledger.NodeID)
	}

	if raw.Logging != nil {
		setValue(raw.Logging.Level, &cfg.Logging.Level)
		setValue(raw.Logging.File, &cfg.Logging.File)
		setValue(raw.Logging.MaxSizeMB, &cfg.Logging.MaxSizeMB)
		setValue(raw.Logging.MaxFiles, &cfg.Logging.MaxFiles)
		setValue(raw.Logging.Compress, &cfg.Logging.Compress)
	}

	if raw.Metrics != nil {
		setValue(raw.Metrics.Enabled, &cfg.Metrics.Enabled)
		setValue(raw.Metrics.Addr, &cfg.Metrics.Addr)
	}
}

func applyEnvOverrides(cfg *Config, opts LoadOptions) error {
	if value, ok := lookupEnv(opts, "BAMBOO_STORE_PATH"); ok {
		cfg.Store.Path = value
	}

	if value, ok := lookupEnv(opts, "BAMBOO_LEDGER_DEFAULT_CURRENCY"); ok {
		cfg.Ledger.DefaultCurrency = value
	}
	if value, ok := lookupEnv(opts, "BAMBOO_LEDGER_DEFAULT_COUNTRY"); ok {
		cfg.Ledger.DefaultCountry = value
	}
	if value, ok := lookupEnv(opts, "BAMBOO_LEDGER_REFERENCE_PREFIX"); ok {
		cfg.Ledger.ReferencePrefix = value
	}
	if value, ok := lookupEnv(opts, "BAMBOO_LEDGER_LIST_LIMIT"); ok {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: parse BAMBOO_LEDGER_LIST_LIMIT: %v", ErrInvalidConfig, err)
		}
		cfg.Ledger.ListLimit = parsed
	}
	if value, ok := lookupEnv(opts, "BAMBOO_LEDGER_NODE_ID"); ok {
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: parse BAMBOO_LEDGER_NODE_ID: %v", ErrInvalidConfig, err)
		}
		cfg.Ledger.NodeID = parsed
	}

	if value, ok := lookupEnv(opts, "BAMBOO_LOG_LEVEL"); ok {
		cfg.Logging.Level = value
	}
	if value, ok := lookupEnv(opts, "BAMBOO_LOG_FILE"); ok {
		cfg.Logging.File = value
	}
	if value, ok := lookupEnv(opts, "BAMBOO_LOG_MAX_SIZE_MB"); ok {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: parse BAMBOO_LOG_MAX_SIZE_MB: %v", ErrInvalidConfig, err)
		}
		cfg.Logging.MaxSizeMB = parsed
	}
	if value, ok := lookupEnv(opts, "BAMBOO_LOG_MAX_FILES"); ok {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: parse BAMBOO_LOG_MAX_FILES: %v", ErrInvalidConfig, err)
		}
		cfg.Logging.MaxFiles = parsed
	}
	if value, ok := lookupEnv(opts, "BAMBOO_LOG_COMPRESS"); ok {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: parse BAMBOO_LOG_COMPRESS: %v", ErrInvalidConfig, err)
		}
		cfg.Logging.Compress = parsed
	}

	if value, ok := lookupEnv(opts, "BAMBOO_METRICS_ENABLED"); ok {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: parse BAMBOO_METRICS_ENABLED: %v", ErrInvalidConfig, err)
		}
		cfg.Metrics.Enabled = parsed
	}
	if value, ok := lookupEnv(opts, "BAMBOO_METRICS_ADDR"); ok {
		cfg.Metrics.Addr = value
	}

	return nil
}

func applyFlagOverrides(cfg *Config, flags FlagOverrides) {
	setValue(flags.StorePath, &cfg.Store.Path)
	setValue(flags.LogLevel, &cfg.Logging.Level)
	setValue(flags.MetricsAddr, &cfg.Metrics.Addr)
}

func validate(cfg Config) error {
	if strings.TrimSpace(cfg.Ledger.DefaultCurrency) == "" {
		return fmt.Errorf("%w: ledger.default_currency must not be empty", ErrInvalidConfig)
	}
	if strings.TrimSpace(cfg.Ledger.ReferencePrefix) == "" {
		return fmt.Errorf("%w: ledger.reference_prefix must not be empty", ErrInvalidConfig)
	}
	if cfg.Ledger.ListLimit <= 0 {
		return fmt.Errorf("%w: ledger.list_limit must be > 0", ErrInvalidConfig)
	}
	if cfg.Ledger.NodeID < minNodeID || cfg.Ledger.NodeID > maxNodeID {
		return fmt.Errorf("%w: ledger.node_id must be within %d..%d", ErrInvalidConfig, minNodeID, maxNodeID)
	}
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: logging.level %q is not one of debug, info, warn, error", ErrInvalidConfig, cfg.Logging.Level)
	}
	if cfg.Logging.MaxSizeMB < 0 || cfg.Logging.MaxFiles < 0 {
		return fmt.Errorf("%w: logging rotation limits must not be negative", ErrInvalidConfig)
	}
	if _, _, err := net.SplitHostPort(cfg.Metrics.Addr); err != nil {
		return fmt.Errorf("%w: metrics.addr %q: %v", ErrInvalidConfig, cfg.Metrics.Addr, err)
	}
	return nil
}

func setValue[T any](raw *T, target *T) {
	if raw == nil {
		return
	}
	*target = *raw
}

func resolveConfigPath(opts LoadOptions) (string, error) {
	if opts.ConfigPath != "" {
		return opts.ConfigPath, nil
	}
	if value, ok := lookupEnv(opts, "BAMBOO_CONFIG_PATH"); ok {
		return value, nil
	}
	return defaultConfigPath(opts)
}

func lookupEnv(opts LoadOptions, key string) (string, bool) {
	if opts.Env != nil {
		if value, ok := opts.Env[key]; ok {
			return value, true
		}
	}
	return os.LookupEnv(key)
}

func bambooHome(opts LoadOptions) (string, error) {
	if value, ok := lookupEnv(opts, "BAMBOO_HOME"); ok && value != "" {
		return value, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}

	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Application Support", "Bamboo"), nil
	}

	dataHome := filepath.Join(home, ".local", "share")
	if xdgDataHome, ok := lookupEnv(opts, "XDG_DATA_HOME"); ok && xdgDataHome != "" {
		dataHome = xdgDataHome
	}
	return filepath.Join(dataHome, "bamboo"), nil
}

func defaultConfigPath(opts LoadOptions) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}

	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Application Support", "Bamboo", "config.toml"), nil
	}

	configHome := filepath.Join(home, ".config")
	if xdgConfigHome, ok := lookupEnv(opts, "XDG_CONFIG_HOME"); ok && xdgConfigHome != "" {
		configHome = xdgConfigHome
	}
	return filepath.Join(configHome, "bamboo", "config.toml"), nil
}
