package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/aegis/internal/ledger/service"
	"github.com/aussiebroadwan/aegis/pkg/cryptox"
	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverSQLite  = "sqlite"
	DriverLevelDB = "leveldb"
)

// Master key sources.
const (
	MasterKeyEnv       = "env"
	MasterKeyFile      = "file"
	MasterKeyKeyring   = "keyring"
	MasterKeyAWS       = "aws"
	MasterKeyEphemeral = "ephemeral"
)

// Keyring coordinates used by the keyring master key source and by
// `aegisctl masterkey init`.
const (
	KeyringService = "aegis"
	KeyringUser    = "master-key"
)

// Config is loaded from an optional YAML file and then overridden by the
// environment. Field comments name the environment variable.
type Config struct {
	Port                int           `yaml:"port"`                  // PORT (default: 8001)
	Env                 string        `yaml:"env"`                   // ENV (dev, staging, prod) (default: dev)
	LogLevel            string        `yaml:"log_level"`             // LOG_LEVEL (default: info), hot reloaded
	LogFormat           string        `yaml:"log_format"`            // LOG_FORMAT (json, text) (default: json)
	ShutdownGracePeriod time.Duration `yaml:"shutdown_grace_period"` // SHUTDOWN_GRACE_PERIOD (default: 10s)

	StoreDriver  string `yaml:"store_driver"`  // AEGIS_STORE_DRIVER (sqlite, leveldb) (default: sqlite)
	DatabaseFile string `yaml:"database_file"` // AEGIS_DATABASE_FILE (default: ./aegis.db)
	LevelDBDir   string `yaml:"leveldb_dir"`   // AEGIS_LEVELDB_DIR (default: ./aegis-leveldb)

	Algorithm string `yaml:"algorithm"` // AEGIS_ALGORITHM (EdDSA, ES256, PS256) (default: EdDSA)

	MasterKeySource   string `yaml:"master_key_source"`    // AEGIS_MASTER_KEY_SOURCE (default: env)
	MasterKeyPath     string `yaml:"master_key_path"`      // AEGIS_MASTER_KEY_PATH, for the file source
	MasterKeySecretID string `yaml:"master_key_secret_id"` // AEGIS_MASTER_KEY_SECRET_ID, for the aws source

	TOTPPolicy string `yaml:"totp_policy"` // AEGIS_TOTP_POLICY (internal, supplied) (default: internal)
	TOTPPeriod int    `yaml:"totp_period"` // AEGIS_TOTP_PERIOD seconds (default: 30)
	TOTPDigits int    `yaml:"totp_digits"` // AEGIS_TOTP_DIGITS (default: 6)
	TOTPIssuer string `yaml:"totp_issuer"` // AEGIS_TOTP_ISSUER (default: Aegis)

	KeyRotationAge    time.Duration `yaml:"key_rotation_age"`   // AEGIS_KEY_ROTATION_AGE (default: 720h), hot reloaded
	IntegrityInterval time.Duration `yaml:"integrity_interval"` // AEGIS_INTEGRITY_INTERVAL (default: 1h), hot reloaded
	StatusInterval    time.Duration `yaml:"status_interval"`    // AEGIS_STATUS_INTERVAL (default: 5s), hot reloaded

	AdminToken      string `yaml:"admin_token"`       // AEGIS_ADMIN_TOKEN, empty leaves admin endpoints open
	MaxExportBlocks uint64 `yaml:"max_export_blocks"` // AEGIS_MAX_EXPORT_BLOCKS (default: 0, unlimited)

	// ConfigFile is the YAML file the config was read from, if any
	// (AEGIS_CONFIG_FILE). The watcher reloads it on change.
	ConfigFile string `yaml:"-"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Port:                8001,
		Env:                 "dev",
		LogLevel:            "info",
		LogFormat:           "json",
		ShutdownGracePeriod: 10 * time.Second,
		StoreDriver:         DriverSQLite,
		DatabaseFile:        "aegis.db",
		LevelDBDir:          "aegis-leveldb",
		Algorithm:           cryptox.AlgEdDSA,
		MasterKeySource:     MasterKeyEnv,
		TOTPPolicy:          string(service.PolicyInternal),
		TOTPPeriod:          service.DefaultTOTPPeriod,
		TOTPDigits:          service.DefaultTOTPDigits,
		TOTPIssuer:          "Aegis",
		KeyRotationAge:      service.DefaultRotationAge,
		IntegrityInterval:   service.DefaultIntegrityInterval,
		StatusInterval:      service.DefaultStatusInterval,
	}
}

// LoadConfig reads AEGIS_CONFIG_FILE when set, applies environment overrides
// and validates the result.
func LoadConfig() (Config, error) {
	return loadConfig(os.Getenv("AEGIS_CONFIG_FILE"))
}

func loadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
		cfg.ConfigFile = path
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Port = getEnvIntOrDefault("PORT", c.Port)
	c.Env = getEnvOrDefault("ENV", c.Env)
	c.LogLevel = getEnvOrDefault("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnvOrDefault("LOG_FORMAT", c.LogFormat)
	c.ShutdownGracePeriod = getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", c.ShutdownGracePeriod)

	c.StoreDriver = strings.ToLower(getEnvOrDefault("AEGIS_STORE_DRIVER", c.StoreDriver))
	c.DatabaseFile = getEnvOrDefault("AEGIS_DATABASE_FILE", c.DatabaseFile)
	c.LevelDBDir = getEnvOrDefault("AEGIS_LEVELDB_DIR", c.LevelDBDir)
	c.Algorithm = getEnvOrDefault("AEGIS_ALGORITHM", c.Algorithm)

	c.MasterKeySource = strings.ToLower(getEnvOrDefault("AEGIS_MASTER_KEY_SOURCE", c.MasterKeySource))
	c.MasterKeyPath = getEnvOrDefault("AEGIS_MASTER_KEY_PATH", c.MasterKeyPath)
	c.MasterKeySecretID = getEnvOrDefault("AEGIS_MASTER_KEY_SECRET_ID", c.MasterKeySecretID)

	c.TOTPPolicy = getEnvOrDefault("AEGIS_TOTP_POLICY", c.TOTPPolicy)
	c.TOTPPeriod = getEnvIntOrDefault("AEGIS_TOTP_PERIOD", c.TOTPPeriod)
	c.TOTPDigits = getEnvIntOrDefault("AEGIS_TOTP_DIGITS", c.TOTPDigits)
	c.TOTPIssuer = getEnvOrDefault("AEGIS_TOTP_ISSUER", c.TOTPIssuer)

	c.KeyRotationAge = getEnvDurationOrDefault("AEGIS_KEY_ROTATION_AGE", c.KeyRotationAge)
	c.IntegrityInterval = getEnvDurationOrDefault("AEGIS_INTEGRITY_INTERVAL", c.IntegrityInterval)
	c.StatusInterval = getEnvDurationOrDefault("AEGIS_STATUS_INTERVAL", c.StatusInterval)

	c.AdminToken = getEnvOrDefault("AEGIS_ADMIN_TOKEN", c.AdminToken)
	if v, err := strconv.ParseUint(os.Getenv("AEGIS_MAX_EXPORT_BLOCKS"), 10, 64); err == nil {
		c.MaxExportBlocks = v
	}
}

// Validate rejects settings the service cannot start with.
func (c Config) Validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	switch c.StoreDriver {
	case DriverSQLite, DriverLevelDB:
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q (use sqlite or leveldb)", c.StoreDriver))
	}
	switch c.Algorithm {
	case cryptox.AlgEdDSA, cryptox.AlgES256, cryptox.AlgPS256:
	default:
		errs = append(errs, fmt.Errorf("unknown signing algorithm %q (use EdDSA, ES256 or PS256)", c.Algorithm))
	}
	if _, err := service.ParsePolicy(c.TOTPPolicy); err != nil {
		errs = append(errs, err)
	}
	if c.TOTPPeriod < 15 || c.TOTPPeriod > 120 {
		errs = append(errs, fmt.Errorf("totp period %ds out of range (15 to 120)", c.TOTPPeriod))
	}
	if c.TOTPDigits != 6 && c.TOTPDigits != 8 {
		errs = append(errs, fmt.Errorf("totp digits must be 6 or 8, got %d", c.TOTPDigits))
	}

	switch c.MasterKeySource {
	case MasterKeyEnv, MasterKeyKeyring:
	case MasterKeyFile:
		if c.MasterKeyPath == "" {
			errs = append(errs, errors.New("master key source file needs AEGIS_MASTER_KEY_PATH"))
		}
	case MasterKeyAWS:
		if c.MasterKeySecretID == "" {
			errs = append(errs, errors.New("master key source aws needs AEGIS_MASTER_KEY_SECRET_ID"))
		}
	case MasterKeyEphemeral:
		if c.Env == "prod" {
			errs = append(errs, errors.New("ephemeral master key is not allowed in prod"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown master key source %q", c.MasterKeySource))
	}

	for name, d := range map[string]time.Duration{
		"key rotation age":   c.KeyRotationAge,
		"integrity interval": c.IntegrityInterval,
		"status interval":    c.StatusInterval,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", name))
		}
	}

	return errors.Join(errs...)
}

// Intervals returns the scheduler settings.
func (c Config) Intervals() service.SchedulerIntervals {
	return service.SchedulerIntervals{
		Integrity:   c.IntegrityInterval,
		RotationAge: c.KeyRotationAge,
		Status:      c.StatusInterval,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
