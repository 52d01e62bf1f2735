package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Store drivers understood by STORE_DRIVER
const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
)

type Config struct {
	Port        string `yaml:"port"`
	Environment string `yaml:"environment"`
	DatabaseURL string `yaml:"database_url"`
	StoreDriver string `yaml:"store_driver"`
	SQLitePath  string `yaml:"sqlite_path"`
	JWKSURL     string `yaml:"jwks_url"`
	CORSOrigins string `yaml:"cors_origins"`
	TablePrefix string `yaml:"table_prefix"`
	// Logging
	LogDir      string `yaml:"log_dir"`
	LogMaxFiles int    `yaml:"log_max_files"`
	// Node defaults
	DefaultFileExtension string `yaml:"default_file_extension"`
	MaxTreeDepth         int    `yaml:"max_tree_depth"` // levels a tree may have; also bounds ancestor walks
	// Debug flags
	Debug bool `yaml:"debug"`
}

// Load builds the configuration from the optional YAML file named by
// CONFIG_FILE, then environment variables. Environment always wins.
func Load() (*Config, error) {
	cfg := &Config{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	env := getEnv("ENVIRONMENT", orDefault(cfg.Environment, "dev"))

	cfg.Environment = env
	cfg.Port = getEnv("PORT", orDefault(cfg.Port, "8080"))
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.StoreDriver = getEnv("STORE_DRIVER", orDefault(cfg.StoreDriver, StoreDriverPostgres))
	cfg.SQLitePath = getEnv("SQLITE_PATH", orDefault(cfg.SQLitePath, "quill.db"))
	cfg.JWKSURL = getEnv("JWKS_URL", cfg.JWKSURL)
	cfg.CORSOrigins = getEnv("CORS_ORIGINS", orDefault(cfg.CORSOrigins, "http://localhost:3000"))
	cfg.TablePrefix = getTablePrefix(env, cfg.TablePrefix)
	cfg.LogDir = getEnv("LOG_DIR", cfg.LogDir)
	cfg.LogMaxFiles = getEnvInt("LOG_MAX_FILES", orDefaultInt(cfg.LogMaxFiles, 10))
	cfg.DefaultFileExtension = getEnv("DEFAULT_FILE_EXTENSION", orDefault(cfg.DefaultFileExtension, "md"))
	cfg.MaxTreeDepth = getEnvInt("MAX_TREE_DEPTH", orDefaultInt(cfg.MaxTreeDepth, DefaultMaxTreeDepth))
	// Debug flags - default to true in dev/test, false in production
	cfg.Debug = getEnv("DEBUG", getDefaultDebug(env, cfg.Debug)) == "true"

	switch cfg.StoreDriver {
	case StoreDriverPostgres, StoreDriverSQLite:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q (supported: postgres, sqlite)", cfg.StoreDriver)
	}
	if cfg.MaxTreeDepth <= 0 {
		return nil, fmt.Errorf("MAX_TREE_DEPTH must be positive, got %d", cfg.MaxTreeDepth)
	}

	return cfg, nil
}

// loadFile overlays a YAML config file onto cfg
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string, fromFile bool) string {
	if fromFile {
		return "true"
	}
	if env == "prod" {
		return "false"
	}
	return "true" // Enable DEBUG in dev/test by default
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env, fromFile string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}
	if fromFile != "" {
		return fromFile
	}

	// Auto-generate based on environment
	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func orDefault(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

func orDefaultInt(value, fallback int) int {
	if value != 0 {
		return value
	}
	return fallback
}
