// Package config loads server configuration from an optional YAML file,
// a .env file and environment variables, in that order of precedence
// (later sources win).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`
	Import   ImportConfig   `yaml:"import"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	JWTSecret         string        `yaml:"jwt_secret"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig selects and configures the database driver.
type DatabaseConfig struct {
	Driver   string         `yaml:"driver"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// SQLiteConfig holds the embedded database location.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// PostgresConfig holds PostgreSQL connection settings. URL, when set,
// takes precedence over the individual fields.
type PostgresConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the connection string for the pgx driver.
func (p PostgresConfig) DSN() string {
	if p.URL != "" {
		return p.URL
	}
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		p.Host, p.Port, p.Database, p.User, p.Password, p.SSLMode)
}

// StorageConfig holds where generated QR images live and how they are
// addressed from the outside.
type StorageConfig struct {
	BarcodeDir       string `yaml:"barcode_dir"`
	BarcodeURLPrefix string `yaml:"barcode_url_prefix"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// ImportConfig limits spreadsheet uploads.
type ImportConfig struct {
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
}

// Defaults returns the configuration used when nothing else is provided.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:              ":3000",
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
			ShutdownTimeout:   5 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			SQLite: SQLiteConfig{Path: "inventaris.sqlite3"},
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				Database: "inventaris",
				User:     "inventaris",
				SSLMode:  "disable",
			},
		},
		Storage: StorageConfig{
			BarcodeDir:       "barcode",
			BarcodeURLPrefix: "/barcode/",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Import: ImportConfig{
			MaxUploadBytes: 10 << 20,
		},
	}
}

// Load builds the configuration. A missing YAML file or .env file is not an
// error; path may be empty to skip the YAML file entirely.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", path, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// applyEnv overrides fields from environment variables.
func (c *Config) applyEnv() error {
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Addr = ":" + port
	}
	setString(&c.Server.Addr, "INVENTARIS_ADDR")
	setString(&c.Server.JWTSecret, "JWT_SECRET")

	setString(&c.Database.Driver, "DB_DRIVER")
	setString(&c.Database.SQLite.Path, "SQLITE_PATH")

	pg := &c.Database.Postgres
	setString(&pg.URL, "DATABASE_URL")
	setString(&pg.Host, "DB_HOST")
	setString(&pg.Database, "DB_DATABASE")
	setString(&pg.User, "DB_USER")
	setString(&pg.Password, "DB_PASSWORD")
	if err := setInt(&pg.Port, "DB_PORT"); err != nil {
		return err
	}

	// Railway injects its own variable names for the attached database.
	if _, ok := os.LookupEnv("RAILWAY_ENVIRONMENT"); ok {
		c.Database.Driver = DriverPostgres
		setString(&pg.Host, "POSTGRES_HOST")
		setString(&pg.Database, "POSTGRES_DB")
		setString(&pg.User, "POSTGRES_USER")
		setString(&pg.Password, "POSTGRES_PASSWORD")
		if err := setInt(&pg.Port, "POSTGRES_PORT"); err != nil {
			return err
		}
		pg.SSLMode = "require"
	}

	setString(&c.Storage.BarcodeDir, "BARCODE_DIR")
	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Logging.Format, "LOG_FORMAT")
	setString(&c.Logging.File, "LOG_FILE")
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.SQLite.Path == "" {
			return errors.New("sqlite path required")
		}
	case DriverPostgres:
		if c.Database.Postgres.URL == "" && c.Database.Postgres.Host == "" {
			return errors.New("postgres url or host required")
		}
	default:
		return fmt.Errorf("unsupported database driver: %q", c.Database.Driver)
	}

	if c.Server.Addr == "" {
		return errors.New("server address required")
	}
	if c.Storage.BarcodeDir == "" {
		return errors.New("barcode directory required")
	}
	if c.Import.MaxUploadBytes <= 0 {
		return errors.New("import max_upload_bytes must be positive")
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format: %q", c.Logging.Format)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: invalid integer %q", key, v)
	}
	*dst = n
	return nil
}
