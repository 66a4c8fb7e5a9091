package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"dnsmonitor/internal/infrastructure/validation"

	"gopkg.in/yaml.v3"
)

// Database drivers
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrInvalidConfig is returned by Validate
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the application configuration
type Config struct {
	HTTPPort      string         `yaml:"http_port" json:"http_port"`
	AllowedOrigin string         `yaml:"allowed_origin" json:"allowed_origin"`
	Monitor       MonitorConfig  `yaml:"monitor" json:"monitor"`
	Snapshot      SnapshotConfig `yaml:"snapshot" json:"snapshot"`
	Database      DBConfig       `yaml:"database" json:"database"`
}

// MonitorConfig holds the settings of the domain checks
type MonitorConfig struct {
	Domain        string        `yaml:"domain" json:"domain"`
	Nameserver    string        `yaml:"nameserver" json:"nameserver"`   // host:port, empty uses /etc/resolv.conf
	QueryTypes    []string      `yaml:"query_types" json:"query_types"` // empty uses the resolver defaults
	QueryTimeout  time.Duration `yaml:"query_timeout" json:"query_timeout"`
	CheckInterval time.Duration `yaml:"check_interval" json:"check_interval"` // 0 disables scheduled checks
	CheckOnStart  bool          `yaml:"check_on_start" json:"check_on_start"`
	ZoneFile      string        `yaml:"zone_file" json:"zone_file"` // resolve from a zone file instead of the network
}

// SnapshotConfig holds the snapshot history settings
type SnapshotConfig struct {
	Retention int    `yaml:"retention" json:"retention"`
	Behavior  string `yaml:"behavior" json:"behavior"` // always or on_change
}

// DBConfig holds database configuration
type DBConfig struct {
	Driver       string `yaml:"driver" json:"driver"`
	DSN          string `yaml:"dsn" json:"dsn"`
	Migrations   string `yaml:"migrations" json:"migrations"` // empty uses the embedded migrations
	AdvisoryLock bool   `yaml:"advisory_lock" json:"advisory_lock"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		HTTPPort:      getEnv("HTTP_PORT", "8080"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "*"),
		Monitor: MonitorConfig{
			Domain:        getEnv("MONITOR_DOMAIN", ""),
			Nameserver:    getEnv("MONITOR_NAMESERVER", ""),
			QueryTypes:    getEnvAsList("MONITOR_QUERY_TYPES", nil),
			QueryTimeout:  getEnvAsDuration("MONITOR_QUERY_TIMEOUT", 5*time.Second),
			CheckInterval: getEnvAsDuration("MONITOR_CHECK_INTERVAL", 5*time.Minute),
			CheckOnStart:  getEnv("MONITOR_CHECK_ON_START", "true") == "true",
			ZoneFile:      getEnv("MONITOR_ZONE_FILE", ""),
		},
		Snapshot: SnapshotConfig{
			Retention: getEnvAsInt("SNAPSHOT_RETENTION", 10),
			Behavior:  getEnv("SNAPSHOT_BEHAVIOR", "always"),
		},
		Database: DBConfig{
			Driver:       getEnv("DB_DRIVER", DriverMemory),
			DSN:          getEnv("DB_DSN", ""),
			Migrations:   getEnv("DB_MIGRATIONS", ""),
			AdvisoryLock: getEnv("DB_ADVISORY_LOCK", "false") == "true",
		},
	}
}

// LoadFile loads the environment configuration and overlays the YAML file at
// path on top of it. Keys absent from the file keep their environment value.
func LoadFile(path string) (*Config, error) {
	cfg := LoadConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the settings needed to run checks
func (c *Config) Validate() error {
	if err := validation.ValidateDomain(c.Monitor.Domain); err != nil {
		return fmt.Errorf("%w: monitor domain: %w", ErrInvalidConfig, err)
	}
	if c.Monitor.CheckInterval < 0 {
		return fmt.Errorf("%w: check interval must not be negative", ErrInvalidConfig)
	}
	if c.Snapshot.Retention < 1 {
		return fmt.Errorf("%w: snapshot retention must be at least 1", ErrInvalidConfig)
	}
	switch c.Database.Driver {
	case DriverMemory, DriverSQLite:
	case DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("%w: postgres requires a DSN", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown database driver %q", ErrInvalidConfig, c.Database.Driver)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping empty items
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(valueStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
