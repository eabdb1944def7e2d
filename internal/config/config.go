package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds settings shared by the owner-guard binaries.
type Config struct {
	// ServerAddress is the gRPC server address for owner service connections.
	ServerAddress string `yaml:"server_addr"`
	// Timeout is the duration for network operations and RPC calls.
	Timeout time.Duration `yaml:"timeout"`
	// LogLevel is the minimum level written by the logger (debug, info, warn, error).
	LogLevel string `yaml:"log_level,omitempty"`
	// Storage selects where the owner record is persisted.
	Storage Storage `yaml:"storage"`
	// InitialOwner is the account written when the store holds no owner record yet.
	InitialOwner string `yaml:"initial_owner,omitempty"`
	// InitialStatus is the status written together with InitialOwner.
	InitialStatus string `yaml:"initial_status,omitempty"`
	// MetricsAddress enables the Prometheus endpoint when not empty.
	MetricsAddress string `yaml:"metrics_addr,omitempty"`
	// RateLimit throttles mutating calls per caller.
	RateLimit RateLimit `yaml:"rate_limit,omitempty"`
}

// Storage selects and locates the key-value backend.
type Storage struct {
	// Backend is one of BackendFile, BackendSQLite or BackendMemory.
	Backend string `yaml:"backend"`
	// Path is a directory for the file backend and a database file for SQLite.
	Path string `yaml:"path,omitempty"`
}

// RateLimit configures the per-caller token bucket on updates.
// A zero RPS disables limiting.
type RateLimit struct {
	// RPS is the sustained number of updates per second allowed per caller.
	RPS float64 `yaml:"rps,omitempty"`
	// Burst is the number of updates a caller may issue at once.
	Burst int `yaml:"burst,omitempty"`
}

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "owner-guard-settings.yaml"

	// DefaultStoragePath is the default directory of the file backend.
	DefaultStoragePath = "owner-guard-state"

	// DefaultSQLitePath is the default database file of the SQLite backend.
	DefaultSQLitePath = "owner-guard.db"

	// DefaultInitialStatus is the status recorded when the owner record is created.
	DefaultInitialStatus = "initializer"

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 5 * time.Second

	// DefaultFilePermissions is the default permission for config and record files.
	DefaultFilePermissions = 0o600

	// DefaultDirPermissions is the default permission for storage directories.
	DefaultDirPermissions = 0o700
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errServerSocketRequired is returned when server address is missing.
	errServerSocketRequired = errors.New("server address must be provided")
	// errUnknownBackend is returned for an unsupported storage backend.
	errUnknownBackend = errors.New("unknown storage backend")
	// errInvalidRateLimit is returned when rate limiting is half configured.
	errInvalidRateLimit = errors.New("rate limit burst must be positive when rps is set")
)

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and fills defaults.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.ServerAddress == "" {
		return errServerSocketRequired
	}

	if _, err := net.ResolveTCPAddr("tcp", settings.ServerAddress); err != nil {
		return fmt.Errorf("invalid server socket: %w", err)
	}

	// Set default timeout if not specified
	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	if err := validateStorage(&settings.Storage); err != nil {
		return err
	}

	if settings.InitialOwner != "" && settings.InitialStatus == "" {
		settings.InitialStatus = DefaultInitialStatus
	}

	if settings.MetricsAddress != "" {
		if _, err := net.ResolveTCPAddr("tcp", settings.MetricsAddress); err != nil {
			return fmt.Errorf("invalid metrics address: %w", err)
		}
	}

	if settings.RateLimit.RPS > 0 && settings.RateLimit.Burst <= 0 {
		return errInvalidRateLimit
	}

	return nil
}

// validateStorage fills the backend and path defaults.
func validateStorage(storage *Storage) error {
	if storage.Backend == "" {
		storage.Backend = BackendFile
	}

	switch storage.Backend {
	case BackendFile:
		if storage.Path == "" {
			storage.Path = DefaultStoragePath
		}
	case BackendSQLite:
		if storage.Path == "" {
			storage.Path = DefaultSQLitePath
		}
	case BackendMemory:
		storage.Path = ""
	default:
		return fmt.Errorf("%w: %q", errUnknownBackend, storage.Backend)
	}

	return nil
}
