package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/roach88/expertlog/internal/idgen"
	"github.com/roach88/expertlog/internal/store"
)

// Default values.
const (
	defaultPort       = 3000
	defaultPrimaryDSN = "file:expertlog.db"
	defaultOutbox     = true
	defaultLogLevel   = "info"
)

// Environment variable names.
const (
	envPort         = "PORT"
	envPrimaryDSN   = "DATABASE_URL"
	envSecondaryDSN = "SECONDARY_DATABASE_URL"
	envLogIDMode    = "LOG_ID_MODE"
	envCampIDMode   = "CAMP_ID_MODE"
	envLogOrder     = "LOG_ORDER"
	envJournalURI   = "REPLICATION_JOURNAL_URI"
	envOutbox       = "REPLICATION_OUTBOX"
	envLogLevel     = "LOG_LEVEL"
)

// Config holds the service configuration.
type Config struct {
	Port         int         `yaml:"port"`
	PrimaryDSN   string      `yaml:"primary_dsn"`
	SecondaryDSN string      `yaml:"secondary_dsn"`
	LogIDMode    idgen.Mode  `yaml:"log_id_mode"`
	CampIDMode   idgen.Mode  `yaml:"camp_id_mode"`
	LogOrder     store.Order `yaml:"log_order"`
	JournalURI   string      `yaml:"journal_uri"`
	Outbox       bool        `yaml:"outbox"`
	LogLevel     string      `yaml:"log_level"`
}

// Default returns the built-in configuration: a single SQLite store with
// serial identifiers.
func Default() *Config {
	return &Config{
		Port:       defaultPort,
		PrimaryDSN: defaultPrimaryDSN,
		LogIDMode:  idgen.ModeSerial,
		CampIDMode: idgen.ModeSerial,
		LogOrder:   store.OrderByID,
		Outbox:     defaultOutbox,
		LogLevel:   defaultLogLevel,
	}
}

// Load builds the configuration from defaults, the YAML file at path (when
// path is not empty) and the environment. The result is validated.
func Load(ctx context.Context, logger *slog.Logger, path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
		logger.DebugContext(ctx, "Loaded configuration file", "path", path)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.WarnContext(ctx, "Could not load .env file", "error", err)
	}

	if err := cfg.applyEnv(ctx, logger); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(ctx context.Context, logger *slog.Logger) error {
	if v, ok := os.LookupEnv(envPort); ok {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", envPort, v, err)
		}
		c.Port = port
		logger.DebugContext(ctx, "Using port from environment variable", "port", port)
	}
	if v, ok := os.LookupEnv(envOutbox); ok {
		on, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", envOutbox, v, err)
		}
		c.Outbox = on
		logger.DebugContext(ctx, "Using outbox setting from environment variable", "outbox", on)
	}

	strs := []struct {
		env string
		dst *string
	}{
		{envPrimaryDSN, &c.PrimaryDSN},
		{envSecondaryDSN, &c.SecondaryDSN},
		{envJournalURI, &c.JournalURI},
		{envLogLevel, &c.LogLevel},
	}
	for _, s := range strs {
		if v, ok := os.LookupEnv(s.env); ok {
			*s.dst = v
			logger.DebugContext(ctx, "Using value from environment variable", "env", s.env)
		}
	}

	if v, ok := os.LookupEnv(envLogIDMode); ok {
		c.LogIDMode = idgen.Mode(v)
		logger.DebugContext(ctx, "Using log id mode from environment variable", "mode", v)
	}
	if v, ok := os.LookupEnv(envCampIDMode); ok {
		c.CampIDMode = idgen.Mode(v)
		logger.DebugContext(ctx, "Using camp id mode from environment variable", "mode", v)
	}
	if v, ok := os.LookupEnv(envLogOrder); ok {
		c.LogOrder = store.Order(v)
		logger.DebugContext(ctx, "Using log order from environment variable", "order", v)
	}
	return nil
}

// Validate checks every field and normalizes the enumerated ones.
func (c *Config) Validate() error {
	var errs []error

	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %d", c.Port))
	}
	if strings.TrimSpace(c.PrimaryDSN) == "" {
		errs = append(errs, errors.New("primary_dsn is required"))
	}

	if m, err := idgen.ParseMode(string(c.LogIDMode)); err != nil {
		errs = append(errs, fmt.Errorf("log_id_mode: %w", err))
	} else {
		c.LogIDMode = m
	}
	if m, err := idgen.ParseMode(string(c.CampIDMode)); err != nil {
		errs = append(errs, fmt.Errorf("camp_id_mode: %w", err))
	} else {
		c.CampIDMode = m
	}
	if o, err := store.ParseOrder(string(c.LogOrder)); err != nil {
		errs = append(errs, fmt.Errorf("log_order: %w", err))
	} else {
		c.LogOrder = o
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}

	return errors.Join(errs...)
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(c.LogLevel))
	return level, err
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort("", strconv.Itoa(c.Port))
}

// HasSecondary reports whether dual writes are enabled.
func (c *Config) HasSecondary() bool {
	return strings.TrimSpace(c.SecondaryDSN) != ""
}

// Primary returns the store configuration of the primary backend.
func (c *Config) Primary() store.Config {
	return c.storeConfig("primary", c.PrimaryDSN)
}

// Secondary returns the store configuration of the secondary backend.
func (c *Config) Secondary() store.Config {
	return c.storeConfig("secondary", c.SecondaryDSN)
}

func (c *Config) storeConfig(name, dsn string) store.Config {
	return store.Config{
		Name:     name,
		DSN:      dsn,
		LogIDs:   c.LogIDMode.Kind(),
		CampIDs:  c.CampIDMode.Kind(),
		LogOrder: c.LogOrder,
	}
}

// IDStrategies returns the identifier strategies for logs and camps.
func (c *Config) IDStrategies() (logs, camps idgen.Strategy) {
	return idgen.NewStrategy(c.LogIDMode), idgen.NewStrategy(c.CampIDMode)
}
