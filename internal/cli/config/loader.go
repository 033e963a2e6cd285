// Package config loads the sqldevice CLI configuration.
package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/sqldevice/internal/snapshot"
	"github.com/leapstack-labs/sqldevice/pkg/device"
)

// Default configuration values.
const (
	DefaultDialect = "mssql"
	DefaultServer  = "localhost"
	DefaultOutput  = "table"
	EnvPrefix      = "SQLDEVICE_"
)

// ConfigFiles are searched in the working directory, in order.
var ConfigFiles = []string{"sqldevice.yaml", "sqldevice.yml"}

// Config holds all CLI configuration options.
type Config struct {
	Device       device.Config `koanf:"device"`
	SnapshotPath string        `koanf:"snapshot_path"`
	Verbose      bool          `koanf:"verbose"`
	OutputFormat string        `koanf:"output"`

	// ConfigFile is the file that was loaded, if any.
	ConfigFile string `koanf:"-"`
}

// deviceFlags are the flags that set a device.* key.
var deviceFlags = map[string]bool{
	"dialect":             true,
	"server":              true,
	"database":            true,
	"user":                true,
	"password":            true,
	"application":         true,
	"integrated_security": true,
	"connection_class":    true,
	"probe_version":       true,
	"ensure_database":     true,
	"install_operators":   true,
	"major_version":       true,
}

func defaults() map[string]any {
	return map[string]any{
		"device.dialect":           DefaultDialect,
		"device.server":            DefaultServer,
		"device.application":       "sqldevice",
		"device.probe_version":     true,
		"device.ensure_database":   false,
		"device.install_operators": false,
		"snapshot_path":            snapshot.DefaultFile,
		"verbose":                  false,
		"output":                   DefaultOutput,
	}
}

// findConfigFile returns the explicit path or the first config file found.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range ConfigFiles {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// envKey maps SQLDEVICE_DEVICE_SERVER to device.server and
// SQLDEVICE_SNAPSHOT_PATH to snapshot_path.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if rest, ok := strings.CutPrefix(key, "device_params_"); ok {
		return "device.params." + rest
	}
	if rest, ok := strings.CutPrefix(key, "device_"); ok {
		return "device." + rest
	}
	return key
}

// flagKey maps a changed flag to its config key. Unchanged flags are skipped
// so they do not mask file and environment values.
func flagKey(flags *pflag.FlagSet) func(f *pflag.Flag) (string, any) {
	return func(f *pflag.Flag) (string, any) {
		if !f.Changed {
			return "", nil
		}
		key := strings.ReplaceAll(f.Name, "-", "_")
		switch {
		case deviceFlags[key]:
			key = "device." + key
		case key == "snapshot_db":
			key = "snapshot_path"
		}
		return key, posflag.FlagVal(flags, f)
	}
}

// Load loads configuration from defaults, the config file, SQLDEVICE_
// environment variables and flags. Later sources win.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. config file
	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// 3. environment
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. flags
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, flagKey(flags)), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.ConfigFile = used
	cfg.Device.Dialect = strings.ToLower(cfg.Device.Dialect)

	if err := cfg.Device.Validate(); err != nil {
		return nil, fmt.Errorf("invalid device configuration: %w", err)
	}
	return &cfg, nil
}

type (
	configKey struct{}
	loggerKey struct{}
)

// WithConfig stores cfg in ctx.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext returns the loaded configuration, or nil.
func FromContext(ctx context.Context) *Config {
	cfg, _ := ctx.Value(configKey{}).(*Config)
	return cfg
}

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
