package device

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-viper/mapstructure/v2"
)

// Logical connection tags consumed by a Legend.
const (
	TagServerName         = "ServerName"
	TagDatabaseName       = "DatabaseName"
	TagUserName           = "UserName"
	TagPassword           = "Password"
	TagApplicationName    = "ApplicationName"
	TagIntegratedSecurity = "IntegratedSecurity"
)

// Config holds device configuration.
type Config struct {
	Dialect string `koanf:"dialect"` // mssql, postgres

	// Connection tags
	ServerName         string `koanf:"server"`
	DatabaseName       string `koanf:"database"`
	UserName           string `koanf:"user"`
	Password           string `koanf:"password"`
	ApplicationName    string `koanf:"application"`
	IntegratedSecurity bool   `koanf:"integrated_security"`

	// ConnectionClass selects the Legend; empty uses the dialect default.
	ConnectionClass string `koanf:"connection_class"`

	// Startup steps
	ProbeVersion     bool `koanf:"probe_version"`
	EnsureDatabase   bool `koanf:"ensure_database"`
	InstallOperators bool `koanf:"install_operators"`

	// MajorVersion is used when the version probe is disabled.
	MajorVersion int `koanf:"major_version"`

	// Params holds dialect-specific settings (e.g. use_optimizer_hints).
	Params map[string]any `koanf:"params"`
}

// Validate checks that the configuration names a registered dialect.
func (c *Config) Validate() error {
	if c.Dialect == "" {
		return fmt.Errorf("device dialect not specified")
	}
	if !IsRegistered(c.Dialect) {
		return &UnknownDialectError{Name: c.Dialect, Available: List()}
	}
	if c.DatabaseName == "" && (c.EnsureDatabase || c.InstallOperators) {
		return fmt.Errorf("database name is required to ensure the database or install operators")
	}
	return nil
}

// Tags returns the connection tag map for the given database.
// The password has ${VAR} references expanded from the environment.
func (c *Config) Tags(database string) map[string]string {
	tags := map[string]string{
		TagServerName:         c.ServerName,
		TagDatabaseName:       database,
		TagUserName:           c.UserName,
		TagPassword:           os.ExpandEnv(c.Password),
		TagApplicationName:    c.ApplicationName,
		TagIntegratedSecurity: strconv.FormatBool(c.IntegratedSecurity),
	}
	for k, v := range tags {
		if v == "" {
			delete(tags, k)
		}
	}
	return tags
}

// DecodeParams decodes dialect params into out, a pointer to a struct with
// mapstructure tags. String values are converted to the field type.
func DecodeParams(params map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(params); err != nil {
		return fmt.Errorf("failed to decode device params: %w", err)
	}
	return nil
}
