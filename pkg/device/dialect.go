// Package device runs a dialect's start-up pipeline and hands out sessions
// that translate plans and execute them on one native connection.
//
// Concrete dialects live in pkg/devices/ subdirectories and register here
// from their init() functions:
//
//	import _ "github.com/leapstack-labs/sqldevice/pkg/devices/mssql"
package device

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/leapstack-labs/sqldevice/pkg/bridge"
	"github.com/leapstack-labs/sqldevice/pkg/core"
	"github.com/leapstack-labs/sqldevice/pkg/reconcile"
	"github.com/leapstack-labs/sqldevice/pkg/translate"
)

// Environment is what a dialect knows when it builds its registries.
type Environment struct {
	MajorVersion int
	Params       map[string]any
	Logger       *slog.Logger
}

// Dialect is the contract every device implementation satisfies.
type Dialect interface {
	// Name is the registry key, e.g. "mssql".
	Name() string

	// Identifiers returns identifier quoting for emitted SQL.
	Identifiers() core.IdentifierConfig

	// DriverName is the database/sql driver used by the default connector.
	DriverName() string

	// Legends returns the connection classes by name.
	Legends() map[string]Legend

	// DefaultLegend names the connection class used when none is configured.
	DefaultLegend() string

	// AdminDatabase is the database connected to for the version probe and
	// database-ensure steps.
	AdminDatabase() string

	// VersionQuery returns a single row with a single version string column.
	VersionQuery() string

	// ParseVersion extracts the major version from the probe result.
	ParseVersion(version string) (int, error)

	// EnsureDatabase creates the named database if it does not exist.
	EnsureDatabase(ctx context.Context, conn Connection, name string) error

	// SupportScript returns the support-operator DDL and its batch delimiter.
	// An empty script means nothing is installed.
	SupportScript() (script, delimiter string)

	BuildTypes(env Environment) (*bridge.Registry, error)
	BuildOperators(env Environment, types *bridge.Registry) (*translate.Registry, error)
	CatalogQueries(env Environment) reconcile.Queries
}

// ParseDottedVersion returns the leading numeric component of a dotted
// version string: "9.00.1399.06" and "16.2 (Debian 16.2-1)" give 9 and 16.
func ParseDottedVersion(version string) (int, error) {
	s := strings.TrimSpace(version)
	end := strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' })
	if end == -1 {
		end = len(s)
	}
	major, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, fmt.Errorf("invalid server version %q", version)
	}
	return major, nil
}
