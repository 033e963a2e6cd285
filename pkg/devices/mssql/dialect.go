package mssql

import (
	"context"
	_ "embed"
	"fmt"
	"regexp"

	mssqldb "github.com/microsoft/go-mssqldb"

	"github.com/leapstack-labs/sqldevice/pkg/bridge"
	"github.com/leapstack-labs/sqldevice/pkg/core"
	"github.com/leapstack-labs/sqldevice/pkg/device"
	"github.com/leapstack-labs/sqldevice/pkg/reconcile"
	"github.com/leapstack-labs/sqldevice/pkg/translate"
)

// Name is the registry key of the SQL Server device.
const Name = "mssql"

//go:embed operators.sql
var supportScript string

// Dialect implements device.Dialect for SQL Server.
type Dialect struct{}

// New creates the SQL Server dialect.
func New() *Dialect { return &Dialect{} }

// Params holds SQL Server specific configuration.
// Parsed from device.Config.Params using mapstructure.
type Params struct {
	// UseOptimizerHints adds option (recompile) to base table access.
	UseOptimizerHints bool `mapstructure:"use_optimizer_hints"`
}

func (*Dialect) Name() string { return Name }

func (*Dialect) Identifiers() core.IdentifierConfig {
	return core.IdentifierConfig{
		Quote:         "[",
		QuoteEnd:      "]",
		Escape:        "]]",
		Normalization: core.NormCaseInsensitive,
	}
}

func (*Dialect) DriverName() string { return "sqlserver" }

func (*Dialect) Legends() map[string]device.Legend { return legends }

func (*Dialect) DefaultLegend() string { return "mssql" }

func (*Dialect) AdminDatabase() string { return "master" }

func (*Dialect) VersionQuery() string { return "select serverproperty('ProductVersion')" }

func (*Dialect) ParseVersion(version string) (int, error) {
	return device.ParseDottedVersion(version)
}

// regularIdentifier matches names usable without delimiters.
var regularIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_@$#]*$`)

// EnsureDatabaseStatement returns the statement creating name when absent.
// Names that are not regular identifiers are bracket-quoted.
func EnsureDatabaseStatement(name string) string {
	q := mssqldb.TSQLQuoter{}
	id := name
	if !regularIdentifier.MatchString(name) {
		id = q.ID(name)
	}
	return fmt.Sprintf("if not exists (select * from sysdatabases where name = %s) create database %s",
		q.Value(name), id)
}

func (*Dialect) EnsureDatabase(ctx context.Context, conn device.Connection, name string) error {
	return conn.Execute(ctx, EnsureDatabaseStatement(name))
}

func (*Dialect) SupportScript() (string, string) { return supportScript, "go" }

func (*Dialect) BuildTypes(env device.Environment) (*bridge.Registry, error) {
	return Types(env.MajorVersion), nil
}

func (*Dialect) BuildOperators(env device.Environment, types *bridge.Registry) (*translate.Registry, error) {
	var p Params
	if err := device.DecodeParams(env.Params, &p); err != nil {
		return nil, err
	}
	return Operators(env, p, types), nil
}

func (*Dialect) CatalogQueries(env device.Environment) reconcile.Queries {
	return Queries{MajorVersion: env.MajorVersion}
}
