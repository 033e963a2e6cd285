package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the pgx database/sql driver

	"github.com/leapstack-labs/sqldevice/pkg/bridge"
	"github.com/leapstack-labs/sqldevice/pkg/core"
	"github.com/leapstack-labs/sqldevice/pkg/device"
	"github.com/leapstack-labs/sqldevice/pkg/reconcile"
	"github.com/leapstack-labs/sqldevice/pkg/translate"
)

// Name is the registry key of the PostgreSQL device.
const Name = "postgres"

// Dialect implements device.Dialect for PostgreSQL.
type Dialect struct{}

// New creates the PostgreSQL dialect.
func New() *Dialect { return &Dialect{} }

func (*Dialect) Name() string { return Name }

func (*Dialect) Identifiers() core.IdentifierConfig {
	return core.IdentifierConfig{
		Quote:         `"`,
		QuoteEnd:      `"`,
		Escape:        `""`,
		Normalization: core.NormLowercase,
	}
}

func (*Dialect) DriverName() string { return "pgx" }

// quoteValue quotes a keyword/value connection string value when needed.
func quoteValue(s string) string {
	if s != "" && !strings.ContainsAny(s, ` '\`) {
		return s
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(s) + "'"
}

func (*Dialect) Legends() map[string]device.Legend {
	return map[string]device.Legend{
		"postgres": {
			Name: "postgres",
			Keys: map[string]string{
				device.TagServerName:      "host",
				device.TagDatabaseName:    "dbname",
				device.TagUserName:        "user",
				device.TagPassword:        "password",
				device.TagApplicationName: "application_name",
			},
			Separator:  " ",
			Integrated: "gssencmode=prefer",
			Quote:      quoteValue,
		},
	}
}

func (*Dialect) DefaultLegend() string { return "postgres" }

func (*Dialect) AdminDatabase() string { return "postgres" }

func (*Dialect) VersionQuery() string { return "select current_setting('server_version')" }

func (*Dialect) ParseVersion(version string) (int, error) {
	return device.ParseDottedVersion(version)
}

// EnsureDatabaseStatement returns the create statement for name.
func EnsureDatabaseStatement(name string) string {
	return "create database " + pgx.Identifier{name}.Sanitize()
}

func (*Dialect) EnsureDatabase(ctx context.Context, conn device.Connection, name string) error {
	rows, err := conn.Open(ctx, "select 1 from pg_database where datname = $1", name)
	if err != nil {
		return err
	}
	exists := rows.Next()
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return fmt.Errorf("failed to check database %s: %w", name, err)
	}
	if err := rows.Close(); err != nil {
		return err
	}
	if exists {
		return nil
	}
	return conn.Execute(ctx, EnsureDatabaseStatement(name))
}

// SupportScript is empty: every operator translates to built-in functions.
func (*Dialect) SupportScript() (string, string) { return "", "" }

func (*Dialect) BuildTypes(device.Environment) (*bridge.Registry, error) {
	return Types(), nil
}

func (*Dialect) BuildOperators(_ device.Environment, types *bridge.Registry) (*translate.Registry, error) {
	return Operators(types), nil
}

func (*Dialect) CatalogQueries(device.Environment) reconcile.Queries {
	return Queries{}
}
