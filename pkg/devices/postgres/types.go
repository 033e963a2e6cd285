package postgres

import (
	"time"

	"github.com/leapstack-labs/sqldevice/pkg/bridge"
	"github.com/leapstack-labs/sqldevice/pkg/core"
)

// Temporal represents the sentinel natively and reads at microsecond
// precision.
var Temporal = bridge.TemporalRange{Granularity: time.Microsecond}

var excluded = []string{"array", "user-defined", "json", "jsonb", "xml", "interval", "tsvector", "tsquery", "inet", "cidr"}

// Types builds the PostgreSQL type bridge.
func Types() *bridge.Registry {
	return bridge.NewBuilder().
		Map(bridge.BooleanMapping("boolean", "true", "false")).
		Map(bridge.IntegerMapping(core.TypeByte, "smallint")).
		Map(bridge.IntegerMapping(core.TypeSByte, "smallint")).
		Map(bridge.IntegerMapping(core.TypeShort, "smallint")).
		Map(bridge.IntegerMapping(core.TypeUShort, "integer")).
		Map(bridge.IntegerMapping(core.TypeInteger, "integer")).
		Map(bridge.IntegerMapping(core.TypeUInteger, "bigint")).
		Map(bridge.IntegerMapping(core.TypeLong, "bigint")).
		Map(bridge.ULongMapping("numeric(20,0)")).
		Map(bridge.DecimalMapping("numeric(%d,%d)", 28, 8)).
		Map(bridge.MoneyMapping("money")).
		Map(bridge.StringMapping("varchar(%d)", 200, bridge.QuoteString)).
		Map(bridge.DateTimeMapping(core.TypeDate, "date", Temporal, bridge.QuoteString)).
		Map(bridge.TimeOfDayMapping("time", Temporal, bridge.QuoteString)).
		Map(bridge.DateTimeMapping(core.TypeDateTime, "timestamp", Temporal, bridge.QuoteString)).
		Map(bridge.TimeSpanMapping("bigint")).
		Map(bridge.GuidMapping("uuid", false, bridge.QuoteString)).
		Map(bridge.BinaryMapping("bytea", bridge.ByteaLiteral)).
		ImportAs(core.TypeBoolean, "boolean", "bool").
		ImportAs(core.TypeShort, "smallint", "int2").
		ImportAs(core.TypeInteger, "integer", "int", "int4").
		ImportAs(core.TypeLong, "bigint", "int8").
		ImportAs(core.TypeDecimal, "numeric", "decimal", "real", "double precision").
		ImportAs(core.TypeMoney, "money").
		ImportAs(core.TypeString, "character varying", "varchar", "character", "char", "bpchar", "text").
		ImportAs(core.TypeDate, "date").
		ImportAs(core.TypeTime, "time", "time without time zone").
		ImportAs(core.TypeDateTime, "timestamp", "timestamp without time zone").
		ImportAs(core.TypeGuid, "uuid").
		ImportAs(core.TypeBinary, "bytea").
		Exclude(excluded...).
		Build()
}
