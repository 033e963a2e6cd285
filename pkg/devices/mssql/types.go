package mssql

import (
	"time"

	mssqldb "github.com/microsoft/go-mssqldb"

	"github.com/leapstack-labs/sqldevice/pkg/bridge"
	"github.com/leapstack-labs/sqldevice/pkg/core"
)

// Temporal is the datetime domain: nothing before 1753, reads floored to
// whole seconds, times of day stored on 1900-01-01. Dates are written as
// yyyymmdd, which datetime reads the same under every DATEFORMAT.
var Temporal = bridge.TemporalRange{
	Min:         time.Date(1753, 1, 1, 0, 0, 0, 0, time.UTC),
	Granularity: time.Second,
	TimeBase:    time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC),
	DateLayout:  "20060102",
}

// Native domains excluded from harvesting.
var excluded = []string{"xml", "sql_variant", "geography", "geometry", "hierarchyid", "timestamp"}

func quote(s string) string { return mssqldb.TSQLQuoter{}.Value(s) }

func nquote(s string) string { return "N" + quote(s) }

// binaryDomain is image before 2005 and varbinary(max) from then on.
func binaryDomain(major int) string {
	if major < 9 {
		return "image"
	}
	return "varbinary(max)"
}

// Types builds the SQL Server type bridge for a server major version.
func Types(major int) *bridge.Registry {
	return bridge.NewBuilder().
		Map(bridge.BooleanMapping("bit", "1", "0")).
		Map(bridge.IntegerMapping(core.TypeByte, "tinyint")).
		Map(bridge.IntegerMapping(core.TypeSByte, "smallint")).
		Map(bridge.IntegerMapping(core.TypeShort, "smallint")).
		Map(bridge.IntegerMapping(core.TypeUShort, "int")).
		Map(bridge.IntegerMapping(core.TypeInteger, "int")).
		Map(bridge.IntegerMapping(core.TypeUInteger, "bigint")).
		Map(bridge.IntegerMapping(core.TypeLong, "bigint")).
		Map(bridge.ULongMapping("decimal(20,0)")).
		Map(bridge.DecimalMapping("decimal(%d,%d)", 28, 8)).
		Map(bridge.MoneyMapping("money")).
		Map(bridge.StringMapping("nvarchar(%d)", 200, nquote)).
		Map(bridge.DateTimeMapping(core.TypeDate, "datetime", Temporal, quote)).
		Map(bridge.TimeOfDayMapping("datetime", Temporal, quote)).
		Map(bridge.DateTimeMapping(core.TypeDateTime, "datetime", Temporal, quote)).
		Map(bridge.TimeSpanMapping("bigint")).
		Map(bridge.GuidMapping("uniqueidentifier", true, quote)).
		Map(bridge.BinaryMapping(binaryDomain(major), bridge.HexLiteral)).
		ImportAs(core.TypeBoolean, "bit").
		ImportAs(core.TypeByte, "tinyint").
		ImportAs(core.TypeShort, "smallint").
		ImportAs(core.TypeInteger, "int").
		ImportAs(core.TypeLong, "bigint").
		ImportAs(core.TypeDecimal, "decimal", "numeric", "float", "real").
		ImportAs(core.TypeMoney, "money", "smallmoney").
		ImportAs(core.TypeString, "nvarchar", "varchar", "nchar", "char", "text", "ntext").
		ImportAs(core.TypeDateTime, "datetime", "smalldatetime", "datetime2").
		ImportAs(core.TypeDate, "date").
		ImportAs(core.TypeTime, "time").
		ImportAs(core.TypeGuid, "uniqueidentifier").
		ImportAs(core.TypeBinary, "binary", "varbinary", "image").
		Exclude(excluded...).
		Build()
}
