package mssql

import (
	"strings"

	"github.com/leapstack-labs/sqldevice/pkg/device"
)

// quoteValue wraps connection string values holding a separator or
// surrounding space in double quotes.
func quoteValue(s string) string {
	if strings.ContainsAny(s, `;"`) || strings.TrimSpace(s) != s {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

var legends = map[string]device.Legend{
	"mssql": {
		Name: "mssql",
		Keys: map[string]string{
			device.TagServerName:      "server",
			device.TagDatabaseName:    "database",
			device.TagUserName:        "user id",
			device.TagPassword:        "password",
			device.TagApplicationName: "app name",
		},
		Separator:  ";",
		Integrated: "trusted_connection=yes",
		Quote:      quoteValue,
	},
	"ado": {
		Name: "ado",
		Keys: map[string]string{
			device.TagServerName:      "Data source",
			device.TagDatabaseName:    "Initial catalog",
			device.TagUserName:        "User id",
			device.TagPassword:        "Password",
			device.TagApplicationName: "Application name",
		},
		Separator:  ";",
		Integrated: "Integrated security=SSPI",
		Quote:      quoteValue,
	},
	"odbc": {
		Name:   "odbc",
		Prefix: "odbc:",
		Keys: map[string]string{
			device.TagServerName:      "DSN",
			device.TagDatabaseName:    "Database",
			device.TagUserName:        "UID",
			device.TagPassword:        "PWD",
			device.TagApplicationName: "APP",
		},
		Separator:  ";",
		Integrated: "Trusted_Connection=Yes",
		Quote: func(s string) string {
			if strings.ContainsAny(s, ";{}") {
				return "{" + strings.ReplaceAll(s, "}", "}}") + "}"
			}
			return s
		},
	},
}
