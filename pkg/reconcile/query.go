package reconcile

import (
	sq "github.com/Masterminds/squirrel"
)

// Select starts a catalog query with the dialect's placeholder format.
func Select(format sq.PlaceholderFormat, columns ...string) sq.SelectBuilder {
	return sq.StatementBuilder.PlaceholderFormat(format).Select(columns...)
}

// FilterTable restricts q to the table selected by f. The schema predicate
// is added only when f names a schema.
func FilterTable(q sq.SelectBuilder, schemaColumn, tableColumn string, f Filter) sq.SelectBuilder {
	if f.IsZero() {
		return q
	}
	q = q.Where(sq.Eq{tableColumn: f.Table})
	if f.Schema != "" {
		q = q.Where(sq.Eq{schemaColumn: f.Schema})
	}
	return q
}
