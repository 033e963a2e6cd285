package core

import "strings"

// NormalizationStrategy defines how unquoted identifiers are normalized.
type NormalizationStrategy int

const (
	// NormLowercase folds unquoted identifiers to lowercase (PostgreSQL).
	NormLowercase NormalizationStrategy = iota
	// NormUppercase folds unquoted identifiers to uppercase.
	NormUppercase
	// NormCaseSensitive preserves identifier case exactly.
	NormCaseSensitive
	// NormCaseInsensitive leaves names as written; the server compares them
	// without regard to case (SQL Server default collations).
	NormCaseInsensitive
)

// IdentifierConfig defines how identifiers are quoted and normalized.
type IdentifierConfig struct {
	Quote         string                // Quote character: ", `, [
	QuoteEnd      string                // End quote character (usually same as Quote, ] for [)
	Escape        string                // Escape sequence: "", ``, ]]
	Normalization NormalizationStrategy // How to normalize unquoted identifiers
}

// QuoteIdentifier quotes an identifier using the configured quote characters.
func (c IdentifierConfig) QuoteIdentifier(name string) string {
	if c.Quote == "" {
		return name
	}
	escaped := strings.ReplaceAll(name, c.QuoteEnd, c.Escape)
	return c.Quote + escaped + c.QuoteEnd
}

// Unquote strips the quote characters from a quoted identifier and undoes
// escaping. It reports false when name is not quoted.
func (c IdentifierConfig) Unquote(name string) (string, bool) {
	if c.Quote == "" || len(name) < len(c.Quote)+len(c.QuoteEnd) ||
		!strings.HasPrefix(name, c.Quote) || !strings.HasSuffix(name, c.QuoteEnd) {
		return name, false
	}
	inner := name[len(c.Quote) : len(name)-len(c.QuoteEnd)]
	return strings.ReplaceAll(inner, c.Escape, c.QuoteEnd), true
}

// NormalizeName normalizes an unquoted identifier according to the
// configured rules.
func (c IdentifierConfig) NormalizeName(name string) string {
	switch c.Normalization {
	case NormUppercase:
		return strings.ToUpper(name)
	case NormLowercase:
		return strings.ToLower(name)
	default:
		return name
	}
}

// CatalogName returns the name an identifier as written in user input has
// in the catalog: quoted names are taken literally, unquoted names are
// normalized.
func (c IdentifierConfig) CatalogName(name string) string {
	if unquoted, ok := c.Unquote(name); ok {
		return unquoted
	}
	return c.NormalizeName(name)
}
