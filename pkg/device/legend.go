package device

import (
	"fmt"
	"strings"
)

// Legend renames logical connection tags to a dialect's connection string
// keys. When IntegratedSecurity is set, the credentials are dropped and
// Integrated is emitted in their place.
type Legend struct {
	Name       string
	Prefix     string            // e.g. "odbc:"
	Keys       map[string]string // logical tag -> connection string key
	Separator  string
	Integrated string // full key=value pair
	Quote      func(string) string
}

// legendOrder is the emission order of the logical tags.
var legendOrder = []string{
	TagServerName,
	TagDatabaseName,
	TagUserName,
	TagPassword,
	TagApplicationName,
}

// Build produces the connection string for a tag map. Tags without a key in
// the legend are left out.
func (l Legend) Build(tags map[string]string) string {
	integrated := strings.EqualFold(tags[TagIntegratedSecurity], "true")

	var parts []string
	for _, tag := range legendOrder {
		value, ok := tags[tag]
		if !ok {
			continue
		}
		if integrated && (tag == TagUserName || tag == TagPassword) {
			continue
		}
		key, ok := l.Keys[tag]
		if !ok {
			continue
		}
		if l.Quote != nil {
			value = l.Quote(value)
		}
		parts = append(parts, key+"="+value)
	}
	if integrated && l.Integrated != "" {
		parts = append(parts, l.Integrated)
	}
	return l.Prefix + strings.Join(parts, l.Separator)
}

// Mask returns the connection string with the password value replaced.
func (l Legend) Mask(tags map[string]string) string {
	if _, ok := tags[TagPassword]; !ok {
		return l.Build(tags)
	}
	masked := make(map[string]string, len(tags))
	for k, v := range tags {
		masked[k] = v
	}
	masked[TagPassword] = "****"
	return l.Build(masked)
}

// UnknownLegendError is returned when a connection class is not defined by
// the dialect.
type UnknownLegendError struct {
	Dialect string
	Name    string
}

func (e *UnknownLegendError) Error() string {
	return fmt.Sprintf("dialect %s has no connection class %q", e.Dialect, e.Name)
}
