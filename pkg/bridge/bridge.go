// Package bridge converts values and types between the engine's internal
// scalar types and a dialect's native types.
//
// A dialect describes its mappings with a Builder once at start-up; Build
// returns a Registry that is never mutated afterwards and may be shared by
// any number of goroutines without locking.
package bridge

import (
	"sort"
	"strconv"
	"strings"

	"github.com/leapstack-labs/sqldevice/pkg/core"
)

// Class classifies a native type for parameter binding and cursor decisions.
type Class int

const (
	ClassBoolean Class = iota
	ClassInteger
	ClassDecimal
	ClassMoney
	ClassString
	ClassDateTime
	ClassTime
	ClassGuid
	ClassBinary
)

// String returns the lowercase class name.
func (c Class) String() string {
	switch c {
	case ClassBoolean:
		return "boolean"
	case ClassInteger:
		return "integer"
	case ClassDecimal:
		return "decimal"
	case ClassMoney:
		return "money"
	case ClassString:
		return "string"
	case ClassDateTime:
		return "datetime"
	case ClassTime:
		return "time"
	case ClassGuid:
		return "guid"
	case ClassBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// SQLType is the binding classification of a mapped type.
type SQLType struct {
	Class     Class
	Length    int
	Precision int
	Scale     int
	Deferred  bool // streamed rather than fetched inline
}

// Mapping is the conversion contract of one internal scalar type.
// The conversion functions never see nil; the Registry handles null.
type Mapping struct {
	Type       core.ScalarType
	Domain     func(md core.MetaData) string
	Literal    func(value any, md core.MetaData) (string, error)
	ToScalar   func(native any) (any, error)
	FromScalar func(value any) (any, error)
	Class      func(md core.MetaData) SQLType
}

// ImportFunc resolves a harvested native domain to an internal scalar type.
// The returned metadata carries the storage tags the domain implies.
type ImportFunc func(nativeName string, length int, md core.MetaData) (core.ScalarType, core.MetaData, error)

// Builder accumulates mappings before they are frozen into a Registry.
type Builder struct {
	mappings map[core.ScalarType]Mapping
	imports  map[string]ImportFunc
	excluded map[string]struct{}
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		mappings: make(map[core.ScalarType]Mapping),
		imports:  make(map[string]ImportFunc),
		excluded: make(map[string]struct{}),
	}
}

// Map registers the mapping for m.Type, replacing any earlier one.
func (b *Builder) Map(m Mapping) *Builder {
	b.mappings[m.Type] = m
	return b
}

// Import registers how a native domain name resolves on harvest.
func (b *Builder) Import(nativeName string, fn ImportFunc) *Builder {
	b.imports[normalizeNative(nativeName)] = fn
	return b
}

// ImportAs resolves each native name to t. A positive harvested length is
// recorded as Storage.Length.
func (b *Builder) ImportAs(t core.ScalarType, nativeNames ...string) *Builder {
	for _, name := range nativeNames {
		b.Import(name, func(_ string, length int, md core.MetaData) (core.ScalarType, core.MetaData, error) {
			if length > 0 {
				md.Set(core.TagStorageLength, strconv.Itoa(length))
			}
			return t, md, nil
		})
	}
	return b
}

// Exclude marks native names that harvesting skips silently.
func (b *Builder) Exclude(nativeNames ...string) *Builder {
	for _, name := range nativeNames {
		b.excluded[normalizeNative(name)] = struct{}{}
	}
	return b
}

// Build returns a frozen Registry. Later changes to the builder do not
// affect registries already built.
func (b *Builder) Build() *Registry {
	r := &Registry{
		mappings: make(map[core.ScalarType]Mapping, len(b.mappings)),
		imports:  make(map[string]ImportFunc, len(b.imports)),
		excluded: make(map[string]struct{}, len(b.excluded)),
	}
	for t, m := range b.mappings {
		r.mappings[t] = m
	}
	for name, fn := range b.imports {
		r.imports[name] = fn
	}
	for name := range b.excluded {
		r.excluded[name] = struct{}{}
	}
	return r
}

// Registry is the immutable set of mappings of one device.
type Registry struct {
	mappings map[core.ScalarType]Mapping
	imports  map[string]ImportFunc
	excluded map[string]struct{}
}

// Lookup returns the mapping for t.
func (r *Registry) Lookup(t core.ScalarType) (Mapping, error) {
	m, ok := r.mappings[t]
	if !ok {
		return Mapping{}, &core.UnsupportedDomainError{Domain: string(t)}
	}
	return m, nil
}

// Types returns the mapped scalar types, sorted by name.
func (r *Registry) Types() []core.ScalarType {
	types := make([]core.ScalarType, 0, len(r.mappings))
	for t := range r.mappings {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// ToLiteral renders value as dialect literal text. Nil renders as null.
func (r *Registry) ToLiteral(t core.ScalarType, value any, md core.MetaData) (string, error) {
	m, err := r.Lookup(t)
	if err != nil {
		return "", err
	}
	if value == nil {
		return "null", nil
	}
	return m.Literal(value, md)
}

// ToScalar converts a value read from the native driver.
func (r *Registry) ToScalar(t core.ScalarType, native any) (any, error) {
	m, err := r.Lookup(t)
	if err != nil {
		return nil, err
	}
	if native == nil {
		return nil, nil
	}
	return m.ToScalar(native)
}

// FromScalar converts an internal value for writing to the native driver.
func (r *Registry) FromScalar(t core.ScalarType, value any) (any, error) {
	m, err := r.Lookup(t)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, nil
	}
	return m.FromScalar(value)
}

// NativeDomainName returns the native type text for t, parameterized by md.
func (r *Registry) NativeDomainName(t core.ScalarType, md core.MetaData) (string, error) {
	m, err := r.Lookup(t)
	if err != nil {
		return "", err
	}
	return m.Domain(md), nil
}

// SQLType returns the binding classification for t.
func (r *Registry) SQLType(t core.ScalarType, md core.MetaData) (SQLType, error) {
	m, err := r.Lookup(t)
	if err != nil {
		return SQLType{}, err
	}
	return m.Class(md), nil
}

// ShouldIncludeColumn reports whether harvesting keeps a column of the
// given native domain.
func (r *Registry) ShouldIncludeColumn(nativeName string) bool {
	_, excluded := r.excluded[normalizeNative(nativeName)]
	return !excluded
}

// FindScalarType resolves a native domain name requested directly.
// An unmapped name fails with UnsupportedImportTypeError.
func (r *Registry) FindScalarType(nativeName string, length int, md core.MetaData) (core.ScalarType, core.MetaData, error) {
	fn, ok := r.imports[normalizeNative(nativeName)]
	if !ok {
		return "", md, &core.UnsupportedImportTypeError{NativeDomainName: nativeName}
	}
	return fn(nativeName, length, md)
}

// ResolveDomain resolves a native domain discovered by harvesting.
// An unmapped name fails with UnsupportedDomainError so the caller can skip
// the column.
func (r *Registry) ResolveDomain(nativeName string, length int, md core.MetaData) (core.ScalarType, core.MetaData, error) {
	fn, ok := r.imports[normalizeNative(nativeName)]
	if !ok {
		return "", md, &core.UnsupportedDomainError{Domain: nativeName}
	}
	return fn(nativeName, length, md)
}

func normalizeNative(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
