package core

import "strconv"

// Well-known storage tags read when generating native domain names and DDL.
const (
	TagStorageLength    = "Storage.Length"
	TagStorageScale     = "Storage.Scale"
	TagStoragePrecision = "Storage.Precision"
	TagStorageSchema    = "Storage.Schema"
)

// Tag is a single named annotation.
type Tag struct {
	Name  string
	Value string
}

// MetaData is an ordered set of tags attached to a catalog object.
// The zero value is empty and ready to use.
type MetaData struct {
	tags []Tag
}

// NewMetaData creates a MetaData holding the given tags in order.
// Later tags replace earlier tags of the same name.
func NewMetaData(tags ...Tag) MetaData {
	var md MetaData
	for _, t := range tags {
		md.Set(t.Name, t.Value)
	}
	return md
}

// Get returns the value of the named tag.
func (m MetaData) Get(name string) (string, bool) {
	for _, t := range m.tags {
		if t.Name == name {
			return t.Value, true
		}
	}
	return "", false
}

// Has reports whether the named tag is present.
func (m MetaData) Has(name string) bool {
	_, ok := m.Get(name)
	return ok
}

// Set replaces the named tag in place, or appends it.
// Copies of m taken before the call are not affected.
func (m *MetaData) Set(name, value string) {
	tags := make([]Tag, len(m.tags), len(m.tags)+1)
	copy(tags, m.tags)
	m.tags = tags
	for i := range m.tags {
		if m.tags[i].Name == name {
			m.tags[i].Value = value
			return
		}
	}
	m.tags = append(m.tags, Tag{Name: name, Value: value})
}

// Int returns the named tag parsed as an integer, or def when absent or malformed.
func (m MetaData) Int(name string, def int) int {
	v, ok := m.Get(name)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// String returns the named tag, or def when absent.
func (m MetaData) String(name, def string) string {
	if v, ok := m.Get(name); ok {
		return v
	}
	return def
}

// Tags returns a copy of the tags in order.
func (m MetaData) Tags() []Tag {
	return append([]Tag(nil), m.tags...)
}

// Len returns the number of tags.
func (m MetaData) Len() int { return len(m.tags) }
