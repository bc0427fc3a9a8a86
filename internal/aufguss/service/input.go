package aufguss

import (
	"strconv"
	"strings"
)

// Fields is a flat view of a request body, built from form values or from the
// scalar members of a JSON object. Presence of a key matters for updates.
type Fields map[string]string

func (f Fields) Has(key string) bool {
	_, ok := f[key]
	return ok
}

func (f Fields) Get(key string) string {
	return strings.TrimSpace(f[key])
}

// First returns the first non-empty value among keys.
func (f Fields) First(keys ...string) string {
	for _, k := range keys {
		if v := f.Get(k); v != "" {
			return v
		}
	}
	return ""
}

// HasAny reports whether any of keys is present.
func (f Fields) HasAny(keys ...string) bool {
	for _, k := range keys {
		if f.Has(k) {
			return true
		}
	}
	return false
}

// parseOptionalID reads a positive id. Empty, "0" and "null" mean no reference.
func parseOptionalID(value string) (*int64, bool) {
	value = strings.TrimSpace(value)
	if value == "" || value == "0" || value == "null" {
		return nil, true
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id < 0 {
		return nil, false
	}
	return &id, true
}

// ParseID parses a required positive id.
func ParseID(value string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
