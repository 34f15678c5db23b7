package delta

import (
	"strings"

	"github.com/greyhollow/sheet-api/internal/errors"
)

// Schema maps character field paths to field type names. Paths are
// dot-separated; a "*" segment matches any single segment, so one entry can
// cover e.g. every ability score. Exact entries win over wildcard entries.
type Schema struct {
	exact map[string]string
	wild  []wildEntry
}

type wildEntry struct {
	segments []string
	field    string
}

// NewSchema creates an empty schema.
func NewSchema() *Schema {
	return &Schema{exact: make(map[string]string)}
}

// Define registers a path pattern against a field type name.
func (s *Schema) Define(pattern, fieldName string) error {
	if pattern == "" {
		return errors.InvalidArgument("schema pattern cannot be empty")
	}
	if strings.Contains(pattern, "*") {
		s.wild = append(s.wild, wildEntry{
			segments: strings.Split(pattern, "."),
			field:    fieldName,
		})
		return nil
	}
	if _, exists := s.exact[pattern]; exists {
		return errors.AlreadyExistsf("schema pattern %q already defined", pattern)
	}
	s.exact[pattern] = fieldName
	return nil
}

// Resolve returns the field type name for a concrete path.
func (s *Schema) Resolve(path string) (string, bool) {
	if field, ok := s.exact[path]; ok {
		return field, true
	}
	segments := strings.Split(path, ".")
	for _, entry := range s.wild {
		if matchSegments(entry.segments, segments) {
			return entry.field, true
		}
	}
	return "", false
}

func matchSegments(pattern, path []string) bool {
	if len(pattern) != len(path) {
		return false
	}
	for i, seg := range pattern {
		if seg != "*" && seg != path[i] {
			return false
		}
	}
	return true
}
