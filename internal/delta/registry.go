package delta

import (
	"github.com/greyhollow/sheet-api/internal/errors"
)

// Registry holds the known field types. It is constructed explicitly and
// passed in wherever deltas are interpreted, so engines stay testable
// without process-wide state.
type Registry struct {
	fields map[string]Field
}

// NewRegistry creates an empty field type registry.
func NewRegistry() *Registry {
	return &Registry{fields: make(map[string]Field)}
}

// Register adds a field type. Registering a duplicate name is a
// configuration error.
func (r *Registry) Register(f Field) error {
	if f == nil {
		return errors.InvalidArgument("field type cannot be nil")
	}
	if _, exists := r.fields[f.Name()]; exists {
		return errors.AlreadyExistsf("field type %q already registered", f.Name())
	}
	r.fields[f.Name()] = f
	return nil
}

// Get returns the field type with the given name.
func (r *Registry) Get(name string) (Field, bool) {
	f, ok := r.fields[name]
	return f, ok
}

// DefaultRegistry returns a registry with the built-in field types.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, f := range []Field{NumberField{}, StringField{}, SetField{}, TierField{}} {
		// Register only fails on duplicates, impossible here.
		_ = r.Register(f)
	}
	return r
}
