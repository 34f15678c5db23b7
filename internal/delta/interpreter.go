package delta

import (
	"github.com/greyhollow/sheet-api/internal/errors"
)

// Interpreter resolves a change's target field through a schema and runs the
// cast/validate/apply pipeline for it. One interpreter instance is shared by
// every fold in a recompute cycle.
type Interpreter struct {
	registry *Registry
	schema   *Schema
}

// InterpreterConfig holds the dependencies for an Interpreter.
type InterpreterConfig struct {
	Registry *Registry
	Schema   *Schema
}

// Validate ensures all required dependencies are provided.
func (c *InterpreterConfig) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Registry == nil {
		vb.RequiredField("Registry")
	}
	if c.Schema == nil {
		vb.RequiredField("Schema")
	}
	return vb.Build()
}

// NewInterpreter creates a new delta interpreter.
func NewInterpreter(cfg *InterpreterConfig) (*Interpreter, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &Interpreter{
		registry: cfg.Registry,
		schema:   cfg.Schema,
	}, nil
}

// ApplyChange folds one change into the current value of its target field.
// Errors mean this single change must be skipped; they never abort a wider
// recompute.
func (i *Interpreter) ApplyChange(current any, c Change) (any, error) {
	fieldName, ok := i.schema.Resolve(c.Key)
	if !ok {
		return nil, errors.NotFoundf("no schema entry for field %q", c.Key)
	}
	field, ok := i.registry.Get(fieldName)
	if !ok {
		return nil, errors.Internalf("schema maps %q to unregistered field type %q", c.Key, fieldName)
	}

	cast, err := field.Cast(c.Value)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to cast change for %q", c.Key)
	}
	if err := field.Validate(cast); err != nil {
		return nil, errors.Wrapf(err, "invalid change for %q", c.Key)
	}

	applied, err := field.Apply(c.Mode, current, cast)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to apply %s change to %q", c.Mode, c.Key)
	}
	return applied, nil
}
