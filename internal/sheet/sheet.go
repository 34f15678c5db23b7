// Package sheet prepares the computed character sheet: it rebuilds the
// advancement collections for every held item, runs the change-overlay
// engine, derives hit points from the recorded hit-point values, and gathers
// pending-choice warnings. The prepared sheet is transient; persisted state
// never changes here.
package sheet

import (
	"strings"

	"github.com/greyhollow/sheet-api/internal/delta"
	"github.com/greyhollow/sheet-api/internal/entities"
)

// NewSchema returns the character field schema the overlay folds against.
func NewSchema() *delta.Schema {
	schema := delta.NewSchema()
	// The patterns below have no duplicates, so Define cannot fail.
	_ = schema.Define("abilities.*.value", delta.FieldNumber)
	_ = schema.Define("abilities.*.save", delta.FieldTier)
	_ = schema.Define("attributes.hp.bonus", delta.FieldNumber)
	_ = schema.Define("details.size", delta.FieldString)
	_ = schema.Define("traits.languages", delta.FieldSet)
	_ = schema.Define("traits.resistances", delta.FieldSet)
	_ = schema.Define("scale.*.*", delta.FieldString)
	_ = schema.Define("spellcasting.*.ability", delta.FieldString)
	return schema
}

// NewInterpreter returns a delta interpreter over the sheet schema and the
// built-in field types.
func NewInterpreter() *delta.Interpreter {
	interp, err := delta.NewInterpreter(&delta.InterpreterConfig{
		Registry: delta.DefaultRegistry(),
		Schema:   NewSchema(),
	})
	if err != nil {
		// Both inputs are statically constructed.
		panic(err)
	}
	return interp
}

// BaseValue looks up the character's persisted value for a sheet field path,
// seeding the overlay accumulator before any changes fold.
func BaseValue(char *entities.CharacterData, key string) (any, bool) {
	switch key {
	case "attributes.hp.bonus":
		return float64(char.Attributes.HP.Bonus), true
	case "details.size":
		if char.Details.Size == "" {
			return nil, false
		}
		return char.Details.Size, true
	case "traits.languages":
		if len(char.Traits.Languages) == 0 {
			return nil, false
		}
		return append([]string(nil), char.Traits.Languages...), true
	case "traits.resistances":
		if len(char.Traits.Resistances) == 0 {
			return nil, false
		}
		return append([]string(nil), char.Traits.Resistances...), true
	}

	parts := strings.Split(key, ".")
	if len(parts) == 3 && parts[0] == "abilities" {
		ability, ok := char.Abilities[parts[1]]
		if !ok {
			return nil, false
		}
		switch parts[2] {
		case "value":
			return float64(ability.Value), true
		case "save":
			return ability.SaveProficiency, true
		}
	}
	return nil, false
}
