package delta

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/greyhollow/sheet-api/internal/errors"
	"github.com/greyhollow/sheet-api/internal/rules"
)

// Field defines per-type delta behavior: casting a raw change value into the
// field's native delta representation, validating it, and applying one of the
// five modes against a current value. New field types register on a Registry
// without touching the interpreter's dispatch.
type Field interface {
	// Name is the field type's registry key.
	Name() string
	// Cast converts a raw change value into the native delta representation.
	Cast(raw any) (any, error)
	// Validate runs type-specific sanity checks on a cast delta.
	Validate(v any) error
	// Apply folds a cast delta into the current value under the given mode.
	// A nil current value means the field has not been touched yet.
	Apply(mode Mode, current, delta any) (any, error)
}

// Built-in field type names.
const (
	FieldNumber = "number"
	FieldString = "string"
	FieldSet    = "set"
	FieldTier   = "tier"
)

// NumberField applies numeric arithmetic for every mode.
type NumberField struct{}

// Name implements Field.
func (NumberField) Name() string { return FieldNumber }

// Cast implements Field.
func (NumberField) Cast(raw any) (any, error) {
	return toNumber(raw)
}

// Validate implements Field.
func (NumberField) Validate(v any) error {
	n, ok := v.(float64)
	if !ok {
		return errors.InvalidArgumentf("number delta has type %T", v)
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return errors.InvalidArgument("number delta must be finite")
	}
	return nil
}

// Apply implements Field.
func (NumberField) Apply(mode Mode, current, delta any) (any, error) {
	d := delta.(float64)
	cur := 0.0
	if current != nil {
		n, err := toNumber(current)
		if err != nil {
			return nil, errors.Wrapf(err, "current value for number field")
		}
		cur = n
	}

	switch mode {
	case ModeAdd:
		return cur + d, nil
	case ModeMultiply:
		return cur * d, nil
	case ModeOverride:
		return d, nil
	case ModeUpgrade:
		return math.Max(cur, d), nil
	case ModeDowngrade:
		return math.Min(cur, d), nil
	default:
		return nil, errors.InvalidArgumentf("mode %s not supported on number fields", mode)
	}
}

// StringField applies concatenation and replacement; relative ordering modes
// have no meaning for free-form strings and drop the change.
type StringField struct{}

// Name implements Field.
func (StringField) Name() string { return FieldString }

// Cast implements Field.
func (StringField) Cast(raw any) (any, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	case int, int64, float64:
		return fmt.Sprint(v), nil
	default:
		return nil, errors.InvalidArgumentf("cannot cast %T to string delta", raw)
	}
}

// Validate implements Field.
func (StringField) Validate(v any) error {
	if _, ok := v.(string); !ok {
		return errors.InvalidArgumentf("string delta has type %T", v)
	}
	return nil
}

// Apply implements Field.
func (StringField) Apply(mode Mode, current, delta any) (any, error) {
	d := delta.(string)
	cur := ""
	if current != nil {
		s, ok := current.(string)
		if !ok {
			return nil, errors.InvalidArgumentf("current value for string field has type %T", current)
		}
		cur = s
	}

	switch mode {
	case ModeAdd:
		return cur + d, nil
	case ModeOverride:
		return d, nil
	default:
		return nil, errors.InvalidArgumentf("mode %s not supported on string fields", mode)
	}
}

// SetField treats deltas as string sets; add unions, override replaces.
// Results are kept sorted so repeated folds stay byte-identical.
type SetField struct{}

// Name implements Field.
func (SetField) Name() string { return FieldSet }

// Cast implements Field.
func (SetField) Cast(raw any) (any, error) {
	switch v := raw.(type) {
	case string:
		return normalizeSet(strings.Split(v, ",")), nil
	case []string:
		return normalizeSet(v), nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, errors.InvalidArgumentf("set delta element has type %T", item)
			}
			out = append(out, s)
		}
		return normalizeSet(out), nil
	default:
		return nil, errors.InvalidArgumentf("cannot cast %T to set delta", raw)
	}
}

// Validate implements Field.
func (SetField) Validate(v any) error {
	set, ok := v.([]string)
	if !ok {
		return errors.InvalidArgumentf("set delta has type %T", v)
	}
	seen := make(map[string]struct{}, len(set))
	for _, item := range set {
		if item == "" {
			return errors.InvalidArgument("set delta contains an empty element")
		}
		if _, dup := seen[item]; dup {
			return errors.InvalidArgumentf("set delta contains duplicate element %q", item)
		}
		seen[item] = struct{}{}
	}
	return nil
}

// Apply implements Field.
func (SetField) Apply(mode Mode, current, delta any) (any, error) {
	d := delta.([]string)
	var cur []string
	if current != nil {
		c, ok := current.([]string)
		if !ok {
			return nil, errors.InvalidArgumentf("current value for set field has type %T", current)
		}
		cur = c
	}

	switch mode {
	case ModeAdd:
		return normalizeSet(append(append([]string{}, cur...), d...)), nil
	case ModeOverride:
		return normalizeSet(d), nil
	default:
		return nil, errors.InvalidArgumentf("mode %s not supported on set fields", mode)
	}
}

// TierField is a numeric field constrained to proficiency tier multipliers;
// upgrade and downgrade compare by tier ranking.
type TierField struct{}

// Name implements Field.
func (TierField) Name() string { return FieldTier }

// Cast implements Field.
func (TierField) Cast(raw any) (any, error) {
	return toNumber(raw)
}

// Validate implements Field.
func (TierField) Validate(v any) error {
	n, ok := v.(float64)
	if !ok {
		return errors.InvalidArgumentf("tier delta has type %T", v)
	}
	if rules.ProficiencyRank(n) < 0 {
		return errors.InvalidArgumentf("%v is not a proficiency tier", n)
	}
	return nil
}

// Apply implements Field.
func (TierField) Apply(mode Mode, current, delta any) (any, error) {
	d := delta.(float64)
	cur := rules.ProficiencyNone
	if current != nil {
		n, err := toNumber(current)
		if err != nil {
			return nil, errors.Wrapf(err, "current value for tier field")
		}
		cur = n
	}

	curRank := rules.ProficiencyRank(cur)
	deltaRank := rules.ProficiencyRank(d)
	if curRank < 0 {
		return nil, errors.InvalidArgumentf("current value %v is not a proficiency tier", cur)
	}

	switch mode {
	case ModeOverride:
		return d, nil
	case ModeUpgrade:
		if deltaRank > curRank {
			return d, nil
		}
		return cur, nil
	case ModeDowngrade:
		if deltaRank < curRank {
			return d, nil
		}
		return cur, nil
	default:
		return nil, errors.InvalidArgumentf("mode %s not supported on tier fields", mode)
	}
}

func toNumber(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, errors.InvalidArgumentf("cannot parse %q as a number", v)
		}
		return n, nil
	default:
		return 0, errors.InvalidArgumentf("cannot cast %T to a number", raw)
	}
}

func normalizeSet(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, item := range in {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}
