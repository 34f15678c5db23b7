package advancement

import (
	"context"

	"github.com/greyhollow/sheet-api/internal/delta"
	"github.com/greyhollow/sheet-api/internal/entities"
	"github.com/greyhollow/sheet-api/internal/errors"
)

// Trait adds keys to a set-valued character field: fixed grants plus an
// optional count of player picks from a choice list.
type Trait struct {
	base
}

func configureTrait(cfg *entities.AdvancementConfig) error {
	tc := cfg.Trait
	if tc == nil {
		return errors.InvalidArgument("trait configuration is missing")
	}
	if tc.Target == "" {
		return errors.InvalidArgument("trait names no target field")
	}
	if len(tc.Grants) == 0 && len(tc.Choices) == 0 {
		return errors.InvalidArgument("trait grants nothing and offers no choices")
	}
	if tc.Count > len(tc.Choices) {
		return errors.InvalidArgumentf(
			"trait asks for %d picks from %d choices", tc.Count, len(tc.Choices))
	}
	if len(tc.Choices) > 0 && tc.Count == 0 {
		return errors.InvalidArgument("trait offers choices but no pick count")
	}
	return nil
}

// Levels implements Advancement.
func (t *Trait) Levels() []int {
	if t.cfg.Level.Value != nil {
		return []int{*t.cfg.Level.Value}
	}
	return []int{1}
}

// ConfiguredForLevel implements Advancement.
func (t *Trait) ConfiguredForLevel(level int) bool {
	tc := t.cfg.Trait
	if tc.Count == 0 {
		return true
	}
	v := t.value()
	return v != nil && len(v.Selected[level]) >= tc.Count
}

// Apply implements Advancement. When the choice list is exactly the pick
// count there is nothing to decide, so the picks self-select.
func (t *Trait) Apply(_ context.Context, level int, data *ApplyData, opts Options) error {
	tc := t.cfg.Trait
	if tc.Count == 0 {
		return nil
	}

	var picks []string
	if data != nil {
		picks = data.Selected
	}
	if len(picks) == 0 && len(tc.Choices) == tc.Count {
		picks = tc.Choices
	}
	if len(picks) == 0 {
		if opts.Strict {
			return errors.FailedPrecondition("trait choices required")
		}
		return nil
	}
	if len(picks) != tc.Count {
		return errors.InvalidArgumentf("trait requires %d picks, got %d", tc.Count, len(picks))
	}
	seen := make(map[string]bool, len(picks))
	for _, pick := range picks {
		if !containsString(tc.Choices, pick) {
			return errors.InvalidArgumentf("%s is not an offered trait", pick)
		}
		if seen[pick] {
			return errors.InvalidArgumentf("%s is picked twice", pick)
		}
		seen[pick] = true
	}

	v := t.ensureValue()
	if v.Selected == nil {
		v.Selected = make(map[int][]string)
	}
	v.Selected[level] = append([]string(nil), picks...)
	return nil
}

// Reverse implements Advancement.
func (t *Trait) Reverse(_ context.Context, level int, _ Options) error {
	v := t.value()
	if v == nil {
		return nil
	}
	delete(v.Selected, level)
	if len(v.Selected) == 0 {
		v.Selected = nil
	}
	t.clearValue()
	return nil
}

// Changes implements Advancement: grants always land, picks land once chosen.
func (t *Trait) Changes(level int) []delta.Change {
	tc := t.cfg.Trait
	keys := append([]string(nil), tc.Grants...)
	if v := t.value(); v != nil {
		keys = append(keys, v.Selected[level]...)
	}
	if len(keys) == 0 {
		return nil
	}
	changes := make([]delta.Change, 0, len(keys))
	for _, key := range keys {
		changes = append(changes,
			delta.NewChange(tc.Target, delta.ModeAdd, key).WithSource(t.source()))
	}
	return changes
}
