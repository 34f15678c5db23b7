package advancement

import (
	"context"

	"github.com/greyhollow/sheet-api/internal/delta"
	"github.com/greyhollow/sheet-api/internal/entities"
	"github.com/greyhollow/sheet-api/internal/errors"
	"github.com/greyhollow/sheet-api/internal/rules"
)

// KeyAbility records the class's defining ability choice and contributes a
// +1 to it.
type KeyAbility struct {
	base
}

func configureKeyAbility(cfg *entities.AdvancementConfig) error {
	if cfg.KeyAbility == nil {
		return errors.InvalidArgument("key ability configuration is missing")
	}
	if len(cfg.KeyAbility.Choices) == 0 {
		return errors.InvalidArgument("key ability offers no choices")
	}
	for _, ability := range cfg.KeyAbility.Choices {
		if !rules.IsAbility(ability) {
			return errors.InvalidArgumentf("unknown ability %q", ability)
		}
	}
	return nil
}

// Levels implements Advancement: class level 1 unless configured otherwise.
func (k *KeyAbility) Levels() []int {
	if k.cfg.Level.Value != nil {
		return []int{*k.cfg.Level.Value}
	}
	return []int{1}
}

// ConfiguredForLevel implements Advancement.
func (k *KeyAbility) ConfiguredForLevel(_ int) bool {
	v := k.value()
	return v != nil && v.Ability != ""
}

// Apply implements Advancement. A single-entry choice list auto-selects, so
// backfill needs no player input for fixed-ability classes.
func (k *KeyAbility) Apply(_ context.Context, _ int, data *ApplyData, opts Options) error {
	ability := ""
	if data != nil {
		ability = data.Ability
	}
	if ability == "" && len(k.cfg.KeyAbility.Choices) == 1 {
		ability = k.cfg.KeyAbility.Choices[0]
	}
	if ability == "" {
		if opts.Strict {
			return errors.FailedPrecondition("key ability choice required")
		}
		return nil
	}
	if !containsString(k.cfg.KeyAbility.Choices, ability) {
		return errors.InvalidArgumentf("%s is not an allowed key ability", ability)
	}
	k.ensureValue().Ability = ability
	return nil
}

// Reverse implements Advancement.
func (k *KeyAbility) Reverse(_ context.Context, _ int, _ Options) error {
	v := k.value()
	if v == nil {
		return nil
	}
	v.Ability = ""
	k.clearValue()
	return nil
}

// Changes implements Advancement.
func (k *KeyAbility) Changes(_ int) []delta.Change {
	v := k.value()
	if v == nil || v.Ability == "" {
		return nil
	}
	return []delta.Change{
		delta.NewChange("abilities."+v.Ability+".value", delta.ModeAdd, 1).WithSource(k.source()),
	}
}

func containsString(list []string, target string) bool {
	for _, item := range list {
		if item == target {
			return true
		}
	}
	return false
}
