package advancement

import (
	"context"

	"github.com/greyhollow/sheet-api/internal/delta"
	"github.com/greyhollow/sheet-api/internal/entities"
	"github.com/greyhollow/sheet-api/internal/errors"
	"github.com/greyhollow/sheet-api/internal/rules"
)

// Improvement is an ability score increase plus a talent granted from a
// configured pool. Its save-proficiency upgrades only land when the owning
// class is the character's original class.
type Improvement struct {
	base
}

func configureImprovement(cfg *entities.AdvancementConfig) error {
	if cfg.Improvement == nil {
		return errors.InvalidArgument("improvement configuration is missing")
	}
	if len(cfg.Improvement.Abilities) == 0 {
		return errors.InvalidArgument("improvement offers no abilities")
	}
	for _, ability := range cfg.Improvement.Abilities {
		if !rules.IsAbility(ability) {
			return errors.InvalidArgumentf("unknown ability %q", ability)
		}
	}
	for _, save := range cfg.Improvement.Saves {
		if !rules.IsAbility(save) {
			return errors.InvalidArgumentf("unknown save ability %q", save)
		}
	}
	return nil
}

// Levels implements Advancement: class level 1 unless configured otherwise.
func (im *Improvement) Levels() []int {
	if im.cfg.Level.Value != nil {
		return []int{*im.cfg.Level.Value}
	}
	return []int{1}
}

// ConfiguredForLevel implements Advancement: the ability must be chosen, and
// when a talent pool is configured a talent must have been granted.
func (im *Improvement) ConfiguredForLevel(level int) bool {
	v := im.value()
	if v == nil || v.Ability == "" {
		return false
	}
	if len(im.cfg.Improvement.Pool) == 0 {
		return true
	}
	return len(v.AddedAt(level)) > 0
}

// Apply implements Advancement. Backfill records an auto-selectable ability
// but never auto-picks a talent; that choice stays pending for the player.
func (im *Improvement) Apply(ctx context.Context, level int, data *ApplyData, opts Options) error {
	cfg := im.cfg.Improvement

	ability := ""
	if data != nil {
		ability = data.Ability
	}
	if ability == "" && len(cfg.Abilities) == 1 {
		ability = cfg.Abilities[0]
	}
	if ability != "" {
		if !containsString(cfg.Abilities, ability) {
			return errors.InvalidArgumentf("%s is not an allowed improvement ability", ability)
		}
		im.ensureValue().Ability = ability
	} else if opts.Strict {
		return errors.FailedPrecondition("improvement ability choice required")
	}

	if data != nil && len(data.References) > 0 {
		ref := data.References[0]
		if len(cfg.Pool) > 0 && !containsString(cfg.Pool, ref) {
			return errors.InvalidArgumentf("%s is not in the improvement talent pool", ref)
		}
		if existing := im.value(); existing != nil && len(existing.AddedAt(level)) > 0 {
			return errors.FailedPrecondition("improvement talent already granted")
		}
		im.grantItems(ctx, level, []string{ref})
	}
	return nil
}

// Reverse implements Advancement.
func (im *Improvement) Reverse(_ context.Context, level int, _ Options) error {
	v := im.value()
	if v == nil {
		return nil
	}
	im.removeGranted(level)
	v.Ability = ""
	im.clearValue()
	return nil
}

// Changes implements Advancement.
func (im *Improvement) Changes(_ int) []delta.Change {
	v := im.value()
	if v == nil || v.Ability == "" {
		return nil
	}
	changes := []delta.Change{
		delta.NewChange("abilities."+v.Ability+".value", delta.ModeAdd, 1).WithSource(im.source()),
	}
	if im.ownedByOriginalClass() {
		for _, save := range im.cfg.Improvement.Saves {
			changes = append(changes,
				delta.NewChange("abilities."+save+".save", delta.ModeUpgrade, rules.ProficiencyFull).
					WithSource(im.source()))
		}
	}
	return changes
}

func (im *Improvement) ownedByOriginalClass() bool {
	if im.char == nil {
		return false
	}
	var class *entities.ItemData
	if im.item.Type == rules.ItemTypeClass {
		class = im.item
	} else {
		class = im.char.ClassByIdentifier(im.ClassIdentifier())
	}
	return class != nil && im.char.OriginalClass() == class
}
