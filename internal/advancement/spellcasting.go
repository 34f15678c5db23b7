package advancement

import (
	"context"
	"log/slog"

	"github.com/greyhollow/sheet-api/internal/content"
	"github.com/greyhollow/sheet-api/internal/delta"
	"github.com/greyhollow/sheet-api/internal/entities"
	"github.com/greyhollow/sheet-api/internal/errors"
	"github.com/greyhollow/sheet-api/internal/rules"
)

// Spellcasting grants the class's spell list tier by tier as its slot
// progression unlocks new tiers, and records the casting ability.
type Spellcasting struct {
	base
}

func configureSpellcasting(cfg *entities.AdvancementConfig) error {
	if cfg.Spellcasting == nil {
		return errors.InvalidArgument("spellcasting configuration is missing")
	}
	if cfg.Spellcasting.Progression == "" {
		return errors.InvalidArgument("spellcasting names no progression")
	}
	if cfg.Spellcasting.Ability != "" && !rules.IsAbility(cfg.Spellcasting.Ability) {
		return errors.InvalidArgumentf("unknown casting ability %q", cfg.Spellcasting.Ability)
	}
	return nil
}

// Levels implements Advancement: the class levels at which the progression
// unlocks a new tier.
func (s *Spellcasting) Levels() []int {
	return s.env.Progressions.UnlockLevels(s.cfg.Spellcasting.Progression)
}

// ability is the effective casting ability: the player's replacement when one
// was recorded, the configured default otherwise.
func (s *Spellcasting) ability() string {
	if v := s.value(); v != nil && v.Ability != "" {
		return v.Ability
	}
	return s.cfg.Spellcasting.Ability
}

// Apply implements Advancement. Grants every spell of the tier the level
// unlocks, cantrips included when the first tier arrives; re-applying an
// already granted level is a no-op. Explicit references grant as free picks
// on top of the class list.
func (s *Spellcasting) Apply(ctx context.Context, level int, data *ApplyData, _ Options) error {
	cfg := s.cfg.Spellcasting
	if data != nil && data.Ability != "" {
		if !rules.IsAbility(data.Ability) {
			return errors.InvalidArgumentf("unknown casting ability %q", data.Ability)
		}
		s.ensureValue().Ability = data.Ability
	}

	tier := s.env.Progressions.TierAt(cfg.Progression, level)
	if tier > 0 && len(s.value().AddedAt(level)) == 0 {
		tiers := []int{tier}
		if s.env.Progressions.TierAt(cfg.Progression, level-1) == 0 {
			tiers = append(tiers, 0)
		}
		for _, t := range tiers {
			if err := s.grantTier(ctx, level, t); err != nil {
				return err
			}
		}
	}

	if data != nil && len(data.References) > 0 {
		granted := s.grantItems(ctx, level, data.References)
		s.tagSlotKinds(granted, rules.SlotKindFree)
	}
	return nil
}

// grantTier grants every spell of one tier from the class's list and tags its
// slot kind on the value record.
func (s *Spellcasting) grantTier(ctx context.Context, level, tier int) error {
	spellLevel := tier
	templates, err := s.env.Content.Search(ctx, &content.SearchInput{
		ContentType:     rules.ItemTypeSpell,
		ClassIdentifier: s.ClassIdentifier(),
		SpellLevel:      &spellLevel,
	})
	if err != nil {
		return errors.Wrapf(err, "failed to search tier %d spells", tier)
	}
	if len(templates) == 0 {
		slog.Debug("no spells found for tier",
			"class", s.ClassIdentifier(), "tier", tier)
		return nil
	}
	refs := make([]string, 0, len(templates))
	for _, t := range templates {
		refs = append(refs, t.SourceRef)
	}
	s.tagSlotKinds(s.grantItems(ctx, level, refs), rules.SlotKindNormal)
	return nil
}

// tagSlotKinds records each granted spell's slot kind on the value record.
// Ritual and special come from the spell's category, cantrips from a zero
// tier; anything else takes the fallback.
func (s *Spellcasting) tagSlotKinds(granted []*entities.ItemData, fallback string) {
	if len(granted) == 0 {
		return
	}
	v := s.ensureValue()
	if v.SlotKinds == nil {
		v.SlotKinds = make(map[string]string)
	}
	for _, item := range granted {
		v.SlotKinds[item.ID] = spellSlotKind(item, fallback)
	}
}

func spellSlotKind(item *entities.ItemData, fallback string) string {
	switch item.Category {
	case rules.SlotKindRitual:
		return rules.SlotKindRitual
	case rules.SlotKindSpecial:
		return rules.SlotKindSpecial
	}
	if item.SpellLevel == 0 {
		return rules.SlotKindCantrip
	}
	return fallback
}

// Reverse implements Advancement.
func (s *Spellcasting) Reverse(_ context.Context, level int, _ Options) error {
	v := s.value()
	if v == nil {
		return nil
	}
	for id := range v.AddedAt(level) {
		delete(v.SlotKinds, id)
	}
	if len(v.SlotKinds) == 0 {
		v.SlotKinds = nil
	}
	s.removeGranted(level)
	if len(v.Added) == 0 {
		v.Ability = ""
	}
	s.clearValue()
	return nil
}

// Changes implements Advancement: the casting ability surfaces on the computed
// sheet so formulas can reference it per class.
func (s *Spellcasting) Changes(_ int) []delta.Change {
	ability := s.ability()
	if ability == "" {
		return nil
	}
	key := "spellcasting." + identifierOr(s.item) + ".ability"
	return []delta.Change{
		delta.NewChange(key, delta.ModeOverride, ability).WithSource(s.source()),
	}
}

// identifierOr is the item's stable identifier, falling back to its ID for
// items authored without one.
func identifierOr(item *entities.ItemData) string {
	if item.Identifier != "" {
		return item.Identifier
	}
	return item.ID
}
