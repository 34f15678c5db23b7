package entities

import (
	"github.com/greyhollow/sheet-api/internal/rules"
)

// Class restriction values for level-bound advancements.
const (
	ClassRestrictionOriginal = "original"
	ClassRestrictionOther    = "other"
)

// AdvancementConfig is the author-defined definition of one advancement on an
// item. Exactly one variant configuration block is set, matching Type.
type AdvancementConfig struct {
	ID    string    `json:"id"`
	Type  string    `json:"type"`
	Title string    `json:"title,omitempty"`
	Level LevelSpec `json:"level"`

	HitPoints      *HitPointsConfig      `json:"hit_points,omitempty"`
	ScaleValue     *ScaleValueConfig     `json:"scale_value,omitempty"`
	KeyAbility     *KeyAbilityConfig     `json:"key_ability,omitempty"`
	Improvement    *ImprovementConfig    `json:"improvement,omitempty"`
	ChooseFeatures *ChooseFeaturesConfig `json:"choose_features,omitempty"`
	GrantFeatures  *GrantFeaturesConfig  `json:"grant_features,omitempty"`
	Spellcasting   *SpellcastingConfig   `json:"spellcasting,omitempty"`
	Size           *SizeConfig           `json:"size,omitempty"`
	Trait          *TraitConfig          `json:"trait,omitempty"`
	Property       *PropertyConfig       `json:"property,omitempty"`
	Equipment      *EquipmentConfig      `json:"equipment,omitempty"`
}

// LevelSpec binds an advancement to a level. Value is nil for multi-level
// variants that derive their levels from configuration maps instead.
type LevelSpec struct {
	Value *int `json:"value,omitempty"`
	// ClassIdentifier binds an advancement on a non-class item to a
	// specific class's levels.
	ClassIdentifier string `json:"class_identifier,omitempty"`
	// ClassRestriction gates the advancement on whether its class is the
	// character's original class ("original") or a later one ("other").
	ClassRestriction string `json:"class_restriction,omitempty"`
}

// Clone returns a deep copy of the configuration.
func (c *AdvancementConfig) Clone() *AdvancementConfig {
	clone := *c
	if c.Level.Value != nil {
		v := *c.Level.Value
		clone.Level.Value = &v
	}
	if c.HitPoints != nil {
		hp := *c.HitPoints
		clone.HitPoints = &hp
	}
	if c.ScaleValue != nil {
		sv := *c.ScaleValue
		sv.Values = copyIntStringMap(c.ScaleValue.Values)
		clone.ScaleValue = &sv
	}
	if c.KeyAbility != nil {
		ka := *c.KeyAbility
		ka.Choices = copyStrings(c.KeyAbility.Choices)
		clone.KeyAbility = &ka
	}
	if c.Improvement != nil {
		im := *c.Improvement
		im.Abilities = copyStrings(c.Improvement.Abilities)
		im.Saves = copyStrings(c.Improvement.Saves)
		im.Pool = copyStrings(c.Improvement.Pool)
		clone.Improvement = &im
	}
	if c.ChooseFeatures != nil {
		cf := *c.ChooseFeatures
		cf.Pool = copyStrings(c.ChooseFeatures.Pool)
		cf.Choices = copyIntIntMap(c.ChooseFeatures.Choices)
		clone.ChooseFeatures = &cf
	}
	if c.GrantFeatures != nil {
		gf := *c.GrantFeatures
		gf.Items = copyStrings(c.GrantFeatures.Items)
		clone.GrantFeatures = &gf
	}
	if c.Spellcasting != nil {
		sc := *c.Spellcasting
		clone.Spellcasting = &sc
	}
	if c.Size != nil {
		sz := *c.Size
		sz.Sizes = copyStrings(c.Size.Sizes)
		clone.Size = &sz
	}
	if c.Trait != nil {
		tr := *c.Trait
		tr.Grants = copyStrings(c.Trait.Grants)
		tr.Choices = copyStrings(c.Trait.Choices)
		clone.Trait = &tr
	}
	if c.Property != nil {
		pr := *c.Property
		pr.Changes = make([]ChangeSpec, len(c.Property.Changes))
		copy(pr.Changes, c.Property.Changes)
		clone.Property = &pr
	}
	if c.Equipment != nil {
		eq := *c.Equipment
		eq.Entries = cloneEquipmentEntries(c.Equipment.Entries)
		clone.Equipment = &eq
	}
	return &clone
}

// HitPointsConfig configures the hit points advancement.
type HitPointsConfig struct {
	// Die is the class hit die size, e.g. 10 for a d10.
	Die int `json:"die"`
}

// ScaleValueConfig configures a scale value: a sparse map of class level to
// value, where the highest entry at or below the current level applies.
type ScaleValueConfig struct {
	// Identifier names the scale for formula references,
	// e.g. "sneak-attack".
	Identifier string         `json:"identifier"`
	Values     map[int]string `json:"values"`
}

// KeyAbilityConfig configures the key ability selection.
type KeyAbilityConfig struct {
	Choices []string `json:"choices"`
}

// ImprovementConfig configures the improvement advancement: an ability
// increase plus a granted talent chosen from a pool.
type ImprovementConfig struct {
	Abilities []string `json:"abilities"`
	// Saves are the save proficiencies upgraded when the owning class is
	// the character's original class.
	Saves []string `json:"saves,omitempty"`
	// Pool lists content references of talents eligible for the grant.
	Pool []string `json:"pool,omitempty"`
}

// ChooseFeaturesConfig configures a player-driven feature choice.
type ChooseFeaturesConfig struct {
	// Pool lists content references the player may choose from. An empty
	// pool allows any item passing the type/category restriction.
	Pool []string `json:"pool,omitempty"`
	// Choices maps level to the number of picks allowed at that level.
	Choices map[int]int `json:"choices"`
	// ItemType restricts what may be chosen.
	ItemType rules.ItemType `json:"item_type,omitempty"`
	// Category further restricts chosen items, e.g. "fighting-style".
	Category string `json:"category,omitempty"`
	// AllowReplacements permits swapping an earlier pick at a later level.
	AllowReplacements bool `json:"allow_replacements,omitempty"`
}

// GrantFeaturesConfig configures an unconditional item grant.
type GrantFeaturesConfig struct {
	// Items lists content references granted when the level is reached.
	Items []string `json:"items"`
}

// SpellcastingConfig configures spellcasting progression.
type SpellcastingConfig struct {
	// Progression names the slot progression table (full, half, third, pact).
	Progression string `json:"progression"`
	Ability     string `json:"ability"`
}

// SizeConfig configures a creature size choice.
type SizeConfig struct {
	Sizes []string `json:"sizes"`
}

// TraitConfig configures a trait grant/choice against a set-valued field.
type TraitConfig struct {
	// Target is the character field path the trait keys land in,
	// e.g. "traits.languages".
	Target string `json:"target"`
	// Grants are always applied; Choices are picked by the player.
	Grants  []string `json:"grants,omitempty"`
	Choices []string `json:"choices,omitempty"`
	// Count is how many of Choices the player picks.
	Count int `json:"count,omitempty"`
}

// PropertyConfig configures an unconditional list of field changes.
type PropertyConfig struct {
	Changes []ChangeSpec `json:"changes"`
}

// ChangeSpec is one author-configured change: the raw form of a delta
// instruction before mode parsing and casting.
type ChangeSpec struct {
	Key   string `json:"key"`
	Mode  string `json:"mode"`
	Value string `json:"value"`
	// Priority overrides the mode-derived default when non-nil.
	Priority *int `json:"priority,omitempty"`
}

// EquipmentConfig configures starting equipment as a tree of grants and
// either/or groups.
type EquipmentConfig struct {
	Entries []*EquipmentEntry `json:"entries"`
}

// Equipment entry kinds.
const (
	EquipmentEntryItem = "item"
	EquipmentEntryAnd  = "and"
	EquipmentEntryOr   = "or"
)

// EquipmentEntry is one node in an equipment choice tree.
type EquipmentEntry struct {
	Kind      string            `json:"kind"`
	Reference string            `json:"reference,omitempty"`
	Count     int               `json:"count,omitempty"`
	Children  []*EquipmentEntry `json:"children,omitempty"`
}

func cloneEquipmentEntries(entries []*EquipmentEntry) []*EquipmentEntry {
	if entries == nil {
		return nil
	}
	out := make([]*EquipmentEntry, len(entries))
	for i, e := range entries {
		clone := *e
		clone.Children = cloneEquipmentEntries(e.Children)
		out[i] = &clone
	}
	return out
}

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func copyIntStringMap(in map[int]string) map[int]string {
	if in == nil {
		return nil
	}
	out := make(map[int]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyIntIntMap(in map[int]int) map[int]int {
	if in == nil {
		return nil
	}
	out := make(map[int]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
