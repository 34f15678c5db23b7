package entities

import (
	"github.com/greyhollow/sheet-api/internal/rules"
)

// ItemData is one item held by a character or stored in a content catalog:
// a class, subclass, lineage, background, talent, feature, spell, or piece
// of equipment. Advancements are authored on items; granted items carry a
// GrantedBy origin so removal can trace them back.
type ItemData struct {
	ID   string         `json:"id"`
	Type rules.ItemType `json:"type"`
	Name string         `json:"name"`

	// Identifier is the stable slug other rules refer to this item by,
	// e.g. "fighter". Meaningful for class and subclass items.
	Identifier string `json:"identifier,omitempty"`

	// Levels is the number of levels taken in this class. Class items only.
	Levels int `json:"levels,omitempty"`

	// OriginalClass marks the class taken at character level 1.
	OriginalClass bool `json:"original_class,omitempty"`

	// ParentClass is the identifier of the class a subclass belongs to.
	ParentClass string `json:"parent_class,omitempty"`

	// SpellLevel is the spell's tier. Spell items only.
	SpellLevel int `json:"spell_level,omitempty"`

	// Category refines the item type for choice restrictions,
	// e.g. "fighting-style" on feature items.
	Category string `json:"category,omitempty"`

	Advancements []*AdvancementConfig `json:"advancements,omitempty"`

	// GrantedBy records the advancement that created this item, when any.
	GrantedBy *GrantedBy `json:"granted_by,omitempty"`

	// Contents holds nested items for container equipment.
	Contents []*ItemData `json:"contents,omitempty"`

	// SourceRef is the content reference this item was cloned from.
	SourceRef string `json:"source_ref,omitempty"`
}

// GrantedBy traces a granted item back to the advancement that created it.
type GrantedBy struct {
	ItemID        string `json:"item_id"`
	AdvancementID string `json:"advancement_id"`
	Level         int    `json:"level"`
}

// GetID implements core.Entity.
func (i *ItemData) GetID() string {
	return i.ID
}

// GetType implements core.Entity.
func (i *ItemData) GetType() string {
	return string(i.Type)
}

// Clone returns a deep copy of the item with the given replacement ID.
// Advancement configurations are copied so edits to the clone never leak
// back into catalog content.
func (i *ItemData) Clone(newID string) *ItemData {
	clone := *i
	clone.ID = newID
	clone.Advancements = make([]*AdvancementConfig, len(i.Advancements))
	for idx, cfg := range i.Advancements {
		clone.Advancements[idx] = cfg.Clone()
	}
	clone.Contents = make([]*ItemData, len(i.Contents))
	for idx, content := range i.Contents {
		clone.Contents[idx] = content.Clone(content.ID)
	}
	if len(clone.Contents) == 0 {
		clone.Contents = nil
	}
	if len(clone.Advancements) == 0 {
		clone.Advancements = nil
	}
	if i.GrantedBy != nil {
		gb := *i.GrantedBy
		clone.GrantedBy = &gb
	}
	return &clone
}

// AdvancementConfigByID returns the advancement configuration with the given
// ID, or nil.
func (i *ItemData) AdvancementConfigByID(id string) *AdvancementConfig {
	for _, cfg := range i.Advancements {
		if cfg.ID == id {
			return cfg
		}
	}
	return nil
}
