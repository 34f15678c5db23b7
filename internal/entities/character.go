// Package entities defines the persisted data model the advancement engine
// operates on: characters, the items they hold, and the per-advancement
// configuration and value records.
package entities

import (
	"github.com/KirkDiggler/rpg-toolkit/core"

	"github.com/greyhollow/sheet-api/internal/rules"
)

// Compile-time check that the persisted entities satisfy core.Entity, so
// they can ride the toolkit event bus directly.
var (
	_ core.Entity = (*CharacterData)(nil)
	_ core.Entity = (*ItemData)(nil)
)

// CharacterData is the persisted state of one character. Everything on it is
// plain data serialized by the persistence layer; derived values live on the
// sheet produced at recompute time, never here.
type CharacterData struct {
	ID       string `json:"id"`
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`

	Abilities  map[string]*AbilityData `json:"abilities"`
	Attributes AttributesData          `json:"attributes"`
	Details    DetailsData             `json:"details"`
	Traits     TraitsData              `json:"traits"`

	Items []*ItemData `json:"items"`

	// AdvancementValues holds player-chosen advancement state, keyed by
	// "itemID.advancementID" so characters holding clones of the same item
	// content keep independent choices.
	AdvancementValues map[string]*ValueData `json:"advancement_values,omitempty"`

	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// AbilityData is one ability block on a character.
type AbilityData struct {
	Value int `json:"value"`
	// SaveProficiency is the proficiency tier multiplier for saving throws
	// with this ability (0, 0.5, 1, or 2).
	SaveProficiency float64 `json:"save_proficiency"`
}

// AttributesData holds the character's resource attributes.
type AttributesData struct {
	HP HPData `json:"hp"`
}

// HPData tracks hit points. Max is derived at recompute time from hit-point
// advancement values; Bonus is a flat persisted adjustment.
type HPData struct {
	Current int `json:"current"`
	Bonus   int `json:"bonus"`
}

// DetailsData holds descriptive fields.
type DetailsData struct {
	Size string `json:"size,omitempty"`
}

// TraitsData holds the character's set-valued traits.
type TraitsData struct {
	Languages   []string `json:"languages,omitempty"`
	Resistances []string `json:"resistances,omitempty"`
}

// GetID implements core.Entity.
func (c *CharacterData) GetID() string {
	return c.ID
}

// GetType implements core.Entity.
func (c *CharacterData) GetType() string {
	return "character"
}

// Level returns the character's total level, the sum of levels across every
// class item held.
func (c *CharacterData) Level() int {
	total := 0
	for _, item := range c.Items {
		if item.Type == rules.ItemTypeClass {
			total += item.Levels
		}
	}
	return total
}

// Classes returns every class item the character holds.
func (c *CharacterData) Classes() []*ItemData {
	var classes []*ItemData
	for _, item := range c.Items {
		if item.Type == rules.ItemTypeClass {
			classes = append(classes, item)
		}
	}
	return classes
}

// ClassByIdentifier returns the class item with the given identifier, or nil.
func (c *CharacterData) ClassByIdentifier(identifier string) *ItemData {
	if identifier == "" {
		return nil
	}
	for _, item := range c.Items {
		if item.Type == rules.ItemTypeClass && item.Identifier == identifier {
			return item
		}
	}
	return nil
}

// OriginalClass returns the class taken at character level 1, falling back to
// the first class held when no class carries the flag.
func (c *CharacterData) OriginalClass() *ItemData {
	var first *ItemData
	for _, item := range c.Items {
		if item.Type != rules.ItemTypeClass {
			continue
		}
		if item.OriginalClass {
			return item
		}
		if first == nil {
			first = item
		}
	}
	return first
}

// Item returns the held item with the given ID, or nil.
func (c *CharacterData) Item(id string) *ItemData {
	for _, item := range c.Items {
		if item.ID == id {
			return item
		}
	}
	return nil
}

// AddItem appends an item to the character's held items.
func (c *CharacterData) AddItem(item *ItemData) {
	c.Items = append(c.Items, item)
}

// RemoveItem removes the held item with the given ID and reports whether it
// was present.
func (c *CharacterData) RemoveItem(id string) bool {
	for i, item := range c.Items {
		if item.ID == id {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

// Value returns the persisted advancement value record for the given
// item/advancement pair, or nil when no choices were recorded yet.
func (c *CharacterData) Value(itemID, advancementID string) *ValueData {
	return c.AdvancementValues[ValueKey(itemID, advancementID)]
}

// EnsureValue returns the value record for the given pair, creating it lazily.
func (c *CharacterData) EnsureValue(itemID, advancementID string) *ValueData {
	key := ValueKey(itemID, advancementID)
	if c.AdvancementValues == nil {
		c.AdvancementValues = make(map[string]*ValueData)
	}
	if c.AdvancementValues[key] == nil {
		c.AdvancementValues[key] = &ValueData{}
	}
	return c.AdvancementValues[key]
}

// ClearValue deletes the value record for the given pair when it is empty.
func (c *CharacterData) ClearValue(itemID, advancementID string) {
	key := ValueKey(itemID, advancementID)
	if v, ok := c.AdvancementValues[key]; ok && v.Empty() {
		delete(c.AdvancementValues, key)
	}
}

// ValueKey builds the advancement value storage key for an item/advancement
// pair.
func ValueKey(itemID, advancementID string) string {
	return itemID + "." + advancementID
}
