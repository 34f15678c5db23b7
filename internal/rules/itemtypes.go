package rules

// ItemType discriminates the kinds of items a character can hold.
type ItemType string

// Item types
const (
	ItemTypeClass      ItemType = "class"
	ItemTypeSubclass   ItemType = "subclass"
	ItemTypeLineage    ItemType = "lineage"
	ItemTypeBackground ItemType = "background"
	ItemTypeTalent     ItemType = "talent"
	ItemTypeFeature    ItemType = "feature"
	ItemTypeSpell      ItemType = "spell"
	ItemTypeEquipment  ItemType = "equipment"
	ItemTypeContainer  ItemType = "container"
)

// ItemTypes lists every known item type.
var ItemTypes = []ItemType{
	ItemTypeClass,
	ItemTypeSubclass,
	ItemTypeLineage,
	ItemTypeBackground,
	ItemTypeTalent,
	ItemTypeFeature,
	ItemTypeSpell,
	ItemTypeEquipment,
	ItemTypeContainer,
}

// IsItemType reports whether t names a known item type.
func IsItemType(t ItemType) bool {
	for _, it := range ItemTypes {
		if it == t {
			return true
		}
	}
	return false
}

// AdvancementItemTypes lists the item types that may carry advancements.
var AdvancementItemTypes = []ItemType{
	ItemTypeClass,
	ItemTypeSubclass,
	ItemTypeLineage,
	ItemTypeBackground,
	ItemTypeTalent,
	ItemTypeFeature,
	ItemTypeEquipment,
}

// CanHaveAdvancements reports whether items of type t may carry advancements.
func CanHaveAdvancements(t ItemType) bool {
	for _, it := range AdvancementItemTypes {
		if it == t {
			return true
		}
	}
	return false
}

// MinAdvancementLevel returns the lowest level an advancement on an item of
// type t may bind to: class items track class levels from 1, subclasses come
// online at 3, everything else can contribute from level 0 (always on).
func MinAdvancementLevel(t ItemType) int {
	switch t {
	case ItemTypeClass:
		return 1
	case ItemTypeSubclass:
		return 3
	default:
		return 0
	}
}
