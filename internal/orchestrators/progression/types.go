package progression

import (
	"github.com/greyhollow/sheet-api/internal/advancement"
	"github.com/greyhollow/sheet-api/internal/entities"
	"github.com/greyhollow/sheet-api/internal/sheet"
)

// AddItemInput adds an item to a character and backfills its advancements up
// to the levels already reached.
type AddItemInput struct {
	CharacterID string
	Item        *entities.ItemData
}

// AddItemOutput is the result of adding an item.
type AddItemOutput struct {
	Character *entities.CharacterData
	Item      *entities.ItemData
	Sheet     *sheet.Sheet
}

// RemoveItemInput removes a held item, reversing its advancements first.
type RemoveItemInput struct {
	CharacterID string
	ItemID      string
}

// RemoveItemOutput is the result of removing an item.
type RemoveItemOutput struct {
	Character *entities.CharacterData
	Sheet     *sheet.Sheet
}

// LevelUpInput raises one class item by a level and applies the advancements
// unlocked by it. Data carries per-advancement player choices keyed by
// advancement ID; advancements without an entry are applied with automated
// defaults.
type LevelUpInput struct {
	CharacterID string
	ClassItemID string
	Data        map[string]*advancement.ApplyData
}

// LevelUpOutput is the result of a level up.
type LevelUpOutput struct {
	Character *entities.CharacterData
	Sheet     *sheet.Sheet
}

// LevelDownInput lowers one class item by a level, reversing that level's
// advancements first.
type LevelDownInput struct {
	CharacterID string
	ClassItemID string
}

// LevelDownOutput is the result of a level down.
type LevelDownOutput struct {
	Character *entities.CharacterData
	Sheet     *sheet.Sheet
}

// ApplyAdvancementInput applies a single advancement at one level with the
// player's explicit choices.
type ApplyAdvancementInput struct {
	CharacterID   string
	ItemID        string
	AdvancementID string
	Level         int
	Data          *advancement.ApplyData
}

// ApplyAdvancementOutput is the result of a single apply.
type ApplyAdvancementOutput struct {
	Character *entities.CharacterData
	Sheet     *sheet.Sheet
}

// ReverseAdvancementInput undoes a single advancement at one level.
type ReverseAdvancementInput struct {
	CharacterID   string
	ItemID        string
	AdvancementID string
	Level         int
}

// ReverseAdvancementOutput is the result of a single reverse.
type ReverseAdvancementOutput struct {
	Character *entities.CharacterData
	Sheet     *sheet.Sheet
}
