// Package rules holds the game-rules constants and data tables the
// advancement engine derives behavior from: ability keys, size and
// proficiency orderings, item type metadata, and spellcasting progressions.
package rules

// MaxLevel is the highest character or class level the ruleset supports.
const MaxLevel = 20

// Ability keys
const (
	AbilityStrength     = "strength"
	AbilityDexterity    = "dexterity"
	AbilityConstitution = "constitution"
	AbilityIntelligence = "intelligence"
	AbilityWisdom       = "wisdom"
	AbilityCharisma     = "charisma"
)

// Abilities lists every ability key in canonical order.
var Abilities = []string{
	AbilityStrength,
	AbilityDexterity,
	AbilityConstitution,
	AbilityIntelligence,
	AbilityWisdom,
	AbilityCharisma,
}

// IsAbility reports whether key names a known ability.
func IsAbility(key string) bool {
	for _, a := range Abilities {
		if a == key {
			return true
		}
	}
	return false
}

// AbilityModifier returns the derived modifier for an ability score.
func AbilityModifier(score int) int {
	// Integer division truncates toward zero, so shift before halving
	// to keep negative scores correct.
	if score >= 10 {
		return (score - 10) / 2
	}
	return -((11 - score) / 2)
}

// Size keys, smallest to largest
const (
	SizeTiny       = "tiny"
	SizeSmall      = "small"
	SizeMedium     = "medium"
	SizeLarge      = "large"
	SizeHuge       = "huge"
	SizeGargantuan = "gargantuan"
)

// Sizes lists every size key in ascending order.
var Sizes = []string{SizeTiny, SizeSmall, SizeMedium, SizeLarge, SizeHuge, SizeGargantuan}

// IsSize reports whether key names a known size.
func IsSize(key string) bool {
	for _, s := range Sizes {
		if s == key {
			return true
		}
	}
	return false
}

// Proficiency tier multipliers, in ranking order. Upgrade/downgrade deltas
// against proficiency fields compare by this ranking, not raw magnitude.
const (
	ProficiencyNone      = 0.0
	ProficiencyHalf      = 0.5
	ProficiencyFull      = 1.0
	ProficiencyExpertise = 2.0
)

// ProficiencyTiers lists the valid tier multipliers in ascending rank.
var ProficiencyTiers = []float64{
	ProficiencyNone,
	ProficiencyHalf,
	ProficiencyFull,
	ProficiencyExpertise,
}

// ProficiencyRank returns the ranking index of a tier multiplier, or -1 when
// the value is not a valid tier.
func ProficiencyRank(v float64) int {
	for i, tier := range ProficiencyTiers {
		if v == tier {
			return i
		}
	}
	return -1
}

// HitDice lists the die sizes a class hit die may use.
var HitDice = []int{4, 6, 8, 10, 12}

// IsHitDie reports whether die is a valid class hit die size.
func IsHitDie(die int) bool {
	for _, d := range HitDice {
		if d == die {
			return true
		}
	}
	return false
}
