package rules

import (
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Spell slot kinds a granted spell record can be tagged with.
const (
	SlotKindNormal  = "normal"
	SlotKindCantrip = "cantrip"
	SlotKindRitual  = "ritual"
	SlotKindSpecial = "special"
	SlotKindFree    = "free"
)

// Spellcasting progression names
const (
	ProgressionFull  = "full"
	ProgressionHalf  = "half"
	ProgressionThird = "third"
	ProgressionPact  = "pact"
)

// SpellProgressions maps progression names to the maximum spell tier
// unlocked at each class level. Index 0 corresponds to class level 1.
type SpellProgressions map[string][]int

// progressionFile is the YAML shape of a ruleset progression table file.
type progressionFile struct {
	Progressions map[string][]int `yaml:"progressions"`
}

// DefaultSpellProgressions returns the built-in progression tables.
func DefaultSpellProgressions() SpellProgressions {
	return SpellProgressions{
		ProgressionFull:  {1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6, 7, 7, 8, 8, 9, 9, 9, 9},
		ProgressionHalf:  {0, 1, 1, 1, 2, 2, 2, 2, 3, 3, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5},
		ProgressionThird: {0, 0, 1, 1, 1, 1, 2, 2, 2, 2, 2, 2, 3, 3, 3, 3, 4, 4, 4, 4},
		ProgressionPact:  {1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5},
	}
}

// LoadSpellProgressions reads progression tables from a YAML ruleset file.
func LoadSpellProgressions(path string) (SpellProgressions, error) {
	f, err := os.Open(path) // #nosec G304 // ruleset path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("failed to open progression file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ParseSpellProgressions(f)
}

// ParseSpellProgressions decodes progression tables from YAML.
func ParseSpellProgressions(r io.Reader) (SpellProgressions, error) {
	var file progressionFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode progression file: %w", err)
	}
	if len(file.Progressions) == 0 {
		return nil, fmt.Errorf("progression file defines no progressions")
	}
	for name, tiers := range file.Progressions {
		if len(tiers) != MaxLevel {
			return nil, fmt.Errorf("progression %q has %d levels, want %d", name, len(tiers), MaxLevel)
		}
	}
	return file.Progressions, nil
}

// TierAt returns the maximum spell tier available to the named progression at
// the given class level, or 0 when the progression grants no slots there.
func (p SpellProgressions) TierAt(progression string, classLevel int) int {
	tiers, ok := p[progression]
	if !ok || classLevel < 1 {
		return 0
	}
	if classLevel > len(tiers) {
		classLevel = len(tiers)
	}
	return tiers[classLevel-1]
}

// UnlockLevels returns the class levels at which the named progression
// unlocks a new spell tier, in ascending order.
func (p SpellProgressions) UnlockLevels(progression string) []int {
	tiers, ok := p[progression]
	if !ok {
		return nil
	}
	var levels []int
	prev := 0
	for i, tier := range tiers {
		if tier > prev {
			levels = append(levels, i+1)
			prev = tier
		}
	}
	sort.Ints(levels)
	return levels
}
