package entities

// ValueData is the player-chosen, persisted state of one advancement on one
// character. Fields are optional; each variant uses the subset matching its
// shape. It is created lazily on first apply and cleared when the last level
// is reversed.
type ValueData struct {
	// HitPoints maps class level to the hit point gain taken at that
	// level: "max", "avg", or a rolled result as a decimal string.
	HitPoints map[int]string `json:"hit_points,omitempty"`

	// Ability is the chosen ability for key-ability, improvement, and
	// spellcasting ability replacement.
	Ability string `json:"ability,omitempty"`

	// Selected maps level to chosen option keys (traits, sizes).
	Selected map[int][]string `json:"selected,omitempty"`

	// Added maps level to granted item ID to the content reference the
	// item was cloned from.
	Added map[int]map[string]string `json:"added,omitempty"`

	// SlotKinds tags granted spell item IDs with their slot kind.
	SlotKinds map[string]string `json:"slot_kinds,omitempty"`

	// Replaced records a swap performed at a level: the reference and
	// original level of the pick that was removed.
	Replaced map[int]*ReplacedEntry `json:"replaced,omitempty"`
}

// ReplacedEntry records one replaced pick so reversal can restore it.
type ReplacedEntry struct {
	Reference string `json:"reference"`
	Level     int    `json:"level"`
	// Replacement is the reference granted in the original's place, so
	// reversal removes exactly that pick and no sibling at the same level.
	Replacement string `json:"replacement"`
}

// Empty reports whether the record holds no persisted state.
func (v *ValueData) Empty() bool {
	return len(v.HitPoints) == 0 &&
		v.Ability == "" &&
		len(v.Selected) == 0 &&
		len(v.Added) == 0 &&
		len(v.SlotKinds) == 0 &&
		len(v.Replaced) == 0
}

// AddedAt returns the granted item map for a level, never nil for reads.
func (v *ValueData) AddedAt(level int) map[string]string {
	if v == nil {
		return nil
	}
	return v.Added[level]
}

// RecordAdded records a granted item at a level, creating maps lazily.
func (v *ValueData) RecordAdded(level int, itemID, reference string) {
	if v.Added == nil {
		v.Added = make(map[int]map[string]string)
	}
	if v.Added[level] == nil {
		v.Added[level] = make(map[string]string)
	}
	v.Added[level][itemID] = reference
}

// ClearAdded removes the granted item record for a level.
func (v *ValueData) ClearAdded(level int) {
	delete(v.Added, level)
	if len(v.Added) == 0 {
		v.Added = nil
	}
}

// Clone returns a deep copy of the value record.
func (v *ValueData) Clone() *ValueData {
	if v == nil {
		return nil
	}
	clone := &ValueData{Ability: v.Ability}
	if v.HitPoints != nil {
		clone.HitPoints = make(map[int]string, len(v.HitPoints))
		for k, val := range v.HitPoints {
			clone.HitPoints[k] = val
		}
	}
	if v.Selected != nil {
		clone.Selected = make(map[int][]string, len(v.Selected))
		for k, val := range v.Selected {
			clone.Selected[k] = copyStrings(val)
		}
	}
	if v.Added != nil {
		clone.Added = make(map[int]map[string]string, len(v.Added))
		for k, val := range v.Added {
			inner := make(map[string]string, len(val))
			for id, ref := range val {
				inner[id] = ref
			}
			clone.Added[k] = inner
		}
	}
	if v.SlotKinds != nil {
		clone.SlotKinds = make(map[string]string, len(v.SlotKinds))
		for k, val := range v.SlotKinds {
			clone.SlotKinds[k] = val
		}
	}
	if v.Replaced != nil {
		clone.Replaced = make(map[int]*ReplacedEntry, len(v.Replaced))
		for k, val := range v.Replaced {
			entry := *val
			clone.Replaced[k] = &entry
		}
	}
	return clone
}
