// Package delta implements the change primitive and the field-type delta
// interpreter: typed casting, validation, and five-mode application of
// transient field mutations. The same {key, mode, value} contract is shared
// with any persistent modifier system layered on top of the engine.
package delta

import (
	"github.com/greyhollow/sheet-api/internal/errors"
)

// Mode selects how a change folds into the current value. The enum ordering
// is load-bearing: default priorities derive from it, so ADD changes fold
// before OVERRIDE by construction.
type Mode int

// Change modes
const (
	ModeAdd Mode = iota
	ModeMultiply
	ModeOverride
	ModeUpgrade
	ModeDowngrade
)

var modeNames = map[Mode]string{
	ModeAdd:       "add",
	ModeMultiply:  "multiply",
	ModeOverride:  "override",
	ModeUpgrade:   "upgrade",
	ModeDowngrade: "downgrade",
}

// String returns the mode's name.
func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	_, ok := modeNames[m]
	return ok
}

// DefaultPriority returns the priority a change of this mode folds at when
// no explicit priority is configured.
func (m Mode) DefaultPriority() int {
	return int(m) * 10
}

// ParseMode resolves a mode name to its Mode.
func ParseMode(name string) (Mode, error) {
	for m, n := range modeNames {
		if n == name {
			return m, nil
		}
	}
	return 0, errors.InvalidArgumentf("unknown change mode %q", name)
}

// Source identifies the advancement a change came from, for attribution in
// the computed overlay.
type Source struct {
	ItemID        string
	AdvancementID string
	Title         string
}

// Change is one transient delta instruction against a character field. It is
// never persisted; advancements emit fresh changes every recompute.
type Change struct {
	Key      string
	Mode     Mode
	Value    any
	Priority int
	Source   Source
}

// NewChange builds a change with the mode-derived default priority.
func NewChange(key string, mode Mode, value any) Change {
	return Change{
		Key:      key,
		Mode:     mode,
		Value:    value,
		Priority: mode.DefaultPriority(),
	}
}

// WithPriority returns a copy of the change with an explicit priority.
func (c Change) WithPriority(priority int) Change {
	c.Priority = priority
	return c
}

// WithSource returns a copy of the change attributed to a source.
func (c Change) WithSource(src Source) Change {
	c.Source = src
	return c
}
