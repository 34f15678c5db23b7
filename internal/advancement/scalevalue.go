package advancement

import (
	"sort"

	"github.com/greyhollow/sheet-api/internal/delta"
	"github.com/greyhollow/sheet-api/internal/entities"
	"github.com/greyhollow/sheet-api/internal/errors"
)

// ScaleValue contributes a purely configuration-driven value that steps up
// at sparse levels, e.g. a damage die that grows every few class levels. It
// has no player state; the highest configured entry at or below the current
// level wins.
type ScaleValue struct {
	base
}

func configureScaleValue(cfg *entities.AdvancementConfig) error {
	if cfg.ScaleValue == nil {
		return errors.InvalidArgument("scale value configuration is missing")
	}
	if cfg.ScaleValue.Identifier == "" {
		return errors.InvalidArgument("scale value has no identifier")
	}
	if len(cfg.ScaleValue.Values) == 0 {
		return errors.InvalidArgument("scale value defines no entries")
	}
	for level := range cfg.ScaleValue.Values {
		if level < 1 {
			return errors.InvalidArgumentf("scale value entry at invalid level %d", level)
		}
	}
	return nil
}

// Levels implements Advancement: every configured step level.
func (s *ScaleValue) Levels() []int {
	levels := make([]int, 0, len(s.cfg.ScaleValue.Values))
	for level := range s.cfg.ScaleValue.Values {
		levels = append(levels, level)
	}
	sort.Ints(levels)
	return levels
}

// ValueForLevel returns the configured value in force at a level: the entry
// with the highest key at or below it. ok is false below the first entry.
func (s *ScaleValue) ValueForLevel(level int) (string, bool) {
	best := 0
	found := false
	for entryLevel := range s.cfg.ScaleValue.Values {
		if entryLevel <= level && entryLevel >= best {
			best = entryLevel
			found = true
		}
	}
	if !found {
		return "", false
	}
	return s.cfg.ScaleValue.Values[best], true
}

// Key returns the overlay field path this scale publishes under.
func (s *ScaleValue) Key() string {
	owner := s.item.Identifier
	if owner == "" {
		owner = s.item.ID
	}
	return "scale." + owner + "." + s.cfg.ScaleValue.Identifier
}

// Changes implements Advancement: one override per step, so walking levels
// in order leaves the value for the highest reached step in the overlay.
func (s *ScaleValue) Changes(level int) []delta.Change {
	value, ok := s.ValueForLevel(level)
	if !ok {
		return nil
	}
	return []delta.Change{
		delta.NewChange(s.Key(), delta.ModeOverride, value).WithSource(s.source()),
	}
}
