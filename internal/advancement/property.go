package advancement

import (
	"github.com/greyhollow/sheet-api/internal/delta"
	"github.com/greyhollow/sheet-api/internal/entities"
	"github.com/greyhollow/sheet-api/internal/errors"
)

// Property contributes an author-configured list of field changes with no
// player state at all. It is how items push static modifiers into the
// computed sheet.
type Property struct {
	base
}

func configureProperty(cfg *entities.AdvancementConfig) error {
	if cfg.Property == nil {
		return errors.InvalidArgument("property configuration is missing")
	}
	if len(cfg.Property.Changes) == 0 {
		return errors.InvalidArgument("property lists no changes")
	}
	for i, spec := range cfg.Property.Changes {
		if spec.Key == "" {
			return errors.InvalidArgumentf("property change %d has no key", i)
		}
		if _, err := delta.ParseMode(spec.Mode); err != nil {
			return errors.Wrapf(err, "property change %d", i)
		}
	}
	return nil
}

// Levels implements Advancement: properties are baseline unless pinned to a
// level.
func (p *Property) Levels() []int {
	if p.cfg.Level.Value != nil {
		return []int{*p.cfg.Level.Value}
	}
	return []int{0}
}

// Changes implements Advancement.
func (p *Property) Changes(_ int) []delta.Change {
	specs := p.cfg.Property.Changes
	changes := make([]delta.Change, 0, len(specs))
	for _, spec := range specs {
		mode, err := delta.ParseMode(spec.Mode)
		if err != nil {
			// Rejected at configure time; an entry slipping through here
			// is skipped rather than poisoning the recompute.
			continue
		}
		change := delta.NewChange(spec.Key, mode, spec.Value).WithSource(p.source())
		if spec.Priority != nil {
			change = change.WithPriority(*spec.Priority)
		}
		changes = append(changes, change)
	}
	return changes
}
