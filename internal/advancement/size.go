package advancement

import (
	"context"

	"github.com/greyhollow/sheet-api/internal/delta"
	"github.com/greyhollow/sheet-api/internal/entities"
	"github.com/greyhollow/sheet-api/internal/errors"
	"github.com/greyhollow/sheet-api/internal/rules"
)

// Size sets the character's creature size from a lineage, either fixed or as
// a player choice among the configured options.
type Size struct {
	base
}

func configureSize(cfg *entities.AdvancementConfig) error {
	if cfg.Size == nil {
		return errors.InvalidArgument("size configuration is missing")
	}
	if len(cfg.Size.Sizes) == 0 {
		return errors.InvalidArgument("size offers no options")
	}
	for _, size := range cfg.Size.Sizes {
		if !rules.IsSize(size) {
			return errors.InvalidArgumentf("unknown size %q", size)
		}
	}
	return nil
}

// Levels implements Advancement: lineage traits apply from the start.
func (s *Size) Levels() []int {
	if s.cfg.Level.Value != nil {
		return []int{*s.cfg.Level.Value}
	}
	return []int{1}
}

// ConfiguredForLevel implements Advancement.
func (s *Size) ConfiguredForLevel(_ int) bool {
	return s.chosen() != ""
}

// Apply implements Advancement. A single-option configuration self-selects.
func (s *Size) Apply(_ context.Context, level int, data *ApplyData, opts Options) error {
	choice := ""
	if data != nil && len(data.Selected) > 0 {
		choice = data.Selected[0]
	}
	if choice == "" && len(s.cfg.Size.Sizes) == 1 {
		choice = s.cfg.Size.Sizes[0]
	}
	if choice == "" {
		if opts.Strict {
			return errors.FailedPrecondition("size choice required")
		}
		return nil
	}
	if !containsString(s.cfg.Size.Sizes, choice) {
		return errors.InvalidArgumentf("%s is not an offered size", choice)
	}
	v := s.ensureValue()
	if v.Selected == nil {
		v.Selected = make(map[int][]string)
	}
	v.Selected[level] = []string{choice}
	return nil
}

// Reverse implements Advancement.
func (s *Size) Reverse(_ context.Context, level int, _ Options) error {
	v := s.value()
	if v == nil {
		return nil
	}
	delete(v.Selected, level)
	if len(v.Selected) == 0 {
		v.Selected = nil
	}
	s.clearValue()
	return nil
}

// Changes implements Advancement.
func (s *Size) Changes(_ int) []delta.Change {
	choice := s.chosen()
	if choice == "" {
		return nil
	}
	return []delta.Change{
		delta.NewChange("details.size", delta.ModeOverride, choice).WithSource(s.source()),
	}
}

func (s *Size) chosen() string {
	v := s.value()
	if v == nil {
		return ""
	}
	for _, selected := range v.Selected {
		if len(selected) > 0 {
			return selected[0]
		}
	}
	if len(s.cfg.Size.Sizes) == 1 {
		return s.cfg.Size.Sizes[0]
	}
	return ""
}
