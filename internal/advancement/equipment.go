package advancement

import (
	"context"

	"github.com/greyhollow/sheet-api/internal/entities"
	"github.com/greyhollow/sheet-api/internal/errors"
)

// Equipment grants starting gear from a tree of item entries: "and" nodes
// grant all children, "or" nodes grant the child the player picked. Container
// templates bring their contents along with fresh IDs.
type Equipment struct {
	base
}

func configureEquipment(cfg *entities.AdvancementConfig) error {
	if cfg.Equipment == nil {
		return errors.InvalidArgument("equipment configuration is missing")
	}
	if len(cfg.Equipment.Entries) == 0 {
		return errors.InvalidArgument("equipment lists no entries")
	}
	return validateEquipmentEntries(cfg.Equipment.Entries)
}

func validateEquipmentEntries(entries []*entities.EquipmentEntry) error {
	for _, entry := range entries {
		switch entry.Kind {
		case entities.EquipmentEntryItem:
			if entry.Reference == "" {
				return errors.InvalidArgument("equipment item entry has no reference")
			}
			if entry.Count < 0 {
				return errors.InvalidArgumentf("equipment entry %s has negative count", entry.Reference)
			}
		case entities.EquipmentEntryAnd, entities.EquipmentEntryOr:
			if len(entry.Children) == 0 {
				return errors.InvalidArgumentf("equipment %s group has no children", entry.Kind)
			}
			if err := validateEquipmentEntries(entry.Children); err != nil {
				return err
			}
		default:
			return errors.InvalidArgumentf("unknown equipment entry kind %q", entry.Kind)
		}
	}
	return nil
}

// Levels implements Advancement.
func (e *Equipment) Levels() []int {
	if e.cfg.Level.Value != nil {
		return []int{*e.cfg.Level.Value}
	}
	return []int{1}
}

// ConfiguredForLevel implements Advancement.
func (e *Equipment) ConfiguredForLevel(level int) bool {
	if v := e.value(); v != nil && len(v.AddedAt(level)) > 0 {
		return true
	}
	return !hasChoiceEntries(e.cfg.Equipment.Entries)
}

// Apply implements Advancement. Picks resolve "or" groups by matching any
// reference in a child's subtree; backfill without picks takes each group's
// first option. Re-applying a granted level is a no-op.
func (e *Equipment) Apply(ctx context.Context, level int, data *ApplyData, opts Options) error {
	if v := e.value(); v != nil && len(v.AddedAt(level)) > 0 {
		return nil
	}

	var picks []string
	if data != nil {
		picks = data.References
	}
	refs, err := resolveEquipmentEntries(e.cfg.Equipment.Entries, picks, opts)
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		return nil
	}
	e.grantItems(ctx, level, refs)
	return nil
}

// Reverse implements Advancement.
func (e *Equipment) Reverse(_ context.Context, level int, _ Options) error {
	e.removeGranted(level)
	e.clearValue()
	return nil
}

// resolveEquipmentEntries flattens the entry tree into the references to
// grant. An unresolved "or" group is a pending choice: an error under Strict,
// the first option under Initial, skipped otherwise.
func resolveEquipmentEntries(entries []*entities.EquipmentEntry, picks []string, opts Options) ([]string, error) {
	var refs []string
	for _, entry := range entries {
		switch entry.Kind {
		case entities.EquipmentEntryItem:
			count := entry.Count
			if count == 0 {
				count = 1
			}
			for i := 0; i < count; i++ {
				refs = append(refs, entry.Reference)
			}
		case entities.EquipmentEntryAnd:
			child, err := resolveEquipmentEntries(entry.Children, picks, opts)
			if err != nil {
				return nil, err
			}
			refs = append(refs, child...)
		case entities.EquipmentEntryOr:
			chosen := chooseEquipmentOption(entry.Children, picks)
			if chosen == nil {
				if opts.Strict {
					return nil, errors.FailedPrecondition("equipment choice required")
				}
				if !opts.Initial {
					continue
				}
				chosen = entry.Children[0]
			}
			child, err := resolveEquipmentEntries([]*entities.EquipmentEntry{chosen}, picks, opts)
			if err != nil {
				return nil, err
			}
			refs = append(refs, child...)
		}
	}
	return refs, nil
}

// chooseEquipmentOption returns the first child whose subtree contains any of
// the picked references, or nil when no pick matches.
func chooseEquipmentOption(children []*entities.EquipmentEntry, picks []string) *entities.EquipmentEntry {
	if len(picks) == 0 {
		return nil
	}
	for _, child := range children {
		if subtreeContainsReference(child, picks) {
			return child
		}
	}
	return nil
}

func subtreeContainsReference(entry *entities.EquipmentEntry, picks []string) bool {
	if entry.Kind == entities.EquipmentEntryItem {
		return containsString(picks, entry.Reference)
	}
	for _, child := range entry.Children {
		if subtreeContainsReference(child, picks) {
			return true
		}
	}
	return false
}

func hasChoiceEntries(entries []*entities.EquipmentEntry) bool {
	for _, entry := range entries {
		if entry.Kind == entities.EquipmentEntryOr {
			return true
		}
		if hasChoiceEntries(entry.Children) {
			return true
		}
	}
	return false
}
