package advancement

import (
	"context"
	"sort"

	"github.com/greyhollow/sheet-api/internal/entities"
	"github.com/greyhollow/sheet-api/internal/errors"
)

// GrantFeatures unconditionally grants a fixed list of content references when
// its level is reached.
type GrantFeatures struct {
	base
}

func configureGrantFeatures(cfg *entities.AdvancementConfig) error {
	if cfg.GrantFeatures == nil {
		return errors.InvalidArgument("grant features configuration is missing")
	}
	if len(cfg.GrantFeatures.Items) == 0 {
		return errors.InvalidArgument("grant features lists no items")
	}
	if cfg.Level.Value == nil {
		return errors.InvalidArgument("grant features requires a level")
	}
	return nil
}

// Apply implements Advancement. Re-applying a level that already granted is a
// no-op so backfill and explicit apply can overlap safely.
func (g *GrantFeatures) Apply(ctx context.Context, level int, _ *ApplyData, _ Options) error {
	if v := g.value(); v != nil && len(v.AddedAt(level)) > 0 {
		return nil
	}
	g.grantItems(ctx, level, g.cfg.GrantFeatures.Items)
	return nil
}

// Reverse implements Advancement.
func (g *GrantFeatures) Reverse(_ context.Context, level int, _ Options) error {
	g.removeGranted(level)
	g.clearValue()
	return nil
}

// ChooseFeatures grants player-picked content references, a configured number
// of picks per level, optionally allowing a later level to replace an earlier
// pick.
type ChooseFeatures struct {
	base
}

func configureChooseFeatures(cfg *entities.AdvancementConfig) error {
	if cfg.ChooseFeatures == nil {
		return errors.InvalidArgument("choose features configuration is missing")
	}
	if len(cfg.ChooseFeatures.Choices) == 0 {
		return errors.InvalidArgument("choose features has no choice levels")
	}
	for level, count := range cfg.ChooseFeatures.Choices {
		if level < 1 || count < 1 {
			return errors.InvalidArgumentf("invalid choice count %d at level %d", count, level)
		}
	}
	return nil
}

// Levels implements Advancement: the levels the choice map names.
func (cf *ChooseFeatures) Levels() []int {
	levels := make([]int, 0, len(cf.cfg.ChooseFeatures.Choices))
	for level := range cf.cfg.ChooseFeatures.Choices {
		levels = append(levels, level)
	}
	sort.Ints(levels)
	return levels
}

// ConfiguredForLevel implements Advancement: every pick the level allows has
// been made.
func (cf *ChooseFeatures) ConfiguredForLevel(level int) bool {
	allowed, ok := cf.cfg.ChooseFeatures.Choices[level]
	if !ok {
		return true
	}
	return cf.taken(level) >= allowed
}

// taken counts the level's spent allowance: its own grants plus a replacement
// made at it, whose grant lands at the original pick's level.
func (cf *ChooseFeatures) taken(level int) int {
	v := cf.value()
	n := len(v.AddedAt(level))
	if v != nil {
		if _, ok := v.Replaced[level]; ok {
			n++
		}
	}
	return n
}

// Apply implements Advancement.
func (cf *ChooseFeatures) Apply(ctx context.Context, level int, data *ApplyData, opts Options) error {
	cfg := cf.cfg.ChooseFeatures
	allowed, ok := cfg.Choices[level]
	if !ok {
		return errors.InvalidArgumentf("no choices are configured at level %d", level)
	}

	if data != nil && data.Replace != nil {
		if err := cf.replace(ctx, level, data.Replace, opts); err != nil {
			return err
		}
	}

	if data == nil || len(data.References) == 0 {
		if opts.Strict && !cf.ConfiguredForLevel(level) {
			return errors.FailedPrecondition("feature choices required")
		}
		return nil
	}

	taken := cf.taken(level)
	if taken+len(data.References) > allowed {
		return errors.InvalidArgumentf(
			"level %d allows %d choices, %d already taken", level, allowed, taken)
	}
	for _, ref := range data.References {
		if cf.alreadyChosen(ref) {
			return errors.InvalidArgumentf("%s is already chosen", ref)
		}
		ok, err := cf.validChoice(ctx, ref, opts)
		if err != nil {
			return err
		}
		if !ok {
			return errors.InvalidArgumentf("%s is not a valid choice", ref)
		}
	}
	cf.grantItems(ctx, level, data.References)
	return nil
}

// replace swaps a pick granted at an earlier level for a new reference. The
// replacement lands at the original pick's level so later recomputes still see
// it, and the swap record lets reversal restore the original.
func (cf *ChooseFeatures) replace(ctx context.Context, level int, req *ReplaceRequest, opts Options) error {
	cfg := cf.cfg.ChooseFeatures
	if !cfg.AllowReplacements {
		return errors.FailedPrecondition("this feature choice does not allow replacements")
	}
	v := cf.value()
	originalLevel, originalRef := cf.findGranted(req.OriginalItemID)
	if originalRef == "" {
		return errors.NotFoundf("item %s was not granted by this advancement", req.OriginalItemID)
	}
	if originalLevel >= level {
		return errors.InvalidArgument("replacements must target a pick from an earlier level")
	}
	if _, exists := v.Replaced[level]; exists {
		return errors.FailedPrecondition("a replacement was already made at this level")
	}
	ok, err := cf.validChoice(ctx, req.Reference, opts)
	if err != nil {
		return err
	}
	if !ok {
		return errors.InvalidArgumentf("%s is not a valid choice", req.Reference)
	}

	cf.char.RemoveItem(req.OriginalItemID)
	delete(v.Added[originalLevel], req.OriginalItemID)
	if len(v.Added[originalLevel]) == 0 {
		v.ClearAdded(originalLevel)
	}
	if v.Replaced == nil {
		v.Replaced = make(map[int]*entities.ReplacedEntry)
	}
	v.Replaced[level] = &entities.ReplacedEntry{
		Reference:   originalRef,
		Level:       originalLevel,
		Replacement: req.Reference,
	}
	cf.grantItems(ctx, originalLevel, []string{req.Reference})
	return nil
}

// Reverse implements Advancement: removes the level's own picks and, when the
// level replaced an earlier pick, restores the original.
func (cf *ChooseFeatures) Reverse(ctx context.Context, level int, _ Options) error {
	v := cf.value()
	if v == nil {
		return nil
	}
	cf.removeGranted(level)
	if entry, ok := v.Replaced[level]; ok {
		// The replacement sits at the original's level; swap exactly it
		// back out, leaving sibling picks made there untouched.
		for id, ref := range v.AddedAt(entry.Level) {
			if ref == entry.Replacement {
				cf.char.RemoveItem(id)
				delete(v.Added[entry.Level], id)
			}
		}
		if len(v.Added[entry.Level]) == 0 {
			v.ClearAdded(entry.Level)
		}
		cf.grantItems(ctx, entry.Level, []string{entry.Reference})
		delete(v.Replaced, level)
		if len(v.Replaced) == 0 {
			v.Replaced = nil
		}
	}
	cf.clearValue()
	return nil
}

// validChoice reports whether a reference may be picked: pool membership when
// a pool is configured, otherwise resolution plus type/category restriction.
// Resolution failures are errors under Strict, a quiet false otherwise.
func (cf *ChooseFeatures) validChoice(ctx context.Context, ref string, opts Options) (bool, error) {
	cfg := cf.cfg.ChooseFeatures
	if len(cfg.Pool) > 0 {
		return containsString(cfg.Pool, ref), nil
	}
	template, err := cf.env.Content.ResolveByReference(ctx, ref)
	if err != nil {
		if opts.Strict {
			return false, errors.Wrapf(err, "failed to resolve choice %s", ref)
		}
		return false, nil
	}
	if cfg.ItemType != "" && template.Type != cfg.ItemType {
		return false, nil
	}
	if cfg.Category != "" && template.Category != cfg.Category {
		return false, nil
	}
	return true, nil
}

// alreadyChosen reports whether any level of this advancement already granted
// the reference.
func (cf *ChooseFeatures) alreadyChosen(ref string) bool {
	v := cf.value()
	if v == nil {
		return false
	}
	for _, added := range v.Added {
		for _, existing := range added {
			if existing == ref {
				return true
			}
		}
	}
	return false
}

// findGranted locates a granted item by ID across all levels of this
// advancement, returning its level and original reference.
func (cf *ChooseFeatures) findGranted(itemID string) (int, string) {
	v := cf.value()
	if v == nil {
		return 0, ""
	}
	for level, added := range v.Added {
		if ref, ok := added[itemID]; ok {
			return level, ref
		}
	}
	return 0, ""
}
