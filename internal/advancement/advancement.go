// Package advancement implements the typed progression rules attached to
// items: applicability per level, persisted player choices, forward and
// backward application against a character, and the transient changes each
// rule contributes to the computed overlay.
package advancement

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/greyhollow/sheet-api/internal/content"
	"github.com/greyhollow/sheet-api/internal/delta"
	"github.com/greyhollow/sheet-api/internal/entities"
	"github.com/greyhollow/sheet-api/internal/errors"
	"github.com/greyhollow/sheet-api/internal/notifications"
	"github.com/greyhollow/sheet-api/internal/pkg/idgen"
	"github.com/greyhollow/sheet-api/internal/rules"
)

// Levels is the level tuple an advancement resolves against: the character's
// total level, the level within one class source, and that class source's
// identifier when relevant.
type Levels struct {
	Character  int
	Class      int
	Identifier string
}

// ApplyData carries the player's input into an Apply call. Variants read the
// subset matching their shape; automated backfill passes nil and relies on
// defaults.
type ApplyData struct {
	// HitPoints is "max", "avg", "roll", or an explicit rolled result as a
	// decimal string.
	HitPoints string
	// Ability is a chosen ability key.
	Ability string
	// Selected are chosen option keys (traits, sizes).
	Selected []string
	// References are chosen content references (features, equipment picks).
	References []string
	// Replace swaps one previously granted item for a new pick.
	Replace *ReplaceRequest
}

// ReplaceRequest names a granted item to remove and the reference replacing it.
type ReplaceRequest struct {
	OriginalItemID string
	Reference      string
}

// Options adjusts Apply/Reverse behavior.
type Options struct {
	// Initial marks automated backfill: use best-effort defaults instead
	// of requiring player input, and leave unconfigurable steps pending.
	Initial bool
	// Strict turns validation failures into errors instead of silent skips.
	Strict bool
}

// Advancement is one typed progression rule bound to an owning item.
// Implementations must keep Apply and Reverse exact structural inverses for
// the same level, and Changes free of side effects.
type Advancement interface {
	// ID is the advancement's stable identifier.
	ID() string
	// Type is the variant discriminant.
	Type() Type
	// Title is the display title.
	Title() string
	// SortKey orders advancements within a level bucket.
	SortKey() string
	// ClassIdentifier is the identifier of the class whose levels govern
	// this advancement, or "" when it binds to character levels.
	ClassIdentifier() string
	// Levels returns the levels at which this advancement has content.
	Levels() []int
	// RelevantLevel resolves the level tuple to this advancement's own
	// level. ok is false when the advancement does not apply; a true ok
	// with level 0 means baseline/always-on.
	RelevantLevel(levels Levels) (level int, ok bool)
	// ConfiguredForLevel reports whether every required choice at the
	// given level has been made.
	ConfiguredForLevel(level int) bool
	// Changes returns the deltas contributed to the overlay at the given
	// level. Pure; evaluated fresh every recompute.
	Changes(level int) []delta.Change
	// Apply persists the player's choice and/or creates granted items.
	Apply(ctx context.Context, level int, data *ApplyData, opts Options) error
	// Reverse undoes Apply for the same level. Calling it on state that
	// was never applied is a no-op.
	Reverse(ctx context.Context, level int, opts Options) error
	// PrepareWarnings pushes a warning into the sink when the level is
	// not fully configured.
	PrepareWarnings(level int, sink *notifications.Sink)
}

// Env bundles the collaborators advancements need at apply time. It is
// constructed once per process and passed in explicitly.
type Env struct {
	Content      content.Provider
	IDs          idgen.Generator
	Dice         dice.Roller
	Progressions rules.SpellProgressions
}

// Validate ensures required collaborators are provided and fills defaults.
func (e *Env) Validate() error {
	vb := errors.NewValidationBuilder()
	if e.Content == nil {
		vb.RequiredField("Content")
	}
	if e.IDs == nil {
		vb.RequiredField("IDs")
	}
	if err := vb.Build(); err != nil {
		return err
	}
	if e.Dice == nil {
		e.Dice = dice.DefaultRoller
	}
	if e.Progressions == nil {
		e.Progressions = rules.DefaultSpellProgressions()
	}
	return nil
}

// base carries the state shared by every variant and implements the parts of
// the contract with common behavior.
type base struct {
	char  *entities.CharacterData
	item  *entities.ItemData
	cfg   *entities.AdvancementConfig
	env   *Env
	order int

	// self is the built variant. Promoted methods never dispatch to the
	// variant's overrides, so base goes through self where an override
	// must win.
	self Advancement
}

// binder wires the built variant back into its embedded base.
type binder interface {
	bind(outer Advancement)
}

func (b *base) bind(outer Advancement) {
	b.self = outer
}

// ID implements Advancement.
func (b *base) ID() string {
	return b.cfg.ID
}

// Type implements Advancement.
func (b *base) Type() Type {
	return Type(b.cfg.Type)
}

// Title implements Advancement.
func (b *base) Title() string {
	if b.cfg.Title != "" {
		return b.cfg.Title
	}
	return defaultTitle(Type(b.cfg.Type))
}

// SortKey implements Advancement. The fixed type order is zero-padded so
// lexicographic comparison orders numerically first, then by title.
func (b *base) SortKey() string {
	return fmt.Sprintf("%04d%s", b.order, b.Title())
}

// ClassIdentifier implements Advancement: the owning item's own identifier
// for classes, the parent class for subclasses, else whatever the level
// config binds to.
func (b *base) ClassIdentifier() string {
	switch b.item.Type {
	case rules.ItemTypeClass:
		return b.item.Identifier
	case rules.ItemTypeSubclass:
		return b.item.ParentClass
	default:
		return b.cfg.Level.ClassIdentifier
	}
}

// Levels implements Advancement: single-level variants expose their one
// configured level. Multi-level variants override this.
func (b *base) Levels() []int {
	if b.cfg.Level.Value != nil {
		return []int{*b.cfg.Level.Value}
	}
	return nil
}

// RelevantLevel implements Advancement. Hot path: called for every
// advancement at every level of every recompute, so it must not allocate.
func (b *base) RelevantLevel(levels Levels) (int, bool) {
	if levels.Character == 0 || levels.Class == 0 {
		return 0, true
	}

	ident := b.ClassIdentifier()
	if ident == "" {
		return levels.Character, true
	}

	if restriction := b.cfg.Level.ClassRestriction; restriction != "" && b.char != nil {
		class := b.char.ClassByIdentifier(ident)
		original := class != nil && b.char.OriginalClass() == class
		if (restriction == entities.ClassRestrictionOriginal) != original {
			return 0, false
		}
	}

	if ident == levels.Identifier {
		return levels.Class, true
	}
	if levels.Identifier == "" {
		return levels.Character, true
	}
	return 0, false
}

// ConfiguredForLevel implements Advancement; variants with required choices
// override this.
func (b *base) ConfiguredForLevel(_ int) bool {
	return true
}

// Changes implements Advancement; variants contributing to the overlay
// override this.
func (b *base) Changes(_ int) []delta.Change {
	return nil
}

// Apply implements Advancement; variants with persisted state override this.
func (b *base) Apply(_ context.Context, _ int, _ *ApplyData, _ Options) error {
	return nil
}

// Reverse implements Advancement; variants with persisted state override this.
func (b *base) Reverse(_ context.Context, _ int, _ Options) error {
	return nil
}

// PrepareWarnings implements Advancement.
func (b *base) PrepareWarnings(level int, sink *notifications.Sink) {
	if b.configured(level) {
		return
	}
	sink.Set(b.warningKey(level), notifications.Notification{
		Category: "advancement",
		Section:  string(b.Type()),
		Level:    notifications.LevelWarning,
		Message:  fmt.Sprintf("%s (%s): choices pending at level %d", b.Title(), b.item.Name, level),
	})
}

// configured routes the check through the variant's override.
func (b *base) configured(level int) bool {
	if b.self != nil {
		return b.self.ConfiguredForLevel(level)
	}
	return b.ConfiguredForLevel(level)
}

func (b *base) warningKey(level int) string {
	return fmt.Sprintf("%s.%s.%d", b.item.ID, b.cfg.ID, level)
}

func (b *base) source() delta.Source {
	return delta.Source{
		ItemID:        b.item.ID,
		AdvancementID: b.cfg.ID,
		Title:         b.Title(),
	}
}

// value returns the persisted choice record, or nil when nothing was
// recorded yet.
func (b *base) value() *entities.ValueData {
	if b.char == nil {
		return nil
	}
	return b.char.Value(b.item.ID, b.cfg.ID)
}

// ensureValue returns the persisted choice record, creating it lazily on the
// first successful apply.
func (b *base) ensureValue() *entities.ValueData {
	return b.char.EnsureValue(b.item.ID, b.cfg.ID)
}

// clearValue drops the record once it holds no state.
func (b *base) clearValue() {
	if b.char != nil {
		b.char.ClearValue(b.item.ID, b.cfg.ID)
	}
}

// grantItems clones content templates onto the character and records them in
// the value's added map. Unresolvable references are logged and skipped so
// one dead reference never fails the rest of a grant.
func (b *base) grantItems(ctx context.Context, level int, refs []string) []*entities.ItemData {
	if len(refs) == 0 {
		return nil
	}
	v := b.ensureValue()
	granted := make([]*entities.ItemData, 0, len(refs))
	for _, ref := range refs {
		template, err := b.env.Content.ResolveByReference(ctx, ref)
		if err != nil {
			slog.Warn("skipping unresolvable content reference",
				"reference", ref,
				"advancement", b.cfg.ID,
				"item", b.item.ID,
				"error", err)
			continue
		}
		item := template.Clone(b.env.IDs.Generate())
		regenerateContentIDs(item, b.env.IDs)
		item.SourceRef = ref
		item.GrantedBy = &entities.GrantedBy{
			ItemID:        b.item.ID,
			AdvancementID: b.cfg.ID,
			Level:         level,
		}
		b.char.AddItem(item)
		v.RecordAdded(level, item.ID, ref)
		granted = append(granted, item)
	}
	return granted
}

// removeGranted deletes every item this advancement created at a level and
// clears the corresponding added record.
func (b *base) removeGranted(level int) {
	v := b.value()
	if v == nil {
		return
	}
	for id := range v.AddedAt(level) {
		b.char.RemoveItem(id)
	}
	v.ClearAdded(level)
}

// regenerateContentIDs gives container contents fresh IDs so two grants of
// the same template never collide.
func regenerateContentIDs(item *entities.ItemData, ids idgen.Generator) {
	for _, content := range item.Contents {
		content.ID = ids.Generate()
		regenerateContentIDs(content, ids)
	}
}
