// Package progression implements the apply/reverse orchestrator: every
// mutation of a character's advancement state runs through a per-character
// serialized queue so two overlapping operations can never read stale choice
// data and clobber each other's writes.
package progression

//go:generate mockgen -destination=mock/mock_service.go -package=progressionmock github.com/greyhollow/sheet-api/internal/orchestrators/progression Service

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/greyhollow/sheet-api/internal/advancement"
	"github.com/greyhollow/sheet-api/internal/entities"
	"github.com/greyhollow/sheet-api/internal/errors"
	"github.com/greyhollow/sheet-api/internal/repositories/character"
	"github.com/greyhollow/sheet-api/internal/rules"
	"github.com/greyhollow/sheet-api/internal/sheet"
)

// Service defines the progression operations. Calls for the same character
// are executed strictly in submission order; calls for different characters
// run independently.
type Service interface {
	AddItem(ctx context.Context, input *AddItemInput) (*AddItemOutput, error)
	RemoveItem(ctx context.Context, input *RemoveItemInput) (*RemoveItemOutput, error)
	LevelUp(ctx context.Context, input *LevelUpInput) (*LevelUpOutput, error)
	LevelDown(ctx context.Context, input *LevelDownInput) (*LevelDownOutput, error)
	ApplyAdvancement(ctx context.Context, input *ApplyAdvancementInput) (*ApplyAdvancementOutput, error)
	ReverseAdvancement(ctx context.Context, input *ReverseAdvancementInput) (*ReverseAdvancementOutput, error)
}

// Config holds the dependencies for the progression orchestrator.
type Config struct {
	CharacterRepo character.Repository
	Preparer      *sheet.Preparer
	Env           *advancement.Env
}

// Validate ensures all required dependencies are provided.
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.CharacterRepo == nil {
		vb.RequiredField("CharacterRepo")
	}
	if c.Preparer == nil {
		vb.RequiredField("Preparer")
	}
	if c.Env == nil {
		vb.RequiredField("Env")
	}

	return vb.Build()
}

type task struct {
	ctx  context.Context
	fn   func(ctx context.Context) error
	done chan error
}

// mailbox is the pending task queue for one character. Both the queue slice
// and the running flag are guarded by the orchestrator mutex.
type mailbox struct {
	tasks   []*task
	running bool
}

type orchestrator struct {
	characterRepo character.Repository
	preparer      *sheet.Preparer
	env           *advancement.Env

	mu     sync.Mutex
	queues map[string]*mailbox
}

// NewOrchestrator creates a new progression orchestrator with the provided
// dependencies.
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &orchestrator{
		characterRepo: cfg.CharacterRepo,
		preparer:      cfg.Preparer,
		env:           cfg.Env,
		queues:        make(map[string]*mailbox),
	}, nil
}

// submit appends a task to the character's mailbox, starting a drainer
// goroutine when none is running, and waits for the task's result. Tasks are
// executed one at a time in submission order; the mailbox is reaped as soon
// as it drains empty. A caller that gives up waiting does not cancel the
// task: operations are never interrupted mid-flight, compensating reverses
// are issued instead.
func (o *orchestrator) submit(ctx context.Context, characterID string, fn func(ctx context.Context) error) error {
	t := &task{
		ctx:  context.WithoutCancel(ctx),
		fn:   fn,
		done: make(chan error, 1),
	}

	o.mu.Lock()
	mb := o.queues[characterID]
	if mb == nil {
		mb = &mailbox{}
		o.queues[characterID] = mb
	}
	mb.tasks = append(mb.tasks, t)
	start := !mb.running
	if start {
		mb.running = true
	}
	o.mu.Unlock()

	if start {
		go o.drain(characterID, mb)
	}

	select {
	case err := <-t.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *orchestrator) drain(characterID string, mb *mailbox) {
	for {
		o.mu.Lock()
		if len(mb.tasks) == 0 {
			mb.running = false
			delete(o.queues, characterID)
			o.mu.Unlock()
			return
		}
		t := mb.tasks[0]
		mb.tasks = mb.tasks[1:]
		o.mu.Unlock()

		t.done <- t.fn(t.ctx)
	}
}

// AddItem persists a new item on the character, then backfills every one of
// its advancements already reached under the character's current levels,
// level by level with automated defaults.
func (o *orchestrator) AddItem(ctx context.Context, input *AddItemInput) (*AddItemOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument("character ID is required")
	}
	if input.Item == nil || input.Item.ID == "" {
		return nil, errors.InvalidArgument("item with an ID is required")
	}

	var out *AddItemOutput
	err := o.submit(ctx, input.CharacterID, func(ctx context.Context) error {
		getOutput, err := o.characterRepo.Get(ctx, character.GetInput{ID: input.CharacterID})
		if err != nil {
			return errors.Wrap(err, "failed to load character")
		}

		// Reject invalid advancement configuration before anything is
		// persisted.
		if _, err := advancement.NewCollection(getOutput.CharacterData, input.Item, o.env); err != nil {
			return err
		}

		addOutput, err := o.characterRepo.AddItems(ctx, character.AddItemsInput{
			CharacterID: input.CharacterID,
			Items:       []*entities.ItemData{input.Item},
		})
		if err != nil {
			return errors.Wrap(err, "failed to add item")
		}

		char := addOutput.CharacterData
		item := char.Item(input.Item.ID)

		sh, err := o.backfill(ctx, char, item)
		if err != nil {
			return err
		}
		if sh == nil {
			if sh, err = o.preparer.Prepare(ctx, char); err != nil {
				return errors.Wrap(err, "recompute failed")
			}
		}

		slog.Info("item added",
			"character_id", char.ID,
			"item_id", item.ID,
			"item_type", item.Type,
		)
		out = &AddItemOutput{Character: char, Item: item, Sheet: sh}
		return nil
	})
	return out, err
}

// RemoveItem reverses every applied advancement on the item in strict reverse
// order, sweeps anything the item granted, then removes the item itself.
func (o *orchestrator) RemoveItem(ctx context.Context, input *RemoveItemInput) (*RemoveItemOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument("character ID is required")
	}
	if input.ItemID == "" {
		return nil, errors.InvalidArgument("item ID is required")
	}

	var out *RemoveItemOutput
	err := o.submit(ctx, input.CharacterID, func(ctx context.Context) error {
		getOutput, err := o.characterRepo.Get(ctx, character.GetInput{ID: input.CharacterID})
		if err != nil {
			return errors.Wrap(err, "failed to load character")
		}
		char := getOutput.CharacterData
		item := char.Item(input.ItemID)
		if item == nil {
			return errors.NotFoundf("character %s does not hold item %s", input.CharacterID, input.ItemID)
		}

		if len(item.Advancements) > 0 {
			coll, err := advancement.NewCollection(char, item, o.env)
			if err != nil {
				return err
			}
			for level := coll.MaxLevel(); level >= 1; level-- {
				advs := coll.ByLevel(level)
				reversed := false
				for i := len(advs) - 1; i >= 0; i-- {
					if err := advs[i].Reverse(ctx, level, advancement.Options{}); err != nil {
						return errors.Wrapf(err, "failed to reverse %s at level %d", advs[i].ID(), level)
					}
					reversed = true
				}
				if !reversed {
					continue
				}
				if _, err := o.persist(ctx, char); err != nil {
					return err
				}
			}
		}

		// Sweep stragglers: granted sub-items and orphaned choice records
		// survive only if a reverse was skipped midway.
		o.sweepGranted(char, item.ID)
		if _, err := o.persist(ctx, char); err != nil {
			return err
		}

		removeOutput, err := o.characterRepo.RemoveItems(ctx, character.RemoveItemsInput{
			CharacterID: input.CharacterID,
			ItemIDs:     []string{item.ID},
		})
		if err != nil {
			return errors.Wrap(err, "failed to remove item")
		}
		char = removeOutput.CharacterData

		sh, err := o.preparer.Prepare(ctx, char)
		if err != nil {
			return errors.Wrap(err, "recompute failed")
		}

		slog.Info("item removed",
			"character_id", char.ID,
			"item_id", input.ItemID,
		)
		out = &RemoveItemOutput{Character: char, Sheet: sh}
		return nil
	})
	return out, err
}

// LevelUp raises a class item by one level and applies every advancement the
// new level unlocks, across the class, its subclass, and character-bound
// items. Each apply is persisted and recomputed before the next starts.
func (o *orchestrator) LevelUp(ctx context.Context, input *LevelUpInput) (*LevelUpOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument("character ID is required")
	}
	if input.ClassItemID == "" {
		return nil, errors.InvalidArgument("class item ID is required")
	}

	var out *LevelUpOutput
	err := o.submit(ctx, input.CharacterID, func(ctx context.Context) error {
		char, class, err := o.loadClass(ctx, input.CharacterID, input.ClassItemID)
		if err != nil {
			return err
		}
		if class.Levels >= rules.MaxLevel {
			return errors.OutOfRangef("class %s is already at level %d", class.Identifier, rules.MaxLevel)
		}

		class.Levels++
		sh, err := o.persist(ctx, char)
		if err != nil {
			return err
		}

		tuple := advancement.Levels{
			Character:  char.Level(),
			Class:      class.Levels,
			Identifier: class.Identifier,
		}
		items := make([]*entities.ItemData, len(char.Items))
		copy(items, char.Items)
		for _, item := range items {
			if len(item.Advancements) == 0 {
				continue
			}
			coll, err := advancement.NewCollection(char, item, o.env)
			if err != nil {
				return err
			}
			for _, adv := range coll.ForLevel(tuple) {
				level, _ := adv.RelevantLevel(tuple)
				data := input.Data[adv.ID()]
				opts := advancement.Options{Initial: data == nil, Strict: data != nil}
				if err := adv.Apply(ctx, level, data, opts); err != nil {
					return errors.Wrapf(err, "failed to apply %s at level %d", adv.ID(), level)
				}
				if sh, err = o.persist(ctx, char); err != nil {
					return err
				}
			}
		}

		slog.Info("level up",
			"character_id", char.ID,
			"class", class.Identifier,
			"class_level", class.Levels,
			"character_level", char.Level(),
		)
		out = &LevelUpOutput{Character: char, Sheet: sh}
		return nil
	})
	return out, err
}

// LevelDown reverses the advancements at the class item's current level in
// strict reverse order, then lowers the level.
func (o *orchestrator) LevelDown(ctx context.Context, input *LevelDownInput) (*LevelDownOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument("character ID is required")
	}
	if input.ClassItemID == "" {
		return nil, errors.InvalidArgument("class item ID is required")
	}

	var out *LevelDownOutput
	err := o.submit(ctx, input.CharacterID, func(ctx context.Context) error {
		char, class, err := o.loadClass(ctx, input.CharacterID, input.ClassItemID)
		if err != nil {
			return err
		}
		if class.Levels <= 1 {
			return errors.FailedPreconditionf("class %s is at level 1; remove the class item instead", class.Identifier)
		}

		tuple := advancement.Levels{
			Character:  char.Level(),
			Class:      class.Levels,
			Identifier: class.Identifier,
		}
		items := make([]*entities.ItemData, len(char.Items))
		copy(items, char.Items)
		for i := len(items) - 1; i >= 0; i-- {
			item := items[i]
			if len(item.Advancements) == 0 || char.Item(item.ID) == nil {
				continue
			}
			coll, err := advancement.NewCollection(char, item, o.env)
			if err != nil {
				return err
			}
			advs := coll.ForLevel(tuple)
			for j := len(advs) - 1; j >= 0; j-- {
				adv := advs[j]
				level, _ := adv.RelevantLevel(tuple)
				if err := adv.Reverse(ctx, level, advancement.Options{}); err != nil {
					return errors.Wrapf(err, "failed to reverse %s at level %d", adv.ID(), level)
				}
				if _, err := o.persist(ctx, char); err != nil {
					return err
				}
			}
		}

		class.Levels--
		sh, err := o.persist(ctx, char)
		if err != nil {
			return err
		}

		slog.Info("level down",
			"character_id", char.ID,
			"class", class.Identifier,
			"class_level", class.Levels,
			"character_level", char.Level(),
		)
		out = &LevelDownOutput{Character: char, Sheet: sh}
		return nil
	})
	return out, err
}

// ApplyAdvancement applies one advancement at one level with the player's
// explicit choices, validating strictly.
func (o *orchestrator) ApplyAdvancement(ctx context.Context, input *ApplyAdvancementInput) (*ApplyAdvancementOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument("character ID is required")
	}

	var out *ApplyAdvancementOutput
	err := o.submit(ctx, input.CharacterID, func(ctx context.Context) error {
		char, adv, err := o.loadAdvancement(ctx, input.CharacterID, input.ItemID, input.AdvancementID, input.Level)
		if err != nil {
			return err
		}
		if input.Level > reachedLevel(char, adv) {
			return errors.FailedPreconditionf("level %d is not reached for advancement %s", input.Level, input.AdvancementID)
		}

		if err := adv.Apply(ctx, input.Level, input.Data, advancement.Options{Strict: true}); err != nil {
			return err
		}
		sh, err := o.persist(ctx, char)
		if err != nil {
			return err
		}

		out = &ApplyAdvancementOutput{Character: char, Sheet: sh}
		return nil
	})
	return out, err
}

// ReverseAdvancement undoes one advancement at one level.
func (o *orchestrator) ReverseAdvancement(ctx context.Context, input *ReverseAdvancementInput) (*ReverseAdvancementOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument("character ID is required")
	}

	var out *ReverseAdvancementOutput
	err := o.submit(ctx, input.CharacterID, func(ctx context.Context) error {
		char, adv, err := o.loadAdvancement(ctx, input.CharacterID, input.ItemID, input.AdvancementID, input.Level)
		if err != nil {
			return err
		}

		if err := adv.Reverse(ctx, input.Level, advancement.Options{Strict: true}); err != nil {
			return err
		}
		sh, err := o.persist(ctx, char)
		if err != nil {
			return err
		}

		out = &ReverseAdvancementOutput{Character: char, Sheet: sh}
		return nil
	})
	return out, err
}

// backfill applies every advancement on a freshly added item up to the levels
// the character has already reached, one level batch per persisted step. The
// returned sheet is the last recompute, or nil when nothing applied.
func (o *orchestrator) backfill(ctx context.Context, char *entities.CharacterData, item *entities.ItemData) (*sheet.Sheet, error) {
	if item == nil || len(item.Advancements) == 0 {
		return nil, nil
	}
	coll, err := advancement.NewCollection(char, item, o.env)
	if err != nil {
		return nil, err
	}

	var last *sheet.Sheet
	for level := 1; level <= coll.MaxLevel(); level++ {
		applied := false
		for _, adv := range coll.ByLevel(level) {
			if level > reachedLevel(char, adv) {
				continue
			}
			if err := adv.Apply(ctx, level, nil, advancement.Options{Initial: true}); err != nil {
				return last, errors.Wrapf(err, "failed to apply %s at level %d", adv.ID(), level)
			}
			applied = true
		}
		if !applied {
			continue
		}
		if last, err = o.persist(ctx, char); err != nil {
			return last, err
		}
	}
	return last, nil
}

// persist writes the mutated character back and recomputes the sheet so the
// next step observes fresh state.
func (o *orchestrator) persist(ctx context.Context, char *entities.CharacterData) (*sheet.Sheet, error) {
	updateOutput, err := o.characterRepo.Update(ctx, character.UpdateInput{CharacterData: char})
	if err != nil {
		return nil, errors.Wrap(err, "failed to persist character")
	}
	sh, err := o.preparer.Prepare(ctx, updateOutput.CharacterData)
	if err != nil {
		return nil, errors.Wrap(err, "recompute failed")
	}
	return sh, nil
}

func (o *orchestrator) loadClass(ctx context.Context, characterID, classItemID string) (*entities.CharacterData, *entities.ItemData, error) {
	getOutput, err := o.characterRepo.Get(ctx, character.GetInput{ID: characterID})
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load character")
	}
	char := getOutput.CharacterData
	class := char.Item(classItemID)
	if class == nil {
		return nil, nil, errors.NotFoundf("character %s does not hold item %s", characterID, classItemID)
	}
	if class.Type != rules.ItemTypeClass {
		return nil, nil, errors.InvalidArgumentf("item %s is a %s, not a class", classItemID, class.Type)
	}
	return char, class, nil
}

func (o *orchestrator) loadAdvancement(ctx context.Context, characterID, itemID, advancementID string, level int) (*entities.CharacterData, advancement.Advancement, error) {
	if itemID == "" {
		return nil, nil, errors.InvalidArgument("item ID is required")
	}
	if advancementID == "" {
		return nil, nil, errors.InvalidArgument("advancement ID is required")
	}

	getOutput, err := o.characterRepo.Get(ctx, character.GetInput{ID: characterID})
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load character")
	}
	char := getOutput.CharacterData
	item := char.Item(itemID)
	if item == nil {
		return nil, nil, errors.NotFoundf("character %s does not hold item %s", characterID, itemID)
	}
	coll, err := advancement.NewCollection(char, item, o.env)
	if err != nil {
		return nil, nil, err
	}
	adv := coll.Get(advancementID)
	if adv == nil {
		return nil, nil, errors.NotFoundf("item %s has no advancement %s", itemID, advancementID)
	}
	if !hasLevel(adv, level) {
		return nil, nil, errors.InvalidArgumentf("advancement %s has no content at level %d", advancementID, level)
	}
	return char, adv, nil
}

// sweepGranted drops items granted by the given item's advancements and any
// orphaned choice records keyed under it.
func (o *orchestrator) sweepGranted(char *entities.CharacterData, itemID string) {
	held := make([]*entities.ItemData, len(char.Items))
	copy(held, char.Items)
	for _, item := range held {
		if item.GrantedBy != nil && item.GrantedBy.ItemID == itemID {
			char.RemoveItem(item.ID)
		}
	}
	prefix := itemID + "."
	for key := range char.AdvancementValues {
		if strings.HasPrefix(key, prefix) {
			delete(char.AdvancementValues, key)
		}
	}
}

// reachedLevel is the highest level the advancement has reached under the
// character's current class composition.
func reachedLevel(char *entities.CharacterData, adv advancement.Advancement) int {
	charLevel := char.Level()
	classes := char.Classes()
	if len(classes) == 0 {
		level, ok := adv.RelevantLevel(advancement.Levels{Character: charLevel, Class: charLevel})
		if !ok {
			return 0
		}
		return level
	}

	best := 0
	for _, class := range classes {
		level, ok := adv.RelevantLevel(advancement.Levels{
			Character:  charLevel,
			Class:      class.Levels,
			Identifier: class.Identifier,
		})
		if ok && level > best {
			best = level
		}
	}
	return best
}

func hasLevel(adv advancement.Advancement, level int) bool {
	for _, l := range adv.Levels() {
		if l == level {
			return true
		}
	}
	return false
}
