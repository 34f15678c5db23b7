package sheet

import (
	"context"
	"log/slog"

	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/greyhollow/sheet-api/internal/advancement"
	"github.com/greyhollow/sheet-api/internal/entities"
	"github.com/greyhollow/sheet-api/internal/errors"
	"github.com/greyhollow/sheet-api/internal/notifications"
	"github.com/greyhollow/sheet-api/internal/overlay"
	"github.com/greyhollow/sheet-api/internal/rules"
)

// EventCharacterRecomputed is published after every successful preparation.
const EventCharacterRecomputed = "character.recomputed"

// Sheet is one prepared view over a character: the overlay output, derived
// hit points, per-item advancement collections, and pending-choice warnings.
type Sheet struct {
	Character *entities.CharacterData
	Overrides *overlay.Overlay
	// HPMax is derived from hit-point advancement values, the constitution
	// modifier, and the flat bonus; it is never persisted.
	HPMax    int
	Warnings *notifications.Sink

	collections map[string]*advancement.Collection
}

// Collection returns the advancement collection for a held item.
func (s *Sheet) Collection(itemID string) *advancement.Collection {
	return s.collections[itemID]
}

// AdvancementsForLevel aggregates the advancements across every held item
// whose relevant level for the tuple is one of their content levels, in
// collection order.
func (s *Sheet) AdvancementsForLevel(levels advancement.Levels) []advancement.Advancement {
	var out []advancement.Advancement
	for _, item := range s.Character.Items {
		coll, ok := s.collections[item.ID]
		if !ok {
			continue
		}
		out = append(out, coll.ForLevel(levels)...)
	}
	return out
}

// PreparerConfig holds preparer dependencies.
type PreparerConfig struct {
	Env *advancement.Env
	// EventBus receives a character.recomputed event per preparation.
	// Optional; nil disables publication.
	EventBus events.EventBus
}

// Validate ensures required dependencies are provided.
func (c *PreparerConfig) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Env == nil {
		vb.RequiredField("Env")
	}
	return vb.Build()
}

// Preparer runs the data-preparation pipeline.
type Preparer struct {
	env    *advancement.Env
	engine *overlay.Engine
	bus    events.EventBus
}

// NewPreparer creates a preparer with the canonical sheet schema.
func NewPreparer(cfg *PreparerConfig) (*Preparer, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	engine, err := overlay.New(&overlay.Config{
		Interpreter: NewInterpreter(),
		Env:         cfg.Env,
		Base:        BaseValue,
	})
	if err != nil {
		return nil, err
	}
	return &Preparer{env: cfg.Env, engine: engine, bus: cfg.EventBus}, nil
}

// Prepare runs one preparation cycle over the character's current state.
func (p *Preparer) Prepare(ctx context.Context, char *entities.CharacterData) (*Sheet, error) {
	if char == nil {
		return nil, errors.InvalidArgument("character is required")
	}

	collections := make(map[string]*advancement.Collection, len(char.Items))
	for _, item := range char.Items {
		if len(item.Advancements) == 0 {
			continue
		}
		coll, err := advancement.NewCollection(char, item, p.env)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to index item %s", item.ID)
		}
		collections[item.ID] = coll
	}

	overrides, err := p.engine.Run(char)
	if err != nil {
		return nil, errors.Wrap(err, "overlay recompute failed")
	}

	out := &Sheet{
		Character:   char,
		Overrides:   overrides,
		Warnings:    notifications.NewSink(),
		collections: collections,
	}
	out.HPMax = p.hitPointMax(char, collections, overrides)
	p.gatherWarnings(char, collections, out.Warnings)

	p.publish(ctx, char)
	return out, nil
}

// hitPointMax sums the recorded hit point gains across every class, then
// applies the constitution modifier per character level and the flat bonus.
func (p *Preparer) hitPointMax(char *entities.CharacterData, collections map[string]*advancement.Collection, overrides *overlay.Overlay) int {
	total := 0
	for _, class := range char.Classes() {
		coll, ok := collections[class.ID]
		if !ok {
			continue
		}
		for _, adv := range coll.ByType(advancement.TypeHitPoints) {
			hp, ok := adv.(*advancement.HitPoints)
			if !ok {
				continue
			}
			total += hp.Total(class.Levels)
		}
	}
	if total == 0 {
		return 0
	}

	con := 0
	if ability, ok := char.Abilities[rules.AbilityConstitution]; ok {
		con = ability.Value
	}
	if v, ok := overrides.Value("abilities.constitution.value"); ok {
		if n, isNumber := v.(float64); isNumber {
			con = int(n)
		}
	}
	total += rules.AbilityModifier(con) * char.Level()

	bonus := char.Attributes.HP.Bonus
	if v, ok := overrides.Value("attributes.hp.bonus"); ok {
		if n, isNumber := v.(float64); isNumber {
			bonus = int(n)
		}
	}
	return total + bonus
}

// gatherWarnings asks every advancement that has reached content levels to
// report pending choices.
func (p *Preparer) gatherWarnings(char *entities.CharacterData, collections map[string]*advancement.Collection, sink *notifications.Sink) {
	for _, item := range char.Items {
		coll, ok := collections[item.ID]
		if !ok {
			continue
		}
		for _, adv := range coll.All() {
			current := resolvedCurrent(char, adv)
			for _, level := range adv.Levels() {
				if level >= 1 && level <= current {
					adv.PrepareWarnings(level, sink)
				}
			}
		}
	}
}

// resolvedCurrent is the highest level the advancement has reached under the
// character's current class composition.
func resolvedCurrent(char *entities.CharacterData, adv advancement.Advancement) int {
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

func (p *Preparer) publish(ctx context.Context, char *entities.CharacterData) {
	if p.bus == nil {
		return
	}
	evt := events.NewGameEvent(EventCharacterRecomputed, char, nil)
	evt.Context().Set("level", char.Level())
	if err := p.bus.Publish(ctx, evt); err != nil {
		slog.Warn("failed to publish recompute event",
			"character_id", char.ID,
			"error", err)
	}
}
