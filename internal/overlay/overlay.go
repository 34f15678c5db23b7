// Package overlay implements the change-overlay engine: the synchronous
// recompute that walks every level from zero to current, collects each active
// advancement's changes, and folds them into the transient overrides tree
// consumed by derived-stat computation. Nothing in here is ever persisted.
package overlay

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/greyhollow/sheet-api/internal/advancement"
	"github.com/greyhollow/sheet-api/internal/delta"
	"github.com/greyhollow/sheet-api/internal/entities"
	"github.com/greyhollow/sheet-api/internal/errors"
)

// BaseLookup returns the character's base value for a field path, before any
// advancement changes. ok is false for paths with no base value; those start
// from the field type's zero.
type BaseLookup func(char *entities.CharacterData, key string) (any, bool)

// Config holds engine dependencies.
type Config struct {
	Interpreter *delta.Interpreter
	Env         *advancement.Env
	// Base seeds the accumulator. Optional; a nil Base starts every path
	// from empty.
	Base BaseLookup
}

// Validate ensures required dependencies are provided.
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Interpreter == nil {
		vb.RequiredField("Interpreter")
	}
	if c.Env == nil {
		vb.RequiredField("Env")
	}
	return vb.Build()
}

// Engine runs the overlay recompute. Stateless between runs: every Run starts
// from a fresh accumulator, so identical input always produces identical
// output.
type Engine struct {
	interpreter *delta.Interpreter
	env         *advancement.Env
	base        BaseLookup
}

// New creates an overlay engine.
func New(cfg *Config) (*Engine, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		interpreter: cfg.Interpreter,
		env:         cfg.Env,
		base:        cfg.Base,
	}, nil
}

// Overlay is the engine's read-only output: final values per touched path
// plus the sources that touched each path, in fold order.
type Overlay struct {
	values  map[string]any
	sources map[string][]delta.Source
}

// Value returns the folded value at a flat path.
func (o *Overlay) Value(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Sources returns the attribution list for a flat path, in the order the
// changes folded.
func (o *Overlay) Sources(key string) []delta.Source {
	return o.sources[key]
}

// Keys returns every touched path in sorted order.
func (o *Overlay) Keys() []string {
	keys := make([]string, 0, len(o.values))
	for k := range o.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Tree expands the flat accumulator into a nested map mirroring the character
// schema, containing only touched paths.
func (o *Overlay) Tree() map[string]any {
	tree := make(map[string]any)
	for _, key := range o.Keys() {
		parts := strings.Split(key, ".")
		node := tree
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[part] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = o.values[key]
	}
	return tree
}

// Run executes one recompute over the character's current state. Collection
// construction errors abort the run; individual change failures are logged
// and skipped.
func (e *Engine) Run(char *entities.CharacterData) (*Overlay, error) {
	if char == nil {
		return nil, errors.InvalidArgument("character is required")
	}

	collections := make([]*advancement.Collection, 0, len(char.Items))
	for _, item := range char.Items {
		if len(item.Advancements) == 0 {
			continue
		}
		coll, err := advancement.NewCollection(char, item, e.env)
		if err != nil {
			return nil, err
		}
		collections = append(collections, coll)
	}

	changes := e.collect(char, collections)
	// Stable so equal priorities keep collection order, which is itself
	// deterministic.
	sort.SliceStable(changes, func(i, j int) bool {
		return changes[i].Priority < changes[j].Priority
	})

	out := &Overlay{
		values:  make(map[string]any),
		sources: make(map[string][]delta.Source),
	}
	for _, change := range changes {
		current, ok := out.values[change.Key]
		if !ok && e.base != nil {
			current, _ = e.base(char, change.Key)
		}
		next, err := e.interpreter.ApplyChange(current, change)
		if err != nil {
			slog.Warn("skipping change",
				"key", change.Key,
				"mode", change.Mode.String(),
				"advancement", change.Source.AdvancementID,
				"error", err)
			continue
		}
		out.values[change.Key] = next
		out.sources[change.Key] = append(out.sources[change.Key], change.Source)
	}
	return out, nil
}

// collect walks the level sequence and gathers every active advancement's
// changes exactly once per resolved level. The same advancement can resolve
// to the same level from several tuples, so processed (advancement, level)
// pairs are tracked.
func (e *Engine) collect(char *entities.CharacterData, collections []*advancement.Collection) []delta.Change {
	type advLevel struct {
		adv   advancement.Advancement
		level int
	}
	seen := make(map[advLevel]bool)
	var changes []delta.Change

	gather := func(levels advancement.Levels) {
		for _, coll := range collections {
			for _, adv := range coll.ForLevel(levels) {
				resolved, _ := adv.RelevantLevel(levels)
				key := advLevel{adv: adv, level: resolved}
				if seen[key] {
					continue
				}
				seen[key] = true
				changes = append(changes, adv.Changes(resolved)...)
			}
		}
	}

	// Baseline pass for always-on advancements.
	gather(advancement.Levels{})

	classes := char.Classes()
	for n := 1; n <= char.Level(); n++ {
		if len(classes) == 0 {
			gather(advancement.Levels{Character: n, Class: n})
			continue
		}
		for _, class := range classes {
			classLevel := class.Levels
			if n < classLevel {
				classLevel = n
			}
			if classLevel == 0 {
				continue
			}
			gather(advancement.Levels{
				Character:  n,
				Class:      classLevel,
				Identifier: class.Identifier,
			})
		}
	}
	return changes
}
