package advancement

import (
	"sort"

	"github.com/greyhollow/sheet-api/internal/entities"
	"github.com/greyhollow/sheet-api/internal/errors"
)

// Collection indexes every advancement on one item: by id, by type, and by
// the levels at which each has content. It is rebuilt whenever the item's
// advancement set changes, with deterministic sort-key ordering inside each
// bucket.
type Collection struct {
	item    *entities.ItemData
	all     []Advancement
	byID    map[string]Advancement
	byType  map[Type][]Advancement
	byLevel map[int][]Advancement
}

// NewCollection builds the advancement index for an item held by char. char
// may be nil for unowned items.
func NewCollection(char *entities.CharacterData, item *entities.ItemData, env *Env) (*Collection, error) {
	if item == nil {
		return nil, errors.InvalidArgument("item is required")
	}
	c := &Collection{
		item:    item,
		byID:    make(map[string]Advancement, len(item.Advancements)),
		byType:  make(map[Type][]Advancement),
		byLevel: make(map[int][]Advancement),
	}

	for _, cfg := range item.Advancements {
		adv, err := New(char, item, cfg, env)
		if err != nil {
			return nil, errors.Wrapf(err, "item %s advancement %s", item.ID, cfg.ID)
		}
		if _, dup := c.byID[adv.ID()]; dup {
			return nil, errors.InvalidArgumentf("item %s has duplicate advancement ID %s", item.ID, adv.ID())
		}
		c.all = append(c.all, adv)
		c.byID[adv.ID()] = adv
		c.byType[adv.Type()] = append(c.byType[adv.Type()], adv)
		for _, level := range adv.Levels() {
			c.byLevel[level] = append(c.byLevel[level], adv)
		}
	}

	sortBySortKey(c.all)
	for _, bucket := range c.byType {
		sortBySortKey(bucket)
	}
	for _, bucket := range c.byLevel {
		sortBySortKey(bucket)
	}
	return c, nil
}

// Get returns the advancement with the given ID, or nil.
func (c *Collection) Get(id string) Advancement {
	return c.byID[id]
}

// All returns every advancement in sort-key order.
func (c *Collection) All() []Advancement {
	return c.all
}

// ByType returns the advancements of one type in sort-key order.
func (c *Collection) ByType(t Type) []Advancement {
	return c.byType[t]
}

// ByLevel returns the advancements with content at a level, in sort-key
// order.
func (c *Collection) ByLevel(level int) []Advancement {
	return c.byLevel[level]
}

// MaxLevel returns the highest level any advancement has content at.
func (c *Collection) MaxLevel() int {
	maxLevel := 0
	for level := range c.byLevel {
		if level > maxLevel {
			maxLevel = level
		}
	}
	return maxLevel
}

// ForLevel returns the advancements whose relevant level for the given tuple
// is one of their content levels, in sort-key order.
func (c *Collection) ForLevel(levels Levels) []Advancement {
	var out []Advancement
	for _, adv := range c.all {
		level, ok := adv.RelevantLevel(levels)
		if !ok {
			continue
		}
		if containsLevel(adv.Levels(), level) {
			out = append(out, adv)
		}
	}
	return out
}

func containsLevel(levels []int, level int) bool {
	for _, l := range levels {
		if l == level {
			return true
		}
	}
	return false
}

func sortBySortKey(advs []Advancement) {
	sort.SliceStable(advs, func(i, j int) bool {
		return advs[i].SortKey() < advs[j].SortKey()
	})
}
