package advancement

import (
	"github.com/greyhollow/sheet-api/internal/entities"
	"github.com/greyhollow/sheet-api/internal/errors"
	"github.com/greyhollow/sheet-api/internal/rules"
)

// Type discriminates advancement variants.
type Type string

// Advancement types
const (
	TypeHitPoints      Type = "hitPoints"
	TypeSize           Type = "size"
	TypeTrait          Type = "trait"
	TypeKeyAbility     Type = "keyAbility"
	TypeImprovement    Type = "improvement"
	TypeGrantFeatures  Type = "grantFeatures"
	TypeChooseFeatures Type = "chooseFeatures"
	TypeSpellcasting   Type = "spellcasting"
	TypeScaleValue     Type = "scaleValue"
	TypeProperty       Type = "property"
	TypeEquipment      Type = "equipment"
)

// typeSpec describes one variant: its bucket ordering, which item types may
// own it, whether an item may carry more than one, and how to build it.
type typeSpec struct {
	order     int
	title     string
	singleton bool
	// itemTypes restricts eligible owners; nil allows any item type that
	// can carry advancements.
	itemTypes []rules.ItemType
	configure func(cfg *entities.AdvancementConfig) error
	build     func(b base) Advancement
}

var classKinds = []rules.ItemType{rules.ItemTypeClass, rules.ItemTypeSubclass}

// registry is the closed set of known variants, keyed by discriminant. The
// set is fixed at compile time so exhaustiveness is checkable; new variants
// are added here, never by open-ended subclassing.
var registry = map[Type]typeSpec{
	TypeHitPoints: {
		order:     10,
		title:     "Hit Points",
		singleton: true,
		itemTypes: []rules.ItemType{rules.ItemTypeClass},
		configure: configureHitPoints,
		build:     func(b base) Advancement { return &HitPoints{base: b} },
	},
	TypeSize: {
		order:     20,
		title:     "Size",
		singleton: true,
		itemTypes: []rules.ItemType{rules.ItemTypeLineage},
		configure: configureSize,
		build:     func(b base) Advancement { return &Size{base: b} },
	},
	TypeTrait: {
		order:     30,
		title:     "Trait",
		configure: configureTrait,
		build:     func(b base) Advancement { return &Trait{base: b} },
	},
	TypeKeyAbility: {
		order:     40,
		title:     "Key Ability",
		singleton: true,
		itemTypes: classKinds,
		configure: configureKeyAbility,
		build:     func(b base) Advancement { return &KeyAbility{base: b} },
	},
	TypeImprovement: {
		order:     50,
		title:     "Improvement",
		singleton: true,
		itemTypes: classKinds,
		configure: configureImprovement,
		build:     func(b base) Advancement { return &Improvement{base: b} },
	},
	TypeGrantFeatures: {
		order:     60,
		title:     "Grant Features",
		configure: configureGrantFeatures,
		build:     func(b base) Advancement { return &GrantFeatures{base: b} },
	},
	TypeChooseFeatures: {
		order:     70,
		title:     "Choose Features",
		configure: configureChooseFeatures,
		build:     func(b base) Advancement { return &ChooseFeatures{base: b} },
	},
	TypeSpellcasting: {
		order:     80,
		title:     "Spellcasting",
		singleton: true,
		itemTypes: classKinds,
		configure: configureSpellcasting,
		build:     func(b base) Advancement { return &Spellcasting{base: b} },
	},
	TypeScaleValue: {
		order:     90,
		title:     "Scale Value",
		configure: configureScaleValue,
		build:     func(b base) Advancement { return &ScaleValue{base: b} },
	},
	TypeProperty: {
		order:     100,
		title:     "Property",
		configure: configureProperty,
		build:     func(b base) Advancement { return &Property{base: b} },
	},
	TypeEquipment: {
		order:     110,
		title:     "Equipment",
		singleton: true,
		itemTypes: []rules.ItemType{rules.ItemTypeClass, rules.ItemTypeBackground},
		configure: configureEquipment,
		build:     func(b base) Advancement { return &Equipment{base: b} },
	},
}

// Types lists the known variant discriminants.
func Types() []Type {
	out := make([]Type, 0, len(registry))
	for t := range registry {
		out = append(out, t)
	}
	return out
}

func defaultTitle(t Type) string {
	if spec, ok := registry[t]; ok {
		return spec.title
	}
	return string(t)
}

// New builds the advancement for one configuration on an owning item. char
// may be nil for unowned (design-time) items. Configuration problems are
// reported as InvalidArgument errors.
func New(char *entities.CharacterData, item *entities.ItemData, cfg *entities.AdvancementConfig, env *Env) (Advancement, error) {
	if item == nil || cfg == nil || env == nil {
		return nil, errors.InvalidArgument("item, config, and env are required")
	}
	spec, ok := registry[Type(cfg.Type)]
	if !ok {
		return nil, errors.InvalidArgumentf("unknown advancement type %q", cfg.Type)
	}
	if cfg.ID == "" {
		return nil, errors.InvalidArgument("advancement has no ID")
	}
	if err := checkEligibility(spec, item); err != nil {
		return nil, err
	}
	if cfg.Level.Value != nil && *cfg.Level.Value < rules.MinAdvancementLevel(item.Type) {
		return nil, errors.InvalidArgumentf(
			"advancement %s level %d is below the minimum %d for %s items",
			cfg.ID, *cfg.Level.Value, rules.MinAdvancementLevel(item.Type), item.Type)
	}
	if err := spec.configure(cfg); err != nil {
		return nil, errors.Wrapf(err, "invalid %s configuration on advancement %s", cfg.Type, cfg.ID)
	}
	adv := spec.build(base{char: char, item: item, cfg: cfg, env: env, order: spec.order})
	adv.(binder).bind(adv)
	return adv, nil
}

// ValidateConfigForItem checks a configuration against an owning item at
// authoring time: eligibility, singleton constraints, minimum levels, and
// the variant's own configuration shape. It blocks the mutation that would
// add an invalid advancement.
func ValidateConfigForItem(item *entities.ItemData, cfg *entities.AdvancementConfig, env *Env) error {
	if !rules.CanHaveAdvancements(item.Type) {
		return errors.InvalidArgumentf("%s items cannot carry advancements", item.Type)
	}
	spec, ok := registry[Type(cfg.Type)]
	if !ok {
		return errors.InvalidArgumentf("unknown advancement type %q", cfg.Type)
	}
	if spec.singleton {
		for _, existing := range item.Advancements {
			if existing.Type == cfg.Type && existing.ID != cfg.ID {
				return errors.InvalidArgumentf(
					"item %s already carries a %s advancement", item.ID, cfg.Type)
			}
		}
	}
	_, err := New(nil, item, cfg, env)
	return err
}

func checkEligibility(spec typeSpec, item *entities.ItemData) error {
	if !rules.CanHaveAdvancements(item.Type) {
		return errors.InvalidArgumentf("%s items cannot carry advancements", item.Type)
	}
	if spec.itemTypes == nil {
		return nil
	}
	for _, t := range spec.itemTypes {
		if t == item.Type {
			return nil
		}
	}
	return errors.InvalidArgumentf("advancement type is not allowed on %s items", item.Type)
}
