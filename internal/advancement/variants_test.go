package advancement_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/greyhollow/sheet-api/internal/advancement"
	"github.com/greyhollow/sheet-api/internal/content"
	"github.com/greyhollow/sheet-api/internal/delta"
	"github.com/greyhollow/sheet-api/internal/entities"
	"github.com/greyhollow/sheet-api/internal/errors"
	"github.com/greyhollow/sheet-api/internal/notifications"
	"github.com/greyhollow/sheet-api/internal/pkg/idgen"
	"github.com/greyhollow/sheet-api/internal/rules"
)

type VariantsTestSuite struct {
	suite.Suite
	ctx   context.Context
	env   *advancement.Env
	store *content.MemoryStore
	char  *entities.CharacterData
}

func TestVariantsSuite(t *testing.T) {
	suite.Run(t, new(VariantsTestSuite))
}

func (s *VariantsTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = content.NewMemoryStore()
	s.env = &advancement.Env{
		Content: s.store,
		IDs:     idgen.NewSequential("item"),
		Dice:    &fixedRoller{result: 6},
	}
	s.Require().NoError(s.env.Validate())

	s.char = &entities.CharacterData{
		ID:       "char-1",
		PlayerID: "player-1",
		Name:     "Vex",
		Abilities: map[string]*entities.AbilityData{
			rules.AbilityStrength:     {Value: 16},
			rules.AbilityDexterity:    {Value: 14},
			rules.AbilityConstitution: {Value: 14},
		},
		Items: []*entities.ItemData{
			{
				ID:            "fighter-1",
				Type:          rules.ItemTypeClass,
				Name:          "Fighter",
				Identifier:    "fighter",
				Levels:        4,
				OriginalClass: true,
			},
		},
	}
}

func (s *VariantsTestSuite) build(item *entities.ItemData, cfg *entities.AdvancementConfig) advancement.Advancement {
	adv, err := advancement.New(s.char, item, cfg, s.env)
	s.Require().NoError(err)
	return adv
}

func (s *VariantsTestSuite) fighter() *entities.ItemData {
	return s.char.Item("fighter-1")
}

func (s *VariantsTestSuite) putFeature(ref, name, category string) {
	s.store.Put(ref, &entities.ItemData{
		ID:       ref,
		Type:     rules.ItemTypeFeature,
		Name:     name,
		Category: category,
	})
}

func (s *VariantsTestSuite) TestHitPointsFirstLevelTakesMax() {
	hp := s.build(s.fighter(), &entities.AdvancementConfig{
		ID:        "hp",
		Type:      string(advancement.TypeHitPoints),
		HitPoints: &entities.HitPointsConfig{Die: 10},
	}).(*advancement.HitPoints)

	s.Require().NoError(hp.Apply(s.ctx, 1, nil, advancement.Options{Initial: true}))

	gain, ok := hp.ValueForLevel(1)
	s.Require().True(ok)
	s.Assert().Equal(10, gain)
}

func (s *VariantsTestSuite) TestHitPointsBackfillPropagatesAverage() {
	hp := s.build(s.fighter(), &entities.AdvancementConfig{
		ID:        "hp",
		Type:      string(advancement.TypeHitPoints),
		HitPoints: &entities.HitPointsConfig{Die: 10},
	}).(*advancement.HitPoints)

	s.Require().NoError(hp.Apply(s.ctx, 1, nil, advancement.Options{Initial: true}))
	s.Require().NoError(hp.Apply(s.ctx, 2, &advancement.ApplyData{HitPoints: "avg"}, advancement.Options{}))
	s.Require().NoError(hp.Apply(s.ctx, 3, nil, advancement.Options{Initial: true}))

	// avg on a d10 is 6; level 3 repeats the level 2 choice.
	s.Assert().Equal(22, hp.Total(3))
	s.Assert().True(hp.ConfiguredForLevel(3))
	s.Assert().False(hp.ConfiguredForLevel(4))
}

func (s *VariantsTestSuite) TestHitPointsRollAndValidation() {
	hp := s.build(s.fighter(), &entities.AdvancementConfig{
		ID:        "hp",
		Type:      string(advancement.TypeHitPoints),
		HitPoints: &entities.HitPointsConfig{Die: 10},
	}).(*advancement.HitPoints)

	s.Require().NoError(hp.Apply(s.ctx, 2, &advancement.ApplyData{HitPoints: "roll"}, advancement.Options{}))
	gain, ok := hp.ValueForLevel(2)
	s.Require().True(ok)
	s.Assert().Equal(6, gain)

	err := hp.Apply(s.ctx, 3, &advancement.ApplyData{HitPoints: "11"}, advancement.Options{})
	s.Require().Error(err)
	s.Assert().True(errors.IsOutOfRange(err))

	err = hp.Apply(s.ctx, 3, &advancement.ApplyData{HitPoints: "banana"}, advancement.Options{})
	s.Require().Error(err)
	s.Assert().True(errors.IsInvalidArgument(err))
}

func (s *VariantsTestSuite) TestHitPointsReverse() {
	hp := s.build(s.fighter(), &entities.AdvancementConfig{
		ID:        "hp",
		Type:      string(advancement.TypeHitPoints),
		HitPoints: &entities.HitPointsConfig{Die: 10},
	}).(*advancement.HitPoints)

	s.Require().NoError(hp.Apply(s.ctx, 1, nil, advancement.Options{Initial: true}))
	s.Require().NoError(hp.Apply(s.ctx, 2, &advancement.ApplyData{HitPoints: "max"}, advancement.Options{}))

	s.Require().NoError(hp.Reverse(s.ctx, 2, advancement.Options{}))
	s.Assert().Equal(10, hp.Total(2))

	s.Require().NoError(hp.Reverse(s.ctx, 1, advancement.Options{}))
	s.Assert().Empty(s.char.AdvancementValues)
}

func (s *VariantsTestSuite) TestKeyAbilityAutoSelectsSingleChoice() {
	key := s.build(s.fighter(), &entities.AdvancementConfig{
		ID:         "key",
		Type:       string(advancement.TypeKeyAbility),
		KeyAbility: &entities.KeyAbilityConfig{Choices: []string{rules.AbilityStrength}},
	})

	s.Require().NoError(key.Apply(s.ctx, 1, nil, advancement.Options{Initial: true}))
	s.Assert().True(key.ConfiguredForLevel(1))

	changes := key.Changes(1)
	s.Require().Len(changes, 1)
	s.Assert().Equal("abilities.strength.value", changes[0].Key)
	s.Assert().Equal(delta.ModeAdd, changes[0].Mode)

	s.Require().NoError(key.Reverse(s.ctx, 1, advancement.Options{}))
	s.Assert().Empty(key.Changes(1))
	s.Assert().Empty(s.char.AdvancementValues)
}

func (s *VariantsTestSuite) TestKeyAbilityRejectsOutsideChoices() {
	key := s.build(s.fighter(), &entities.AdvancementConfig{
		ID:         "key",
		Type:       string(advancement.TypeKeyAbility),
		KeyAbility: &entities.KeyAbilityConfig{Choices: []string{rules.AbilityStrength, rules.AbilityDexterity}},
	})

	err := key.Apply(s.ctx, 1, &advancement.ApplyData{Ability: rules.AbilityCharisma}, advancement.Options{})
	s.Require().Error(err)
	s.Assert().True(errors.IsInvalidArgument(err))

	// Two choices cannot auto-select; strict mode surfaces the gap.
	err = key.Apply(s.ctx, 1, nil, advancement.Options{Strict: true})
	s.Require().Error(err)
	s.Assert().True(errors.IsFailedPrecondition(err))
}

func (s *VariantsTestSuite) TestScaleValueSparseLookup() {
	scale := s.build(s.fighter(), &entities.AdvancementConfig{
		ID:   "sneak",
		Type: string(advancement.TypeScaleValue),
		ScaleValue: &entities.ScaleValueConfig{
			Identifier: "sneak-attack",
			Values:     map[int]string{3: "2d6", 5: "3d6", 9: "5d6"},
		},
	}).(*advancement.ScaleValue)

	_, ok := scale.ValueForLevel(2)
	s.Assert().False(ok)

	value, ok := scale.ValueForLevel(7)
	s.Require().True(ok)
	s.Assert().Equal("3d6", value)

	changes := scale.Changes(7)
	s.Require().Len(changes, 1)
	s.Assert().Equal("scale.fighter.sneak-attack", changes[0].Key)
	s.Assert().Equal(delta.ModeOverride, changes[0].Mode)
	s.Assert().Equal("3d6", changes[0].Value)
}

func (s *VariantsTestSuite) TestImprovementChanges() {
	imp := s.build(s.fighter(), &entities.AdvancementConfig{
		ID:   "imp",
		Type: string(advancement.TypeImprovement),
		Improvement: &entities.ImprovementConfig{
			Abilities: []string{rules.AbilityStrength},
			Saves:     []string{rules.AbilityStrength, rules.AbilityConstitution},
		},
	})

	s.Require().NoError(imp.Apply(s.ctx, 1, nil, advancement.Options{Initial: true}))

	changes := imp.Changes(1)
	s.Require().Len(changes, 3)
	s.Assert().Equal("abilities.strength.value", changes[0].Key)
	s.Assert().Equal("abilities.strength.save", changes[1].Key)
	s.Assert().Equal(delta.ModeUpgrade, changes[1].Mode)
	s.Assert().Equal("abilities.constitution.save", changes[2].Key)
}

func (s *VariantsTestSuite) TestImprovementSavesOnlyForOriginalClass() {
	s.char.AddItem(&entities.ItemData{
		ID:         "rogue-1",
		Type:       rules.ItemTypeClass,
		Name:       "Rogue",
		Identifier: "rogue",
		Levels:     1,
	})
	imp := s.build(s.char.Item("rogue-1"), &entities.AdvancementConfig{
		ID:   "imp",
		Type: string(advancement.TypeImprovement),
		Improvement: &entities.ImprovementConfig{
			Abilities: []string{rules.AbilityDexterity},
			Saves:     []string{rules.AbilityDexterity},
		},
	})

	s.Require().NoError(imp.Apply(s.ctx, 1, nil, advancement.Options{Initial: true}))

	// Rogue was taken after fighter, so its save upgrades stay off.
	changes := imp.Changes(1)
	s.Require().Len(changes, 1)
	s.Assert().Equal("abilities.dexterity.value", changes[0].Key)
}

func (s *VariantsTestSuite) TestImprovementTalentGrant() {
	s.putFeature("talent:tough", "Tough", "")

	imp := s.build(s.fighter(), &entities.AdvancementConfig{
		ID:   "imp",
		Type: string(advancement.TypeImprovement),
		Improvement: &entities.ImprovementConfig{
			Abilities: []string{rules.AbilityStrength},
			Pool:      []string{"talent:tough"},
		},
	})

	data := &advancement.ApplyData{Ability: rules.AbilityStrength, References: []string{"talent:tough"}}
	s.Require().NoError(imp.Apply(s.ctx, 1, data, advancement.Options{}))
	s.Require().Len(s.char.Items, 2)
	s.Assert().True(imp.ConfiguredForLevel(1))

	// A second grant at the same level is rejected.
	err := imp.Apply(s.ctx, 1, data, advancement.Options{})
	s.Require().Error(err)
	s.Assert().True(errors.IsFailedPrecondition(err))

	s.Require().NoError(imp.Reverse(s.ctx, 1, advancement.Options{}))
	s.Assert().Len(s.char.Items, 1)
	s.Assert().Empty(s.char.AdvancementValues)
}

func (s *VariantsTestSuite) TestGrantFeaturesIdempotentApply() {
	s.putFeature("feat:second-wind", "Second Wind", "")

	grant := s.build(s.fighter(), &entities.AdvancementConfig{
		ID:            "grant",
		Type:          string(advancement.TypeGrantFeatures),
		Level:         entities.LevelSpec{Value: intPtr(1)},
		GrantFeatures: &entities.GrantFeaturesConfig{Items: []string{"feat:second-wind"}},
	})

	s.Require().NoError(grant.Apply(s.ctx, 1, nil, advancement.Options{Initial: true}))
	s.Require().NoError(grant.Apply(s.ctx, 1, nil, advancement.Options{Initial: true}))
	s.Assert().Len(s.char.Items, 2)

	granted := s.char.Items[1]
	s.Assert().Equal("feat:second-wind", granted.SourceRef)
	s.Require().NotNil(granted.GrantedBy)
	s.Assert().Equal("fighter-1", granted.GrantedBy.ItemID)
	s.Assert().Equal(1, granted.GrantedBy.Level)

	s.Require().NoError(grant.Reverse(s.ctx, 1, advancement.Options{}))
	s.Assert().Len(s.char.Items, 1)
}

func (s *VariantsTestSuite) TestChooseFeaturesCountGating() {
	s.putFeature("style:defense", "Defense", "fighting-style")
	s.putFeature("style:dueling", "Dueling", "fighting-style")

	choose := s.build(s.fighter(), &entities.AdvancementConfig{
		ID:   "styles",
		Type: string(advancement.TypeChooseFeatures),
		ChooseFeatures: &entities.ChooseFeaturesConfig{
			Choices:  map[int]int{1: 1},
			ItemType: rules.ItemTypeFeature,
			Category: "fighting-style",
		},
	})

	s.Assert().False(choose.ConfiguredForLevel(1))

	s.Require().NoError(choose.Apply(s.ctx, 1,
		&advancement.ApplyData{References: []string{"style:defense"}}, advancement.Options{}))
	s.Assert().True(choose.ConfiguredForLevel(1))

	// The level's single slot is taken.
	err := choose.Apply(s.ctx, 1,
		&advancement.ApplyData{References: []string{"style:dueling"}}, advancement.Options{})
	s.Require().Error(err)
	s.Assert().True(errors.IsInvalidArgument(err))
}

func (s *VariantsTestSuite) TestChooseFeaturesRejectsWrongCategory() {
	s.putFeature("feat:second-wind", "Second Wind", "")

	choose := s.build(s.fighter(), &entities.AdvancementConfig{
		ID:   "styles",
		Type: string(advancement.TypeChooseFeatures),
		ChooseFeatures: &entities.ChooseFeaturesConfig{
			Choices:  map[int]int{1: 1},
			ItemType: rules.ItemTypeFeature,
			Category: "fighting-style",
		},
	})

	err := choose.Apply(s.ctx, 1,
		&advancement.ApplyData{References: []string{"feat:second-wind"}}, advancement.Options{})
	s.Require().Error(err)
	s.Assert().True(errors.IsInvalidArgument(err))
}

func (s *VariantsTestSuite) TestChooseFeaturesReplacement() {
	s.putFeature("style:defense", "Defense", "fighting-style")
	s.putFeature("style:dueling", "Dueling", "fighting-style")

	choose := s.build(s.fighter(), &entities.AdvancementConfig{
		ID:   "styles",
		Type: string(advancement.TypeChooseFeatures),
		ChooseFeatures: &entities.ChooseFeaturesConfig{
			Choices:           map[int]int{1: 1, 4: 1},
			ItemType:          rules.ItemTypeFeature,
			Category:          "fighting-style",
			AllowReplacements: true,
		},
	})

	s.Require().NoError(choose.Apply(s.ctx, 1,
		&advancement.ApplyData{References: []string{"style:defense"}}, advancement.Options{}))
	original := s.char.Items[1]

	s.Require().NoError(choose.Apply(s.ctx, 4, &advancement.ApplyData{
		Replace: &advancement.ReplaceRequest{
			OriginalItemID: original.ID,
			Reference:      "style:dueling",
		},
	}, advancement.Options{}))

	s.Require().Len(s.char.Items, 2)
	s.Assert().Equal("style:dueling", s.char.Items[1].SourceRef)
	s.Assert().Nil(s.char.Item(original.ID))

	// Reversing the replacement level restores the original pick.
	s.Require().NoError(choose.Reverse(s.ctx, 4, advancement.Options{}))
	s.Require().Len(s.char.Items, 2)
	s.Assert().Equal("style:defense", s.char.Items[1].SourceRef)
	s.Assert().True(choose.ConfiguredForLevel(1))
}

func (s *VariantsTestSuite) TestChooseFeaturesReplacementPreservesSiblings() {
	s.putFeature("style:defense", "Defense", "fighting-style")
	s.putFeature("style:dueling", "Dueling", "fighting-style")
	s.putFeature("style:archery", "Archery", "fighting-style")

	choose := s.build(s.fighter(), &entities.AdvancementConfig{
		ID:   "styles",
		Type: string(advancement.TypeChooseFeatures),
		ChooseFeatures: &entities.ChooseFeaturesConfig{
			Choices:           map[int]int{1: 2, 4: 1},
			ItemType:          rules.ItemTypeFeature,
			Category:          "fighting-style",
			AllowReplacements: true,
		},
	})

	s.Require().NoError(choose.Apply(s.ctx, 1,
		&advancement.ApplyData{References: []string{"style:defense", "style:dueling"}}, advancement.Options{}))
	defense := s.itemBySourceRef("style:defense")
	s.Require().NotNil(defense)

	s.Require().NoError(choose.Apply(s.ctx, 4, &advancement.ApplyData{
		Replace: &advancement.ReplaceRequest{
			OriginalItemID: defense.ID,
			Reference:      "style:archery",
		},
	}, advancement.Options{}))

	// Reversing the replacement level removes only the swapped-in pick;
	// the sibling chosen at level 1 stays put.
	s.Require().NoError(choose.Reverse(s.ctx, 4, advancement.Options{}))

	s.Assert().Nil(s.itemBySourceRef("style:archery"))
	s.Assert().NotNil(s.itemBySourceRef("style:defense"))
	s.Assert().NotNil(s.itemBySourceRef("style:dueling"))

	v := s.char.Value("fighter-1", "styles")
	s.Require().NotNil(v)
	s.Assert().Len(v.AddedAt(1), 2)
	s.Assert().True(choose.ConfiguredForLevel(1))
}

func (s *VariantsTestSuite) TestChooseFeaturesReplacementCountsTowardAllowance() {
	s.putFeature("style:defense", "Defense", "fighting-style")
	s.putFeature("style:dueling", "Dueling", "fighting-style")
	s.putFeature("style:archery", "Archery", "fighting-style")

	choose := s.build(s.fighter(), &entities.AdvancementConfig{
		ID:   "styles",
		Type: string(advancement.TypeChooseFeatures),
		ChooseFeatures: &entities.ChooseFeaturesConfig{
			Choices:           map[int]int{1: 1, 4: 1},
			ItemType:          rules.ItemTypeFeature,
			Category:          "fighting-style",
			AllowReplacements: true,
		},
	})

	s.Require().NoError(choose.Apply(s.ctx, 1,
		&advancement.ApplyData{References: []string{"style:defense"}}, advancement.Options{}))
	original := s.itemBySourceRef("style:defense")
	s.Require().NotNil(original)

	s.Require().NoError(choose.Apply(s.ctx, 4, &advancement.ApplyData{
		Replace: &advancement.ReplaceRequest{
			OriginalItemID: original.ID,
			Reference:      "style:dueling",
		},
	}, advancement.Options{}))

	// The replacement spent the level's single slot.
	s.Assert().True(choose.ConfiguredForLevel(4))

	sink := notifications.NewSink()
	choose.PrepareWarnings(4, sink)
	s.Assert().Equal(0, sink.Len())

	err := choose.Apply(s.ctx, 4,
		&advancement.ApplyData{References: []string{"style:archery"}}, advancement.Options{})
	s.Require().Error(err)
	s.Assert().True(errors.IsInvalidArgument(err))

	// Reversal frees the slot again.
	s.Require().NoError(choose.Reverse(s.ctx, 4, advancement.Options{}))
	s.Assert().False(choose.ConfiguredForLevel(4))
}

func (s *VariantsTestSuite) itemBySourceRef(ref string) *entities.ItemData {
	for _, item := range s.char.Items {
		if item.SourceRef == ref {
			return item
		}
	}
	return nil
}

func (s *VariantsTestSuite) TestSpellcastingGrantsUnlockedTiers() {
	wizard := &entities.ItemData{
		ID:         "wizard-1",
		Type:       rules.ItemTypeClass,
		Name:       "Wizard",
		Identifier: "wizard",
		Levels:     1,
	}
	s.char.AddItem(wizard)

	s.store.PutForClass("spell:fire-bolt",
		&entities.ItemData{ID: "spell:fire-bolt", Type: rules.ItemTypeSpell, Name: "Fire Bolt", SpellLevel: 0}, "wizard")
	s.store.PutForClass("spell:magic-missile",
		&entities.ItemData{ID: "spell:magic-missile", Type: rules.ItemTypeSpell, Name: "Magic Missile", SpellLevel: 1}, "wizard")
	s.store.PutForClass("spell:misty-step",
		&entities.ItemData{ID: "spell:misty-step", Type: rules.ItemTypeSpell, Name: "Misty Step", SpellLevel: 2}, "wizard")

	cast := s.build(wizard, &entities.AdvancementConfig{
		ID:   "cast",
		Type: string(advancement.TypeSpellcasting),
		Spellcasting: &entities.SpellcastingConfig{
			Progression: rules.ProgressionFull,
			Ability:     rules.AbilityIntelligence,
		},
	})

	// A full caster unlocks a tier at levels 1, 3, 5, ...
	s.Assert().Equal([]int{1, 3, 5, 7, 9, 11, 13, 15, 17}, cast.Levels())

	s.Require().NoError(cast.Apply(s.ctx, 1, nil, advancement.Options{Initial: true}))

	// Level 1 brings cantrips along with the first tier.
	v := s.char.Value("wizard-1", "cast")
	s.Require().NotNil(v)
	s.Assert().Len(v.AddedAt(1), 2)

	kinds := make(map[string]int)
	for _, kind := range v.SlotKinds {
		kinds[kind]++
	}
	s.Assert().Equal(1, kinds[rules.SlotKindCantrip])
	s.Assert().Equal(1, kinds[rules.SlotKindNormal])

	s.Require().NoError(cast.Apply(s.ctx, 3, nil, advancement.Options{Initial: true}))
	s.Assert().Len(v.AddedAt(3), 1)

	changes := cast.Changes(3)
	s.Require().Len(changes, 1)
	s.Assert().Equal("spellcasting.wizard.ability", changes[0].Key)
	s.Assert().Equal(rules.AbilityIntelligence, changes[0].Value)

	s.Require().NoError(cast.Reverse(s.ctx, 3, advancement.Options{}))
	s.Require().NoError(cast.Reverse(s.ctx, 1, advancement.Options{}))
	s.Assert().Len(s.char.Items, 2)
	s.Assert().Empty(s.char.AdvancementValues)
}

func (s *VariantsTestSuite) TestSpellcastingSlotKindTags() {
	wizard := &entities.ItemData{
		ID:         "wizard-1",
		Type:       rules.ItemTypeClass,
		Name:       "Wizard",
		Identifier: "wizard",
		Levels:     1,
	}
	s.char.AddItem(wizard)

	s.store.PutForClass("spell:fire-bolt",
		&entities.ItemData{ID: "spell:fire-bolt", Type: rules.ItemTypeSpell, Name: "Fire Bolt", SpellLevel: 0}, "wizard")
	s.store.PutForClass("spell:detect-magic",
		&entities.ItemData{ID: "spell:detect-magic", Type: rules.ItemTypeSpell, Name: "Detect Magic", SpellLevel: 1, Category: rules.SlotKindRitual}, "wizard")
	s.store.PutForClass("spell:portent-bolt",
		&entities.ItemData{ID: "spell:portent-bolt", Type: rules.ItemTypeSpell, Name: "Portent Bolt", SpellLevel: 1, Category: rules.SlotKindSpecial}, "wizard")
	s.store.Put("spell:find-familiar",
		&entities.ItemData{ID: "spell:find-familiar", Type: rules.ItemTypeSpell, Name: "Find Familiar", SpellLevel: 1})

	cast := s.build(wizard, &entities.AdvancementConfig{
		ID:   "cast",
		Type: string(advancement.TypeSpellcasting),
		Spellcasting: &entities.SpellcastingConfig{
			Progression: rules.ProgressionFull,
			Ability:     rules.AbilityIntelligence,
		},
	})

	s.Require().NoError(cast.Apply(s.ctx, 1, nil, advancement.Options{Initial: true}))

	// An explicit reference on top of the class list grants as a free pick.
	s.Require().NoError(cast.Apply(s.ctx, 1,
		&advancement.ApplyData{References: []string{"spell:find-familiar"}}, advancement.Options{}))

	v := s.char.Value("wizard-1", "cast")
	s.Require().NotNil(v)

	kinds := make(map[string]string)
	for id, kind := range v.SlotKinds {
		item := s.char.Item(id)
		s.Require().NotNil(item)
		kinds[item.SourceRef] = kind
	}
	s.Assert().Equal(rules.SlotKindCantrip, kinds["spell:fire-bolt"])
	s.Assert().Equal(rules.SlotKindRitual, kinds["spell:detect-magic"])
	s.Assert().Equal(rules.SlotKindSpecial, kinds["spell:portent-bolt"])
	s.Assert().Equal(rules.SlotKindFree, kinds["spell:find-familiar"])
}

func (s *VariantsTestSuite) TestSizeChoice() {
	lineage := &entities.ItemData{ID: "dwarf-1", Type: rules.ItemTypeLineage, Name: "Dwarf", Identifier: "dwarf"}
	size := s.build(lineage, &entities.AdvancementConfig{
		ID:   "size",
		Type: string(advancement.TypeSize),
		Size: &entities.SizeConfig{Sizes: []string{rules.SizeSmall, rules.SizeMedium}},
	})

	err := size.Apply(s.ctx, 1, &advancement.ApplyData{Selected: []string{rules.SizeLarge}}, advancement.Options{})
	s.Require().Error(err)
	s.Assert().True(errors.IsInvalidArgument(err))

	s.Require().NoError(size.Apply(s.ctx, 1,
		&advancement.ApplyData{Selected: []string{rules.SizeSmall}}, advancement.Options{}))

	changes := size.Changes(1)
	s.Require().Len(changes, 1)
	s.Assert().Equal("details.size", changes[0].Key)
	s.Assert().Equal(rules.SizeSmall, changes[0].Value)

	s.Require().NoError(size.Reverse(s.ctx, 1, advancement.Options{}))
	s.Assert().Empty(size.Changes(1))
}

func (s *VariantsTestSuite) TestTraitGrantsAndChoices() {
	lineage := &entities.ItemData{ID: "elf-1", Type: rules.ItemTypeLineage, Name: "Elf", Identifier: "elf"}
	trait := s.build(lineage, &entities.AdvancementConfig{
		ID:   "languages",
		Type: string(advancement.TypeTrait),
		Trait: &entities.TraitConfig{
			Target:  "traits.languages",
			Grants:  []string{"common", "elvish"},
			Choices: []string{"dwarvish", "gnomish", "orcish"},
			Count:   1,
		},
	})

	// Grants are in force before any choice.
	s.Assert().Len(trait.Changes(1), 2)
	s.Assert().False(trait.ConfiguredForLevel(1))

	err := trait.Apply(s.ctx, 1,
		&advancement.ApplyData{Selected: []string{"dwarvish", "gnomish"}}, advancement.Options{})
	s.Require().Error(err)
	s.Assert().True(errors.IsInvalidArgument(err))

	s.Require().NoError(trait.Apply(s.ctx, 1,
		&advancement.ApplyData{Selected: []string{"dwarvish"}}, advancement.Options{}))
	s.Assert().True(trait.ConfiguredForLevel(1))

	changes := trait.Changes(1)
	s.Require().Len(changes, 3)
	for _, change := range changes {
		s.Assert().Equal("traits.languages", change.Key)
		s.Assert().Equal(delta.ModeAdd, change.Mode)
	}
}

func (s *VariantsTestSuite) TestPropertyChanges() {
	feat := &entities.ItemData{ID: "feat-1", Type: rules.ItemTypeFeature, Name: "Tough"}
	prop := s.build(feat, &entities.AdvancementConfig{
		ID:   "prop",
		Type: string(advancement.TypeProperty),
		Property: &entities.PropertyConfig{
			Changes: []entities.ChangeSpec{
				{Key: "attributes.hp.bonus", Mode: "add", Value: "2"},
				{Key: "abilities.strength.value", Mode: "override", Value: "19", Priority: intPtr(99)},
			},
		},
	})

	changes := prop.Changes(0)
	s.Require().Len(changes, 2)
	s.Assert().Equal(delta.ModeAdd, changes[0].Mode)
	s.Assert().Equal(delta.ModeAdd.DefaultPriority(), changes[0].Priority)
	s.Assert().Equal(99, changes[1].Priority)

	// Property carries no player state.
	s.Require().NoError(prop.Apply(s.ctx, 0, nil, advancement.Options{}))
	s.Assert().Empty(s.char.AdvancementValues)
}

func (s *VariantsTestSuite) TestEquipmentChoiceResolution() {
	s.store.Put("gear:longsword", &entities.ItemData{ID: "gear:longsword", Type: rules.ItemTypeEquipment, Name: "Longsword"})
	s.store.Put("gear:handaxe", &entities.ItemData{ID: "gear:handaxe", Type: rules.ItemTypeEquipment, Name: "Handaxe"})
	s.store.Put("gear:shield", &entities.ItemData{ID: "gear:shield", Type: rules.ItemTypeEquipment, Name: "Shield"})

	eq := s.build(s.fighter(), &entities.AdvancementConfig{
		ID:    "gear",
		Type:  string(advancement.TypeEquipment),
		Level: entities.LevelSpec{Value: intPtr(1)},
		Equipment: &entities.EquipmentConfig{
			Entries: []*entities.EquipmentEntry{
				{Kind: entities.EquipmentEntryItem, Reference: "gear:shield"},
				{Kind: entities.EquipmentEntryOr, Children: []*entities.EquipmentEntry{
					{Kind: entities.EquipmentEntryItem, Reference: "gear:longsword"},
					{Kind: entities.EquipmentEntryItem, Reference: "gear:handaxe", Count: 2},
				}},
			},
		},
	})

	s.Require().NoError(eq.Apply(s.ctx, 1,
		&advancement.ApplyData{References: []string{"gear:handaxe"}}, advancement.Options{}))

	// Shield plus two handaxes.
	s.Require().Len(s.char.Items, 4)
	refs := make(map[string]int)
	for _, item := range s.char.Items[1:] {
		refs[item.SourceRef]++
	}
	s.Assert().Equal(1, refs["gear:shield"])
	s.Assert().Equal(2, refs["gear:handaxe"])

	s.Require().NoError(eq.Reverse(s.ctx, 1, advancement.Options{}))
	s.Assert().Len(s.char.Items, 1)
}

func (s *VariantsTestSuite) TestEquipmentBackfillTakesFirstOption() {
	s.store.Put("gear:longsword", &entities.ItemData{ID: "gear:longsword", Type: rules.ItemTypeEquipment, Name: "Longsword"})
	s.store.Put("gear:handaxe", &entities.ItemData{ID: "gear:handaxe", Type: rules.ItemTypeEquipment, Name: "Handaxe"})

	eq := s.build(s.fighter(), &entities.AdvancementConfig{
		ID:    "gear",
		Type:  string(advancement.TypeEquipment),
		Level: entities.LevelSpec{Value: intPtr(1)},
		Equipment: &entities.EquipmentConfig{
			Entries: []*entities.EquipmentEntry{
				{Kind: entities.EquipmentEntryOr, Children: []*entities.EquipmentEntry{
					{Kind: entities.EquipmentEntryItem, Reference: "gear:longsword"},
					{Kind: entities.EquipmentEntryItem, Reference: "gear:handaxe"},
				}},
			},
		},
	})

	s.Require().NoError(eq.Apply(s.ctx, 1, nil, advancement.Options{Initial: true}))
	s.Require().Len(s.char.Items, 2)
	s.Assert().Equal("gear:longsword", s.char.Items[1].SourceRef)
}

func (s *VariantsTestSuite) TestPrepareWarnings() {
	key := s.build(s.fighter(), &entities.AdvancementConfig{
		ID:         "key",
		Type:       string(advancement.TypeKeyAbility),
		KeyAbility: &entities.KeyAbilityConfig{Choices: []string{rules.AbilityStrength, rules.AbilityDexterity}},
	})

	sink := notifications.NewSink()
	key.PrepareWarnings(1, sink)
	s.Assert().Equal(1, sink.Len())

	s.Require().NoError(key.Apply(s.ctx, 1,
		&advancement.ApplyData{Ability: rules.AbilityDexterity}, advancement.Options{}))

	sink.Clear()
	key.PrepareWarnings(1, sink)
	s.Assert().Equal(0, sink.Len())
}
