package sheet_test

import (
	"context"
	"testing"

	"github.com/KirkDiggler/rpg-toolkit/events"
	"github.com/stretchr/testify/suite"

	"github.com/greyhollow/sheet-api/internal/advancement"
	"github.com/greyhollow/sheet-api/internal/content"
	"github.com/greyhollow/sheet-api/internal/entities"
	"github.com/greyhollow/sheet-api/internal/pkg/idgen"
	"github.com/greyhollow/sheet-api/internal/rules"
	"github.com/greyhollow/sheet-api/internal/sheet"
)

// recordingBus satisfies events.EventBus and captures published events.
type recordingBus struct {
	published []events.Event
}

func (b *recordingBus) Publish(_ context.Context, e events.Event) error {
	b.published = append(b.published, e)
	return nil
}
func (b *recordingBus) Subscribe(_ string, _ events.Handler) string                { return "sub-id" }
func (b *recordingBus) SubscribeFunc(_ string, _ int, _ events.HandlerFunc) string { return "sub-id" }
func (b *recordingBus) Unsubscribe(_ string) error                                 { return nil }
func (b *recordingBus) Clear(_ string)                                             {}
func (b *recordingBus) ClearAll()                                                  {}

type SheetTestSuite struct {
	suite.Suite
	ctx      context.Context
	env      *advancement.Env
	bus      *recordingBus
	preparer *sheet.Preparer
	char     *entities.CharacterData
}

func TestSheetSuite(t *testing.T) {
	suite.Run(t, new(SheetTestSuite))
}

func (s *SheetTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.env = &advancement.Env{
		Content: content.NewMemoryStore(),
		IDs:     idgen.NewSequential("item"),
	}
	s.Require().NoError(s.env.Validate())

	s.bus = &recordingBus{}
	preparer, err := sheet.NewPreparer(&sheet.PreparerConfig{
		Env:      s.env,
		EventBus: s.bus,
	})
	s.Require().NoError(err)
	s.preparer = preparer

	s.char = &entities.CharacterData{
		ID:   "char-1",
		Name: "Laudna",
		Abilities: map[string]*entities.AbilityData{
			rules.AbilityStrength:     {Value: 16},
			rules.AbilityConstitution: {Value: 14},
		},
		Attributes: entities.AttributesData{HP: entities.HPData{Bonus: 1}},
		Items: []*entities.ItemData{
			{
				ID:            "fighter-1",
				Type:          rules.ItemTypeClass,
				Name:          "Fighter",
				Identifier:    "fighter",
				Levels:        3,
				OriginalClass: true,
				Advancements: []*entities.AdvancementConfig{
					{
						ID:        "hp",
						Type:      "hitPoints",
						HitPoints: &entities.HitPointsConfig{Die: 10},
					},
					{
						ID:         "key",
						Type:       "keyAbility",
						KeyAbility: &entities.KeyAbilityConfig{Choices: []string{rules.AbilityStrength}},
					},
				},
			},
		},
	}
}

// applyAll backfills every advancement on the fighter up to its class level.
func (s *SheetTestSuite) applyAll() {
	item := s.char.Item("fighter-1")
	coll, err := advancement.NewCollection(s.char, item, s.env)
	s.Require().NoError(err)
	for level := 1; level <= item.Levels; level++ {
		for _, adv := range coll.ByLevel(level) {
			var data *advancement.ApplyData
			if adv.Type() == advancement.TypeHitPoints && level > 1 {
				data = &advancement.ApplyData{HitPoints: "avg"}
			}
			s.Require().NoError(adv.Apply(s.ctx, level, data, advancement.Options{Initial: true}))
		}
	}
}

func (s *SheetTestSuite) TestPrepareDerivesHitPoints() {
	s.applyAll()

	prepared, err := s.preparer.Prepare(s.ctx, s.char)
	s.Require().NoError(err)

	// d10 max at 1 (10) + avg (6) twice, +2 con per level, +1 flat bonus.
	s.Assert().Equal(29, prepared.HPMax)
}

func (s *SheetTestSuite) TestPrepareRunsOverlay() {
	s.applyAll()

	prepared, err := s.preparer.Prepare(s.ctx, s.char)
	s.Require().NoError(err)

	// Key ability folds +1 onto the persisted strength of 16.
	got, ok := prepared.Overrides.Value("abilities.strength.value")
	s.Require().True(ok)
	s.Assert().Equal(float64(17), got)
}

func (s *SheetTestSuite) TestPrepareGathersWarnings() {
	// No choices applied yet: hit points levels 1..3 and the key ability
	// are all pending.
	prepared, err := s.preparer.Prepare(s.ctx, s.char)
	s.Require().NoError(err)
	s.Assert().Equal(4, prepared.Warnings.Len())

	s.applyAll()
	prepared, err = s.preparer.Prepare(s.ctx, s.char)
	s.Require().NoError(err)
	s.Assert().Equal(0, prepared.Warnings.Len())
}

func (s *SheetTestSuite) TestPreparePublishesEvent() {
	prepared, err := s.preparer.Prepare(s.ctx, s.char)
	s.Require().NoError(err)
	s.Require().NotNil(prepared)

	s.Require().Len(s.bus.published, 1)
	s.Assert().Equal(sheet.EventCharacterRecomputed, s.bus.published[0].Type())
}

func (s *SheetTestSuite) TestAdvancementsForLevel() {
	prepared, err := s.preparer.Prepare(s.ctx, s.char)
	s.Require().NoError(err)

	advs := prepared.AdvancementsForLevel(advancement.Levels{
		Character:  1,
		Class:      1,
		Identifier: "fighter",
	})
	s.Require().Len(advs, 2)
	s.Assert().Equal("hp", advs[0].ID())
	s.Assert().Equal("key", advs[1].ID())

	s.Assert().Empty(prepared.AdvancementsForLevel(advancement.Levels{
		Character:  1,
		Class:      1,
		Identifier: "wizard",
	}))
}

func (s *SheetTestSuite) TestBaseValue() {
	v, ok := sheet.BaseValue(s.char, "abilities.constitution.value")
	s.Require().True(ok)
	s.Assert().Equal(float64(14), v)

	v, ok = sheet.BaseValue(s.char, "attributes.hp.bonus")
	s.Require().True(ok)
	s.Assert().Equal(float64(1), v)

	_, ok = sheet.BaseValue(s.char, "details.size")
	s.Assert().False(ok)

	_, ok = sheet.BaseValue(s.char, "abilities.luck.value")
	s.Assert().False(ok)
}
