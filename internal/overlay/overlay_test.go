package overlay_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/greyhollow/sheet-api/internal/advancement"
	"github.com/greyhollow/sheet-api/internal/content"
	"github.com/greyhollow/sheet-api/internal/delta"
	"github.com/greyhollow/sheet-api/internal/entities"
	"github.com/greyhollow/sheet-api/internal/overlay"
	"github.com/greyhollow/sheet-api/internal/pkg/idgen"
	"github.com/greyhollow/sheet-api/internal/rules"
)

type OverlayTestSuite struct {
	suite.Suite
	engine *overlay.Engine
	env    *advancement.Env
}

func TestOverlaySuite(t *testing.T) {
	suite.Run(t, new(OverlayTestSuite))
}

func (s *OverlayTestSuite) SetupTest() {
	s.env = &advancement.Env{
		Content: content.NewMemoryStore(),
		IDs:     idgen.NewSequential("item"),
	}
	s.Require().NoError(s.env.Validate())

	schema := delta.NewSchema()
	s.Require().NoError(schema.Define("abilities.*.value", delta.FieldNumber))
	s.Require().NoError(schema.Define("abilities.*.save", delta.FieldTier))
	s.Require().NoError(schema.Define("details.size", delta.FieldString))
	s.Require().NoError(schema.Define("traits.languages", delta.FieldSet))
	s.Require().NoError(schema.Define("attributes.hp.bonus", delta.FieldNumber))

	interp, err := delta.NewInterpreter(&delta.InterpreterConfig{
		Registry: delta.DefaultRegistry(),
		Schema:   schema,
	})
	s.Require().NoError(err)

	engine, err := overlay.New(&overlay.Config{
		Interpreter: interp,
		Env:         s.env,
		Base:        baseAbilities,
	})
	s.Require().NoError(err)
	s.engine = engine
}

// baseAbilities seeds ability value paths from persisted character state.
func baseAbilities(char *entities.CharacterData, key string) (any, bool) {
	for name, ability := range char.Abilities {
		if key == "abilities."+name+".value" {
			return float64(ability.Value), true
		}
	}
	return nil, false
}

func (s *OverlayTestSuite) newCharacter(advancements ...*entities.AdvancementConfig) *entities.CharacterData {
	return &entities.CharacterData{
		ID:   "char-1",
		Name: "Orym",
		Abilities: map[string]*entities.AbilityData{
			rules.AbilityStrength: {Value: 15},
		},
		Items: []*entities.ItemData{
			{
				ID:            "fighter-1",
				Type:          rules.ItemTypeClass,
				Name:          "Fighter",
				Identifier:    "fighter",
				Levels:        3,
				OriginalClass: true,
				Advancements:  advancements,
			},
		},
	}
}

func propertyConfig(id string, changes ...entities.ChangeSpec) *entities.AdvancementConfig {
	return &entities.AdvancementConfig{
		ID:       id,
		Type:     "property",
		Property: &entities.PropertyConfig{Changes: changes},
	}
}

func (s *OverlayTestSuite) TestPriorityOrdering() {
	// The override must win regardless of declaration order.
	declarations := [][]entities.ChangeSpec{
		{
			{Key: "abilities.strength.value", Mode: "add", Value: "2"},
			{Key: "abilities.strength.value", Mode: "override", Value: "10"},
		},
		{
			{Key: "abilities.strength.value", Mode: "override", Value: "10"},
			{Key: "abilities.strength.value", Mode: "add", Value: "2"},
		},
	}

	for _, specs := range declarations {
		char := s.newCharacter(propertyConfig("prop", specs...))
		out, err := s.engine.Run(char)
		s.Require().NoError(err)

		got, ok := out.Value("abilities.strength.value")
		s.Require().True(ok)
		s.Assert().Equal(float64(10), got)
	}
}

func (s *OverlayTestSuite) TestBaseValueSeedsAccumulator() {
	char := s.newCharacter(propertyConfig("prop",
		entities.ChangeSpec{Key: "abilities.strength.value", Mode: "add", Value: "2"}))

	out, err := s.engine.Run(char)
	s.Require().NoError(err)

	got, ok := out.Value("abilities.strength.value")
	s.Require().True(ok)
	s.Assert().Equal(float64(17), got)
}

func (s *OverlayTestSuite) TestClassLevelChangesFoldOnce() {
	// A key ability on a 3-level class contributes its +1 exactly once even
	// though character levels 1..3 all resolve to it.
	char := s.newCharacter(&entities.AdvancementConfig{
		ID:         "key",
		Type:       "keyAbility",
		KeyAbility: &entities.KeyAbilityConfig{Choices: []string{rules.AbilityStrength}},
	})
	key, err := advancement.New(char, char.Item("fighter-1"), char.Item("fighter-1").Advancements[0], s.env)
	s.Require().NoError(err)
	s.Require().NoError(key.Apply(s.T().Context(), 1, nil, advancement.Options{Initial: true}))

	out, err := s.engine.Run(char)
	s.Require().NoError(err)

	got, ok := out.Value("abilities.strength.value")
	s.Require().True(ok)
	s.Assert().Equal(float64(16), got)
	s.Require().Len(out.Sources("abilities.strength.value"), 1)
	s.Assert().Equal("key", out.Sources("abilities.strength.value")[0].AdvancementID)
}

func (s *OverlayTestSuite) TestDeterminism() {
	char := s.newCharacter(propertyConfig("prop",
		entities.ChangeSpec{Key: "abilities.strength.value", Mode: "add", Value: "2"},
		entities.ChangeSpec{Key: "traits.languages", Mode: "add", Value: "elvish,common"},
		entities.ChangeSpec{Key: "details.size", Mode: "override", Value: "medium"},
	))

	first, err := s.engine.Run(char)
	s.Require().NoError(err)
	second, err := s.engine.Run(char)
	s.Require().NoError(err)

	firstJSON, err := json.Marshal(first.Tree())
	s.Require().NoError(err)
	secondJSON, err := json.Marshal(second.Tree())
	s.Require().NoError(err)
	s.Assert().Equal(firstJSON, secondJSON)
	s.Assert().Equal(first.Keys(), second.Keys())
}

func (s *OverlayTestSuite) TestTreeExpansion() {
	char := s.newCharacter(propertyConfig("prop",
		entities.ChangeSpec{Key: "abilities.strength.value", Mode: "add", Value: "2"},
		entities.ChangeSpec{Key: "attributes.hp.bonus", Mode: "add", Value: "3"},
	))

	out, err := s.engine.Run(char)
	s.Require().NoError(err)

	tree := out.Tree()
	abilities, ok := tree["abilities"].(map[string]any)
	s.Require().True(ok)
	strength, ok := abilities["strength"].(map[string]any)
	s.Require().True(ok)
	s.Assert().Equal(float64(17), strength["value"])

	attributes, ok := tree["attributes"].(map[string]any)
	s.Require().True(ok)
	hp, ok := attributes["hp"].(map[string]any)
	s.Require().True(ok)
	s.Assert().Equal(float64(3), hp["bonus"])
}

func (s *OverlayTestSuite) TestMalformedChangeIsSkipped() {
	char := s.newCharacter(propertyConfig("prop",
		entities.ChangeSpec{Key: "abilities.strength.value", Mode: "add", Value: "not-a-number"},
		entities.ChangeSpec{Key: "attributes.hp.bonus", Mode: "add", Value: "3"},
	))

	out, err := s.engine.Run(char)
	s.Require().NoError(err)

	_, ok := out.Value("abilities.strength.value")
	s.Assert().False(ok)

	got, ok := out.Value("attributes.hp.bonus")
	s.Require().True(ok)
	s.Assert().Equal(float64(3), got)
}
