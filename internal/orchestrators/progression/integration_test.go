package progression_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/greyhollow/sheet-api/internal/advancement"
	"github.com/greyhollow/sheet-api/internal/content"
	"github.com/greyhollow/sheet-api/internal/entities"
	"github.com/greyhollow/sheet-api/internal/orchestrators/progression"
	"github.com/greyhollow/sheet-api/internal/pkg/idgen"
	"github.com/greyhollow/sheet-api/internal/repositories/character"
	"github.com/greyhollow/sheet-api/internal/rules"
	"github.com/greyhollow/sheet-api/internal/sheet"
	"github.com/greyhollow/sheet-api/internal/testutils"
)

// IntegrationTestSuite drives a full leveling lifecycle through the real
// redis repository.
type IntegrationTestSuite struct {
	suite.Suite
	ctx     context.Context
	cleanup func()
	repo    character.Repository
	catalog *content.MemoryStore
	svc     progression.Service
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationTestSuite))
}

func (s *IntegrationTestSuite) SetupTest() {
	s.ctx = context.Background()

	client, cleanup := testutils.CreateTestRedisClient(s.T())
	s.cleanup = cleanup

	repo, err := character.NewRedis(&character.RedisConfig{Client: client})
	s.Require().NoError(err)
	s.repo = repo

	s.catalog = content.NewMemoryStore()
	s.catalog.Put("world:feature:second-wind", &entities.ItemData{
		ID:   "second-wind",
		Type: rules.ItemTypeFeature,
		Name: "Second Wind",
	})
	s.catalog.Put("world:feature:dueling", &entities.ItemData{
		ID:       "dueling",
		Type:     rules.ItemTypeFeature,
		Name:     "Dueling",
		Category: "fighting-style",
	})

	env := &advancement.Env{
		Content: s.catalog,
		IDs:     idgen.NewSequential("granted"),
	}
	s.Require().NoError(env.Validate())

	preparer, err := sheet.NewPreparer(&sheet.PreparerConfig{Env: env})
	s.Require().NoError(err)

	svc, err := progression.NewOrchestrator(&progression.Config{
		CharacterRepo: repo,
		Preparer:      preparer,
		Env:           env,
	})
	s.Require().NoError(err)
	s.svc = svc
}

func (s *IntegrationTestSuite) TearDownTest() {
	if s.cleanup != nil {
		s.cleanup()
	}
}

func (s *IntegrationTestSuite) fetch(id string) *entities.CharacterData {
	out, err := s.repo.Get(s.ctx, character.GetInput{ID: id})
	s.Require().NoError(err)
	return out.CharacterData
}

func (s *IntegrationTestSuite) TestLevelingLifecycle() {
	_, err := s.repo.Create(s.ctx, character.CreateInput{
		CharacterData: &entities.CharacterData{
			ID:       "char-1",
			PlayerID: "player-1",
			Name:     "Vex",
			Abilities: map[string]*entities.AbilityData{
				rules.AbilityStrength:     {Value: 16},
				rules.AbilityConstitution: {Value: 14},
			},
		},
	})
	s.Require().NoError(err)

	one := 1
	addOutput, err := s.svc.AddItem(s.ctx, &progression.AddItemInput{
		CharacterID: "char-1",
		Item: &entities.ItemData{
			ID:            "fighter-1",
			Type:          rules.ItemTypeClass,
			Name:          "Fighter",
			Identifier:    "fighter",
			Levels:        1,
			OriginalClass: true,
			Advancements: []*entities.AdvancementConfig{
				{
					ID:        "hp",
					Type:      string(advancement.TypeHitPoints),
					HitPoints: &entities.HitPointsConfig{Die: 10},
				},
				{
					ID:            "features-1",
					Type:          string(advancement.TypeGrantFeatures),
					Level:         entities.LevelSpec{Value: &one},
					GrantFeatures: &entities.GrantFeaturesConfig{Items: []string{"world:feature:second-wind"}},
				},
				{
					ID:   "style",
					Type: string(advancement.TypeChooseFeatures),
					ChooseFeatures: &entities.ChooseFeaturesConfig{
						Pool:    []string{"world:feature:dueling"},
						Choices: map[int]int{1: 1},
					},
				},
			},
		},
	})
	s.Require().NoError(err)
	// d10 max plus the constitution modifier.
	s.Assert().Equal(12, addOutput.Sheet.HPMax)

	char := s.fetch("char-1")
	s.Require().Len(char.Items, 2)
	s.Assert().Equal(advancement.HitPointsMax, char.Value("fighter-1", "hp").HitPoints[1])
	s.Require().Len(char.Value("fighter-1", "features-1").AddedAt(1), 1)

	// The feature choice is pending until the player picks.
	s.Assert().NotEmpty(addOutput.Sheet.Warnings.All())

	applyOutput, err := s.svc.ApplyAdvancement(s.ctx, &progression.ApplyAdvancementInput{
		CharacterID:   "char-1",
		ItemID:        "fighter-1",
		AdvancementID: "style",
		Level:         1,
		Data:          &advancement.ApplyData{References: []string{"world:feature:dueling"}},
	})
	s.Require().NoError(err)
	s.Assert().Empty(applyOutput.Sheet.Warnings.All())
	s.Require().Len(s.fetch("char-1").Items, 3)

	for level := 2; level <= 3; level++ {
		levelOutput, err := s.svc.LevelUp(s.ctx, &progression.LevelUpInput{
			CharacterID: "char-1",
			ClassItemID: "fighter-1",
			Data: map[string]*advancement.ApplyData{
				"hp": {HitPoints: advancement.HitPointsAverage},
			},
		})
		s.Require().NoError(err)
		s.Assert().Equal(level, levelOutput.Character.Item("fighter-1").Levels)
	}

	char = s.fetch("char-1")
	s.Assert().Equal(3, char.Level())
	s.Assert().Equal(advancement.HitPointsAverage, char.Value("fighter-1", "hp").HitPoints[3])

	downOutput, err := s.svc.LevelDown(s.ctx, &progression.LevelDownInput{
		CharacterID: "char-1",
		ClassItemID: "fighter-1",
	})
	s.Require().NoError(err)
	s.Assert().Equal(2, downOutput.Character.Item("fighter-1").Levels)
	s.Assert().NotContains(s.fetch("char-1").Value("fighter-1", "hp").HitPoints, 3)

	removeOutput, err := s.svc.RemoveItem(s.ctx, &progression.RemoveItemInput{
		CharacterID: "char-1",
		ItemID:      "fighter-1",
	})
	s.Require().NoError(err)
	s.Assert().Empty(removeOutput.Character.Items)
	s.Assert().Empty(s.fetch("char-1").AdvancementValues)
	s.Assert().Equal(0, removeOutput.Sheet.HPMax)
}
