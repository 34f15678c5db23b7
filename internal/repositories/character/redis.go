package character

import (
	"context"
	"encoding/json"

	redis "github.com/redis/go-redis/v9"

	"github.com/greyhollow/sheet-api/internal/entities"
	"github.com/greyhollow/sheet-api/internal/errors"
	"github.com/greyhollow/sheet-api/internal/pkg/clock"
	redisclient "github.com/greyhollow/sheet-api/internal/redis"
)

const (
	characterKeyPrefix = "character:"
	playerIndexPrefix  = "character:player:"

	// Error messages
	errCharacterNil     = "character cannot be nil"
	errCharacterIDEmpty = "character ID cannot be empty"
	errPlayerIDEmpty    = "player ID cannot be empty"
)

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
}

// RedisConfig contains configuration for the Redis character repository.
type RedisConfig struct {
	Client redisclient.Client
	Clock  clock.Clock
}

// Validate validates the RedisConfig.
func (cfg *RedisConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Client == nil {
		return errors.InvalidArgument("client cannot be nil")
	}
	return nil
}

// NewRedis creates a new Redis-backed character repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Use real clock if none provided
	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}

	return &redisRepository{
		client: cfg.Client,
		clock:  c,
	}, nil
}

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.CharacterData == nil {
		return nil, errors.InvalidArgument(errCharacterNil)
	}
	if input.CharacterData.ID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	key := characterKeyPrefix + input.CharacterData.ID

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists > 0 {
		return nil, errors.AlreadyExistsf("character with ID %s already exists", input.CharacterData.ID)
	}

	now := r.clock.Now().Unix()
	input.CharacterData.CreatedAt = now
	input.CharacterData.UpdatedAt = now

	data, err := json.Marshal(input.CharacterData)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal character data")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data, 0) // No TTL for characters
	if input.CharacterData.PlayerID != "" {
		playerKey := playerIndexPrefix + input.CharacterData.PlayerID
		pipe.SAdd(ctx, playerKey, input.CharacterData.ID)
	}
	if _, err = pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to create character")
	}

	return &CreateOutput{CharacterData: input.CharacterData}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	key := characterKeyPrefix + input.ID
	result, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("character with ID %s not found", input.ID)
		}
		return nil, errors.Wrapf(err, "failed to get character")
	}

	var charData entities.CharacterData
	if err := json.Unmarshal([]byte(result), &charData); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal character data")
	}

	return &GetOutput{CharacterData: &charData}, nil
}

func (r *redisRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.CharacterData == nil {
		return nil, errors.InvalidArgument(errCharacterNil)
	}
	if input.CharacterData.ID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	key := characterKeyPrefix + input.CharacterData.ID

	// Get existing character to check indexes
	result, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("character with ID %s not found", input.CharacterData.ID)
		}
		return nil, errors.Wrapf(err, "failed to get character")
	}

	var existing entities.CharacterData
	if err := json.Unmarshal([]byte(result), &existing); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal existing character data")
	}

	input.CharacterData.UpdatedAt = r.clock.Now().Unix()

	data, err := json.Marshal(input.CharacterData)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal character data")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data, 0)

	// Update player index if changed
	if existing.PlayerID != input.CharacterData.PlayerID {
		if existing.PlayerID != "" {
			oldPlayerKey := playerIndexPrefix + existing.PlayerID
			pipe.SRem(ctx, oldPlayerKey, input.CharacterData.ID)
		}
		if input.CharacterData.PlayerID != "" {
			newPlayerKey := playerIndexPrefix + input.CharacterData.PlayerID
			pipe.SAdd(ctx, newPlayerKey, input.CharacterData.ID)
		}
	}

	if _, err = pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to update character")
	}

	return &UpdateOutput{CharacterData: input.CharacterData}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	// Get character to find indexes
	getOutput, err := r.Get(ctx, GetInput(input))
	if err != nil {
		return nil, err
	}
	charData := getOutput.CharacterData

	pipe := r.client.TxPipeline()
	key := characterKeyPrefix + input.ID
	pipe.Del(ctx, key)
	if charData.PlayerID != "" {
		playerKey := playerIndexPrefix + charData.PlayerID
		pipe.SRem(ctx, playerKey, input.ID)
	}
	if _, err = pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to delete character")
	}

	return &DeleteOutput{}, nil
}

func (r *redisRepository) ListByPlayerID(
	ctx context.Context,
	input ListByPlayerIDInput,
) (*ListByPlayerIDOutput, error) {
	if input.PlayerID == "" {
		return nil, errors.InvalidArgument(errPlayerIDEmpty)
	}

	indexKey := playerIndexPrefix + input.PlayerID
	characterIDs, err := r.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get characters from index %s", indexKey)
	}

	characters := make([]*entities.CharacterData, 0, len(characterIDs))
	for _, id := range characterIDs {
		getOutput, err := r.Get(ctx, GetInput{ID: id})
		if err != nil {
			// If character doesn't exist, clean up the index
			if errors.IsNotFound(err) {
				r.client.SRem(ctx, indexKey, id)
				continue
			}
			return nil, errors.Wrapf(err, "failed to get character %s", id)
		}
		characters = append(characters, getOutput.CharacterData)
	}

	return &ListByPlayerIDOutput{Characters: characters}, nil
}

func (r *redisRepository) AddItems(ctx context.Context, input AddItemsInput) (*AddItemsOutput, error) {
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}
	if len(input.Items) == 0 {
		return nil, errors.InvalidArgument("items cannot be empty")
	}
	for _, item := range input.Items {
		if item == nil || item.ID == "" {
			return nil, errors.InvalidArgument("every item needs an ID")
		}
	}

	getOutput, err := r.Get(ctx, GetInput{ID: input.CharacterID})
	if err != nil {
		return nil, err
	}
	charData := getOutput.CharacterData

	for _, item := range input.Items {
		if charData.Item(item.ID) != nil {
			return nil, errors.AlreadyExistsf("character already holds item %s", item.ID)
		}
		charData.AddItem(item)
	}

	updated, err := r.Update(ctx, UpdateInput{CharacterData: charData})
	if err != nil {
		return nil, err
	}
	return &AddItemsOutput{CharacterData: updated.CharacterData}, nil
}

func (r *redisRepository) RemoveItems(ctx context.Context, input RemoveItemsInput) (*RemoveItemsOutput, error) {
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}
	if len(input.ItemIDs) == 0 {
		return nil, errors.InvalidArgument("item IDs cannot be empty")
	}

	getOutput, err := r.Get(ctx, GetInput{ID: input.CharacterID})
	if err != nil {
		return nil, err
	}
	charData := getOutput.CharacterData

	for _, id := range input.ItemIDs {
		if !charData.RemoveItem(id) {
			return nil, errors.NotFoundf("character does not hold item %s", id)
		}
	}

	updated, err := r.Update(ctx, UpdateInput{CharacterData: charData})
	if err != nil {
		return nil, err
	}
	return &RemoveItemsOutput{CharacterData: updated.CharacterData}, nil
}
