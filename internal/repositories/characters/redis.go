package characters

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/greyhelm/charkeep/internal/domain/character"
	apperrors "github.com/greyhelm/charkeep/internal/errors"
	"github.com/greyhelm/charkeep/internal/uuid"
)

// redisRepo implements Repository using Redis. Characters are stored as
// JSON documents keyed by id, with per-owner index sets.
type redisRepo struct {
	client        redis.UniversalClient
	uuidGenerator uuid.Generator
}

// RedisRepoConfig holds configuration for the Redis repository
type RedisRepoConfig struct {
	Client        redis.UniversalClient
	UUIDGenerator uuid.Generator
}

// NewRedisRepository creates a new Redis-backed character repository
func NewRedisRepository(cfg *RedisRepoConfig) Repository {
	if cfg == nil {
		panic("RedisRepoConfig cannot be nil")
	}
	if cfg.Client == nil {
		panic("Redis client cannot be nil")
	}
	if cfg.UUIDGenerator == nil {
		cfg.UUIDGenerator = uuid.NewGoogleUUIDGenerator()
	}

	return &redisRepo{
		client:        cfg.Client,
		uuidGenerator: cfg.UUIDGenerator,
	}
}

func (r *redisRepo) key(id string) string {
	return fmt.Sprintf("character:%s", id)
}

func (r *redisRepo) ownerKey(ownerID string) string {
	return fmt.Sprintf("owner:%s:characters", ownerID)
}

// Create stores a new character
func (r *redisRepo) Create(ctx context.Context, char *character.Character) error {
	if char == nil {
		return apperrors.InvalidArgument("character cannot be nil")
	}
	if char.OwnerID == "" {
		return apperrors.InvalidArgument("character owner ID is required")
	}
	if char.ID == "" {
		char.ID = r.uuidGenerator.New()
	}

	exists, err := r.client.Exists(ctx, r.key(char.ID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check character existence: %w", err)
	}
	if exists > 0 {
		return apperrors.AlreadyExistsf("character with ID '%s' already exists", char.ID).
			WithMeta("character_id", char.ID)
	}

	stored := char.Clone()
	stored.Version = 1
	stored.UpdatedAt = time.Now().UTC()

	jsonData, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal character: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.key(char.ID), jsonData, 0)
	pipe.SAdd(ctx, r.ownerKey(char.OwnerID), char.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create character: %w", err)
	}

	char.Version = stored.Version
	char.UpdatedAt = stored.UpdatedAt
	return nil
}

// Get retrieves a character snapshot by ID
func (r *redisRepo) Get(ctx context.Context, id string) (*character.Character, error) {
	if id == "" {
		return nil, apperrors.InvalidArgument("character ID is required")
	}

	jsonData, err := r.client.Get(ctx, r.key(id)).Result()
	if err == redis.Nil {
		return nil, apperrors.NotFoundf("character with ID '%s' not found", id).
			WithMeta("character_id", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get character: %w", err)
	}

	var char character.Character
	if unmarshalErr := json.Unmarshal([]byte(jsonData), &char); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal character: %w", unmarshalErr)
	}

	return &char, nil
}

// GetByOwner retrieves all characters for an owner
func (r *redisRepo) GetByOwner(ctx context.Context, ownerID string) ([]*character.Character, error) {
	if ownerID == "" {
		return nil, apperrors.InvalidArgument("owner ID is required")
	}

	ids, err := r.client.SMembers(ctx, r.ownerKey(ownerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list character IDs: %w", err)
	}

	chars := make([]*character.Character, 0, len(ids))
	for _, id := range ids {
		char, err := r.Get(ctx, id)
		if err != nil {
			// Skip index entries whose document is gone
			continue
		}
		chars = append(chars, char)
	}

	return chars, nil
}

// UpdateWithVersion writes the character only if the stored version still
// equals expectedVersion. The WATCH covers the whole read-check-write so a
// concurrent commit aborts the transaction instead of being overwritten.
func (r *redisRepo) UpdateWithVersion(ctx context.Context, char *character.Character, expectedVersion int64) error {
	if char == nil {
		return apperrors.InvalidArgument("character cannot be nil")
	}
	if char.ID == "" {
		return apperrors.InvalidArgument("character ID is required")
	}

	key := r.key(char.ID)

	txf := func(tx *redis.Tx) error {
		jsonData, err := tx.Get(ctx, key).Result()
		if err == redis.Nil {
			return apperrors.NotFoundf("character with ID '%s' not found", char.ID).
				WithMeta("character_id", char.ID)
		}
		if err != nil {
			return fmt.Errorf("failed to get character for update: %w", err)
		}

		var stored character.Character
		if unmarshalErr := json.Unmarshal([]byte(jsonData), &stored); unmarshalErr != nil {
			return fmt.Errorf("failed to unmarshal stored character: %w", unmarshalErr)
		}

		if stored.Version != expectedVersion {
			return apperrors.ConcurrencyConflictf(
				"character '%s' is at version %d, expected %d", char.ID, stored.Version, expectedVersion).
				WithMeta("character_id", char.ID).
				WithMeta("stored_version", stored.Version).
				WithMeta("expected_version", expectedVersion)
		}

		updated := char.Clone()
		updated.Version = expectedVersion + 1
		updated.UpdatedAt = time.Now().UTC()

		payload, err := json.Marshal(updated)
		if err != nil {
			return fmt.Errorf("failed to marshal character: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		if err != nil {
			return err
		}

		char.Version = updated.Version
		char.UpdatedAt = updated.UpdatedAt
		return nil
	}

	err := r.client.Watch(ctx, txf, key)
	if err == redis.TxFailedErr {
		return apperrors.ConcurrencyConflictf("character '%s' was modified concurrently", char.ID).
			WithMeta("character_id", char.ID)
	}
	return err
}

// Delete removes a character and its owner index entry
func (r *redisRepo) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidArgument("character ID is required")
	}

	char, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	pipe := r.client.Pipeline()
	pipe.Del(ctx, r.key(id))
	pipe.SRem(ctx, r.ownerKey(char.OwnerID), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete character: %w", err)
	}

	return nil
}
