package characters

import (
	"context"
	"sync"
	"time"

	"github.com/greyhelm/charkeep/internal/domain/character"
	apperrors "github.com/greyhelm/charkeep/internal/errors"
	"github.com/greyhelm/charkeep/internal/uuid"
)

// InMemoryRepository is an in-memory implementation of the character
// repository, used for tests and local development
type InMemoryRepository struct {
	mu            sync.RWMutex
	characters    map[string]*character.Character
	uuidGenerator uuid.Generator
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		characters:    make(map[string]*character.Character),
		uuidGenerator: uuid.NewGoogleUUIDGenerator(),
	}
}

// Create stores a new character
func (r *InMemoryRepository) Create(ctx context.Context, char *character.Character) error {
	if char == nil {
		return apperrors.InvalidArgument("character cannot be nil")
	}
	if char.OwnerID == "" {
		return apperrors.InvalidArgument("character owner ID is required")
	}
	if char.ID == "" {
		char.ID = r.uuidGenerator.New()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.characters[char.ID]; exists {
		return apperrors.AlreadyExistsf("character with ID '%s' already exists", char.ID).
			WithMeta("character_id", char.ID)
	}

	stored := char.Clone()
	stored.Version = 1
	stored.UpdatedAt = time.Now().UTC()
	r.characters[char.ID] = stored

	char.Version = stored.Version
	char.UpdatedAt = stored.UpdatedAt
	return nil
}

// Get retrieves a character snapshot by ID
func (r *InMemoryRepository) Get(ctx context.Context, id string) (*character.Character, error) {
	if id == "" {
		return nil, apperrors.InvalidArgument("character ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	char, exists := r.characters[id]
	if !exists {
		return nil, apperrors.NotFoundf("character with ID '%s' not found", id).
			WithMeta("character_id", id)
	}

	return char.Clone(), nil
}

// GetByOwner retrieves all characters for an owner
func (r *InMemoryRepository) GetByOwner(ctx context.Context, ownerID string) ([]*character.Character, error) {
	if ownerID == "" {
		return nil, apperrors.InvalidArgument("owner ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*character.Character
	for _, char := range r.characters {
		if char.OwnerID == ownerID {
			result = append(result, char.Clone())
		}
	}

	return result, nil
}

// UpdateWithVersion writes the character only if the stored version still
// equals expectedVersion. The mutex makes the check-and-write atomic.
func (r *InMemoryRepository) UpdateWithVersion(ctx context.Context, char *character.Character, expectedVersion int64) error {
	if char == nil {
		return apperrors.InvalidArgument("character cannot be nil")
	}
	if char.ID == "" {
		return apperrors.InvalidArgument("character ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.characters[char.ID]
	if !exists {
		return apperrors.NotFoundf("character with ID '%s' not found", char.ID).
			WithMeta("character_id", char.ID)
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
	r.characters[char.ID] = updated

	char.Version = updated.Version
	char.UpdatedAt = updated.UpdatedAt
	return nil
}

// Delete removes a character
func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidArgument("character ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.characters[id]; !exists {
		return apperrors.NotFoundf("character with ID '%s' not found", id).
			WithMeta("character_id", id)
	}

	delete(r.characters, id)
	return nil
}
