package characters

//go:generate mockgen -destination=mock/mock.go -package=mockcharacters -source=interface.go

import (
	"context"

	"github.com/greyhelm/charkeep/internal/domain/character"
)

// Repository defines the interface for character persistence. Writes that
// race level-up commits go through UpdateWithVersion so a stale snapshot
// can never silently overwrite a concurrent change.
type Repository interface {
	// Create stores a new character
	Create(ctx context.Context, char *character.Character) error

	// Get retrieves a character snapshot by ID
	Get(ctx context.Context, id string) (*character.Character, error)

	// GetByOwner retrieves all characters for an owner
	GetByOwner(ctx context.Context, ownerID string) ([]*character.Character, error)

	// UpdateWithVersion writes the character only if the stored version
	// still equals expectedVersion, bumping the version on success.
	// Returns a concurrency_conflict error otherwise.
	UpdateWithVersion(ctx context.Context, char *character.Character, expectedVersion int64) error

	// Delete removes a character
	Delete(ctx context.Context, id string) error
}
