package rules

//go:generate mockgen -destination=mock/mock_client.go -package=mockrules -source=interface.go

import (
	"context"

	"github.com/greyhelm/charkeep/internal/domain/rulebook"
)

// Client is the read-only rule catalog accessor. Progression consumes
// class, subclass, feat, and spell definitions through it and nothing else.
type Client interface {
	// ListClasses returns every class definition
	ListClasses(ctx context.Context) ([]*rulebook.Class, error)

	// GetClass returns one class definition by key
	GetClass(ctx context.Context, key string) (*rulebook.Class, error)

	// GetClassLevel returns the grant table for one class level
	GetClassLevel(ctx context.Context, classKey string, level int) (*rulebook.ClassLevel, error)

	// ListSubclasses returns the subclass options for a class
	ListSubclasses(ctx context.Context, classKey string) ([]*rulebook.Subclass, error)

	// ListFeats returns every feat definition
	ListFeats(ctx context.Context) ([]*rulebook.Feat, error)

	// ListClassSpells returns the spells a class can learn up to the given
	// spell level
	ListClassSpells(ctx context.Context, classKey string, maxSpellLevel int) ([]*rulebook.Spell, error)
}
