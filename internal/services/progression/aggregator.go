package progression

import (
	"context"
	"fmt"

	"github.com/greyhelm/charkeep/internal/domain/character"
	"github.com/greyhelm/charkeep/internal/domain/rulebook"
	apperrors "github.com/greyhelm/charkeep/internal/errors"
	"github.com/greyhelm/charkeep/internal/repositories/characters"
)

// MulticlassInfo is a character's combined class picture
type MulticlassInfo struct {
	CharacterID      string
	TotalLevel       int
	ProficiencyBonus int
	Classes          []rulebook.ClassLevelInfo
}

// Aggregator combines per-class level records into totals and evaluates
// multiclass entry prerequisites. It only reads; nothing here mutates state.
type Aggregator struct {
	repository characters.Repository
	rules      RulesClient
}

// NewAggregator creates a new aggregator
func NewAggregator(repository characters.Repository, rules RulesClient) *Aggregator {
	return &Aggregator{
		repository: repository,
		rules:      rules,
	}
}

// Aggregate recomputes total level, proficiency bonus, and per-class
// records from the character's persisted state
func (a *Aggregator) Aggregate(ctx context.Context, characterID string) (*MulticlassInfo, error) {
	char, err := a.repository.Get(ctx, characterID)
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to aggregate character '%s'", characterID)
	}

	return AggregateCharacter(char), nil
}

// AggregateCharacter derives the multiclass picture from an already
// fetched snapshot
func AggregateCharacter(char *character.Character) *MulticlassInfo {
	classes := make([]rulebook.ClassLevelInfo, 0, len(char.Classes))
	for _, cls := range char.Classes {
		classes = append(classes, rulebook.ClassLevelInfo{
			ClassKey:   cls.ClassKey,
			ClassName:  cls.ClassName,
			ClassLevel: cls.Level,
			HitDie:     cls.HitDie,
		})
	}

	totalLevel := char.TotalLevel()
	return &MulticlassInfo{
		CharacterID:      char.ID,
		TotalLevel:       totalLevel,
		ProficiencyBonus: character.ProficiencyBonusForLevel(totalLevel),
		Classes:          classes,
	}
}

// CheckMulticlassEntry decides whether the character may take a first
// level in candidateClass. Entry requires the candidate's prerequisites
// AND the prerequisites of every class already held; a character may not
// pick up a new class while failing a held class's requirement. A
// catalog failure is an error, not a denied prerequisite.
func (a *Aggregator) CheckMulticlassEntry(ctx context.Context, char *character.Character, candidateClass *rulebook.Class) (bool, string, error) {
	scores := char.AbilityScores()

	for _, req := range candidateClass.MulticlassRequirements {
		if !req.Met(scores) {
			return false, fmt.Sprintf("requires %s %d to enter %s",
				describeAbilities(req), req.MinimumScore, candidateClass.Name), nil
		}
	}

	for _, held := range char.Classes {
		heldClass, err := a.rules.GetClass(ctx, held.ClassKey)
		if err != nil {
			return false, "", apperrors.Wrapf(err, "failed to load held class '%s'", held.ClassKey)
		}
		for _, req := range heldClass.MulticlassRequirements {
			if !req.Met(scores) {
				return false, fmt.Sprintf("no longer meets %s %d required by %s",
					describeAbilities(req), req.MinimumScore, heldClass.Name), nil
			}
		}
	}

	return true, "", nil
}

func describeAbilities(req rulebook.MulticlassRequirement) string {
	if len(req.Abilities) == 0 {
		return "no ability"
	}

	out := string(req.Abilities[0])
	for _, ability := range req.Abilities[1:] {
		out += " or " + string(ability)
	}
	return out
}
