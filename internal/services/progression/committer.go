package progression

import (
	"context"

	"github.com/greyhelm/charkeep/internal/domain/character"
	"github.com/greyhelm/charkeep/internal/domain/progression"
	"github.com/greyhelm/charkeep/internal/domain/rulebook"
	"github.com/greyhelm/charkeep/internal/domain/shared"
	apperrors "github.com/greyhelm/charkeep/internal/errors"
)

// Committer applies a validated progression result to the stored
// character. The write is conditioned on the version read when the
// snapshot was taken, so concurrent commits against the same character
// lose instead of clobbering each other.
type Committer struct {
	repository Repository
}

// NewCommitter creates a new committer
func NewCommitter(repository Repository) *Committer {
	if repository == nil {
		panic("character repository cannot be nil")
	}
	return &Committer{repository: repository}
}

// Commit persists the level-up delta. All fields of the result land in
// one conditional write keyed on expectedVersion, the version of the
// snapshot the result was validated against; a partial application is
// never observable and a character mutated since that snapshot is never
// written over.
func (c *Committer) Commit(ctx context.Context, characterID string, result *progression.Result, expectedVersion int64) (*character.Character, error) {
	if result == nil {
		return nil, apperrors.InvalidArgument("progression result cannot be nil")
	}

	char, err := c.repository.Get(ctx, characterID)
	if err != nil {
		return nil, err
	}

	if recordMatches(char.LastLevelUp, result) {
		return nil, apperrors.AlreadyAppliedf(
			"level %d of %s was already applied to character '%s'",
			result.NewClassLevel, result.ClassKey, characterID).
			WithMeta("character_id", characterID)
	}

	if char.Version != expectedVersion {
		return nil, apperrors.ConcurrencyConflictf(
			"character '%s' changed since the level-up was prepared (version %d, expected %d)",
			characterID, char.Version, expectedVersion).
			WithMeta("character_id", characterID)
	}

	updated := char.Clone()
	applyResult(updated, result)

	err = c.repository.UpdateWithVersion(ctx, updated, expectedVersion)
	if err == nil {
		return updated, nil
	}

	if apperrors.IsConcurrencyConflict(err) {
		// A retried request may have raced its own earlier attempt. If
		// the stored character already carries this exact level-up the
		// retry is a duplicate, not a conflict.
		fresh, getErr := c.repository.Get(ctx, characterID)
		if getErr == nil && recordMatches(fresh.LastLevelUp, result) {
			return nil, apperrors.AlreadyAppliedf(
				"level %d of %s was already applied to character '%s'",
				result.NewClassLevel, result.ClassKey, characterID).
				WithMeta("character_id", characterID)
		}
	}

	return nil, err
}

func recordMatches(record *character.LevelUpRecord, result *progression.Result) bool {
	return record != nil && record.ClassKey == result.ClassKey && record.Level == result.NewClassLevel
}

// applyResult mutates the snapshot in place. It assumes the result was
// validated against this character's current state.
func applyResult(char *character.Character, result *progression.Result) {
	if result.NewClass {
		char.Classes = append(char.Classes, &character.CharacterClass{
			ClassKey:  result.ClassKey,
			ClassName: result.ClassName,
			Level:     result.NewClassLevel,
			HitDie:    result.HitDie,
		})
	} else if cls := char.Class(result.ClassKey); cls != nil {
		cls.Level = result.NewClassLevel
	}

	char.MaxHitPoints += result.HPIncrease
	char.CurrentHitPoints += result.HPIncrease

	for attr, increase := range result.StatIncreases {
		if char.Attributes == nil {
			char.Attributes = make(map[shared.Attribute]*character.AbilityScore)
		}
		score, ok := char.Attributes[attr]
		if !ok || score == nil {
			score = &character.AbilityScore{}
			char.Attributes[attr] = score
		}
		score.Increase(increase)
	}

	if result.SubclassKey != "" {
		if cls := char.Class(result.ClassKey); cls != nil {
			cls.SubclassKey = result.SubclassKey
			cls.SubclassName = result.SubclassName
		}
	}

	if result.FeatKey != "" {
		char.Feats = append(char.Feats, result.FeatKey)
		char.Features = append(char.Features, &rulebook.CharacterFeature{
			Key:    result.FeatKey,
			Name:   result.FeatKey,
			Source: "feat",
			Level:  result.NewTotalLevel,
		})
	}

	totalLevel := result.NewTotalLevel
	for _, key := range result.FeatureKeys {
		if char.HasFeature(key) {
			continue
		}
		char.Features = append(char.Features, &rulebook.CharacterFeature{
			Key:    key,
			Name:   key,
			Source: "class",
			Level:  totalLevel,
		})
	}

	for featureKey, optionKeys := range result.OptionalSelections {
		for _, optionKey := range optionKeys {
			char.Features = append(char.Features, &rulebook.CharacterFeature{
				Key:    featureKey + ":" + optionKey,
				Name:   optionKey,
				Source: "choice",
				Level:  totalLevel,
			})
		}
	}

	if len(result.NewSpellKeys) > 0 {
		if char.KnownSpells == nil {
			char.KnownSpells = make(map[string][]string)
		}
		char.KnownSpells[result.ClassKey] = append(char.KnownSpells[result.ClassKey], result.NewSpellKeys...)
	}

	for _, prof := range result.GrantedProficiencies {
		if prof == nil || char.HasProficiency(prof.Key) {
			continue
		}
		if char.Proficiencies == nil {
			char.Proficiencies = make(map[rulebook.ProficiencyType][]*rulebook.Proficiency)
		}
		profCopy := *prof
		char.Proficiencies[prof.Type] = append(char.Proficiencies[prof.Type], &profCopy)
	}

	char.LastLevelUp = &character.LevelUpRecord{
		ClassKey: result.ClassKey,
		Level:    result.NewClassLevel,
	}
}
