package progression

import (
	"context"

	"github.com/greyhelm/charkeep/internal/domain/character"
	"github.com/greyhelm/charkeep/internal/domain/progression"
	"github.com/greyhelm/charkeep/internal/domain/rulebook"
	apperrors "github.com/greyhelm/charkeep/internal/errors"
)

// Resolver derives the ordered decision steps for advancing a character
// one level in a target class. Resolution is deterministic: the same
// snapshot and catalog contents always produce the same sequence, and
// every option list a step offers is embedded in the step itself.
type Resolver struct {
	rules      RulesClient
	aggregator *Aggregator
}

// NewResolver creates a new resolver
func NewResolver(rules RulesClient, aggregator *Aggregator) *Resolver {
	return &Resolver{
		rules:      rules,
		aggregator: aggregator,
	}
}

// ResolveSteps computes the step sequence for taking targetLevel in
// targetClass. The step order is fixed by rule dependency: multiclass
// entry gates everything, hit points apply unconditionally, a subclass
// pick unlocks later catalogs, then feat/ASI, optional features, spells.
func (r *Resolver) ResolveSteps(ctx context.Context, char *character.Character, targetClassKey string, targetLevel int) ([]progression.Step, error) {
	class, err := r.rules.GetClass(ctx, targetClassKey)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFoundf("class '%s' not found", targetClassKey)
		}
		return nil, apperrors.Wrapf(err, "failed to load class '%s'", targetClassKey)
	}

	held := char.Class(targetClassKey)
	isNewClass := held == nil

	if err := checkLevelTransition(char, held, targetLevel); err != nil {
		return nil, err
	}

	var steps []progression.Step

	if isNewClass {
		allowed, reason, err := r.aggregator.CheckMulticlassEntry(ctx, char, class)
		if err != nil {
			return nil, err
		}
		steps = append(steps, &progression.MulticlassStep{
			ClassKey:             class.Key,
			ClassName:            class.Name,
			Requirements:         class.MulticlassRequirements,
			Allowed:              allowed,
			Reason:               reason,
			GrantedProficiencies: newProficiencies(char, class.MulticlassProficiencies),
		})
	}

	steps = append(steps, &progression.HitPointsStep{
		ClassKey: class.Key,
		HitDie:   class.HitDie,
		Method:   progression.HPMethodRoll,
	})

	if class.SubclassLevel == targetLevel && (isNewClass || held.SubclassKey == "") {
		subclassStep, err := r.buildSubclassStep(ctx, class, targetLevel)
		if err != nil {
			return nil, err
		}
		steps = append(steps, subclassStep)
	}

	if class.HasASIAt(targetLevel) {
		featStep, err := r.buildFeatOrASIStep(ctx, char)
		if err != nil {
			return nil, err
		}
		steps = append(steps, featStep)
	}

	classLevel, err := r.rules.GetClassLevel(ctx, class.Key, targetLevel)
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to load level %d for class '%s'", targetLevel, class.Key)
	}

	for _, grant := range classLevel.OptionalChoices {
		steps = append(steps, &progression.OptionalFeatureStep{
			FeatureKey:  grant.FeatureKey,
			Name:        grant.Name,
			Description: grant.Description,
			Options:     grant.Options,
			Count:       grant.Count,
		})
	}

	if classLevel.SpellsKnownGained > 0 {
		spellStep, err := r.buildSpellsStep(ctx, char, class.Key, targetLevel, classLevel)
		if err != nil {
			return nil, err
		}
		steps = append(steps, spellStep)
	}

	for _, feature := range classLevel.Features {
		steps = append(steps, &progression.InfoStep{
			FeatureKey: feature.Key,
			Name:       feature.Name,
			Text:       feature.Description,
		})
	}

	return steps, nil
}

// checkLevelTransition rejects skipped levels and targets at or below the
// character's current class level
func checkLevelTransition(char *character.Character, held *character.CharacterClass, targetLevel int) error {
	if char.TotalLevel() >= character.MaxLevel {
		return apperrors.InvalidLevelTransitionf("character is already at the level cap of %d", character.MaxLevel)
	}

	currentLevel := 0
	if held != nil {
		currentLevel = held.Level
	}

	if targetLevel <= currentLevel {
		return apperrors.InvalidLevelTransitionf(
			"target level %d is not above current class level %d", targetLevel, currentLevel)
	}
	if targetLevel != currentLevel+1 {
		return apperrors.InvalidLevelTransitionf(
			"target level %d skips levels; current class level is %d", targetLevel, currentLevel)
	}

	return nil
}

func (r *Resolver) buildSubclassStep(ctx context.Context, class *rulebook.Class, targetLevel int) (progression.Step, error) {
	subclasses, err := r.rules.ListSubclasses(ctx, class.Key)
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to list subclasses for '%s'", class.Key)
	}

	options := make([]progression.SubclassOption, 0, len(subclasses))
	for _, sc := range subclasses {
		options = append(options, progression.SubclassOption{
			Key:         sc.Key,
			Name:        sc.Name,
			Description: sc.Description,
			FeatureKeys: sc.FeaturesByLevel[targetLevel],
		})
	}

	return &progression.SubclassStep{
		ClassKey:   class.Key,
		ClassName:  class.Name,
		Level:      targetLevel,
		Options:    options,
		IsRequired: true,
	}, nil
}

func (r *Resolver) buildFeatOrASIStep(ctx context.Context, char *character.Character) (progression.Step, error) {
	feats, err := r.rules.ListFeats(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list feats")
	}

	eligible := make([]*rulebook.Feat, 0, len(feats))
	for _, feat := range feats {
		if char.HasFeat(feat.Key) && !feat.Repeatable {
			continue
		}
		eligible = append(eligible, feat)
	}

	return &progression.FeatOrASIStep{
		CurrentStats:  char.AbilityScores(),
		EligibleFeats: eligible,
	}, nil
}

func (r *Resolver) buildSpellsStep(ctx context.Context, char *character.Character, classKey string, targetLevel int, classLevel *rulebook.ClassLevel) (progression.Step, error) {
	spells, err := r.rules.ListClassSpells(ctx, classKey, classLevel.MaxSpellLevel)
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to list spells for '%s'", classKey)
	}

	eligible := make([]*rulebook.Spell, 0, len(spells))
	for _, spell := range spells {
		if char.KnowsSpell(spell.Key) {
			continue
		}
		eligible = append(eligible, spell)
	}

	return &progression.SpellsStep{
		ClassKey:       classKey,
		Level:          targetLevel,
		MaxNew:         classLevel.SpellsKnownGained,
		EligibleSpells: eligible,
	}, nil
}

// newProficiencies filters out proficiencies the character already holds
func newProficiencies(char *character.Character, granted []*rulebook.Proficiency) []*rulebook.Proficiency {
	var out []*rulebook.Proficiency
	for _, p := range granted {
		if char.HasProficiency(p.Key) {
			continue
		}
		out = append(out, p)
	}
	return out
}
