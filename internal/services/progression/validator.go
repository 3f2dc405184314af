package progression

import (
	"fmt"

	"github.com/greyhelm/charkeep/internal/domain/character"
	"github.com/greyhelm/charkeep/internal/domain/progression"
	"github.com/greyhelm/charkeep/internal/domain/rulebook"
	"github.com/greyhelm/charkeep/internal/domain/shared"
	apperrors "github.com/greyhelm/charkeep/internal/errors"
)

// Validator checks a submitted answer set against a resolved step
// sequence. Every check uses only the step and the answer: the steps
// embed their option lists and thresholds at resolution time, so a
// catalog edit between resolve and validate cannot skew the outcome.
//
// Validation is exhaustive: all failures are collected and returned
// together, never just the first.
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks the choices against the steps and, when everything
// holds, builds the ready-to-persist delta
func (v *Validator) Validate(char *character.Character, class *rulebook.Class, targetLevel int, steps []progression.Step, choices []progression.Choice) (*progression.Result, []progression.Failure) {
	var failures []progression.Failure

	used := make([]bool, len(choices))

	result := &progression.Result{
		ClassKey:      class.Key,
		ClassName:     class.Name,
		NewClassLevel: targetLevel,
		NewTotalLevel: char.TotalLevel() + 1,
	}

	for _, step := range steps {
		if !step.Required() {
			if info, ok := step.(*progression.InfoStep); ok && info.FeatureKey != "" {
				result.FeatureKeys = append(result.FeatureKeys, info.FeatureKey)
			}
			continue
		}

		choice, failure := matchChoice(step, choices, used)
		if failure != nil {
			failures = append(failures, *failure)
			continue
		}

		failures = append(failures, v.validateStep(char, step, choice, result)...)
	}

	for i, choice := range choices {
		if !used[i] {
			failures = append(failures, progression.Failure{
				StepType: choice.ChoiceType(),
				Code:     apperrors.CodeStructuralChoice,
				Message:  fmt.Sprintf("choice of type %s has no corresponding step", choice.ChoiceType()),
			})
		}
	}

	if len(failures) > 0 {
		return nil, failures
	}

	finalizeHitPoints(char, result)
	return result, nil
}

// finalizeHitPoints folds the Constitution modifier into the HP gain.
// The modifier is taken after this level's stat increases, so an ASI
// into Con counts immediately. A level always grants at least 1 HP.
func finalizeHitPoints(char *character.Character, result *progression.Result) {
	conScore := 0
	if score, ok := char.Attributes[shared.AttributeConstitution]; ok && score != nil {
		conScore = score.Score
	}
	conScore += result.StatIncreases[shared.AttributeConstitution]

	result.HPIncrease += shared.Modifier(conScore)
	if result.HPIncrease < 1 {
		result.HPIncrease = 1
	}
}

// matchChoice finds the single unused choice answering the step. Optional
// feature steps are additionally matched on feature key, since one level
// can offer several.
func matchChoice(step progression.Step, choices []progression.Choice, used []bool) (progression.Choice, *progression.Failure) {
	var matched progression.Choice
	matchedIdx := -1

	for i, choice := range choices {
		if used[i] || choice.ChoiceType() != step.StepType() {
			continue
		}
		if optStep, ok := step.(*progression.OptionalFeatureStep); ok {
			optChoice, ok := choice.(*progression.OptionalFeatureChoice)
			if !ok || optChoice.FeatureKey != optStep.FeatureKey {
				continue
			}
		}

		if matched != nil {
			return nil, &progression.Failure{
				StepType: step.StepType(),
				Code:     apperrors.CodeStructuralChoice,
				Message:  fmt.Sprintf("duplicate choice for step %s", step.StepType()),
			}
		}
		matched = choice
		matchedIdx = i
	}

	if matched == nil {
		return nil, &progression.Failure{
			StepType: step.StepType(),
			Code:     apperrors.CodeStructuralChoice,
			Message:  fmt.Sprintf("required step %s has no choice", step.StepType()),
		}
	}

	used[matchedIdx] = true
	return matched, nil
}

// validateStep dispatches on the step variant. The switch is exhaustive
// over the union; a new step kind must be handled here to compile into
// a meaningful validation.
func (v *Validator) validateStep(char *character.Character, step progression.Step, choice progression.Choice, result *progression.Result) []progression.Failure {
	switch s := step.(type) {
	case *progression.MulticlassStep:
		return v.validateMulticlass(s, choice, result)
	case *progression.HitPointsStep:
		return v.validateHitPoints(s, choice, result)
	case *progression.SubclassStep:
		return v.validateSubclass(s, choice, result)
	case *progression.FeatOrASIStep:
		return v.validateFeatOrASI(s, choice, result)
	case *progression.OptionalFeatureStep:
		return v.validateOptionalFeature(s, choice, result)
	case *progression.SpellsStep:
		return v.validateSpells(char, s, choice, result)
	case *progression.InfoStep:
		return nil
	default:
		return []progression.Failure{{
			StepType: step.StepType(),
			Code:     apperrors.CodeInternal,
			Message:  fmt.Sprintf("unhandled step type %s", step.StepType()),
		}}
	}
}

// validateMulticlass only consults the flag precomputed at resolution
// time; ability scores are a snapshot fact, not re-derived here
func (v *Validator) validateMulticlass(step *progression.MulticlassStep, choice progression.Choice, result *progression.Result) []progression.Failure {
	mcChoice, ok := choice.(*progression.MulticlassChoice)
	if !ok {
		return []progression.Failure{mismatchedChoice(step.StepType())}
	}

	if !step.Allowed {
		msg := fmt.Sprintf("multiclass into %s not allowed", step.ClassName)
		if step.Reason != "" {
			msg = fmt.Sprintf("%s: %s", msg, step.Reason)
		}
		return []progression.Failure{{
			StepType: step.StepType(),
			Code:     apperrors.CodePrerequisiteNotMet,
			Message:  msg,
		}}
	}

	if mcChoice.ClassKey != step.ClassKey {
		return []progression.Failure{{
			StepType: step.StepType(),
			Code:     apperrors.CodeStructuralChoice,
			Message:  fmt.Sprintf("multiclass choice names class '%s', step offers '%s'", mcChoice.ClassKey, step.ClassKey),
		}}
	}

	result.NewClass = true
	result.GrantedProficiencies = step.GrantedProficiencies
	return nil
}

func (v *Validator) validateHitPoints(step *progression.HitPointsStep, choice progression.Choice, result *progression.Result) []progression.Failure {
	hpChoice, ok := choice.(*progression.HitPointsChoice)
	if !ok {
		return []progression.Failure{mismatchedChoice(step.StepType())}
	}

	fixed := step.HitDie/2 + 1

	switch hpChoice.Method {
	case progression.HPMethodFixed:
		if hpChoice.Value != fixed {
			return []progression.Failure{{
				StepType: step.StepType(),
				Code:     apperrors.CodeStructuralChoice,
				Message:  fmt.Sprintf("fixed hit points for d%d must be %d, got %d", step.HitDie, fixed, hpChoice.Value),
			}}
		}
	case progression.HPMethodRoll:
		// The roll happened caller-side; only the range is checked so
		// validation stays idempotent and side-effect free
		if hpChoice.Value < 1 || hpChoice.Value > step.HitDie {
			return []progression.Failure{{
				StepType: step.StepType(),
				Code:     apperrors.CodeStructuralChoice,
				Message:  fmt.Sprintf("rolled hit points must be between 1 and %d, got %d", step.HitDie, hpChoice.Value),
			}}
		}
	default:
		return []progression.Failure{{
			StepType: step.StepType(),
			Code:     apperrors.CodeStructuralChoice,
			Message:  fmt.Sprintf("unknown hit point method %q", hpChoice.Method),
		}}
	}

	result.HitDie = step.HitDie
	result.HPIncrease = hpChoice.Value
	return nil
}

func (v *Validator) validateSubclass(step *progression.SubclassStep, choice progression.Choice, result *progression.Result) []progression.Failure {
	scChoice, ok := choice.(*progression.SubclassChoice)
	if !ok {
		return []progression.Failure{mismatchedChoice(step.StepType())}
	}

	for _, option := range step.Options {
		if option.Key == scChoice.SubclassKey {
			result.SubclassKey = option.Key
			result.SubclassName = option.Name
			result.FeatureKeys = append(result.FeatureKeys, option.FeatureKeys...)
			return nil
		}
	}

	return []progression.Failure{{
		StepType: step.StepType(),
		Code:     apperrors.CodeStructuralChoice,
		Message:  fmt.Sprintf("subclass '%s' is not an option for %s", scChoice.SubclassKey, step.ClassName),
	}}
}

func (v *Validator) validateFeatOrASI(step *progression.FeatOrASIStep, choice progression.Choice, result *progression.Result) []progression.Failure {
	faChoice, ok := choice.(*progression.FeatOrASIChoice)
	if !ok {
		return []progression.Failure{mismatchedChoice(step.StepType())}
	}

	switch faChoice.Kind {
	case progression.ChoiceKindASI:
		return v.validateASI(step, faChoice, result)
	case progression.ChoiceKindFeat:
		return v.validateFeat(step, faChoice, result)
	default:
		return []progression.Failure{{
			StepType: step.StepType(),
			Code:     apperrors.CodeStructuralChoice,
			Message:  fmt.Sprintf("feat-or-ASI choice must be %s or %s", progression.ChoiceKindASI, progression.ChoiceKindFeat),
		}}
	}
}

// validateASI enforces the +2 budget spent as +2/+0 or +1/+1, and the
// per-ability cap
func (v *Validator) validateASI(step *progression.FeatOrASIStep, choice *progression.FeatOrASIChoice, result *progression.Result) []progression.Failure {
	var failures []progression.Failure

	total := 0
	for ability, increase := range choice.StatIncreases {
		if increase <= 0 {
			failures = append(failures, progression.Failure{
				StepType: step.StepType(),
				Code:     apperrors.CodeStructuralChoice,
				Message:  fmt.Sprintf("stat increase for %s must be positive, got %d", ability, increase),
			})
			continue
		}
		total += increase

		current, known := step.CurrentStats[ability]
		if !known {
			failures = append(failures, progression.Failure{
				StepType: step.StepType(),
				Code:     apperrors.CodeStructuralChoice,
				Message:  fmt.Sprintf("unknown ability %q", ability),
			})
			continue
		}
		if current+increase > shared.MaxAbilityScore {
			failures = append(failures, progression.Failure{
				StepType: step.StepType(),
				Code:     apperrors.CodeStructuralChoice,
				Message:  fmt.Sprintf("%s would exceed the cap of %d", ability, shared.MaxAbilityScore),
			})
		}
	}

	if total != progression.ASIBudget {
		failures = append(failures, progression.Failure{
			StepType: step.StepType(),
			Code:     apperrors.CodeStructuralChoice,
			Message:  fmt.Sprintf("ability score increases must total exactly %d, got %d", progression.ASIBudget, total),
		})
	}

	if len(failures) > 0 {
		return failures
	}

	if result.StatIncreases == nil {
		result.StatIncreases = make(map[shared.Attribute]int)
	}
	for ability, increase := range choice.StatIncreases {
		result.StatIncreases[ability] += increase
	}
	return nil
}

func (v *Validator) validateFeat(step *progression.FeatOrASIStep, choice *progression.FeatOrASIChoice, result *progression.Result) []progression.Failure {
	var feat *rulebook.Feat
	for _, f := range step.EligibleFeats {
		if f.Key == choice.FeatKey {
			feat = f
			break
		}
	}
	if feat == nil {
		return []progression.Failure{{
			StepType: step.StepType(),
			Code:     apperrors.CodeStructuralChoice,
			Message:  fmt.Sprintf("feat '%s' is not eligible", choice.FeatKey),
		}}
	}

	if !feat.Prerequisite.Met(step.CurrentStats) {
		return []progression.Failure{{
			StepType: step.StepType(),
			Code:     apperrors.CodePrerequisiteNotMet,
			Message: fmt.Sprintf("feat '%s' requires %s %d", feat.Key,
				feat.Prerequisite.Ability, feat.Prerequisite.MinimumScore),
		}}
	}

	result.FeatKey = feat.Key
	// Half-feats carry an ability bonus alongside the feat itself
	if feat.AbilityBonus != nil {
		if result.StatIncreases == nil {
			result.StatIncreases = make(map[shared.Attribute]int)
		}
		result.StatIncreases[feat.AbilityBonus.Attribute] += feat.AbilityBonus.Bonus
	}
	return nil
}

func (v *Validator) validateOptionalFeature(step *progression.OptionalFeatureStep, choice progression.Choice, result *progression.Result) []progression.Failure {
	ofChoice, ok := choice.(*progression.OptionalFeatureChoice)
	if !ok {
		return []progression.Failure{mismatchedChoice(step.StepType())}
	}

	var failures []progression.Failure

	if len(ofChoice.SelectedOptionKeys) != step.Count {
		failures = append(failures, progression.Failure{
			StepType: step.StepType(),
			Code:     apperrors.CodeStructuralChoice,
			Message:  fmt.Sprintf("%s requires exactly %d selections, got %d", step.Name, step.Count, len(ofChoice.SelectedOptionKeys)),
		})
	}

	valid := make(map[string]bool, len(step.Options))
	for _, option := range step.Options {
		valid[option.Key] = true
	}

	seen := make(map[string]bool, len(ofChoice.SelectedOptionKeys))
	for _, key := range ofChoice.SelectedOptionKeys {
		if seen[key] {
			failures = append(failures, progression.Failure{
				StepType: step.StepType(),
				Code:     apperrors.CodeStructuralChoice,
				Message:  fmt.Sprintf("option '%s' selected more than once", key),
			})
			continue
		}
		seen[key] = true

		if !valid[key] {
			failures = append(failures, progression.Failure{
				StepType: step.StepType(),
				Code:     apperrors.CodeStructuralChoice,
				Message:  fmt.Sprintf("option '%s' is not offered by %s", key, step.Name),
			})
		}
	}

	if len(failures) > 0 {
		return failures
	}

	if result.OptionalSelections == nil {
		result.OptionalSelections = make(map[string][]string)
	}
	result.OptionalSelections[step.FeatureKey] = append([]string(nil), ofChoice.SelectedOptionKeys...)
	return nil
}

func (v *Validator) validateSpells(char *character.Character, step *progression.SpellsStep, choice progression.Choice, result *progression.Result) []progression.Failure {
	spChoice, ok := choice.(*progression.SpellsChoice)
	if !ok {
		return []progression.Failure{mismatchedChoice(step.StepType())}
	}

	var failures []progression.Failure

	if len(spChoice.SelectedSpellKeys) > step.MaxNew {
		failures = append(failures, progression.Failure{
			StepType: step.StepType(),
			Code:     apperrors.CodeStructuralChoice,
			Message:  fmt.Sprintf("at most %d new spells may be selected, got %d", step.MaxNew, len(spChoice.SelectedSpellKeys)),
		})
	}

	eligible := make(map[string]bool, len(step.EligibleSpells))
	for _, spell := range step.EligibleSpells {
		eligible[spell.Key] = true
	}

	seen := make(map[string]bool, len(spChoice.SelectedSpellKeys))
	for _, key := range spChoice.SelectedSpellKeys {
		if seen[key] {
			failures = append(failures, progression.Failure{
				StepType: step.StepType(),
				Code:     apperrors.CodeStructuralChoice,
				Message:  fmt.Sprintf("spell '%s' selected more than once", key),
			})
			continue
		}
		seen[key] = true

		if !eligible[key] {
			failures = append(failures, progression.Failure{
				StepType: step.StepType(),
				Code:     apperrors.CodeStructuralChoice,
				Message:  fmt.Sprintf("spell '%s' is not eligible", key),
			})
			continue
		}
		if char.KnowsSpell(key) {
			failures = append(failures, progression.Failure{
				StepType: step.StepType(),
				Code:     apperrors.CodeStructuralChoice,
				Message:  fmt.Sprintf("spell '%s' is already known", key),
			})
		}
	}

	if len(failures) > 0 {
		return failures
	}

	result.NewSpellKeys = append([]string(nil), spChoice.SelectedSpellKeys...)
	return nil
}

func mismatchedChoice(stepType progression.StepType) progression.Failure {
	return progression.Failure{
		StepType: stepType,
		Code:     apperrors.CodeStructuralChoice,
		Message:  fmt.Sprintf("choice payload does not match step type %s", stepType),
	}
}
