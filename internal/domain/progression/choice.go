package progression

import (
	"github.com/greyhelm/charkeep/internal/domain/shared"
)

// ChoiceKind discriminates the feat-or-ASI answer
type ChoiceKind string

const (
	ChoiceKindASI  ChoiceKind = "ASI"
	ChoiceKindFeat ChoiceKind = "FEAT"
)

// ASIBudget is the total stat increase an ASI choice may spend
const ASIBudget = 2

// Choice is a player's answer to one step, discriminated by the same
// StepType as the step union
type Choice interface {
	ChoiceType() StepType
}

// MulticlassChoice confirms entering the new class
type MulticlassChoice struct {
	ClassKey string `json:"class_key"`
}

func (c *MulticlassChoice) ChoiceType() StepType { return StepTypeMulticlass }

// HitPointsChoice carries the HP gain and how it was determined. A rolled
// value is range-checked only; the roll itself happened caller-side.
type HitPointsChoice struct {
	Method HPMethod `json:"method"`
	Value  int      `json:"value"`
}

func (c *HitPointsChoice) ChoiceType() StepType { return StepTypeHitPoints }

// SubclassChoice picks one subclass from the step's options
type SubclassChoice struct {
	SubclassKey string `json:"subclass_key"`
}

func (c *SubclassChoice) ChoiceType() StepType { return StepTypeSubclass }

// FeatOrASIChoice is either a stat increase allocation or a feat pick
type FeatOrASIChoice struct {
	Kind          ChoiceKind               `json:"kind"`
	StatIncreases map[shared.Attribute]int `json:"stat_increases,omitempty"`
	FeatKey       string                   `json:"feat_key,omitempty"`
}

func (c *FeatOrASIChoice) ChoiceType() StepType { return StepTypeFeatOrASI }

// OptionalFeatureChoice selects options for one optional feature grant.
// FeatureKey ties the choice to its step when a level offers several.
type OptionalFeatureChoice struct {
	FeatureKey         string   `json:"feature_key"`
	SelectedOptionKeys []string `json:"selected_option_keys"`
}

func (c *OptionalFeatureChoice) ChoiceType() StepType { return StepTypeOptionalFeature }

// SpellsChoice selects new spells from the step's eligible list
type SpellsChoice struct {
	SelectedSpellKeys []string `json:"selected_spell_keys"`
}

func (c *SpellsChoice) ChoiceType() StepType { return StepTypeSpells }
