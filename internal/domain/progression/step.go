package progression

import (
	"github.com/greyhelm/charkeep/internal/domain/rulebook"
	"github.com/greyhelm/charkeep/internal/domain/shared"
)

// StepType discriminates the step and choice unions
type StepType string

const (
	StepTypeMulticlass      StepType = "MULTICLASS_NEW_CLASS"
	StepTypeHitPoints       StepType = "ADD_HP"
	StepTypeSubclass        StepType = "SELECT_SUBCLASS"
	StepTypeFeatOrASI       StepType = "SELECT_FEAT_OR_ASI"
	StepTypeOptionalFeature StepType = "CHOOSE_OPTIONAL_FEATURE"
	StepTypeSpells          StepType = "SELECT_SPELLS"
	StepTypeInfo            StepType = "INFO"
)

// HPMethod is how the hit point gain is determined
type HPMethod string

const (
	HPMethodRoll  HPMethod = "roll"
	HPMethodFixed HPMethod = "fixed"
)

// Step is one decision point in a level-up. Each variant embeds every
// option list and threshold the validator needs, so an answer can be
// checked against the step alone with no catalog lookups.
type Step interface {
	// StepType returns the union discriminator
	StepType() StepType

	// Required reports whether the player must answer the step
	Required() bool
}

// MulticlassStep gates entering a class the character has no levels in.
// Allowed is precomputed at resolution time from the character's ability
// snapshot; the validator only consults the flag.
type MulticlassStep struct {
	ClassKey     string                           `json:"class_key"`
	ClassName    string                           `json:"class_name"`
	Requirements []rulebook.MulticlassRequirement `json:"requirements"`
	Allowed      bool                             `json:"allowed"`
	Reason       string                           `json:"reason,omitempty"`

	// GrantedProficiencies are recorded on commit when the class is entered
	GrantedProficiencies []*rulebook.Proficiency `json:"granted_proficiencies,omitempty"`
}

func (s *MulticlassStep) StepType() StepType { return StepTypeMulticlass }
func (s *MulticlassStep) Required() bool     { return true }

// HitPointsStep asks how the level's hit points are gained
type HitPointsStep struct {
	ClassKey string   `json:"class_key"`
	HitDie   int      `json:"hit_die"`
	Method   HPMethod `json:"method"` // suggested default; the choice decides
}

func (s *HitPointsStep) StepType() StepType { return StepTypeHitPoints }
func (s *HitPointsStep) Required() bool     { return true }

// SubclassOption is one selectable subclass with the features it grants
// at the level being entered
type SubclassOption struct {
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	FeatureKeys []string `json:"feature_keys,omitempty"`
}

// SubclassStep asks for the class's subclass at its designated level
type SubclassStep struct {
	ClassKey   string           `json:"class_key"`
	ClassName  string           `json:"class_name"`
	Level      int              `json:"level"`
	Options    []SubclassOption `json:"options"`
	IsRequired bool             `json:"is_required"`
}

func (s *SubclassStep) StepType() StepType { return StepTypeSubclass }
func (s *SubclassStep) Required() bool     { return s.IsRequired }

// FeatOrASIStep offers either an ability score increase or a feat.
// CurrentStats is the resolution-time snapshot the validator checks caps
// and feat prerequisites against.
type FeatOrASIStep struct {
	CurrentStats  map[shared.Attribute]int `json:"current_stats"`
	EligibleFeats []*rulebook.Feat         `json:"eligible_feats"`
}

func (s *FeatOrASIStep) StepType() StepType { return StepTypeFeatOrASI }
func (s *FeatOrASIStep) Required() bool     { return true }

// OptionalFeatureStep asks the player to pick Count options from a class
// feature's option list
type OptionalFeatureStep struct {
	FeatureKey  string                    `json:"feature_key"`
	Name        string                    `json:"name"`
	Description string                    `json:"description"`
	Options     []*rulebook.FeatureOption `json:"options"`
	Count       int                       `json:"count"`
}

func (s *OptionalFeatureStep) StepType() StepType { return StepTypeOptionalFeature }
func (s *OptionalFeatureStep) Required() bool     { return true }

// SpellsStep asks for new spells when the level grants them
type SpellsStep struct {
	ClassKey       string            `json:"class_key"`
	Level          int               `json:"level"`
	MaxNew         int               `json:"max_new"`
	EligibleSpells []*rulebook.Spell `json:"eligible_spells"`
}

func (s *SpellsStep) StepType() StepType { return StepTypeSpells }
func (s *SpellsStep) Required() bool     { return true }

// InfoStep surfaces a feature granted automatically; no answer is needed
type InfoStep struct {
	FeatureKey string `json:"feature_key,omitempty"`
	Name       string `json:"name,omitempty"`
	Text       string `json:"text"`
}

func (s *InfoStep) StepType() StepType { return StepTypeInfo }
func (s *InfoStep) Required() bool     { return false }
