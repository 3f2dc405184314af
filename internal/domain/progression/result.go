package progression

import (
	"github.com/greyhelm/charkeep/internal/domain/rulebook"
	"github.com/greyhelm/charkeep/internal/domain/shared"
	"github.com/greyhelm/charkeep/internal/errors"
)

// Failure is one validation problem. Validation always returns the full
// list so the caller can present every problem at once.
type Failure struct {
	StepType StepType    `json:"step_type"`
	Code     errors.Code `json:"code"`
	Message  string      `json:"message"`
}

// Result is the fully validated, ready-to-persist delta of one level-up.
// It is transient: built by the validator, consumed by the committer,
// never stored.
type Result struct {
	ClassKey  string `json:"class_key"`
	ClassName string `json:"class_name"`

	// NewClass is true for multiclass entry (a fresh level-1 class record)
	NewClass bool `json:"new_class"`

	NewClassLevel int `json:"new_class_level"`
	NewTotalLevel int `json:"new_total_level"`

	HitDie     int `json:"hit_die"`
	HPIncrease int `json:"hp_increase"`

	StatIncreases map[shared.Attribute]int `json:"stat_increases,omitempty"`

	SubclassKey  string `json:"subclass_key,omitempty"`
	SubclassName string `json:"subclass_name,omitempty"`

	FeatKey string `json:"feat_key,omitempty"`

	// FeatureKeys are features granted automatically or by the chosen subclass
	FeatureKeys []string `json:"feature_keys,omitempty"`

	// OptionalSelections maps optional-feature key to the chosen option keys
	OptionalSelections map[string][]string `json:"optional_selections,omitempty"`

	NewSpellKeys []string `json:"new_spell_keys,omitempty"`

	// GrantedProficiencies are added on multiclass entry
	GrantedProficiencies []*rulebook.Proficiency `json:"granted_proficiencies,omitempty"`
}
