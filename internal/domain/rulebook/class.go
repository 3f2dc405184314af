package rulebook

import (
	"github.com/greyhelm/charkeep/internal/domain/shared"
)

// Class is the catalog definition of a character class
type Class struct {
	Key           string `json:"key"`
	Name          string `json:"name"`
	HitDie        int    `json:"hit_die"`
	SubclassLevel int    `json:"subclass_level"`
	ASILevels     []int  `json:"asi_levels"`

	// MulticlassRequirements gate entry into this class as a second or
	// later class. Each requirement must hold; a single requirement is
	// satisfied when any of its listed abilities meets the minimum.
	MulticlassRequirements []MulticlassRequirement `json:"multiclass_requirements"`

	// MulticlassProficiencies are granted when the class is entered via
	// multiclassing rather than at character creation
	MulticlassProficiencies []*Proficiency `json:"multiclass_proficiencies,omitempty"`
}

// MulticlassRequirement is one ability-score gate on multiclass entry.
// Fighter encodes {Abilities: [Str, Dex], MinimumScore: 13} (either
// suffices); Paladin encodes two single-ability requirements.
type MulticlassRequirement struct {
	Abilities    []shared.Attribute `json:"abilities"`
	MinimumScore int                `json:"minimum_score"`
}

// Met reports whether any listed ability reaches the minimum score
func (r *MulticlassRequirement) Met(scores map[shared.Attribute]int) bool {
	for _, ability := range r.Abilities {
		if scores[ability] >= r.MinimumScore {
			return true
		}
	}
	return false
}

// HasASIAt reports whether the class grants an ability score increase at
// the given class level
func (c *Class) HasASIAt(level int) bool {
	for _, l := range c.ASILevels {
		if l == level {
			return true
		}
	}
	return false
}

// Subclass is a catalog subclass option for a class
type Subclass struct {
	Key         string `json:"key"`
	ClassKey    string `json:"class_key"`
	Name        string `json:"name"`
	Description string `json:"description"`

	// FeaturesByLevel maps class level to the feature keys the subclass
	// grants at that level
	FeaturesByLevel map[int][]string `json:"features_by_level,omitempty"`
}

// ClassLevelInfo is one class's contribution to a multiclassed character,
// recomputed from the character's class-level records
type ClassLevelInfo struct {
	ClassKey   string `json:"class_key"`
	ClassName  string `json:"class_name"`
	ClassLevel int    `json:"class_level"`
	HitDie     int    `json:"hit_die"`
}
