package rulebook

import (
	"github.com/greyhelm/charkeep/internal/domain/shared"
)

// Feat is a catalog feat definition
type Feat struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`

	// Repeatable feats may be taken more than once
	Repeatable bool `json:"repeatable"`

	// Prerequisite gates taking the feat; nil means none
	Prerequisite *FeatPrerequisite `json:"prerequisite,omitempty"`

	// AbilityBonus is granted alongside the feat (half-feats); nil for most
	AbilityBonus *shared.AbilityBonus `json:"ability_bonus,omitempty"`
}

// FeatPrerequisite is an ability-score requirement for a feat
type FeatPrerequisite struct {
	Ability      shared.Attribute `json:"ability"`
	MinimumScore int              `json:"minimum_score"`
}

// Met reports whether the given scores satisfy the prerequisite
func (p *FeatPrerequisite) Met(scores map[shared.Attribute]int) bool {
	if p == nil {
		return true
	}
	return scores[p.Ability] >= p.MinimumScore
}
