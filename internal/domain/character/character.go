package character

import (
	"time"

	"github.com/greyhelm/charkeep/internal/domain/rulebook"
	"github.com/greyhelm/charkeep/internal/domain/shared"
)

// MaxLevel is the total-level cap
const MaxLevel = 20

// CharacterClass is one class the character holds levels in
type CharacterClass struct {
	ClassKey     string `json:"class_key"`
	ClassName    string `json:"class_name"`
	Level        int    `json:"level"`
	HitDie       int    `json:"hit_die"`
	SubclassKey  string `json:"subclass_key,omitempty"`
	SubclassName string `json:"subclass_name,omitempty"`
}

// LevelUpRecord marks the last progression applied, used to tell a retried
// commit apart from a genuinely conflicting one
type LevelUpRecord struct {
	ClassKey string `json:"class_key"`
	Level    int    `json:"level"`
}

// Character is the persisted aggregate. It is mutated only by the
// progression committer; readers treat a fetched snapshot as immutable.
type Character struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
	Name    string `json:"name"`

	Attributes map[shared.Attribute]*AbilityScore `json:"attributes"`

	Classes []*CharacterClass `json:"classes"`

	MaxHitPoints     int `json:"max_hit_points"`
	CurrentHitPoints int `json:"current_hit_points"`

	Proficiencies map[rulebook.ProficiencyType][]*rulebook.Proficiency `json:"proficiencies"`
	Feats         []string                                             `json:"feats"`
	Features      []*rulebook.CharacterFeature                         `json:"features"`

	// KnownSpells maps class key to the spell keys learned through it
	KnownSpells map[string][]string `json:"known_spells"`

	LastLevelUp *LevelUpRecord `json:"last_level_up,omitempty"`

	// Version increases on every committed write; commits are conditioned
	// on it for optimistic concurrency
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TotalLevel sums the character's per-class levels
func (c *Character) TotalLevel() int {
	total := 0
	for _, cls := range c.Classes {
		total += cls.Level
	}
	return total
}

// ProficiencyBonus derives the bonus from total level using the standard
// banded formula
func (c *Character) ProficiencyBonus() int {
	return ProficiencyBonusForLevel(c.TotalLevel())
}

// ProficiencyBonusForLevel computes ceil(level/4) + 1
func ProficiencyBonusForLevel(level int) int {
	if level < 1 {
		return 2
	}
	return (level-1)/4 + 2
}

// Class returns the held class record for the given key, or nil
func (c *Character) Class(classKey string) *CharacterClass {
	for _, cls := range c.Classes {
		if cls.ClassKey == classKey {
			return cls
		}
	}
	return nil
}

// PrimaryClass returns the first held class, or nil for an empty character
func (c *Character) PrimaryClass() *CharacterClass {
	if len(c.Classes) == 0 {
		return nil
	}
	return c.Classes[0]
}

// AbilityScores flattens the attribute map to raw scores
func (c *Character) AbilityScores() map[shared.Attribute]int {
	scores := make(map[shared.Attribute]int, len(c.Attributes))
	for attr, score := range c.Attributes {
		if score != nil {
			scores[attr] = score.Score
		}
	}
	return scores
}

// HasFeat reports whether the character already holds the feat
func (c *Character) HasFeat(featKey string) bool {
	for _, key := range c.Feats {
		if key == featKey {
			return true
		}
	}
	return false
}

// HasFeature reports whether the character already holds the feature
func (c *Character) HasFeature(featureKey string) bool {
	for _, f := range c.Features {
		if f.Key == featureKey {
			return true
		}
	}
	return false
}

// KnowsSpell reports whether the character learned the spell through any class
func (c *Character) KnowsSpell(spellKey string) bool {
	for _, spells := range c.KnownSpells {
		for _, key := range spells {
			if key == spellKey {
				return true
			}
		}
	}
	return false
}

// HasProficiency reports whether the character holds the proficiency
func (c *Character) HasProficiency(key string) bool {
	for _, profs := range c.Proficiencies {
		for _, p := range profs {
			if p.Key == key {
				return true
			}
		}
	}
	return false
}

// Clone returns a deep copy so repository callers cannot mutate stored state
func (c *Character) Clone() *Character {
	if c == nil {
		return nil
	}

	clone := *c

	if c.Attributes != nil {
		clone.Attributes = make(map[shared.Attribute]*AbilityScore, len(c.Attributes))
		for attr, score := range c.Attributes {
			if score != nil {
				scoreCopy := *score
				clone.Attributes[attr] = &scoreCopy
			}
		}
	}

	if c.Classes != nil {
		clone.Classes = make([]*CharacterClass, len(c.Classes))
		for i, cls := range c.Classes {
			clsCopy := *cls
			clone.Classes[i] = &clsCopy
		}
	}

	if c.Proficiencies != nil {
		clone.Proficiencies = make(map[rulebook.ProficiencyType][]*rulebook.Proficiency, len(c.Proficiencies))
		for profType, profs := range c.Proficiencies {
			copied := make([]*rulebook.Proficiency, len(profs))
			for i, p := range profs {
				pCopy := *p
				copied[i] = &pCopy
			}
			clone.Proficiencies[profType] = copied
		}
	}

	if c.Feats != nil {
		clone.Feats = append([]string(nil), c.Feats...)
	}

	if c.Features != nil {
		clone.Features = make([]*rulebook.CharacterFeature, len(c.Features))
		for i, f := range c.Features {
			fCopy := *f
			clone.Features[i] = &fCopy
		}
	}

	if c.KnownSpells != nil {
		clone.KnownSpells = make(map[string][]string, len(c.KnownSpells))
		for classKey, spells := range c.KnownSpells {
			clone.KnownSpells[classKey] = append([]string(nil), spells...)
		}
	}

	if c.LastLevelUp != nil {
		recordCopy := *c.LastLevelUp
		clone.LastLevelUp = &recordCopy
	}

	return &clone
}
