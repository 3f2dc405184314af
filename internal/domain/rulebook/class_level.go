package rulebook

// ClassLevel is the catalog's per-level grant table for a class
type ClassLevel struct {
	ClassKey string `json:"class_key"`
	Level    int    `json:"level"`

	// Features granted automatically at this level
	Features []*Feature `json:"features,omitempty"`

	// OptionalChoices are grants that require the player to pick from a
	// fixed option list (fighting styles, metamagic, and the like)
	OptionalChoices []*OptionalFeatureGrant `json:"optional_choices,omitempty"`

	// SpellsKnownGained is how many new spells the class learns at this
	// level; zero means no spell selection step
	SpellsKnownGained int `json:"spells_known_gained"`

	// MaxSpellLevel bounds which spells are eligible for selection
	MaxSpellLevel int `json:"max_spell_level"`
}

// Feature is a catalog feature definition
type Feature struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// OptionalFeatureGrant is a choose-N-from-options grant at a class level
type OptionalFeatureGrant struct {
	FeatureKey  string           `json:"feature_key"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Count       int              `json:"count"`
	Options     []*FeatureOption `json:"options"`
}

// FeatureOption is one selectable option within an optional feature grant
type FeatureOption struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
