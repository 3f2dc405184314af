package rulebook

// Spell is a catalog spell definition, trimmed to what progression needs
type Spell struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Level int    `json:"level"`
}

// CharacterFeature is a feature as recorded on a character
type CharacterFeature struct {
	Key    string `json:"key"`
	Name   string `json:"name"`
	Source string `json:"source"` // "class", "subclass", "feat", "choice"
	Level  int    `json:"level"`  // character level when gained
}
