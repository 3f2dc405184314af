package shared

// Attribute identifies one of the six ability scores
type Attribute string

// Attributes lists every ability in standard order
var Attributes = []Attribute{AttributeStrength, AttributeDexterity, AttributeConstitution, AttributeIntelligence, AttributeWisdom, AttributeCharisma}

const (
	AttributeNone         Attribute = ""
	AttributeStrength     Attribute = "Str"
	AttributeDexterity    Attribute = "Dex"
	AttributeConstitution Attribute = "Con"
	AttributeIntelligence Attribute = "Int"
	AttributeWisdom       Attribute = "Wis"
	AttributeCharisma     Attribute = "Cha"
)

// MaxAbilityScore is the cap a score may not exceed through level-up increases
const MaxAbilityScore = 20

// AbilityBonus is a flat bonus to a single ability
type AbilityBonus struct {
	Attribute Attribute `json:"attribute"`
	Bonus     int       `json:"bonus"`
}

// Modifier derives the ability modifier from a raw score
func Modifier(score int) int {
	if score < 10 && (score-10)%2 != 0 {
		return (score-10)/2 - 1
	}
	return (score - 10) / 2
}
