package rulebook

// ProficiencyType groups proficiencies by what they apply to
type ProficiencyType string

const (
	ProficiencyTypeSkill       ProficiencyType = "skill"
	ProficiencyTypeTool        ProficiencyType = "tool"
	ProficiencyTypeWeapon      ProficiencyType = "weapon"
	ProficiencyTypeArmor       ProficiencyType = "armor"
	ProficiencyTypeSavingThrow ProficiencyType = "saving-throw"
	ProficiencyTypeUnknown     ProficiencyType = "unknown"
)

// Proficiency is a recorded skill/tool/weapon/armor proficiency
type Proficiency struct {
	Key  string          `json:"key"`
	Name string          `json:"name"`
	Type ProficiencyType `json:"type"`
}
