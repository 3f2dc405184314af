package progression

import (
	"encoding/json"
	"fmt"
)

// StepData wraps a step with its type tag for JSON transport
type StepData struct {
	Type StepType        `json:"type"`
	Step json.RawMessage `json:"step"`
}

// ChoiceData wraps a choice with its type tag for JSON transport
type ChoiceData struct {
	Type   StepType        `json:"type"`
	Choice json.RawMessage `json:"choice"`
}

// StepToData converts a step to its tagged transport form
func StepToData(step Step) (StepData, error) {
	data, err := json.Marshal(step)
	if err != nil {
		return StepData{}, fmt.Errorf("failed to marshal step: %w", err)
	}
	return StepData{Type: step.StepType(), Step: data}, nil
}

// DataToStep converts tagged transport form back to a step variant
func DataToStep(data StepData) (Step, error) {
	var step Step
	switch data.Type {
	case StepTypeMulticlass:
		step = &MulticlassStep{}
	case StepTypeHitPoints:
		step = &HitPointsStep{}
	case StepTypeSubclass:
		step = &SubclassStep{}
	case StepTypeFeatOrASI:
		step = &FeatOrASIStep{}
	case StepTypeOptionalFeature:
		step = &OptionalFeatureStep{}
	case StepTypeSpells:
		step = &SpellsStep{}
	case StepTypeInfo:
		step = &InfoStep{}
	default:
		return nil, fmt.Errorf("unknown step type %q", data.Type)
	}

	if err := json.Unmarshal(data.Step, step); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s step: %w", data.Type, err)
	}
	return step, nil
}

// MarshalSteps converts a step list to its tagged transport form
func MarshalSteps(steps []Step) ([]StepData, error) {
	out := make([]StepData, 0, len(steps))
	for _, step := range steps {
		data, err := StepToData(step)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return out, nil
}

// UnmarshalSteps converts tagged transport form back to a step list
func UnmarshalSteps(data []StepData) ([]Step, error) {
	out := make([]Step, 0, len(data))
	for _, d := range data {
		step, err := DataToStep(d)
		if err != nil {
			return nil, err
		}
		out = append(out, step)
	}
	return out, nil
}

// ChoiceToData converts a choice to its tagged transport form
func ChoiceToData(choice Choice) (ChoiceData, error) {
	data, err := json.Marshal(choice)
	if err != nil {
		return ChoiceData{}, fmt.Errorf("failed to marshal choice: %w", err)
	}
	return ChoiceData{Type: choice.ChoiceType(), Choice: data}, nil
}

// DataToChoice converts tagged transport form back to a choice variant
func DataToChoice(data ChoiceData) (Choice, error) {
	var choice Choice
	switch data.Type {
	case StepTypeMulticlass:
		choice = &MulticlassChoice{}
	case StepTypeHitPoints:
		choice = &HitPointsChoice{}
	case StepTypeSubclass:
		choice = &SubclassChoice{}
	case StepTypeFeatOrASI:
		choice = &FeatOrASIChoice{}
	case StepTypeOptionalFeature:
		choice = &OptionalFeatureChoice{}
	case StepTypeSpells:
		choice = &SpellsChoice{}
	case StepTypeInfo:
		return nil, fmt.Errorf("info steps take no choice")
	default:
		return nil, fmt.Errorf("unknown choice type %q", data.Type)
	}

	if err := json.Unmarshal(data.Choice, choice); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s choice: %w", data.Type, err)
	}
	return choice, nil
}

// UnmarshalChoices converts tagged transport form back to a choice list
func UnmarshalChoices(data []ChoiceData) ([]Choice, error) {
	out := make([]Choice, 0, len(data))
	for _, d := range data {
		choice, err := DataToChoice(d)
		if err != nil {
			return nil, err
		}
		out = append(out, choice)
	}
	return out, nil
}
