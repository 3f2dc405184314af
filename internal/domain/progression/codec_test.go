package progression_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greyhelm/charkeep/internal/domain/progression"
	"github.com/greyhelm/charkeep/internal/domain/rulebook"
	"github.com/greyhelm/charkeep/internal/domain/shared"
)

func TestStepRoundTrip(t *testing.T) {
	steps := []progression.Step{
		&progression.MulticlassStep{
			ClassKey:  "wizard",
			ClassName: "Wizard",
			Requirements: []rulebook.MulticlassRequirement{
				{Abilities: []shared.Attribute{shared.AttributeIntelligence}, MinimumScore: 13},
			},
			Allowed: true,
		},
		&progression.HitPointsStep{ClassKey: "wizard", HitDie: 6, Method: progression.HPMethodRoll},
		&progression.SubclassStep{
			ClassKey:   "wizard",
			ClassName:  "Wizard",
			Level:      2,
			Options:    []progression.SubclassOption{{Key: "evocation", Name: "School of Evocation"}},
			IsRequired: true,
		},
		&progression.InfoStep{FeatureKey: "arcane-recovery", Name: "Arcane Recovery", Text: "Recover slots."},
	}

	data, err := progression.MarshalSteps(steps)
	require.NoError(t, err)

	// Simulate the wire: serialize the envelope and read it back
	payload, err := json.Marshal(data)
	require.NoError(t, err)

	var decoded []progression.StepData
	require.NoError(t, json.Unmarshal(payload, &decoded))

	restored, err := progression.UnmarshalSteps(decoded)
	require.NoError(t, err)
	require.Len(t, restored, len(steps))

	for i := range steps {
		assert.Equal(t, steps[i].StepType(), restored[i].StepType())
	}

	mc := restored[0].(*progression.MulticlassStep)
	assert.Equal(t, "wizard", mc.ClassKey)
	assert.True(t, mc.Allowed)

	sc := restored[2].(*progression.SubclassStep)
	assert.Equal(t, "evocation", sc.Options[0].Key)
	assert.True(t, sc.Required())
}

func TestChoiceRoundTrip(t *testing.T) {
	choices := []progression.Choice{
		&progression.HitPointsChoice{Method: progression.HPMethodFixed, Value: 4},
		&progression.FeatOrASIChoice{
			Kind:          progression.ChoiceKindASI,
			StatIncreases: map[shared.Attribute]int{shared.AttributeStrength: 2},
		},
		&progression.SpellsChoice{SelectedSpellKeys: []string{"shield"}},
	}

	envelope := make([]progression.ChoiceData, 0, len(choices))
	for _, c := range choices {
		data, err := progression.ChoiceToData(c)
		require.NoError(t, err)
		envelope = append(envelope, data)
	}

	restored, err := progression.UnmarshalChoices(envelope)
	require.NoError(t, err)
	require.Len(t, restored, len(choices))

	asi := restored[1].(*progression.FeatOrASIChoice)
	assert.Equal(t, progression.ChoiceKindASI, asi.Kind)
	assert.Equal(t, 2, asi.StatIncreases[shared.AttributeStrength])
}

func TestDataToStep_UnknownType(t *testing.T) {
	_, err := progression.DataToStep(progression.StepData{
		Type: "TELEPORT",
		Step: json.RawMessage(`{}`),
	})

	assert.Error(t, err)
}

func TestDataToChoice_InfoTakesNoChoice(t *testing.T) {
	_, err := progression.DataToChoice(progression.ChoiceData{
		Type:   progression.StepTypeInfo,
		Choice: json.RawMessage(`{}`),
	})

	assert.Error(t, err)
}
