package dice

import (
	"errors"
	"math/rand"
)

// RollResult holds the outcome of a dice roll
type RollResult struct {
	Total int   `json:"total"`
	Rolls []int `json:"rolls"`
	Bonus int   `json:"bonus"`
	Count int   `json:"count"`
	Sides int   `json:"sides"`
}

// Roller provides an interface for rolling dice so tests can inject
// predetermined results
type Roller interface {
	// Roll rolls a number of dice with the given sides and adds a bonus
	Roll(count, sides, bonus int) (*RollResult, error)
}

type randomRoller struct{}

// NewRandomRoller creates a dice roller backed by math/rand
func NewRandomRoller() Roller {
	return &randomRoller{}
}

// Roll implements Roller.Roll
func (r *randomRoller) Roll(count, sides, bonus int) (*RollResult, error) {
	if count < 1 {
		return nil, errors.New("invalid dice count")
	}
	if sides < 1 {
		return nil, errors.New("invalid dice sides")
	}

	rolls := make([]int, count)
	total := bonus
	for i := 0; i < count; i++ {
		roll := rand.Intn(sides) + 1
		rolls[i] = roll
		total += roll
	}

	return &RollResult{
		Total: total,
		Rolls: rolls,
		Bonus: bonus,
		Count: count,
		Sides: sides,
	}, nil
}
