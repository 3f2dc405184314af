package character

import (
	"github.com/greyhelm/charkeep/internal/domain/shared"
)

// AbilityScore is one recorded ability with its derived modifier
type AbilityScore struct {
	Score int `json:"score"`
	Bonus int `json:"bonus"`
}

// Modifier returns the ability modifier for the current score
func (a *AbilityScore) Modifier() int {
	if a == nil {
		return 0
	}
	return shared.Modifier(a.Score)
}

// Increase raises the score and recomputes the modifier
func (a *AbilityScore) Increase(amount int) {
	a.Score += amount
	a.Bonus = shared.Modifier(a.Score)
}
