// internal/game/roll_test.go
package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveRoll(t *testing.T) {
	tests := []struct {
		name      string
		value     int
		firstRoll bool
		want      RollOutcome
	}{
		{"first roll 1 is a flat ten", 1, true, RollOutcome{Kind: RollBonusTen, PotDelta: 10, PotMultiplier: 1}},
		{"first roll 2 is a flat two", 2, true, RollOutcome{Kind: RollBonusTwo, PotDelta: 2, PotMultiplier: 1}},
		{"later 1 busts", 1, false, RollOutcome{Kind: RollBust, PotMultiplier: 1}},
		{"later 2 doubles", 2, false, RollOutcome{Kind: RollDouble, PotMultiplier: 2}},
		{"first roll 3 is face value", 3, true, RollOutcome{Kind: RollNormal, PotDelta: 3, PotMultiplier: 1}},
		{"4 is face value", 4, false, RollOutcome{Kind: RollNormal, PotDelta: 4, PotMultiplier: 1}},
		{"5 is face value", 5, false, RollOutcome{Kind: RollNormal, PotDelta: 5, PotMultiplier: 1}},
		{"6 is face value", 6, false, RollOutcome{Kind: RollNormal, PotDelta: 6, PotMultiplier: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveRoll(tt.value, tt.firstRoll))
		})
	}
}

func TestRollKindString(t *testing.T) {
	assert.Equal(t, "normal", RollNormal.String())
	assert.Equal(t, "bonusTen", RollBonusTen.String())
	assert.Equal(t, "bonusTwo", RollBonusTwo.String())
	assert.Equal(t, "double", RollDouble.String())
	assert.Equal(t, "bust", RollBust.String())
}
