package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	c := NewClassifier("toggle_pushback", "  ")

	testCases := []struct {
		commandType string
		expected    CommandClass
	}{
		{"autopilot_toggle", Privileged},
		{"autopilot_set_altitude", Privileged},
		{"set_ap_heading", Privileged},
		{"toggle_gear", Privileged},
		{"set_throttle", Privileged},
		{"pause_toggle", Privileged},
		{"save_game", Privileged},
		{"save_game_slot", Privileged},
		{"toggle_engine_1", Privileged},
		{"toggle_speedbrake", Privileged},
		{"toggle_parking_brake", Privileged},
		{"toggle_pushback", Privileged},
		{"request_ai_traffic", Unprivileged},
		{"get_state", Unprivileged},
		{"", Unprivileged},
		{"Toggle_Gear", Unprivileged},
	}

	for _, tc := range testCases {
		t.Run(tc.commandType, func(t *testing.T) {
			assert.Equal(t, tc.expected, c.Classify(tc.commandType))
		})
	}
}
