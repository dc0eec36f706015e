package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	testCases := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"command", `{"type":"toggle_gear"}`, "toggle_gear", false},
		{"extra fields", `{"type":"set_throttle","value":0.5}`, "set_throttle", false},
		{"not json", `toggle_gear`, "", true},
		{"array", `["type"]`, "", true},
		{"missing type", `{"value":1}`, "", true},
		{"non string type", `{"type":7}`, "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseType([]byte(tc.in))
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEncode(t *testing.T) {
	b, err := Encode("set_throttle", map[string]any{"value": 0.5})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"set_throttle","value":0.5}`, string(b))

	b, err = Encode("toggle_gear", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"toggle_gear"}`, string(b))

	// payload cannot override the discriminator
	b, err = Encode("flight_data", struct {
		Type     string  `json:"type"`
		Altitude float64 `json:"altitude"`
	}{"spoofed", 1200})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"flight_data","altitude":1200}`, string(b))

	_, err = Encode("x", []int{1})
	assert.Error(t, err)
}
