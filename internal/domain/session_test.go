package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCredentials(t *testing.T) {
	testCases := []struct {
		name     string
		id       string
		password string
		wantErr  error
	}{
		{name: "valid", id: "ABC123", password: "admin"},
		{name: "empty id", id: "", password: "admin", wantErr: ErrSessionKeyEmpty},
		{name: "long id", id: strings.Repeat("x", 512), password: "admin"},
		{name: "empty password", id: "ABC123", password: "", wantErr: ErrPasswordEmpty},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := NewCredentials(tc.id, tc.password, "55512")
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, SessionKey(tc.id), c.UniqueID)
		})
	}
}

func TestCredentialsAccepts(t *testing.T) {
	withGuest := Credentials{UniqueID: "ABC123", Password: "admin", GuestPassword: "55512"}
	noGuest := Credentials{UniqueID: "ABC123", Password: "admin"}

	testCases := []struct {
		name     string
		creds    Credentials
		supplied string
		expected bool
	}{
		{"primary", withGuest, "admin", true},
		{"guest", withGuest, "55512", true},
		{"wrong", withGuest, "nope", false},
		{"empty supplied", withGuest, "", false},
		{"guest disabled rejects empty", noGuest, "", false},
		{"guest disabled primary ok", noGuest, "admin", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.creds.Accepts(tc.supplied))
		})
	}
}
