// Package domain holds session identity and credentials, including the
// password rule that decides who may take control.
package domain

import "errors"

var (
	ErrSessionKeyEmpty = errors.New("session key empty")
	ErrPasswordEmpty   = errors.New("password empty")
)

// SessionKey is the operator-chosen uniqueId shared by a host and its viewers.
type SessionKey string

// Credentials is the persisted part of a session.
type Credentials struct {
	UniqueID      SessionKey `json:"uniqueId"`
	Password      string     `json:"password"`
	GuestPassword string     `json:"guestPassword"`
}

// NewCredentials validates the values a host registers with. An empty guest
// password is allowed and disables guest access.
func NewCredentials(uniqueID, password, guestPassword string) (Credentials, error) {
	if len(uniqueID) == 0 {
		return Credentials{}, ErrSessionKeyEmpty
	}
	if len(password) == 0 {
		return Credentials{}, ErrPasswordEmpty
	}
	return Credentials{
		UniqueID:      SessionKey(uniqueID),
		Password:      password,
		GuestPassword: guestPassword,
	}, nil
}

// Accepts reports whether supplied equals the primary or the guest password.
// An empty guest password is disabled.
func (c Credentials) Accepts(supplied string) bool {
	if supplied == "" {
		return false
	}
	if supplied == c.Password {
		return true
	}
	return c.GuestPassword != "" && supplied == c.GuestPassword
}
