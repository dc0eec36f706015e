package authz

import (
	"testing"
	"time"

	"github.com/dkeye/flightrelay/internal/core"
	"github.com/dkeye/flightrelay/internal/domain"
	"github.com/stretchr/testify/assert"
)

type lookupMap map[domain.SessionKey]core.SessionService

func (m lookupMap) Lookup(key domain.SessionKey) (core.SessionService, bool) {
	s, ok := m[key]
	return s, ok
}

func newSessions() lookupMap {
	creds := domain.Credentials{UniqueID: "ABC123", Password: "admin", GuestPassword: "55512"}
	return lookupMap{"ABC123": core.NewSessionService(creds)}
}

func joinedViewer(id string, key domain.SessionKey) *core.Peer {
	p := core.NewPeer(core.ConnID(id), nil)
	p.Bind(domain.RoleViewer, key)
	return p
}

func TestRequestPrivilege(t *testing.T) {
	testCases := []struct {
		name     string
		peer     func() *core.Peer
		password string
		want     Outcome
	}{
		{"primary password", func() *core.Peer { return joinedViewer("a", "ABC123") }, "admin", Granted},
		{"guest password", func() *core.Peer { return joinedViewer("b", "ABC123") }, "55512", Granted},
		{"wrong password", func() *core.Peer { return joinedViewer("c", "ABC123") }, "12345", Failed},
		{"empty password", func() *core.Peer { return joinedViewer("d", "ABC123") }, "", Failed},
		{"unknown session", func() *core.Peer { return joinedViewer("e", "NOPE") }, "admin", Failed},
		{"unjoined connection", func() *core.Peer { return core.NewPeer("f", nil) }, "admin", Failed},
		{"host connection", func() *core.Peer {
			p := core.NewPeer("g", nil)
			p.Bind(domain.RoleHost, "ABC123")
			return p
		}, "admin", Failed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := NewGate(newSessions(), nil, nil)
			p := tc.peer()
			assert.Equal(t, tc.want, g.RequestPrivilege(p, tc.password))
			assert.Equal(t, tc.want == Granted, p.Privileged())
		})
	}
}

func TestFailedRequestKeepsExistingPrivilege(t *testing.T) {
	g := NewGate(newSessions(), nil, nil)
	p := joinedViewer("a", "ABC123")
	assert.Equal(t, Granted, g.RequestPrivilege(p, "55512"))
	assert.Equal(t, Failed, g.RequestPrivilege(p, "wrong"))
	assert.True(t, p.Privileged())
}

func TestPrivilegeSurvivesPasswordRotation(t *testing.T) {
	sessions := newSessions()
	g := NewGate(sessions, nil, nil)
	p := joinedViewer("a", "ABC123")
	assert.Equal(t, Granted, g.RequestPrivilege(p, "55512"))

	sessions["ABC123"].Rebind(domain.Credentials{UniqueID: "ABC123", Password: "admin", GuestPassword: "99999"}, nil)
	assert.True(t, g.Permits(p, "toggle_gear"))

	other := joinedViewer("b", "ABC123")
	assert.Equal(t, Failed, g.RequestPrivilege(other, "55512"))
	assert.Equal(t, Granted, g.RequestPrivilege(other, "99999"))
}

func TestPermits(t *testing.T) {
	g := NewGate(newSessions(), nil, nil)
	p := joinedViewer("a", "ABC123")

	assert.True(t, g.Permits(p, "request_ai_traffic"))
	assert.False(t, g.Permits(p, "toggle_gear"))

	p.Grant()
	assert.True(t, g.Permits(p, "toggle_gear"))
}

func TestRequestPrivilegeLimited(t *testing.T) {
	limiter := NewAttemptLimiter(2, time.Minute)
	g := NewGate(newSessions(), nil, limiter)
	p := joinedViewer("a", "ABC123")

	assert.Equal(t, Failed, g.RequestPrivilege(p, "x"))
	assert.Equal(t, Failed, g.RequestPrivilege(p, "y"))
	assert.Equal(t, Limited, g.RequestPrivilege(p, "admin"))
	assert.False(t, p.Privileged())

	g.Release(p)
	assert.Equal(t, Granted, g.RequestPrivilege(p, "admin"))
}
