package core

import (
	"sync"
	"sync/atomic"

	"github.com/dkeye/flightrelay/internal/domain"
)

type ConnID string

// Peer is one classified (or not yet classified) transport connection.
// Role is assigned once; only the viewer privilege flag and the bound
// key of a viewer change afterwards.
type Peer struct {
	id     ConnID
	signal SignalConnection

	mu   sync.RWMutex
	role domain.Role
	key  domain.SessionKey

	privileged atomic.Bool
}

func NewPeer(id ConnID, signal SignalConnection) *Peer {
	return &Peer{id: id, signal: signal}
}

func (p *Peer) ID() ConnID               { return p.id }
func (p *Peer) Signal() SignalConnection { return p.signal }

func (p *Peer) Role() domain.Role {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.role
}

func (p *Peer) Key() domain.SessionKey {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.key
}

// Binding returns role and key in one read.
func (p *Peer) Binding() (domain.Role, domain.SessionKey) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.role, p.key
}

// Bind tags the peer with role and key. It fails if the peer already
// carries the other role. Rebinding a viewer to a different key drops its
// privilege; the previous key is returned so the caller can leave it.
func (p *Peer) Bind(role domain.Role, key domain.SessionKey) (prev domain.SessionKey, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.role != domain.RoleNone && p.role != role {
		return "", false
	}
	prev = p.key
	if prev != key {
		p.privileged.Store(false)
	}
	p.role = role
	p.key = key
	return prev, true
}

func (p *Peer) Privileged() bool { return p.privileged.Load() }

// Grant sets the privilege flag. It is never cleared for the bound key.
func (p *Peer) Grant() { p.privileged.Store(true) }
