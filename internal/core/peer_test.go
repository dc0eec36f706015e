package core

import (
	"testing"

	"github.com/dkeye/flightrelay/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestPeerBindIsRoleSticky(t *testing.T) {
	p, _ := newPeer("p")
	_, ok := p.Bind(domain.RoleHost, "A")
	assert.True(t, ok)

	_, ok = p.Bind(domain.RoleViewer, "A")
	assert.False(t, ok)
	assert.Equal(t, domain.RoleHost, p.Role())
}

func TestPeerRebindDropsPrivilegeOnKeyChange(t *testing.T) {
	p, _ := newPeer("p")
	p.Bind(domain.RoleViewer, "A")
	p.Grant()

	prev, ok := p.Bind(domain.RoleViewer, "A")
	assert.True(t, ok)
	assert.Equal(t, domain.SessionKey("A"), prev)
	assert.True(t, p.Privileged())

	prev, ok = p.Bind(domain.RoleViewer, "B")
	assert.True(t, ok)
	assert.Equal(t, domain.SessionKey("A"), prev)
	assert.False(t, p.Privileged())

	role, key := p.Binding()
	assert.Equal(t, domain.RoleViewer, role)
	assert.Equal(t, domain.SessionKey("B"), key)
}
