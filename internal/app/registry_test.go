package app

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dkeye/flightrelay/internal/core"
	"github.com/dkeye/flightrelay/internal/domain"
	"github.com/dkeye/flightrelay/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopSignal struct{}

func (nopSignal) TrySend(core.Frame) error { return nil }
func (nopSignal) Close()                   {}

type failingStore struct{ store.MemoryStore }

func (*failingStore) Put(context.Context, domain.Credentials) error {
	return errors.New("disk full")
}

var abc = domain.Credentials{UniqueID: "ABC123", Password: "admin", GuestPassword: "55512"}

func TestRegistryRestartRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sessions.json")

	fs, err := store.NewFileStore(path)
	require.NoError(t, err)
	reg := NewRegistry(fs)
	host := core.NewPeer("h", nopSignal{})
	reg.RegisterHost(ctx, abc, host)
	viewer := core.NewPeer("v", nopSignal{})
	accepted, online, err := reg.JoinViewer("ABC123", viewer, nil)
	require.NoError(t, err)
	require.True(t, accepted)
	require.True(t, online)

	// simulated process restart
	fs2, err := store.NewFileStore(path)
	require.NoError(t, err)
	restarted := NewRegistry(fs2)
	require.NoError(t, restarted.Load(ctx))

	sess, ok := restarted.Lookup("ABC123")
	require.True(t, ok)
	assert.Equal(t, abc, sess.Credentials())
	assert.Equal(t, core.SessionInfo{UniqueID: "ABC123", PCOnline: false, Viewers: 0}, sess.Info())
}

func TestRegistryRegisterHostReplaces(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(nil)
	h1 := core.NewPeer("h1", nopSignal{})
	h2 := core.NewPeer("h2", nopSignal{})

	s1, prev := reg.RegisterHost(ctx, abc, h1)
	assert.Nil(t, prev)

	rotated := abc
	rotated.GuestPassword = "11111"
	s2, prev := reg.RegisterHost(ctx, rotated, h2)
	assert.Same(t, h1, prev)
	assert.Same(t, s1, s2)
	assert.Equal(t, 1, reg.Count())
	assert.True(t, s2.IsHost(h2))
	assert.Equal(t, "11111", s2.Credentials().GuestPassword)
}

func TestRegistryConcurrentRegistrationsBindOneHost(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(nil)

	peers := make([]*core.Peer, 16)
	var wg sync.WaitGroup
	for i := range peers {
		peers[i] = core.NewPeer(core.ConnID(rune('a'+i)), nopSignal{})
		wg.Add(1)
		go func(p *core.Peer) {
			defer wg.Done()
			reg.RegisterHost(ctx, abc, p)
		}(peers[i])
	}
	wg.Wait()

	sess, ok := reg.Lookup("ABC123")
	require.True(t, ok)
	bound := 0
	for _, p := range peers {
		if sess.IsHost(p) {
			bound++
		}
	}
	assert.Equal(t, 1, bound)
	assert.Equal(t, 1, reg.Count())
}

func TestRegistryJoinUnknown(t *testing.T) {
	reg := NewRegistry(nil)
	accepted, online, err := reg.JoinViewer("NOPE", core.NewPeer("v", nopSignal{}), nil)
	require.NoError(t, err)
	assert.False(t, accepted)
	assert.False(t, online)
}

func TestRegistryIdempotentRemoval(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(nil)
	host := core.NewPeer("h", nopSignal{})
	v := core.NewPeer("v", nopSignal{})

	assert.NotPanics(t, func() {
		reg.LeaveViewer("NOPE", v)
		reg.ClearHost("NOPE", host, nil)
	})

	reg.RegisterHost(ctx, abc, host)
	_, _, _ = reg.JoinViewer("ABC123", v, nil)
	reg.LeaveViewer("ABC123", v)
	reg.LeaveViewer("ABC123", v)

	_, ok := reg.ClearHost("ABC123", host, core.Frame("off"))
	assert.True(t, ok)
	_, ok = reg.ClearHost("ABC123", host, core.Frame("off"))
	assert.False(t, ok)

	sess, _ := reg.Lookup("ABC123")
	assert.Equal(t, 0, sess.ViewerCount())
	assert.False(t, sess.Info().PCOnline)
}

func TestRegistryPersistFailureIsSwallowed(t *testing.T) {
	reg := NewRegistry(&failingStore{})
	host := core.NewPeer("h", nopSignal{})
	sess, _ := reg.RegisterHost(context.Background(), abc, host)
	assert.True(t, sess.IsHost(host))

	accepted, online, err := reg.JoinViewer("ABC123", core.NewPeer("v", nopSignal{}), nil)
	require.NoError(t, err)
	assert.True(t, accepted)
	assert.True(t, online)
}
