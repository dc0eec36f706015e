package app

import (
	"context"
	"sync"
	"time"

	"github.com/dkeye/flightrelay/internal/core"
	"github.com/dkeye/flightrelay/internal/domain"
	"github.com/dkeye/flightrelay/internal/metrics"
	"github.com/dkeye/flightrelay/internal/store"
	"github.com/rs/zerolog/log"
)

const persistTimeout = 5 * time.Second

// Registry maps session keys to sessions. Sessions are never removed so a
// returning host or a stale viewer link still resolves.
type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.SessionKey]core.SessionService

	// persistMu orders writes so the store always ends with the latest
	// credentials of a session.
	persistMu sync.Mutex
	store     store.Store
}

func NewRegistry(st store.Store) *Registry {
	if st == nil {
		st = store.NewMemoryStore()
	}
	return &Registry{
		sessions: make(map[domain.SessionKey]core.SessionService),
		store:    st,
	}
}

// Load rehydrates password bindings from the store. Loaded sessions have
// no host and no viewers until a live host registers.
func (r *Registry) Load(ctx context.Context) error {
	records, err := r.store.List(ctx)
	if err != nil {
		metrics.StoreErrors.WithLabelValues("list").Inc()
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range records {
		if _, ok := r.sessions[c.UniqueID]; ok {
			continue
		}
		r.sessions[c.UniqueID] = core.NewSessionService(c)
	}
	metrics.Sessions.Set(float64(len(r.sessions)))
	log.Info().Str("module", "app.registry").Int("sessions", len(records)).Msg("loaded sessions")
	return nil
}

// RegisterHost creates the session on first sight, otherwise overwrites
// both passwords and the host reference. Existing viewers and their
// privilege are untouched.
func (r *Registry) RegisterHost(ctx context.Context, creds domain.Credentials, host *core.Peer) (core.SessionService, *core.Peer) {
	sess := r.getOrCreate(creds)
	prev := sess.Rebind(creds, host)
	log.Info().Str("module", "app.registry").Str("key", string(creds.UniqueID)).Str("host", string(host.ID())).Msg("host registered")
	r.persist(ctx, sess)
	return sess, prev
}

// JoinViewer adds p to the session's viewer set and hands it the welcome
// frame atomically with the join. Unknown keys are refused.
func (r *Registry) JoinViewer(key domain.SessionKey, p *core.Peer, welcome func(hostOnline bool) core.Frame) (accepted, hostOnline bool, err error) {
	sess, ok := r.Lookup(key)
	if !ok {
		return false, false, nil
	}
	hostOnline, err = sess.AddViewer(p, welcome)
	return true, hostOnline, err
}

func (r *Registry) LeaveViewer(key domain.SessionKey, p *core.Peer) {
	if sess, ok := r.Lookup(key); ok {
		sess.RemoveViewer(p)
	}
}

// ClearHost drops host from the session if it is still the bound host and
// sends notice to the viewers joined at that instant.
func (r *Registry) ClearHost(key domain.SessionKey, host *core.Peer, notice core.Frame) (core.PublishResult, bool) {
	sess, ok := r.Lookup(key)
	if !ok {
		return core.PublishResult{}, false
	}
	return sess.DetachHost(host, notice)
}

func (r *Registry) Lookup(key domain.SessionKey) (core.SessionService, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[key]
	return s, ok
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) getOrCreate(creds domain.Credentials) core.SessionService {
	r.mu.RLock()
	sess, ok := r.sessions[creds.UniqueID]
	r.mu.RUnlock()
	if ok {
		return sess
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if sess, ok = r.sessions[creds.UniqueID]; ok {
		return sess
	}
	sess = core.NewSessionService(creds)
	r.sessions[creds.UniqueID] = sess
	metrics.Sessions.Set(float64(len(r.sessions)))
	log.Info().Str("module", "app.registry").Str("key", string(creds.UniqueID)).Msg("created session")
	return sess
}

// persist writes the session's current credentials. Failures are logged
// and swallowed; memory stays authoritative.
func (r *Registry) persist(ctx context.Context, sess core.SessionService) {
	r.persistMu.Lock()
	defer r.persistMu.Unlock()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()
	if err := r.store.Put(ctx, sess.Credentials()); err != nil {
		metrics.StoreErrors.WithLabelValues("put").Inc()
		log.Error().Err(err).Str("module", "app.registry").Str("key", string(sess.Key())).Msg("persist session failed")
	}
}
