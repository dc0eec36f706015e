package authz

import (
	"github.com/dkeye/flightrelay/internal/core"
	"github.com/dkeye/flightrelay/internal/domain"
	"github.com/rs/zerolog/log"
)

type Outcome int

const (
	Granted Outcome = iota
	Failed
	Limited
)

func (o Outcome) String() string {
	switch o {
	case Granted:
		return "granted"
	case Limited:
		return "limited"
	default:
		return "failed"
	}
}

// SessionLookup resolves a session key to its current state.
type SessionLookup interface {
	Lookup(key domain.SessionKey) (core.SessionService, bool)
}

// Gate decides viewer privilege. A grant is sticky for the connection's
// lifetime and is not re-checked when the session's passwords rotate.
type Gate struct {
	Sessions   SessionLookup
	Classifier *Classifier
	// Limiter is optional; nil means unlimited attempts.
	Limiter *AttemptLimiter
}

func NewGate(sessions SessionLookup, classifier *Classifier, limiter *AttemptLimiter) *Gate {
	if classifier == nil {
		classifier = NewClassifier()
	}
	return &Gate{Sessions: sessions, Classifier: classifier, Limiter: limiter}
}

func (g *Gate) Classify(commandType string) CommandClass {
	return g.Classifier.Classify(commandType)
}

// RequestPrivilege grants p privilege iff supplied matches the primary or
// guest password of the session p is joined to as a viewer. Unknown or
// unbound sessions fail the same way as a wrong password.
func (g *Gate) RequestPrivilege(p *core.Peer, supplied string) Outcome {
	logger := log.With().Str("module", "authz").Str("conn", string(p.ID())).Logger()

	if g.Limiter != nil && !g.Limiter.Allow(p.ID()) {
		logger.Warn().Msg("control request rate limited")
		return Limited
	}

	role, key := p.Binding()
	if role != domain.RoleViewer || key == "" {
		logger.Info().Str("role", role.String()).Msg("control request from unjoined connection")
		return Failed
	}
	sess, ok := g.Sessions.Lookup(key)
	if !ok || !sess.Credentials().Accepts(supplied) {
		logger.Info().Str("key", string(key)).Msg("control denied")
		return Failed
	}
	p.Grant()
	logger.Info().Str("key", string(key)).Msg("control granted")
	return Granted
}

// Permits reports whether p may send a command of the given type.
func (g *Gate) Permits(p *core.Peer, commandType string) bool {
	return g.Classify(commandType) == Unprivileged || p.Privileged()
}

// Release forgets per-connection state of a closed peer.
func (g *Gate) Release(p *core.Peer) {
	if g.Limiter != nil {
		g.Limiter.Forget(p.ID())
	}
}
