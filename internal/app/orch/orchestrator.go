package orch

import (
	"encoding/json"

	"github.com/dkeye/flightrelay/internal/app"
	"github.com/dkeye/flightrelay/internal/app/authz"
	"github.com/dkeye/flightrelay/internal/core"
	"github.com/dkeye/flightrelay/internal/domain"
	"github.com/dkeye/flightrelay/internal/metrics"
	"github.com/dkeye/flightrelay/internal/protocol"
	"github.com/rs/zerolog/log"
)

type Orchestrator struct {
	Registry *app.Registry
	Gate     *authz.Gate
	Policy   app.Policy
}

func New(reg *app.Registry, gate *authz.Gate, policy app.Policy) *Orchestrator {
	return &Orchestrator{Registry: reg, Gate: gate, Policy: policy}
}

// Route handles one inbound frame of peer. Frames of a single peer must be
// routed in the order they were read.
func (o *Orchestrator) Route(p *core.Peer, data []byte) {
	metrics.MessagesReceived.Inc()
	msgType, err := protocol.ParseType(data)
	if err != nil {
		log.Debug().Err(err).Str("module", "orch").Str("conn", string(p.ID())).Msg("ignoring malformed frame")
		return
	}

	switch msgType {
	case protocol.TypeRegisterPC:
		o.handleRegister(p, data)
	case protocol.TypeConnectMobile:
		o.handleConnect(p, data)
	case protocol.TypeRequestControl:
		o.handleRequestControl(p, data)
	case protocol.TypePauseState:
		o.handlePauseState(p, data)
	default:
		o.relay(p, msgType, data)
	}
}

func (o *Orchestrator) relay(p *core.Peer, msgType string, data []byte) {
	switch p.Role() {
	case domain.RoleViewer:
		o.forwardToHost(p, msgType, data)
	case domain.RoleHost:
		o.broadcast(p, data)
	default:
		metrics.Dropped.WithLabelValues("unbound").Inc()
		log.Debug().Str("module", "orch").Str("conn", string(p.ID())).Str("type", msgType).Msg("frame from unbound connection")
	}
}

func (o *Orchestrator) sendJSON(p *core.Peer, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("sendJSON marshal")
		return
	}
	if err := p.Signal().TrySend(b); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("conn", string(p.ID())).Msg("reply not delivered")
	}
}

func mustFrame(v any) core.Frame {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

var pcOfflineFrame = mustFrame(protocol.Notice{Type: protocol.TypePCOffline})
