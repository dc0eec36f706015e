package orch

import (
	"context"
	"errors"

	"github.com/dkeye/flightrelay/internal/app/authz"
	"github.com/dkeye/flightrelay/internal/core"
	"github.com/dkeye/flightrelay/internal/domain"
	"github.com/dkeye/flightrelay/internal/metrics"
	"github.com/dkeye/flightrelay/internal/protocol"
	"github.com/rs/zerolog/log"
)

const (
	controlRequiredMessage = "This action requires control access. Enter the session password first."
	unknownSessionMessage  = "Invalid session ID. Make sure the PC client is running."
	emptyKeyMessage        = "Session ID must not be empty."
	emptyPasswordMessage   = "Session password must not be empty."
)

func (o *Orchestrator) handleRegister(p *core.Peer, data []byte) {
	msg, err := protocol.DecodeRegisterPC(data)
	if err != nil {
		log.Debug().Err(err).Str("module", "orch").Str("conn", string(p.ID())).Msg("bad register_pc payload")
		return
	}
	if p.Role() == domain.RoleViewer {
		log.Warn().Str("module", "orch").Str("conn", string(p.ID())).Msg("viewer tried to register as host")
		return
	}
	creds, err := domain.NewCredentials(msg.UniqueID, msg.Password, msg.GuestPassword)
	if err != nil {
		log.Info().Err(err).Str("module", "orch").Str("conn", string(p.ID())).Msg("register_pc rejected")
		reason := emptyPasswordMessage
		if errors.Is(err, domain.ErrSessionKeyEmpty) {
			reason = emptyKeyMessage
		}
		o.sendJSON(p, protocol.Message{Type: protocol.TypeError, Message: reason})
		return
	}
	prevKey, ok := p.Bind(domain.RoleHost, creds.UniqueID)
	if !ok {
		return
	}
	if prevKey != "" && prevKey != creds.UniqueID {
		o.detachHost(prevKey, p)
	}

	_, prev := o.Registry.RegisterHost(context.Background(), creds, p)
	metrics.HostRegistrations.Inc()
	if prev != nil && prev != p {
		log.Info().Str("module", "orch").Str("key", string(creds.UniqueID)).Str("demoted", string(prev.ID())).Msg("previous host demoted")
	}
	o.sendJSON(p, protocol.Notice{Type: protocol.TypeRegistered})
}

func (o *Orchestrator) handleConnect(p *core.Peer, data []byte) {
	msg, err := protocol.DecodeConnectMobile(data)
	if err != nil {
		log.Debug().Err(err).Str("module", "orch").Str("conn", string(p.ID())).Msg("bad connect_mobile payload")
		return
	}
	if p.Role() == domain.RoleHost {
		log.Warn().Str("module", "orch").Str("conn", string(p.ID())).Msg("host tried to join as viewer")
		return
	}
	key := domain.SessionKey(msg.UniqueID)
	sess, ok := o.Registry.Lookup(key)
	if !ok {
		log.Info().Str("module", "orch").Str("conn", string(p.ID())).Str("key", string(key)).Msg("join refused, unknown session")
		o.sendJSON(p, protocol.Message{Type: protocol.TypeError, Message: unknownSessionMessage})
		return
	}

	prevKey, _ := p.Bind(domain.RoleViewer, key)
	if prevKey != "" && prevKey != key {
		o.Registry.LeaveViewer(prevKey, p)
	}
	accepted, online, err := o.Registry.JoinViewer(key, p, connectedFrame)
	if !accepted {
		return
	}
	log.Info().Str("module", "orch").Str("conn", string(p.ID())).Str("key", string(key)).Bool("pc_online", online).Msg("viewer joined")
	if err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("conn", string(p.ID())).Msg("welcome not delivered")
		o.applyPolicy(sess, core.PublishResult{Dropped: []*core.Peer{p}})
	}
}

func connectedFrame(online bool) core.Frame {
	return mustFrame(protocol.Connected{Type: protocol.TypeConnected, PCOnline: online})
}

func (o *Orchestrator) handleRequestControl(p *core.Peer, data []byte) {
	msg, err := protocol.DecodeRequestControl(data)
	if err != nil {
		log.Debug().Err(err).Str("module", "orch").Str("conn", string(p.ID())).Msg("bad request_control payload")
		return
	}
	outcome := o.Gate.RequestPrivilege(p, msg.Password)
	metrics.ControlRequests.WithLabelValues(outcome.String()).Inc()
	if outcome == authz.Granted {
		o.sendJSON(p, protocol.Notice{Type: protocol.TypeControlGranted})
		return
	}
	o.sendJSON(p, protocol.Notice{Type: protocol.TypeAuthFailed})
}

// handlePauseState caches and broadcasts the host's pause state. Only the
// bound host may set it; viewers pause through the privileged commands.
func (o *Orchestrator) handlePauseState(p *core.Peer, data []byte) {
	role, key := p.Binding()
	if role != domain.RoleHost {
		metrics.Dropped.WithLabelValues("not_host").Inc()
		log.Debug().Str("module", "orch").Str("conn", string(p.ID())).Msg("pause_state from non-host ignored")
		return
	}
	sess, ok := o.Registry.Lookup(key)
	if !ok {
		return
	}
	res, ok := sess.SetPauseState(p, data)
	if !ok {
		metrics.Dropped.WithLabelValues("stale_host").Inc()
		return
	}
	metrics.Forwarded.WithLabelValues("broadcast").Add(float64(res.SendTo))
	o.applyPolicy(sess, res)
}

// OnDisconnect runs once per closed connection.
func (o *Orchestrator) OnDisconnect(p *core.Peer) {
	role, key := p.Binding()
	o.Gate.Release(p)
	switch role {
	case domain.RoleHost:
		o.detachHost(key, p)
	case domain.RoleViewer:
		o.Registry.LeaveViewer(key, p)
		log.Info().Str("module", "orch").Str("conn", string(p.ID())).Str("key", string(key)).Msg("viewer left")
	}
}

func (o *Orchestrator) detachHost(key domain.SessionKey, p *core.Peer) {
	res, ok := o.Registry.ClearHost(key, p, pcOfflineFrame)
	if !ok {
		return
	}
	log.Info().Str("module", "orch").Str("conn", string(p.ID())).Str("key", string(key)).Int("notified", res.SendTo).Msg("host offline")
	if sess, ok := o.Registry.Lookup(key); ok {
		o.applyPolicy(sess, res)
	}
}
