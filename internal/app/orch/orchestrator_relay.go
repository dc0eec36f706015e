package orch

import (
	"github.com/dkeye/flightrelay/internal/app"
	"github.com/dkeye/flightrelay/internal/core"
	"github.com/dkeye/flightrelay/internal/metrics"
	"github.com/dkeye/flightrelay/internal/protocol"
	"github.com/rs/zerolog/log"
)

// forwardToHost unicasts a viewer command. Privileged commands from an
// unprivileged viewer are answered with control_required and dropped.
func (o *Orchestrator) forwardToHost(p *core.Peer, msgType string, data []byte) {
	if !o.Gate.Permits(p, msgType) {
		metrics.Dropped.WithLabelValues("control_required").Inc()
		log.Info().Str("module", "orch").Str("conn", string(p.ID())).Str("type", msgType).Msg("privileged command without control")
		o.sendJSON(p, protocol.Message{Type: protocol.TypeControlRequired, Message: controlRequiredMessage})
		return
	}
	sess, ok := o.Registry.Lookup(p.Key())
	if !ok {
		return
	}
	sent, err := sess.SendToHost(data)
	switch {
	case err != nil:
		metrics.Dropped.WithLabelValues("host_backpressure").Inc()
		log.Warn().Err(err).Str("module", "orch").Str("key", string(sess.Key())).Msg("host send failed")
	case !sent:
		metrics.Dropped.WithLabelValues("no_host").Inc()
	default:
		metrics.Forwarded.WithLabelValues("unicast").Inc()
	}
}

// broadcast fans a host frame out to every viewer of its session.
func (o *Orchestrator) broadcast(p *core.Peer, data []byte) {
	sess, ok := o.Registry.Lookup(p.Key())
	if !ok {
		return
	}
	res, ok := sess.Broadcast(p, data)
	if !ok {
		metrics.Dropped.WithLabelValues("stale_host").Inc()
		return
	}
	metrics.Forwarded.WithLabelValues("broadcast").Add(float64(res.SendTo))
	o.applyPolicy(sess, res)
}

func (o *Orchestrator) applyPolicy(sess core.SessionService, res core.PublishResult) {
	if o.Policy == nil || len(res.Dropped) == 0 {
		return
	}
	for _, slow := range res.Dropped {
		metrics.Dropped.WithLabelValues("viewer_backpressure").Inc()
		switch o.Policy.OnBackPressure(sess, slow) {
		case app.ClosePeer:
			log.Warn().Str("module", "orch").Str("conn", string(slow.ID())).Str("key", string(sess.Key())).Msg("closing slow viewer")
			sess.RemoveViewer(slow)
			slow.Signal().Close()
		case app.DropFrame, app.NoAction:
		}
	}
}
