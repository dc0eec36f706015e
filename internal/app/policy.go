package app

import "github.com/dkeye/flightrelay/internal/core"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	ClosePeer
	DropFrame
)

type Policy interface {
	OnBackPressure(sess core.SessionService, peer *core.Peer) BackpressureAction
}

// SimplePolicy treats a failed send like a close event.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(sess core.SessionService, peer *core.Peer) BackpressureAction {
	return ClosePeer
}
