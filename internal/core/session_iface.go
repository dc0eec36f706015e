package core

import "github.com/dkeye/flightrelay/internal/domain"

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []*Peer
}

// SessionInfo is a read-only view for APIs (no transport fields, no passwords).
type SessionInfo struct {
	UniqueID domain.SessionKey `json:"uniqueId"`
	PCOnline bool              `json:"pcOnline"`
	Viewers  int               `json:"viewers"`
}

// SessionService is the core-facing API of a session.
// It owns the host reference and the viewer set but never touches
// transport resources beyond TrySend.
type SessionService interface {
	Key() domain.SessionKey
	Credentials() domain.Credentials
	Info() SessionInfo

	// Rebind atomically stores new credentials and swaps the host reference.
	Rebind(creds domain.Credentials, host *Peer) (prev *Peer)
	// IsHost reports whether p is the currently bound host.
	IsHost(p *Peer) bool
	// DetachHost clears the host reference if p is still the bound host and,
	// under the same lock, sends notice to every joined viewer.
	DetachHost(p *Peer, notice Frame) (PublishResult, bool)

	// AddViewer joins p and, under the same lock, sends it welcome(hostOnline)
	// followed by the cached pause frame. A send error leaves p joined; the
	// caller decides what to do with a slow viewer.
	AddViewer(p *Peer, welcome func(hostOnline bool) Frame) (hostOnline bool, err error)
	RemoveViewer(p *Peer) bool
	ViewerCount() int

	// Broadcast sends data to every viewer when from is the bound host.
	Broadcast(from *Peer, data Frame) (PublishResult, bool)
	// SendToHost forwards data to the bound host, if any.
	SendToHost(data Frame) (bool, error)

	PauseState() Frame
	SetPauseState(from *Peer, data Frame) (PublishResult, bool)
}
