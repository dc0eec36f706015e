package client

import (
	"context"
	"sync"

	"github.com/dkeye/flightrelay/internal/domain"
	"github.com/dkeye/flightrelay/internal/protocol"
)

// HostLink is the simulator side of a session. It re-registers with the
// current passwords on every connect.
type HostLink struct {
	*link

	mu    sync.RWMutex
	creds domain.Credentials

	handler Handler
}

// NewHostLink builds a host link; onCommand receives viewer commands.
func NewHostLink(url string, creds domain.Credentials, onCommand Handler, opts ...Option) *HostLink {
	h := &HostLink{creds: creds, handler: onCommand}
	h.link = newLink(url, "host", opts)
	h.link.hello = h.register
	h.link.dispatch = h.dispatch
	return h
}

func (h *HostLink) Run(ctx context.Context) error { return h.run(ctx) }

func (h *HostLink) Credentials() domain.Credentials {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.creds
}

// SetPasswords rotates the passwords and re-registers right away when
// connected. Viewers already holding control keep it.
func (h *HostLink) SetPasswords(password, guestPassword string) error {
	h.mu.Lock()
	creds, err := domain.NewCredentials(string(h.creds.UniqueID), password, guestPassword)
	if err != nil {
		h.mu.Unlock()
		return err
	}
	h.creds = creds
	h.mu.Unlock()

	if h.State() < Connected {
		return nil
	}
	return h.register()
}

// SendTelemetry broadcasts a frame to the session's viewers.
func (h *HostLink) SendTelemetry(msgType string, payload any) error {
	return h.send(msgType, payload)
}

func (h *HostLink) register() error {
	c := h.Credentials()
	return h.send(protocol.TypeRegisterPC, protocol.RegisterPC{
		UniqueID:      string(c.UniqueID),
		Password:      c.Password,
		GuestPassword: c.GuestPassword,
	})
}

func (h *HostLink) dispatch(msgType string, data []byte) {
	if msgType == protocol.TypeRegistered {
		h.setState(Registered)
		return
	}
	if h.handler != nil {
		h.handler(msgType, data)
	}
}
