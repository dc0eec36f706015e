package client

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/dkeye/flightrelay/internal/domain"
	"github.com/dkeye/flightrelay/internal/protocol"
)

// ViewerLink is the controller side of a session. It re-joins on every
// connect; control has to be requested again after a reconnect.
type ViewerLink struct {
	*link

	key     domain.SessionKey
	handler Handler

	mu       sync.Mutex
	pcOnline bool
}

// NewViewerLink builds a viewer link; onMessage receives telemetry and
// relay notices.
func NewViewerLink(url string, key domain.SessionKey, onMessage Handler, opts ...Option) *ViewerLink {
	v := &ViewerLink{key: key, handler: onMessage}
	v.link = newLink(url, "viewer", opts)
	v.link.hello = v.join
	v.link.dispatch = v.dispatch
	return v
}

func (v *ViewerLink) Run(ctx context.Context) error { return v.run(ctx) }

// PCOnline reports the last known host liveness.
func (v *ViewerLink) PCOnline() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pcOnline
}

func (v *ViewerLink) RequestControl(password string) error {
	return v.send(protocol.TypeRequestControl, protocol.RequestControl{Password: password})
}

// Send issues a command to the host.
func (v *ViewerLink) Send(msgType string, payload any) error {
	return v.send(msgType, payload)
}

func (v *ViewerLink) join() error {
	return v.send(protocol.TypeConnectMobile, protocol.ConnectMobile{UniqueID: string(v.key)})
}

func (v *ViewerLink) setOnline(online bool) {
	v.mu.Lock()
	v.pcOnline = online
	v.mu.Unlock()
}

func (v *ViewerLink) dispatch(msgType string, data []byte) {
	switch msgType {
	case protocol.TypeConnected:
		var msg protocol.Connected
		if err := json.Unmarshal(data, &msg); err == nil {
			v.setOnline(msg.PCOnline)
		}
		if v.State() != Authorized {
			v.setState(Joined)
		}
	case protocol.TypeControlGranted:
		v.setState(Authorized)
	case protocol.TypePCOffline:
		v.setOnline(false)
	case protocol.TypeAuthFailed, protocol.TypeControlRequired, protocol.TypeError:
	default:
		// any host frame means the host is up
		v.setOnline(true)
	}
	if v.handler != nil {
		v.handler(msgType, data)
	}
}
