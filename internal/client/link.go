// Package client implements the host and viewer ends of the relay
// protocol: dial, announce, read until the socket drops, wait a fixed
// delay, repeat.
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dkeye/flightrelay/internal/protocol"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultReconnectDelay = 3 * time.Second
	writeWait             = 5 * time.Second
)

var ErrNotConnected = errors.New("not connected")

type State int32

const (
	Disconnected State = iota
	Connecting
	// Connected means the socket is open but the relay has not yet
	// acknowledged registration or join.
	Connected
	Registered
	Joined
	Authorized
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Registered:
		return "registered"
	case Joined:
		return "joined"
	case Authorized:
		return "authorized"
	default:
		return "disconnected"
	}
}

// Handler receives every inbound frame with its type already parsed.
type Handler func(msgType string, data []byte)

type Option func(*link)

func WithReconnectDelay(d time.Duration) Option {
	return func(l *link) { l.delay = d }
}

func WithDialer(d *websocket.Dialer) Option {
	return func(l *link) { l.dialer = d }
}

// WithStateHandler is called on every state transition.
func WithStateHandler(fn func(State)) Option {
	return func(l *link) { l.onState = fn }
}

type link struct {
	url    string
	dialer *websocket.Dialer
	delay  time.Duration
	logger zerolog.Logger

	state   atomic.Int32
	onState func(State)

	mu   sync.Mutex
	conn *websocket.Conn

	// hello is sent right after every successful dial.
	hello func() error
	// dispatch handles inbound frames; it may move the state.
	dispatch func(msgType string, data []byte)
}

func newLink(url, role string, opts []Option) *link {
	l := &link{
		url:    url,
		dialer: websocket.DefaultDialer,
		delay:  DefaultReconnectDelay,
		logger: log.With().Str("module", "client").Str("role", role).Logger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *link) State() State { return State(l.state.Load()) }

func (l *link) setState(s State) {
	if State(l.state.Swap(int32(s))) == s {
		return
	}
	l.logger.Debug().Str("state", s.String()).Msg("state change")
	if l.onState != nil {
		l.onState(s)
	}
}

// run keeps the link up until ctx is done, waiting a constant delay
// between attempts.
func (l *link) run(ctx context.Context) error {
	operation := func() error {
		err := l.session(ctx)
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		return err
	}
	policy := backoff.WithContext(backoff.NewConstantBackOff(l.delay), ctx)
	err := backoff.RetryNotify(operation, policy, func(err error, d time.Duration) {
		l.logger.Info().Err(err).Dur("retry_in", d).Msg("link down")
	})
	l.setState(Disconnected)
	return err
}

func (l *link) session(ctx context.Context) error {
	l.setState(Connecting)
	conn, _, err := l.dialer.DialContext(ctx, l.url, nil)
	if err != nil {
		l.setState(Disconnected)
		return fmt.Errorf("dial %s: %w", l.url, err)
	}
	l.mu.Lock()
	l.conn = conn
	l.mu.Unlock()
	l.setState(Connected)
	l.logger.Info().Str("url", l.url).Msg("connected")

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer func() {
		stop()
		l.mu.Lock()
		l.conn = nil
		l.mu.Unlock()
		conn.Close()
		l.setState(Disconnected)
	}()

	if err := l.hello(); err != nil {
		return fmt.Errorf("hello: %w", err)
	}
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		msgType, err := protocol.ParseType(data)
		if err != nil {
			l.logger.Debug().Err(err).Msg("ignoring malformed frame")
			continue
		}
		l.dispatch(msgType, data)
	}
}

func (l *link) write(data []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conn == nil {
		return ErrNotConnected
	}
	if err := l.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return l.conn.WriteMessage(websocket.TextMessage, data)
}

func (l *link) send(msgType string, payload any) error {
	data, err := protocol.Encode(msgType, payload)
	if err != nil {
		return err
	}
	return l.write(data)
}
