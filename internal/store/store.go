// Package store persists session password bindings so that a restarted
// relay still recognises known session keys. Live connections are never
// stored.
package store

import (
	"context"
	"errors"

	"github.com/dkeye/flightrelay/internal/domain"
)

var ErrNotFound = errors.New("session not found")

// Store defines the interface for durable session records.
type Store interface {
	// Put creates or replaces the record for c.UniqueID.
	Put(ctx context.Context, c domain.Credentials) error
	Get(ctx context.Context, key domain.SessionKey) (domain.Credentials, error)
	List(ctx context.Context) ([]domain.Credentials, error)
	Close() error
}
