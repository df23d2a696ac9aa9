// Package session provides the durable session store consumed by the
// persistent session strategy. Records carry no expiry of their own: lifetime
// policy belongs to the strategy, the store only persists and retrieves.
package session

import (
	"context"
	"time"
)

// Record is one durable session: an opaque unique id, the user it
// authenticates, and its creation instant.
type Record struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists session records keyed by session id. Get returns (nil, nil)
// when the id is unknown; Delete on an unknown id is a no-op.
type Store interface {
	Put(ctx context.Context, rec Record) error
	Get(ctx context.Context, sessionID string) (*Record, error)
	Delete(ctx context.Context, sessionID string) error
}
