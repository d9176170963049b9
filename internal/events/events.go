// Package events publishes account lifecycle notifications.
package events

import (
	"context"
	"time"
)

// Типы событий, они же routing key
const (
	TypeUserRegistered = "user.registered"
	TypeUserLoggedIn   = "user.logged_in"
	TypeUserLoggedOut  = "user.logged_out"
	TypeRoleChanged    = "user.role_changed"
)

// Event is a single notification. Tokens are never part of an event.
type Event struct {
	OccurredAt time.Time `json:"occurred_at"`
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	Provider   string    `json:"provider,omitempty"`
	Role       string    `json:"role,omitempty"`
	ActorID    string    `json:"actor_id,omitempty"`
}

// Publisher delivers events. Callers treat delivery as best effort.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Noop discards every event.
type Noop struct{}

// Publish does nothing.
func (Noop) Publish(context.Context, Event) error { return nil }

// Close does nothing.
func (Noop) Close() error { return nil }
