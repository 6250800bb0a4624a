package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event is a single append-only audit record. Events are never mutated or
// deleted once stored.
type Event struct {
	ID        uuid.UUID      `json:"id"`
	ActorID   *uuid.UUID     `json:"actor_id,omitempty"` // nil for anonymous or system actions
	Kind      string         `json:"kind"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	IP        string         `json:"ip,omitempty"`
	UserAgent string         `json:"user_agent,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Validate checks that the event carries the required fields.
func (e *Event) Validate() error {
	if e.Kind == "" {
		return fmt.Errorf("%w: kind is required", ErrEventValidation)
	}
	return nil
}

// Logger appends security-relevant events to a Storage backend.
type Logger interface {
	Log(ctx context.Context, kind string, opts ...EventOption) error
}

// Storage is the persistence capability behind a Logger. The store owns
// durability; this package owns the record shape.
type Storage interface {
	Store(ctx context.Context, event Event) error
}

// EventOption applies configuration to an Event during creation.
type EventOption func(*Event)

// WithActor attributes the event to an account.
func WithActor(id uuid.UUID) EventOption {
	return func(e *Event) {
		e.ActorID = &id
	}
}

// WithMetadata adds a metadata entry to the event. Callers must never put
// raw secrets, codes, or passwords here.
func WithMetadata(key string, value any) EventOption {
	return func(e *Event) {
		if e.Metadata == nil {
			e.Metadata = make(map[string]any)
		}
		e.Metadata[key] = value
	}
}

// WithRequestMeta records the client network context of the triggering request.
func WithRequestMeta(ip, userAgent string) EventOption {
	return func(e *Event) {
		e.IP = ip
		e.UserAgent = userAgent
	}
}
