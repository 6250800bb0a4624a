package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// contextExtractor pulls string values out of a request context.
// It returns (value, found) where found indicates the extraction succeeded.
type contextExtractor func(context.Context) (string, bool)

type actorExtractor func(context.Context) (uuid.UUID, bool)

type logger struct {
	storage            Storage
	actorExtractor     actorExtractor
	ipExtractor        contextExtractor
	userAgentExtractor contextExtractor
}

// Option configures a Logger at construction.
type Option func(*logger)

// WithActorExtractor derives the acting account from the request context when
// the call site does not pass WithActor explicitly.
func WithActorExtractor(fn func(context.Context) (uuid.UUID, bool)) Option {
	return func(l *logger) {
		l.actorExtractor = fn
	}
}

// WithIPExtractor derives the client IP from the request context.
func WithIPExtractor(fn func(context.Context) (string, bool)) Option {
	return func(l *logger) {
		l.ipExtractor = fn
	}
}

// WithUserAgentExtractor derives the client user agent from the request context.
func WithUserAgentExtractor(fn func(context.Context) (string, bool)) Option {
	return func(l *logger) {
		l.userAgentExtractor = fn
	}
}

// NewLogger creates an audit logger backed by storage.
func NewLogger(storage Storage, opts ...Option) Logger {
	if storage == nil {
		panic("audit: storage cannot be nil")
	}

	l := &logger{storage: storage}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Log appends one event. Explicit EventOptions override anything derived
// from the context extractors.
func (l *logger) Log(ctx context.Context, kind string, opts ...EventOption) error {
	event := l.eventFromContext(ctx)
	event.ID = uuid.New()
	event.Kind = kind
	event.CreatedAt = time.Now()

	for _, opt := range opts {
		opt(&event)
	}

	if err := event.Validate(); err != nil {
		return err
	}

	return l.storage.Store(ctx, event)
}

func (l *logger) eventFromContext(ctx context.Context) Event {
	event := Event{}

	if l.actorExtractor != nil {
		if actorID, ok := l.actorExtractor(ctx); ok {
			event.ActorID = &actorID
		}
	}
	if l.ipExtractor != nil {
		if ip, ok := l.ipExtractor(ctx); ok {
			event.IP = ip
		}
	}
	if l.userAgentExtractor != nil {
		if ua, ok := l.userAgentExtractor(ctx); ok {
			event.UserAgent = ua
		}
	}

	return event
}
