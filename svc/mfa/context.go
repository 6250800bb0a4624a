package mfa

import (
	"context"

	"github.com/google/uuid"
)

type actorContextKey struct{}

// SetActorToContext stores the authenticated account ID in context for
// middleware chain access.
func SetActorToContext(ctx context.Context, accountID uuid.UUID) context.Context {
	return context.WithValue(ctx, actorContextKey{}, accountID)
}

// GetActorFromContext retrieves the authenticated account ID from context.
// Returns uuid.Nil if none was previously stored.
func GetActorFromContext(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(actorContextKey{}).(uuid.UUID)
	return id
}
