package concurrency

import (
	"context"

	"github.com/google/uuid"
)

// Identity is a caller-owned routing token. Every submission carrying the
// same Identity lands on the same pool for the lifetime of the group.
//
// Identities are never recycled by the executor; the caller keeps one for as
// long as it wants sticky routing (typically the lifetime of an I/O goroutine).
type Identity string

type identityKey struct{}

// NewIdentity mints a fresh, globally unique Identity
func NewIdentity() Identity {
	return Identity(uuid.New().String())
}

// WithIdentity adds an identity to the context
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom retrieves the identity from context
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok && id != ""
}
