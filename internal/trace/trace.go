// Package trace carries a per-request trace identifier through context.
// Repository failures are reported to the alert sink tagged with this id.
package trace

import (
	"context"

	"github.com/google/uuid"
)

type idKey struct{}

// NewID returns a fresh trace identifier.
func NewID() string {
	return uuid.NewString()
}

// WithID attaches a trace id to the context.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, idKey{}, id)
}

// ID returns the trace id from the context, or "" when none is set.
func ID(ctx context.Context) string {
	id, _ := ctx.Value(idKey{}).(string)
	return id
}
