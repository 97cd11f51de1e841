package middleware

import (
	"context"

	"github.com/google/uuid"
)

// RequestIDHeader carries the correlation id of an API call.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// WithRequestID stores a request id in the context. Requests made with this
// context reuse it instead of generating a new one.
func WithRequestID(ctx context.Context, requestID uuid.UUID) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the request id stored by WithRequestID.
func RequestIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(requestIDKey{}).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}
