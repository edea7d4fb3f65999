package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/jsamuelsen11/todo-api/internal/domain"
)

const headerUserID = "X-User-ID"

// actorKey is the context key for storing the resolved caller identity.
type actorKey struct{}

// WithActor returns a new context with the given actor stored in it.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext extracts the actor from the context. Returns the anonymous
// actor if none is stored.
func ActorFromContext(ctx context.Context) domain.Actor {
	if actor, ok := ctx.Value(actorKey{}).(domain.Actor); ok {
		return actor
	}
	return domain.Actor{}
}

// Identity returns middleware that resolves the caller identity from the
// X-User-ID header and stores it in the request context. A missing or
// malformed header resolves to the anonymous actor rather than an error;
// ownership checks further down decide what anonymous callers may touch.
func Identity() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var actor domain.Actor
			if raw := r.Header.Get(headerUserID); raw != "" {
				if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
					actor.UserID = id
				}
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}
