package contexts

import (
	"context"

	"github.com/bookhaven/bookhaven/internal/storage"
)

// ContextKey defines the context key type.
type ContextKey string

// containerContextKey is used to store the context container in the context.
const containerContextKey ContextKey = "context_container"

// contextContainer holds all request-scoped values.
type contextContainer struct {
	User      *storage.User
	LibraryID *int
	TraceID   *string
}

// getContainer retrieves the existing container from the context, or
// returns a fresh one when none is stored yet.
func getContainer(ctx context.Context) *contextContainer {
	if container, ok := ctx.Value(containerContextKey).(*contextContainer); ok {
		return container
	}

	return &contextContainer{}
}

// withContainer stores the container in the context if not already stored.
func withContainer(ctx context.Context, container *contextContainer) context.Context {
	if ctx.Value(containerContextKey) == nil {
		return context.WithValue(ctx, containerContextKey, container)
	}

	return ctx
}

// WithUser stores the authenticated user in the context.
func WithUser(ctx context.Context, user *storage.User) context.Context {
	container := getContainer(ctx)
	container.User = user

	return withContainer(ctx, container)
}

// GetUser retrieves the authenticated user from the context.
func GetUser(ctx context.Context) (*storage.User, bool) {
	container := getContainer(ctx)
	return container.User, container.User != nil
}

// GetUserID retrieves the authenticated user's id from the context.
func GetUserID(ctx context.Context) (int, bool) {
	user, ok := GetUser(ctx)
	if !ok {
		return 0, false
	}

	return user.ID, true
}

// WithLibraryID stores the tenant library id in the context.
func WithLibraryID(ctx context.Context, libraryID int) context.Context {
	container := getContainer(ctx)
	container.LibraryID = &libraryID

	return withContainer(ctx, container)
}

// GetLibraryID retrieves the tenant library id from the context.
func GetLibraryID(ctx context.Context) (int, bool) {
	container := getContainer(ctx)
	if container.LibraryID != nil {
		return *container.LibraryID, true
	}

	return 0, false
}

// WithTraceID stores the trace id in the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	container := getContainer(ctx)
	container.TraceID = &traceID

	return withContainer(ctx, container)
}

// GetTraceID retrieves the trace id from the context.
func GetTraceID(ctx context.Context) (string, bool) {
	container := getContainer(ctx)
	if container.TraceID != nil {
		return *container.TraceID, true
	}

	return "", false
}
