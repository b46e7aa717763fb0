package log

import (
	"context"

	"go.uber.org/zap"

	"github.com/bookhaven/bookhaven/internal/contexts"
)

// Hook contributes extra fields to every log entry based on the context.
type Hook interface {
	Apply(ctx context.Context, msg string) []zap.Field
}

// HookFunc adapts a function to the Hook interface.
type HookFunc func(ctx context.Context, msg string) []zap.Field

func (f HookFunc) Apply(ctx context.Context, msg string) []zap.Field {
	return f(ctx, msg)
}

// defaultHooks are applied by every Logger built with New.
var defaultHooks = []Hook{
	HookFunc(requestFields),
}

// requestFields pulls the request-scoped identifiers out of the context.
func requestFields(ctx context.Context, _ string) []zap.Field {
	if ctx == nil {
		return nil
	}

	var fields []zap.Field

	if traceID, ok := contexts.GetTraceID(ctx); ok {
		fields = append(fields, zap.String("trace_id", traceID))
	}

	if userID, ok := contexts.GetUserID(ctx); ok {
		fields = append(fields, zap.Int("user_id", userID))
	}

	if libraryID, ok := contexts.GetLibraryID(ctx); ok {
		fields = append(fields, zap.Int("library_id", libraryID))
	}

	return fields
}
