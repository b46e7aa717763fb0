package policy

import (
	"context"
	"errors"
)

// Decision is the outcome of a policy evaluation.
type Decision int

const (
	// Skip means the rule expressed no opinion; evaluation continues.
	Skip Decision = iota
	// Allow short-circuits evaluation and permits the operation.
	Allow
	// Deny short-circuits evaluation and rejects the operation.
	Deny
)

// ErrDenied is returned when the store-side policy rejects an operation.
// It intentionally carries no row detail; the application-side gate is
// responsible for precise error messaging.
var ErrDenied = errors.New("policy: operation denied")

// decisionKey is an unexported key type to prevent external forgery.
type decisionKey struct{}

// DecisionContext injects a pre-made decision. Only the authz bypass
// helpers may call this; never use it directly at call sites.
func DecisionContext(ctx context.Context, d Decision) context.Context {
	return context.WithValue(ctx, decisionKey{}, d)
}

// DecisionFromContext reads a pre-made decision, if any.
func DecisionFromContext(ctx context.Context) (Decision, bool) {
	d, ok := ctx.Value(decisionKey{}).(Decision)
	return d, ok
}
