package authz

import (
	"context"
	"fmt"
	"time"

	"github.com/bookhaven/bookhaven/internal/log"
	"github.com/bookhaven/bookhaven/internal/pkg/xtime"
	"github.com/bookhaven/bookhaven/internal/policy"
)

// bypassKey is an unexported key type to prevent external forgery.
type bypassKey struct{}

// bypassInfo stores bypass metadata.
type bypassInfo struct {
	Reason    string
	Timestamp time.Time
	Principal Principal
}

// WithBypassPolicy creates a local policy-bypass context. Only System or
// Test principals may call. reason must be a stable audit identifier
// (e.g. "auth-lookup", "invite-lookup").
func WithBypassPolicy(ctx context.Context, reason string) (context.Context, error) {
	p, ok := GetPrincipal(ctx)
	if !ok {
		return nil, fmt.Errorf("authz: WithBypassPolicy requires a principal in context")
	}

	if !p.IsSystem() && !p.IsTest() {
		return nil, fmt.Errorf("authz: WithBypassPolicy requires system or test principal, got %s", p.String())
	}

	info := bypassInfo{
		Reason:    reason,
		Timestamp: xtime.Now(),
		Principal: p,
	}

	recordBypassAudit(ctx, info)

	ctx = context.WithValue(ctx, bypassKey{}, info)

	// Only here is the capability converted into a policy-visible
	// allow decision.
	return policy.DecisionContext(ctx, policy.Allow), nil
}

// RunWithBypass executes a bypass operation within a closure, limiting
// how far the bypass context can spread along the call chain.
//
// Example usage:
//
//	user, err := authz.RunWithBypass(ctx, "auth-lookup", func(ctx context.Context) (*storage.User, error) {
//	    return store.GetUserByEmail(ctx, email)
//	})
func RunWithBypass[T any](ctx context.Context, reason string, fn func(ctx context.Context) (T, error)) (T, error) {
	bypassCtx, err := WithBypassPolicy(ctx, reason)
	if err != nil {
		var zero T
		return zero, err
	}

	return fn(bypassCtx)
}

// RunWithSystemBypass declares a System principal and bypasses policy in
// one step, for background flows with no request principal.
func RunWithSystemBypass[T any](ctx context.Context, reason string, fn func(ctx context.Context) (T, error)) (T, error) {
	return RunWithBypass(NewSystemContext(ctx), reason, fn)
}

// GetBypassInfo retrieves current bypass information, for audit and
// debugging.
func GetBypassInfo(ctx context.Context) (bypassInfo, bool) {
	info, ok := ctx.Value(bypassKey{}).(bypassInfo)
	return info, ok
}

// IsBypassActive checks if the current context is in bypass state.
func IsBypassActive(ctx context.Context) bool {
	_, ok := ctx.Value(bypassKey{}).(bypassInfo)
	return ok
}

// auditLogger is the bypass audit logger. Can be customized via
// SetAuditLogger.
var auditLogger func(ctx context.Context, principal, reason string)

// SetAuditLogger sets a custom audit logger. If unset, the standard
// logger is used.
func SetAuditLogger(fn func(ctx context.Context, principal, reason string)) {
	auditLogger = fn
}

func recordBypassAudit(ctx context.Context, info bypassInfo) {
	if auditLogger != nil {
		auditLogger(ctx, info.Principal.String(), info.Reason)
		return
	}

	log.Debug(ctx, "authz: policy bypass",
		log.String("principal", info.Principal.String()),
		log.String("reason", info.Reason),
	)
}
