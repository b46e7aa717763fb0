package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhaven/bookhaven/internal/policy"
)

func TestWithBypassPolicyRequiresPrivilegedPrincipal(t *testing.T) {
	// No principal at all.
	_, err := WithBypassPolicy(context.Background(), "test-reason")
	require.Error(t, err)

	// A user principal may not bypass.
	_, err = WithBypassPolicy(NewUserContext(context.Background(), 1), "test-reason")
	require.Error(t, err)

	// System and test principals may.
	ctx, err := WithBypassPolicy(NewSystemContext(context.Background()), "test-reason")
	require.NoError(t, err)
	assert.True(t, IsBypassActive(ctx))

	_, err = WithBypassPolicy(NewTestContext(context.Background()), "test-reason")
	require.NoError(t, err)
}

func TestBypassSetsAllowDecision(t *testing.T) {
	ctx, err := WithBypassPolicy(NewSystemContext(context.Background()), "test-reason")
	require.NoError(t, err)

	d, ok := policy.DecisionFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, policy.Allow, d)
}

func TestRunWithBypassScopesTheContext(t *testing.T) {
	outer := NewSystemContext(context.Background())

	result, err := RunWithBypass(outer, "test-reason", func(inner context.Context) (bool, error) {
		return IsBypassActive(inner), nil
	})
	require.NoError(t, err)
	assert.True(t, result)

	// The bypass must not leak to the outer context.
	assert.False(t, IsBypassActive(outer))
}

func TestRunWithBypassRejectsUserPrincipal(t *testing.T) {
	_, err := RunWithBypass(NewUserContext(context.Background(), 1), "test-reason", func(ctx context.Context) (int, error) {
		t.Fatal("closure must not run")
		return 0, nil
	})
	require.Error(t, err)
}

func TestRunWithSystemBypass(t *testing.T) {
	// Works from a bare context.
	got, err := RunWithSystemBypass(context.Background(), "test-reason", func(ctx context.Context) (string, error) {
		info, ok := GetBypassInfo(ctx)
		require.True(t, ok)

		return info.Reason, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "test-reason", got)

	// Works from a request context carrying a user principal: the system
	// principal shadows it inside the closure only.
	userCtx := NewUserContext(context.Background(), 9)

	_, err = RunWithSystemBypass(userCtx, "test-reason", func(ctx context.Context) (struct{}, error) {
		p, ok := GetPrincipal(ctx)
		require.True(t, ok)
		assert.True(t, p.IsSystem())

		return struct{}{}, nil
	})
	require.NoError(t, err)

	p, _ := GetPrincipal(userCtx)
	assert.True(t, p.IsUser())
}

func TestBypassAuditLogger(t *testing.T) {
	var audited []string

	SetAuditLogger(func(_ context.Context, principal, reason string) {
		audited = append(audited, principal+":"+reason)
	})

	defer SetAuditLogger(nil)

	_, err := RunWithSystemBypass(context.Background(), "audit-check", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, nil
	})
	require.NoError(t, err)

	require.Len(t, audited, 1)
	assert.Contains(t, audited[0], "audit-check")
}
