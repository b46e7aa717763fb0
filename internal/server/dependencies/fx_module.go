// Package dependencies wires the infrastructure the services run on:
// logger, store, policy guard and membership index.
package dependencies

import (
	"context"

	"go.uber.org/fx"

	"github.com/bookhaven/bookhaven/internal/log"
	"github.com/bookhaven/bookhaven/internal/policy"
	"github.com/bookhaven/bookhaven/internal/storage"
	"github.com/bookhaven/bookhaven/internal/tenant"
	"github.com/bookhaven/bookhaven/internal/pkg/xcache"
)

// NewGuardedStore opens the configured database and wraps it with the
// policy guard. Everything above this layer sees only the guarded store.
func NewGuardedStore(cfg storage.Config) (*policy.Guard, error) {
	store, err := storage.Open(cfg)
	if err != nil {
		return nil, err
	}

	return policy.NewGuard(store), nil
}

// NewMembershipIndex builds the tenant index over the raw store. The
// index performs the very reads the guard's decisions depend on, so it
// must not be guarded itself.
func NewMembershipIndex(guard *policy.Guard, cfg xcache.Config) *tenant.Index {
	return tenant.New(guard.Unwrap(), xcache.NewFromConfig[*storage.StaffMembership](cfg))
}

var Module = fx.Module("dependencies",
	fx.Provide(log.New),
	fx.Provide(NewGuardedStore),
	fx.Provide(func(g *policy.Guard) storage.Store { return g }),
	fx.Provide(NewMembershipIndex),
	fx.Invoke(func(lc fx.Lifecycle, guard *policy.Guard) {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return guard.Close()
			},
		})
	}),
)
