package memcache_fx

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"mlmadmin/internal/config"
	"mlmadmin/internal/infra"
	"mlmadmin/pkg/cache"
	mem "mlmadmin/pkg/memcache"
)

var Module = fx.Provide(
	provideResetTokens, provideRedis, provideCacheStore)

func provideResetTokens() mem.ResetTokenStore {
	return mem.NewResetTokens()
}

func provideRedis(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	client, err := infra.OpenRedis(cfg)
	if err != nil || client == nil {
		return client, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}

func provideCacheStore(client *redis.Client) cache.Store {
	return cache.NewRedisStore(client, "mlmadmin:")
}
