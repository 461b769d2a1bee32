package cache_fx

import (
	"os"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"wayfare/pkg/cache"
)

var Module = fx.Provide(provideCacheStore)

// provideCacheStore prefers a shared Redis instance; without REDIS_ADDR the
// pipeline runs on a process-local store.
func provideCacheStore() cache.Store {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return cache.NewMemoryStore()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	return cache.NewRedisStore(client)
}
