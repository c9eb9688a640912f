package pipeline

import (
	"context"

	"github.com/matzehuels/debgems/pkg/cache"
	"github.com/matzehuels/debgems/pkg/config"
	"github.com/matzehuels/debgems/pkg/store"
)

// OpenCache returns the cache configured in cfg: none when disabled, Redis
// when a URL is set, otherwise files under cfg.Cache.Dir.
func OpenCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	switch {
	case cfg.Cache.Disabled:
		return cache.NewNullCache(), nil
	case cfg.Cache.RedisURL != "":
		return cache.NewRedisCache(ctx, cfg.Cache.RedisURL)
	case cfg.Cache.Dir == "":
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(cfg.Cache.Dir)
}

// OpenStore returns the run store configured in cfg: MongoDB when a URI is
// set, otherwise files under cfg.Store.Dir.
func OpenStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.Store.MongoURI != "" {
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:      cfg.Store.MongoURI,
			Database: cfg.Store.Database,
		})
	}
	return store.NewFileStore(cfg.Store.Dir)
}
