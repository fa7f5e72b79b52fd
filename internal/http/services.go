package httpapi

import (
	"gorm.io/gorm"

	"github.com/tbourn/go-card-feed/internal/categories"
	"github.com/tbourn/go-card-feed/internal/config"
	"github.com/tbourn/go-card-feed/internal/domain"
	"github.com/tbourn/go-card-feed/internal/http/handlers"
	"github.com/tbourn/go-card-feed/internal/services"
)

// newFeedCache picks the feed cache backend. The memory backend lives and
// dies with the process; the db backend survives restarts and is shared by
// replicas.
func newFeedCache(db *gorm.DB, backend string) services.FeedCacheStore {
	if backend == "memory" {
		return services.NewMemoryFeedCache()
	}
	return services.NewDBFeedCache(db, feedCacheRepoShim{})
}

// newServices builds the handler collaborators from the feed configuration.
// Zero limits and timeouts keep the service defaults.
func newServices(db *gorm.DB, mapping *categories.Mapping, fc config.FeedConfig) handlers.Services {
	cal := services.NewCalendar(fc.Location())
	cache := newFeedCache(db, fc.CacheBackend)

	feed := services.NewFeedService(db, contentRepoShim{}, cache)
	for _, t := range fc.Types {
		if ct := domain.NormalizeCardType(t); ct != "" {
			feed.Types = append(feed.Types, ct)
		}
	}

	cats := services.NewCategoryService(db, contentRepoShim{}, mapping)
	games := services.NewGameService(db, contentRepoShim{})
	profiles := services.NewProfileService(db, contentRepoShim{})
	cacheSvc := services.NewFeedCacheService(cache, cal)

	if fc.FeedLimit > 0 {
		feed.Limit = fc.FeedLimit
	}
	if fc.CategoryLimit > 0 {
		cats.Limit = fc.CategoryLimit
	}
	if fc.GamesLimit > 0 {
		games.Limit = fc.GamesLimit
	}
	if fc.StoreTimeout > 0 {
		feed.Timeout = fc.StoreTimeout
		cats.Timeout = fc.StoreTimeout
		games.Timeout = fc.StoreTimeout
		profiles.Timeout = fc.StoreTimeout
		cacheSvc.Timeout = fc.StoreTimeout
	}

	return handlers.Services{
		Feed:       feed,
		Categories: cats,
		Cache:      cacheSvc,
		Games:      games,
		Profiles:   profiles,
		Calendar:   cal,
	}
}
