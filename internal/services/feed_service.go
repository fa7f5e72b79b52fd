// Package services – FeedService
//
// FeedService assembles the daily feed of a caller. A feed is computed at
// most once per (user, day, scope): the first request of the day stores the
// result in the FeedCacheStore and later requests return it unchanged until
// the entry is invalidated or the day rolls over.
//
// Failure policy:
//   - store failures (including timeouts) surface as ErrTransient and nothing
//     is cached;
//   - a cache read failure surfaces as ErrTransient;
//   - a cache write failure is logged and the computed feed is still returned.
//
// Observability: Assemble is OpenTelemetry-instrumented and cache lookups are
// counted in feed_cache_lookups_total.
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-card-feed/internal/domain"
	"github.com/tbourn/go-card-feed/internal/repo"
)

// DefaultFeedLimit caps the number of cards in a feed.
const DefaultFeedLimit = 100

// FeedRequest describes one feed computation.
type FeedRequest struct {
	// UserID is empty for anonymous callers.
	UserID string
	Tier   int
	// MoodID optionally promotes cards linked to a mood.
	MoodID *uint
	Today  domain.Date
}

// FeedService assembles and caches daily feeds.
type FeedService struct {
	DB    *gorm.DB
	Repo  ContentRepo
	Cache FeedCacheStore

	// Types restricts the feed to these card types; empty means all types.
	Types []domain.CardType
	// Limit caps the feed length. Game cards without metadata are skipped
	// and do not count toward it.
	Limit int
	// Timeout bounds each store and cache call.
	Timeout time.Duration

	now func() time.Time
}

// NewFeedService constructs a FeedService with default limits.
func NewFeedService(db *gorm.DB, r ContentRepo, cache FeedCacheStore) *FeedService {
	return &FeedService{
		DB:      db,
		Repo:    r,
		Cache:   cache,
		Limit:   DefaultFeedLimit,
		Timeout: DefaultStoreTimeout,
		now:     time.Now,
	}
}

// Assemble returns the caller's feed for req.Today, from cache when present.
// Anonymous callers share one cache entry, keyed by the empty user id, and
// are always served at the default tier.
func (s *FeedService) Assemble(ctx context.Context, req FeedRequest) (*domain.FeedResult, error) {
	if req.UserID == "" {
		req.Tier = domain.DefaultMembershipTier
	}
	key := CacheKey{UserID: req.UserID, Date: req.Today, Scope: ScopeFor(req.MoodID)}

	ctx, span := otel.Tracer("services/FeedService").Start(ctx, "Assemble",
		trace.WithAttributes(
			attribute.String("user.id", req.UserID),
			attribute.Int("member.tier", req.Tier),
			attribute.String("feed.date", req.Today.String()),
			attribute.String("feed.scope", key.Scope),
		),
	)
	defer span.End()

	if res, ok, err := s.cacheGet(ctx, key); err != nil {
		cacheLookups.WithLabelValues("error").Inc()
		span.SetStatus(codes.Error, "cache read failed")
		return nil, transient("read feed cache", err)
	} else if ok {
		cacheLookups.WithLabelValues("hit").Inc()
		span.SetAttributes(attribute.Bool("feed.cached", true))
		res.Cached = true
		return res, nil
	}
	cacheLookups.WithLabelValues("miss").Inc()

	res, err := s.compute(ctx, req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.cachePut(ctx, key, res); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).
			Str("user_id", key.UserID).
			Str("scope", key.Scope).
			Msg("feed cache write failed")
	}
	span.SetAttributes(attribute.Bool("feed.cached", false), attribute.Int("feed.cards", len(res.Cards)))
	return res, nil
}

// compute builds a fresh feed from the content store.
func (s *FeedService) compute(ctx context.Context, req FeedRequest) (*domain.FeedResult, error) {
	ctx, cancel := bounded(ctx, s.Timeout)
	defer cancel()

	q := repo.CardQuery{Tier: req.Tier, Today: req.Today}
	if len(s.Types) > 0 {
		q.Types = s.Types
	}

	var promoted []domain.Card
	if req.MoodID != nil {
		mood, err := s.Repo.GetMood(ctx, s.DB, *req.MoodID)
		if err != nil {
			if isNotFound(err) {
				return nil, ErrMoodNotFound
			}
			return nil, transient("load mood", err)
		}
		if !mood.Active {
			return nil, ErrMoodNotFound
		}
		promoted, err = s.Repo.ListMoodLinkedCards(ctx, s.DB, mood.ID, q)
		if err != nil {
			return nil, transient("list mood cards", err)
		}
	}

	limit := s.limit()
	seen := make(map[uint]struct{}, limit)
	cards, err := annotate(ctx, s.DB, s.Repo, unseen(filterEligible(promoted, req.Tier, req.Today), seen))
	if err != nil {
		return nil, transient("load game metadata", err)
	}
	if len(cards) > limit {
		cards = cards[:limit]
	}

	cards, err = fill(ctx, s.DB, s.Repo, q, cards, limit, seen, nil)
	if err != nil {
		return nil, transient("list feed cards", err)
	}
	return &domain.FeedResult{Cards: cards, GeneratedAt: s.clock().UTC()}, nil
}

func (s *FeedService) cacheGet(ctx context.Context, key CacheKey) (*domain.FeedResult, bool, error) {
	if s.Cache == nil {
		return nil, false, nil
	}
	ctx, cancel := bounded(ctx, s.Timeout)
	defer cancel()
	return s.Cache.Get(ctx, key)
}

// cachePut stores res on a context detached from the request, so a client
// that disconnects after the feed was computed does not abort the write.
func (s *FeedService) cachePut(ctx context.Context, key CacheKey, res *domain.FeedResult) error {
	if s.Cache == nil {
		return nil
	}
	ctx, cancel := bounded(context.WithoutCancel(ctx), s.Timeout)
	defer cancel()
	return s.Cache.Put(ctx, key, res)
}

func (s *FeedService) limit() int {
	if s.Limit <= 0 {
		return DefaultFeedLimit
	}
	return s.Limit
}

func (s *FeedService) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}
