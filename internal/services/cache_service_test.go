package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-card-feed/internal/domain"
)

func seedCache(t *testing.T, c FeedCacheStore, keys ...CacheKey) {
	t.Helper()
	for _, k := range keys {
		if err := c.Put(context.Background(), k, &domain.FeedResult{Cards: []domain.FeedCard{}}); err != nil {
			t.Fatalf("seed cache: %v", err)
		}
	}
}

func hasKey(t *testing.T, c FeedCacheStore, k CacheKey) bool {
	t.Helper()
	_, ok, err := c.Get(context.Background(), k)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	return ok
}

func TestFeedCacheService_Authorization(t *testing.T) {
	svc := NewFeedCacheService(NewMemoryFeedCache(), NewCalendar(time.UTC))
	ctx := context.Background()

	if _, err := svc.ClearSelf(ctx, Caller{}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("anonymous self clear: %v", err)
	}
	if _, err := svc.ClearAll(ctx, Caller{}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("anonymous admin clear: %v", err)
	}
	if _, err := svc.ClearAll(ctx, Caller{UserID: "u1"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-admin clear: %v", err)
	}
}

func TestFeedCacheService_InvalidationScope(t *testing.T) {
	for name, newStore := range cacheBackends(t) {
		t.Run(name, func(t *testing.T) {
			store := newStore()
			today := testToday
			cal := Calendar{Loc: time.UTC, Now: func() time.Time { return epoch }}
			svc := NewFeedCacheService(store, cal)
			ctx := context.Background()

			mine := CacheKey{UserID: "u1", Date: today}
			mineMood := CacheKey{UserID: "u1", Date: today, Scope: "mood:1"}
			theirs := CacheKey{UserID: "u2", Date: today}
			old := CacheKey{UserID: "u2", Date: today.AddDays(-1)}
			seedCache(t, store, mine, mineMood, theirs, old)

			n, err := svc.ClearSelf(ctx, Caller{UserID: "u1"})
			if err != nil || n != 2 {
				t.Fatalf("ClearSelf: n=%d err=%v", n, err)
			}
			if hasKey(t, store, mine) || hasKey(t, store, mineMood) {
				t.Fatal("caller's entries must be gone")
			}
			if !hasKey(t, store, theirs) {
				t.Fatal("other users' entries must survive a self clear")
			}

			n, err = svc.ClearAll(ctx, Caller{UserID: "root", IsAdmin: true})
			if err != nil || n != 1 {
				t.Fatalf("ClearAll: n=%d err=%v", n, err)
			}
			if hasKey(t, store, theirs) {
				t.Fatal("admin clear must remove today's entries")
			}
			if !hasKey(t, store, old) {
				t.Fatal("admin clear must not touch other days")
			}

			n, err = svc.ClearSelf(ctx, Caller{UserID: "u1"})
			if err != nil || n != 0 {
				t.Fatalf("clearing an empty cache: n=%d err=%v", n, err)
			}
		})
	}
}

func TestFeedCacheService_StoreFailureIsTransient(t *testing.T) {
	store := brokenCache{MemoryFeedCache: NewMemoryFeedCache(), fail: map[string]bool{"Delete": true}}
	svc := NewFeedCacheService(store, NewCalendar(nil))
	if _, err := svc.ClearSelf(context.Background(), Caller{UserID: "u1"}); !errors.Is(err, ErrTransient) {
		t.Fatalf("ClearSelf: %v", err)
	}
	if _, err := svc.ClearAll(context.Background(), Caller{UserID: "u1", IsAdmin: true}); !errors.Is(err, ErrTransient) {
		t.Fatalf("ClearAll: %v", err)
	}
}
