package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-card-feed/internal/domain"
	"github.com/tbourn/go-card-feed/internal/http/middleware"
	"github.com/tbourn/go-card-feed/internal/services"
)

// ---------- stubs ----------

var today = domain.MustParseDate("2025-06-01")

type fixedCalendar struct{ d domain.Date }

func (f fixedCalendar) Today() domain.Date { return f.d }

type stubProfiles struct {
	callers map[string]services.Caller
	err     error
}

func (s stubProfiles) Lookup(_ context.Context, userID string) (services.Caller, error) {
	if s.err != nil {
		return services.Caller{}, s.err
	}
	if c, ok := s.callers[userID]; ok {
		return c, nil
	}
	return services.Caller{UserID: userID, Tier: domain.DefaultMembershipTier}, nil
}

type stubFeed struct {
	assemble func(context.Context, services.FeedRequest) (*domain.FeedResult, error)
	calls    []services.FeedRequest
}

func (s *stubFeed) Assemble(ctx context.Context, req services.FeedRequest) (*domain.FeedResult, error) {
	s.calls = append(s.calls, req)
	return s.assemble(ctx, req)
}

type stubCategories struct {
	resolve func(context.Context, string, int, domain.Date) (*domain.Category, []domain.FeedCard, error)
}

func (s stubCategories) Resolve(ctx context.Context, slug string, tier int, d domain.Date) (*domain.Category, []domain.FeedCard, error) {
	return s.resolve(ctx, slug, tier, d)
}

type stubGames struct {
	get  func(context.Context, uint, int, domain.Date) (*domain.FeedCard, error)
	list func(context.Context, services.GameFilter, int, domain.Date) ([]domain.FeedCard, error)
}

func (s stubGames) Get(ctx context.Context, id uint, tier int, d domain.Date) (*domain.FeedCard, error) {
	return s.get(ctx, id, tier, d)
}

func (s stubGames) List(ctx context.Context, f services.GameFilter, tier int, d domain.Date) ([]domain.FeedCard, error) {
	return s.list(ctx, f, tier, d)
}

func feedCard(id uint, t domain.CardType, v domain.Variant) domain.FeedCard {
	return domain.FeedCard{Card: domain.Card{ID: id, Type: t, Title: string(t)}, Variant: v}
}

var defaultProfiles = stubProfiles{callers: map[string]services.Caller{
	"alice": {UserID: "alice", Tier: 2},
	"admin": {UserID: "admin", Tier: 3, IsAdmin: true},
}}

// newRouter mounts the handlers the way the router does, minus the
// cross-cutting middleware that is not under test here.
func newRouter(s Services) *gin.Engine {
	gin.SetMode(gin.TestMode)
	if s.Profiles == nil {
		s.Profiles = defaultProfiles
	}
	if s.Calendar == nil {
		s.Calendar = fixedCalendar{today}
	}
	h := New(s)
	r := gin.New()
	r.Use(middleware.Identity())
	r.GET("/feed", h.GetFeed)
	r.GET("/feed/category/:slug", h.GetCategoryFeed)
	r.POST("/feed/cache/clear", h.ClearOwnFeedCache)
	r.DELETE("/feed/cache/clear", h.ClearAllFeedCaches)
	r.GET("/games", h.GetGames)
	return r
}

func do(r http.Handler, method, target, user string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if user != "" {
		req.Header.Set(middleware.HeaderUserID, user)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("json: %v (body=%s)", err, w.Body.String())
	}
	return v
}

func errCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[ErrorResponse](t, w).Code
}

// ---------- GET /feed ----------

func TestGetFeed_CacheHeaderAndRequest(t *testing.T) {
	generated := time.Date(2025, 6, 1, 7, 30, 0, 0, time.UTC)
	n := 0
	feed := &stubFeed{assemble: func(_ context.Context, _ services.FeedRequest) (*domain.FeedResult, error) {
		n++
		return &domain.FeedResult{
			Cards:       []domain.FeedCard{feedCard(1, domain.CardTypeQuiz, domain.VariantStandard)},
			GeneratedAt: generated,
			Cached:      n > 1,
		}, nil
	}}
	r := newRouter(Services{Feed: feed})

	w := do(r, http.MethodGet, "/feed", "alice")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if got := w.Header().Get(middleware.HeaderFeedCache); got != "miss" {
		t.Fatalf("first X-Feed-Cache=%q", got)
	}
	body := decode[FeedResponse](t, w)
	if len(body.Cards) != 1 || body.Cards[0].ID != 1 || !body.GeneratedAt.Equal(generated) {
		t.Fatalf("unexpected body: %+v", body)
	}

	w = do(r, http.MethodGet, "/feed", "alice")
	if got := w.Header().Get(middleware.HeaderFeedCache); got != "hit" {
		t.Fatalf("second X-Feed-Cache=%q", got)
	}

	req := feed.calls[0]
	if req.UserID != "alice" || req.Tier != 2 || req.MoodID != nil || req.Today != today {
		t.Fatalf("unexpected FeedRequest: %+v", req)
	}
}

func TestGetFeed_AnonymousAndMood(t *testing.T) {
	feed := &stubFeed{assemble: func(context.Context, services.FeedRequest) (*domain.FeedResult, error) {
		return &domain.FeedResult{}, nil
	}}
	r := newRouter(Services{Feed: feed})

	w := do(r, http.MethodGet, "/feed?mood_id=7", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	req := feed.calls[0]
	if req.UserID != "" || req.Tier != domain.DefaultMembershipTier {
		t.Fatalf("anonymous request resolved to %+v", req)
	}
	if req.MoodID == nil || *req.MoodID != 7 {
		t.Fatalf("mood id not forwarded: %+v", req.MoodID)
	}
	// Empty feeds are [] on the wire, never null.
	if cards, ok := decode[map[string]any](t, w)["cards"].([]any); !ok || len(cards) != 0 {
		t.Fatalf("cards must be an empty array: %s", w.Body.String())
	}
}

func TestGetFeed_BadMoodID(t *testing.T) {
	feed := &stubFeed{assemble: func(context.Context, services.FeedRequest) (*domain.FeedResult, error) {
		t.Fatal("Assemble must not run on malformed input")
		return nil, nil
	}}
	r := newRouter(Services{Feed: feed})

	for _, q := range []string{"abc", "0", "-3"} {
		w := do(r, http.MethodGet, "/feed?mood_id="+q, "alice")
		if w.Code != http.StatusBadRequest || errCode(t, w) != ErrCodeBadRequest {
			t.Fatalf("mood_id=%s: status=%d body=%s", q, w.Code, w.Body.String())
		}
	}
}

func TestGetFeed_Errors(t *testing.T) {
	cases := []struct {
		name     string
		profiles ProfileService
		err      error
		status   int
	}{
		{"unknown mood", nil, services.ErrMoodNotFound, http.StatusNotFound},
		{"store down", nil, &services.TransientError{Op: "list cards", Err: context.DeadlineExceeded}, http.StatusServiceUnavailable},
		{"profile store down", stubProfiles{err: &services.TransientError{Op: "load profile", Err: errors.New("x")}}, nil, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			feed := &stubFeed{assemble: func(context.Context, services.FeedRequest) (*domain.FeedResult, error) {
				return nil, tc.err
			}}
			r := newRouter(Services{Feed: feed, Profiles: tc.profiles})
			w := do(r, http.MethodGet, "/feed?mood_id=1", "alice")
			if w.Code != tc.status {
				t.Fatalf("status=%d want %d", w.Code, tc.status)
			}
			if w.Header().Get(middleware.HeaderFeedCache) != "" {
				t.Fatalf("X-Feed-Cache must not be set on errors")
			}
		})
	}
}

// ---------- GET /feed/category/{slug} ----------

func TestGetCategoryFeed(t *testing.T) {
	var gotSlug string
	var gotTier int
	cats := stubCategories{resolve: func(_ context.Context, slug string, tier int, d domain.Date) (*domain.Category, []domain.FeedCard, error) {
		gotSlug, gotTier = slug, tier
		if slug != "arena" {
			return nil, nil, services.ErrCategoryNotFound
		}
		return &domain.Category{ID: 3, Slug: "arena", Name: "Arena"}, []domain.FeedCard{
			feedCard(1, domain.CardTypeGame, domain.VariantInteractive),
			feedCard(4, domain.CardTypeArticle, domain.VariantStandard),
		}, nil
	}}
	r := newRouter(Services{Categories: cats})

	w := do(r, http.MethodGet, "/feed/category/arena", "alice")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	body := decode[CategoryFeedResponse](t, w)
	if body.Category == nil || body.Category.Slug != "arena" || len(body.Cards) != 2 {
		t.Fatalf("unexpected body: %+v", body)
	}
	if body.Cards[0].Variant != domain.VariantInteractive || body.Cards[1].ID != 4 {
		t.Fatalf("order or variant lost: %+v", body.Cards)
	}
	if gotSlug != "arena" || gotTier != 2 {
		t.Fatalf("Resolve got slug=%q tier=%d", gotSlug, gotTier)
	}

	w = do(r, http.MethodGet, "/feed/category/nope", "alice")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
	if er := decode[ErrorResponse](t, w); er.Code != ErrCodeNotFound || er.Message != "category not found" {
		t.Fatalf("unexpected error body: %+v", er)
	}
}

// ---------- /feed/cache/clear ----------

func seededCache(t *testing.T) *services.MemoryFeedCache {
	t.Helper()
	cache := services.NewMemoryFeedCache()
	ctx := context.Background()
	for _, k := range []services.CacheKey{
		{UserID: "alice", Date: today},
		{UserID: "alice", Date: today, Scope: "mood:1"},
		{UserID: "bob", Date: today},
		{UserID: "bob", Date: today.AddDays(-1)},
	} {
		if err := cache.Put(ctx, k, &domain.FeedResult{}); err != nil {
			t.Fatalf("put: %v", err)
		}
	}
	return cache
}

func cacheService(cache services.FeedCacheStore) *services.FeedCacheService {
	cal := services.Calendar{Loc: time.UTC, Now: func() time.Time { return today.Time().Add(9 * time.Hour) }}
	return services.NewFeedCacheService(cache, cal)
}

func TestClearOwnFeedCache(t *testing.T) {
	cache := seededCache(t)
	r := newRouter(Services{Cache: cacheService(cache)})

	w := do(r, http.MethodPost, "/feed/cache/clear", "")
	if w.Code != http.StatusUnauthorized || errCode(t, w) != ErrCodeUnauthorized {
		t.Fatalf("anonymous: status=%d body=%s", w.Code, w.Body.String())
	}
	if cache.Len() != 4 {
		t.Fatalf("anonymous clear touched the cache")
	}

	w = do(r, http.MethodPost, "/feed/cache/clear", "alice")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	body := decode[map[string]any](t, w)
	if body["success"] != true || body["message"] == "" {
		t.Fatalf("unexpected body: %v", body)
	}
	if _, has := body["deleted"]; has {
		t.Fatalf("self clear must not report a count: %v", body)
	}
	if cache.Len() != 2 {
		t.Fatalf("want bob's two entries left, have %d", cache.Len())
	}
}

func TestClearAllFeedCaches(t *testing.T) {
	cache := seededCache(t)
	r := newRouter(Services{Cache: cacheService(cache)})

	if w := do(r, http.MethodDelete, "/feed/cache/clear", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: status=%d", w.Code)
	}
	w := do(r, http.MethodDelete, "/feed/cache/clear", "alice")
	if w.Code != http.StatusForbidden || errCode(t, w) != ErrCodeForbidden {
		t.Fatalf("non-admin: status=%d body=%s", w.Code, w.Body.String())
	}
	if cache.Len() != 4 {
		t.Fatalf("forbidden clear touched the cache")
	}

	w = do(r, http.MethodDelete, "/feed/cache/clear", "admin")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	body := decode[CacheClearResponse](t, w)
	if !body.Success || body.Deleted == nil || *body.Deleted != 3 {
		t.Fatalf("unexpected body: %+v", body)
	}
	// Yesterday's entry survives.
	if cache.Len() != 1 {
		t.Fatalf("want 1 entry left, have %d", cache.Len())
	}
}

// ---------- GET /games ----------

func TestGetGames_List(t *testing.T) {
	var got services.GameFilter
	games := stubGames{
		list: func(_ context.Context, f services.GameFilter, tier int, _ domain.Date) ([]domain.FeedCard, error) {
			got = f
			return []domain.FeedCard{feedCard(9, domain.CardTypeGame, domain.VariantAR)}, nil
		},
	}
	r := newRouter(Services{Games: games})

	w := do(r, http.MethodGet, "/games", "alice")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if got.Kind != services.GameKindAll || got.AROnly {
		t.Fatalf("default filter = %+v", got)
	}
	if body := decode[GamesResponse](t, w); len(body.Games) != 1 || body.Games[0].Variant != domain.VariantAR {
		t.Fatalf("unexpected body: %+v", body)
	}

	do(r, http.MethodGet, "/games?type=HTML&ar_only=true", "alice")
	if got.Kind != services.GameKindHTML || !got.AROnly {
		t.Fatalf("filter = %+v", got)
	}
}

func TestGetGames_Single(t *testing.T) {
	games := stubGames{
		get: func(_ context.Context, id uint, tier int, _ domain.Date) (*domain.FeedCard, error) {
			if id != 9 {
				return nil, services.ErrGameNotFound
			}
			fc := feedCard(9, domain.CardTypeGame, domain.VariantInteractive)
			fc.Game = &domain.GameMetadata{CardID: 9, HTML: "<canvas></canvas>"}
			return &fc, nil
		},
		list: func(context.Context, services.GameFilter, int, domain.Date) ([]domain.FeedCard, error) {
			t.Fatal("List must not run when card_id is given")
			return nil, nil
		},
	}
	r := newRouter(Services{Games: games})

	w := do(r, http.MethodGet, "/games?card_id=9", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	body := decode[GameResponse](t, w)
	if body.Game == nil || body.Game.ID != 9 || body.Game.Game == nil || body.Game.Game.HTML == "" {
		t.Fatalf("unexpected body: %+v", body)
	}

	w = do(r, http.MethodGet, "/games?card_id=10", "")
	if w.Code != http.StatusNotFound || errCode(t, w) != ErrCodeNotFound {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestGetGames_BadParams(t *testing.T) {
	games := stubGames{
		get: func(context.Context, uint, int, domain.Date) (*domain.FeedCard, error) {
			t.Fatal("Get must not run")
			return nil, nil
		},
		list: func(context.Context, services.GameFilter, int, domain.Date) ([]domain.FeedCard, error) {
			t.Fatal("List must not run")
			return nil, nil
		},
	}
	r := newRouter(Services{Games: games})

	for _, q := range []string{"type=vr", "ar_only=maybe", "card_id=x", "card_id=0"} {
		w := do(r, http.MethodGet, "/games?"+q, "alice")
		if w.Code != http.StatusBadRequest || errCode(t, w) != ErrCodeBadRequest {
			t.Fatalf("%s: status=%d body=%s", q, w.Code, w.Body.String())
		}
	}
}
