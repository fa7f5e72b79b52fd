package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-card-feed/internal/domain"
	"github.com/tbourn/go-card-feed/internal/repo"
)

// ---------- test helpers ----------

func newSvcDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:feedsvc_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// sqlRepo adapts the repo package functions to the service contracts.
type sqlRepo struct{}

func (sqlRepo) ListCards(ctx context.Context, db *gorm.DB, q repo.CardQuery) ([]domain.Card, error) {
	return repo.ListCards(ctx, db, q)
}
func (sqlRepo) ListCategoryLinkedCards(ctx context.Context, db *gorm.DB, id uint, q repo.CardQuery) ([]domain.Card, error) {
	return repo.ListCategoryLinkedCards(ctx, db, id, q)
}
func (sqlRepo) ListMoodLinkedCards(ctx context.Context, db *gorm.DB, id uint, q repo.CardQuery) ([]domain.Card, error) {
	return repo.ListMoodLinkedCards(ctx, db, id, q)
}
func (sqlRepo) GetCard(ctx context.Context, db *gorm.DB, id uint) (*domain.Card, error) {
	return repo.GetCard(ctx, db, id)
}
func (sqlRepo) ListGameMetadata(ctx context.Context, db *gorm.DB, ids []uint) ([]domain.GameMetadata, error) {
	return repo.ListGameMetadata(ctx, db, ids)
}
func (sqlRepo) GetCategoryBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Category, error) {
	return repo.GetCategoryBySlug(ctx, db, slug)
}
func (sqlRepo) GetMood(ctx context.Context, db *gorm.DB, id uint) (*domain.Mood, error) {
	return repo.GetMood(ctx, db, id)
}
func (sqlRepo) GetProfile(ctx context.Context, db *gorm.DB, userID string) (*domain.MembershipProfile, error) {
	return repo.GetProfile(ctx, db, userID)
}
func (sqlRepo) GetFeedCache(ctx context.Context, db *gorm.DB, userID string, d domain.Date, scope string) (*domain.FeedCacheEntry, error) {
	return repo.GetFeedCache(ctx, db, userID, d, scope)
}
func (sqlRepo) PutFeedCache(ctx context.Context, db *gorm.DB, userID string, d domain.Date, scope string, payload []byte) error {
	return repo.PutFeedCache(ctx, db, userID, d, scope, payload)
}
func (sqlRepo) DeleteFeedCacheForUser(ctx context.Context, db *gorm.DB, userID string, d domain.Date) (int64, error) {
	return repo.DeleteFeedCacheForUser(ctx, db, userID, d)
}
func (sqlRepo) DeleteFeedCacheForDate(ctx context.Context, db *gorm.DB, d domain.Date) (int64, error) {
	return repo.DeleteFeedCacheForDate(ctx, db, d)
}

var errStoreDown = errors.New("store down")

// failRepo behaves like sqlRepo but fails the operations named in fail.
type failRepo struct {
	sqlRepo
	fail map[string]bool
}

func (f failRepo) ListCards(ctx context.Context, db *gorm.DB, q repo.CardQuery) ([]domain.Card, error) {
	if f.fail["ListCards"] {
		return nil, errStoreDown
	}
	return f.sqlRepo.ListCards(ctx, db, q)
}
func (f failRepo) ListGameMetadata(ctx context.Context, db *gorm.DB, ids []uint) ([]domain.GameMetadata, error) {
	if f.fail["ListGameMetadata"] {
		return nil, errStoreDown
	}
	return f.sqlRepo.ListGameMetadata(ctx, db, ids)
}
func (f failRepo) GetCategoryBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Category, error) {
	if f.fail["GetCategoryBySlug"] {
		return nil, errStoreDown
	}
	return f.sqlRepo.GetCategoryBySlug(ctx, db, slug)
}
func (f failRepo) GetMood(ctx context.Context, db *gorm.DB, id uint) (*domain.Mood, error) {
	if f.fail["GetMood"] {
		return nil, errStoreDown
	}
	return f.sqlRepo.GetMood(ctx, db, id)
}
func (f failRepo) GetProfile(ctx context.Context, db *gorm.DB, userID string) (*domain.MembershipProfile, error) {
	if f.fail["GetProfile"] {
		return nil, errStoreDown
	}
	return f.sqlRepo.GetProfile(ctx, db, userID)
}
func (f failRepo) GetCard(ctx context.Context, db *gorm.DB, id uint) (*domain.Card, error) {
	if f.fail["GetCard"] {
		return nil, errStoreDown
	}
	return f.sqlRepo.GetCard(ctx, db, id)
}

// brokenCache fails the operations named in fail and otherwise delegates to
// an in-memory cache.
type brokenCache struct {
	*MemoryFeedCache
	fail map[string]bool
}

func (b brokenCache) Get(ctx context.Context, k CacheKey) (*domain.FeedResult, bool, error) {
	if b.fail["Get"] {
		return nil, false, errStoreDown
	}
	return b.MemoryFeedCache.Get(ctx, k)
}
func (b brokenCache) Put(ctx context.Context, k CacheKey, r *domain.FeedResult) error {
	if b.fail["Put"] {
		return errStoreDown
	}
	return b.MemoryFeedCache.Put(ctx, k, r)
}
func (b brokenCache) DeleteUserDate(ctx context.Context, u string, d domain.Date) (int64, error) {
	if b.fail["Delete"] {
		return 0, errStoreDown
	}
	return b.MemoryFeedCache.DeleteUserDate(ctx, u, d)
}
func (b brokenCache) DeleteDate(ctx context.Context, d domain.Date) (int64, error) {
	if b.fail["Delete"] {
		return 0, errStoreDown
	}
	return b.MemoryFeedCache.DeleteDate(ctx, d)
}

var (
	testToday = domain.MustParseDate("2025-06-01")
	epoch     = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
)

// fixture inserts catalog rows with deterministic, strictly decreasing
// creation times: each new card is older than the previous one.
type fixture struct {
	t   *testing.T
	db  *gorm.DB
	age time.Duration
}

func newFixture(t *testing.T, db *gorm.DB) *fixture { return &fixture{t: t, db: db} }

func (f *fixture) card(typ domain.CardType, mut ...func(*domain.Card)) domain.Card {
	f.t.Helper()
	f.age += time.Minute
	c := domain.Card{Type: typ, Title: string(typ), Active: true, MinMembershipTier: 1, CreatedAt: epoch.Add(-f.age)}
	for _, m := range mut {
		m(&c)
	}
	if err := f.db.Create(&c).Error; err != nil {
		f.t.Fatalf("seed card: %v", err)
	}
	return c
}

func (f *fixture) game(ar bool, mut ...func(*domain.Card)) domain.Card {
	f.t.Helper()
	c := f.card(domain.CardTypeGame, mut...)
	meta := domain.GameMetadata{CardID: c.ID, HTML: "<div></div>", MaxScore: 10}
	if ar {
		kind := "face_tracking"
		meta.IsARGame, meta.ARType, meta.ARConfig = true, &kind, datatypes.JSON(`{"scale":1}`)
	}
	if err := f.db.Create(&meta).Error; err != nil {
		f.t.Fatalf("seed metadata: %v", err)
	}
	return c
}

func (f *fixture) category(slug string, active bool) domain.Category {
	f.t.Helper()
	c := domain.Category{Slug: slug, Name: slug, Active: active}
	if err := f.db.Create(&c).Error; err != nil {
		f.t.Fatalf("seed category: %v", err)
	}
	return c
}

func (f *fixture) link(cat domain.Category, cards ...domain.Card) {
	f.t.Helper()
	for _, c := range cards {
		if err := f.db.Create(&domain.CardCategoryLink{CardID: c.ID, CategoryID: cat.ID}).Error; err != nil {
			f.t.Fatalf("seed link: %v", err)
		}
	}
}

func (f *fixture) mood(slug string, active bool, cards ...domain.Card) domain.Mood {
	f.t.Helper()
	m := domain.Mood{Slug: slug, Name: slug, Active: active}
	if err := f.db.Create(&m).Error; err != nil {
		f.t.Fatalf("seed mood: %v", err)
	}
	for i, c := range cards {
		if err := f.db.Create(&domain.CardMoodLink{CardID: c.ID, MoodID: m.ID, Position: i}).Error; err != nil {
			f.t.Fatalf("seed mood link: %v", err)
		}
	}
	return m
}

func tier(n int) func(*domain.Card) { return func(c *domain.Card) { c.MinMembershipTier = n } }

func inactive(c *domain.Card) { c.Active = false }

func published(s string) func(*domain.Card) {
	return func(c *domain.Card) {
		d := domain.MustParseDate(s)
		c.PublishDate = &d
	}
}

func ids(cards []domain.FeedCard) []uint {
	out := make([]uint, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}

func sameIDs(a, b []uint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
