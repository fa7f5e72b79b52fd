package repo

import (
	"fmt"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-card-feed/internal/domain"
)

// newTestDB opens a private in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
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
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// cardSpec describes a fixture card; zero fields get sensible defaults.
type cardSpec struct {
	Type     domain.CardType
	Tier     int
	Inactive bool
	Publish  string // YYYY-MM-DD, empty for NULL
	Age      time.Duration
}

var fixtureEpoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func mustCard(t *testing.T, db *gorm.DB, s cardSpec) domain.Card {
	t.Helper()
	if s.Tier == 0 {
		s.Tier = 1
	}
	if s.Type == "" {
		s.Type = domain.CardTypeArticle
	}
	c := domain.Card{
		Type:              s.Type,
		Title:             string(s.Type),
		Active:            !s.Inactive,
		MinMembershipTier: s.Tier,
		CreatedAt:         fixtureEpoch.Add(-s.Age),
	}
	if s.Publish != "" {
		d := domain.MustParseDate(s.Publish)
		c.PublishDate = &d
	}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("seed card: %v", err)
	}
	return c
}

func cardIDs(cards []domain.Card) []uint {
	out := make([]uint, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}

func equalIDs(a, b []uint) bool {
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
