package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-card-feed/internal/domain"
)

// ProfileService resolves a user id into the caller's gating attributes.
type ProfileService struct {
	DB      *gorm.DB
	Repo    CatalogRepo
	Timeout time.Duration
}

// NewProfileService constructs a ProfileService.
func NewProfileService(db *gorm.DB, r CatalogRepo) *ProfileService {
	return &ProfileService{DB: db, Repo: r, Timeout: DefaultStoreTimeout}
}

// Lookup returns the Caller for userID. Anonymous callers and users without
// a profile get the default tier and no admin privilege.
func (s *ProfileService) Lookup(ctx context.Context, userID string) (Caller, error) {
	c := Caller{UserID: userID, Tier: domain.DefaultMembershipTier}
	if userID == "" {
		return c, nil
	}
	ctx, cancel := bounded(ctx, s.Timeout)
	defer cancel()

	p, err := s.Repo.GetProfile(ctx, s.DB, userID)
	if err != nil {
		if isNotFound(err) {
			return c, nil
		}
		return Caller{}, transient("load profile", err)
	}
	if p.MembershipTier > c.Tier {
		c.Tier = p.MembershipTier
	}
	c.IsAdmin = p.IsAdmin
	return c, nil
}
