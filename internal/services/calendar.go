package services

import (
	"time"

	"github.com/tbourn/go-card-feed/internal/domain"
)

// Calendar maps wall-clock time onto the feed's calendar days in a single
// reference timezone. Cache keys and publish-date checks both use it, so a
// day rolls over at the same instant for every caller.
type Calendar struct {
	Loc *time.Location
	Now func() time.Time
}

// NewCalendar returns a Calendar in loc (UTC when nil) backed by time.Now.
func NewCalendar(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{Loc: loc, Now: time.Now}
}

// Today returns the current calendar day in the reference timezone.
func (c Calendar) Today() domain.Date {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	loc := c.Loc
	if loc == nil {
		loc = time.UTC
	}
	return domain.DateOf(now().In(loc))
}
