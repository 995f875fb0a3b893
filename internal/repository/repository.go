package repository

import (
	"context"
	"time"

	"linkhub/internal/domain"
)

// ProfileRepository defines data access for profiles.
// This is the "Repository Pattern" - it abstracts data storage so the
// service layer never sees SQL, and tests can swap in mocks.
//
// In Go, interfaces are satisfied implicitly - the postgres implementations
// in repository/postgres satisfy these without an "implements" keyword.
type ProfileRepository interface {
	// Create inserts a new profile and fills in its generated ID.
	// Returns domain.ErrUsernameTaken on a username uniqueness violation.
	Create(ctx context.Context, profile *domain.Profile) error

	// GetByUsername retrieves a profile together with its computed stats
	// (link count, total clicks over active links, total views).
	// Returns domain.ErrNotFound when no profile matches.
	GetByUsername(ctx context.Context, username string) (*domain.Profile, *domain.ProfileStats, error)

	// GetByID retrieves a bare profile by its ID.
	GetByID(ctx context.Context, id int64) (*domain.Profile, error)

	// ResolveID maps a username to a profile ID.
	ResolveID(ctx context.Context, username string) (int64, error)

	// Update overwrites name/bio/theme/photos for the named profile.
	// Nil patch fields are written as NULL - absent means overwrite,
	// not skip.
	Update(ctx context.Context, username string, patch domain.ProfilePatch) error
}

// LinkRepository defines data access for links.
type LinkRepository interface {
	// Create inserts a new link and fills in its generated ID.
	Create(ctx context.Context, link *domain.Link) error

	// GetByID retrieves a link regardless of its active flag.
	GetByID(ctx context.Context, id int64) (*domain.Link, error)

	// ListActiveByUser returns a profile's active links ordered by
	// position ascending, then creation time descending.
	ListActiveByUser(ctx context.Context, userID int64) ([]*domain.Link, error)

	// Update overwrites title/url/description/image/category.
	Update(ctx context.Context, id int64, patch domain.LinkPatch) error

	// SoftDelete sets is_active = false. Idempotent: deleting an already
	// inactive link succeeds.
	SoftDelete(ctx context.Context, id int64) error
}

// EventRepository defines the append-only analytics log plus its read-time
// aggregations. There is deliberately no update or delete method.
type EventRepository interface {
	// CreateView appends a view event.
	CreateView(ctx context.Context, event *domain.Event) error

	// CreateClick appends a click event AND increments the target link's
	// denormalized clicks counter in the same transaction. If either write
	// fails, neither is kept. Returns domain.ErrNotFound when the link does
	// not exist or is inactive.
	CreateClick(ctx context.Context, event *domain.Event) error

	// CountByLink returns the number of click events referencing a link.
	CountByLink(ctx context.Context, linkID int64) (int64, error)

	// DailyClicks groups a profile's click events by calendar date inside
	// the trailing window, newest date first. Dates without events are
	// absent, never zero-filled.
	DailyClicks(ctx context.Context, userID int64, since time.Time) ([]domain.DailyClicks, error)

	// TopReferrers groups a profile's non-null-referrer events by exact
	// referrer string, highest count first.
	TopReferrers(ctx context.Context, userID int64, limit int) ([]domain.ReferrerClicks, error)

	// LinkPerformance reports every active link's all-time counter plus a
	// recomputed click-event count since the given time, ordered by the
	// all-time counter descending.
	LinkPerformance(ctx context.Context, userID int64, since time.Time) ([]domain.LinkPerformance, error)
}

// BadgeRepository defines storage primitives for community badges. Awarding
// policy lives outside the core; this only inserts and lists.
type BadgeRepository interface {
	// Create inserts a badge and fills in its generated ID.
	Create(ctx context.Context, badge *domain.Badge) error

	// ListByUser returns a profile's badges, newest first.
	ListByUser(ctx context.Context, userID int64) ([]*domain.Badge, error)
}
