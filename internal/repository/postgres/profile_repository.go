package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"linkhub/internal/domain"
	"linkhub/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// profileRepository is the PostgreSQL implementation of repository.ProfileRepository
// The lowercase name means it's private to this package
// We return it as the interface type for abstraction
type profileRepository struct {
	db *pgxpool.Pool
}

// NewProfileRepository creates a new PostgreSQL profile repository
func NewProfileRepository(db *pgxpool.Pool) repository.ProfileRepository {
	return &profileRepository{db: db}
}

// uniqueViolation is the Postgres error code for a unique-constraint failure
const uniqueViolation = "23505"

// Create inserts a new profile into the database
func (r *profileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	query := `
		INSERT INTO users (
			name, username, bio, mode, theme, claim_token, is_anonymous
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		) RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx,
		query,
		profile.Name,
		profile.Username,
		profile.Bio,
		profile.Mode,
		profile.Theme,
		profile.ClaimToken,
		profile.IsAnonymous,
	).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			// Synthesized usernames are collision-resistant, not unique;
			// the service retries on this error
			return domain.ErrUsernameTaken
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return nil
}

// GetByUsername retrieves a profile plus its computed stats in one query.
// Stats mirror the public page: link_count and total_clicks cover active
// links only, total_views counts 'view' events for the profile.
func (r *profileRepository) GetByUsername(ctx context.Context, username string) (_ *domain.Profile, _ *domain.ProfileStats, err error) {
	start := time.Now()
	defer func() { observeQuery("get_profile_page", start, err) }()

	query := `
		SELECT u.id, u.name, u.username, u.bio, u.profile_photo, u.cover_photo,
		       u.mode, u.theme, u.claim_token, u.is_anonymous, u.is_verified,
		       u.created_at, u.updated_at,
		       COUNT(l.id) AS link_count,
		       COALESCE(SUM(l.clicks), 0)::bigint AS total_clicks,
		       (SELECT COUNT(*) FROM analytics WHERE user_id = u.id AND type = 'view') AS total_views
		FROM users u
		LEFT JOIN links l ON u.id = l.user_id AND l.is_active = true
		WHERE u.username = $1
		GROUP BY u.id
	`

	profile := &domain.Profile{}
	stats := &domain.ProfileStats{}

	err = r.db.QueryRow(ctx, query, username).Scan(
		&profile.ID,
		&profile.Name,
		&profile.Username,
		&profile.Bio, // pgx handles NULL -> nil conversion automatically
		&profile.ProfilePhoto,
		&profile.CoverPhoto,
		&profile.Mode,
		&profile.Theme,
		&profile.ClaimToken,
		&profile.IsAnonymous,
		&profile.IsVerified,
		&profile.CreatedAt,
		&profile.UpdatedAt,
		&stats.LinkCount,
		&stats.TotalClicks,
		&stats.TotalViews,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return profile, stats, nil
}

// GetByID retrieves a bare profile by its ID
func (r *profileRepository) GetByID(ctx context.Context, id int64) (*domain.Profile, error) {
	query := `
		SELECT id, name, username, bio, profile_photo, cover_photo,
		       mode, theme, claim_token, is_anonymous, is_verified,
		       created_at, updated_at
		FROM users
		WHERE id = $1
	`

	profile := &domain.Profile{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&profile.ID,
		&profile.Name,
		&profile.Username,
		&profile.Bio,
		&profile.ProfilePhoto,
		&profile.CoverPhoto,
		&profile.Mode,
		&profile.Theme,
		&profile.ClaimToken,
		&profile.IsAnonymous,
		&profile.IsVerified,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return profile, nil
}

// ResolveID maps a username to a profile ID
func (r *profileRepository) ResolveID(ctx context.Context, username string) (int64, error) {
	query := `SELECT id FROM users WHERE username = $1`

	var id int64
	err := r.db.QueryRow(ctx, query, username).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("failed to resolve username: %w", err)
	}

	return id, nil
}

// Update overwrites the editable profile fields. Nil patch fields are
// written through as NULL - the long-standing contract is overwrite,
// not merge.
func (r *profileRepository) Update(ctx context.Context, username string, patch domain.ProfilePatch) error {
	query := `
		UPDATE users
		SET name = $1, bio = $2, theme = $3,
		    profile_photo = $4, cover_photo = $5, updated_at = now()
		WHERE username = $6
	`

	result, err := r.db.Exec(
		ctx,
		query,
		patch.Name,
		patch.Bio,
		patch.Theme,
		patch.ProfilePhoto,
		patch.CoverPhoto,
		username,
	)

	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return nil
}
