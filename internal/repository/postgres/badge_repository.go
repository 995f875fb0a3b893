package postgres

import (
	"context"
	"fmt"

	"linkhub/internal/domain"
	"linkhub/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

// badgeRepository is the PostgreSQL implementation for community badges
type badgeRepository struct {
	db *pgxpool.Pool
}

// NewBadgeRepository creates a new PostgreSQL badge repository
func NewBadgeRepository(db *pgxpool.Pool) repository.BadgeRepository {
	return &badgeRepository{db: db}
}

// Create inserts a badge. Badges are never deduplicated here: if a policy
// awards the same badge twice, two rows exist.
func (r *badgeRepository) Create(ctx context.Context, badge *domain.Badge) error {
	query := `
		INSERT INTO community_badges (user_id, badge_type, criteria)
		VALUES ($1, $2, $3)
		RETURNING id, earned_at
	`

	err := r.db.QueryRow(
		ctx,
		query,
		badge.UserID,
		badge.Type,
		badge.Criteria,
	).Scan(&badge.ID, &badge.EarnedAt)

	if err != nil {
		return fmt.Errorf("failed to create badge: %w", err)
	}

	return nil
}

// ListByUser returns a profile's badges, newest first
func (r *badgeRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.Badge, error) {
	query := `
		SELECT id, user_id, badge_type, earned_at, criteria
		FROM community_badges
		WHERE user_id = $1
		ORDER BY earned_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}
	defer rows.Close()

	var badges []*domain.Badge
	for rows.Next() {
		badge := &domain.Badge{}
		err := rows.Scan(
			&badge.ID,
			&badge.UserID,
			&badge.Type,
			&badge.EarnedAt,
			&badge.Criteria,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}
		badges = append(badges, badge)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating badges: %w", err)
	}

	return badges, nil
}
