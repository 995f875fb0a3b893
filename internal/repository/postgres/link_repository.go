package postgres

import (
	"context"
	"errors"
	"fmt"

	"linkhub/internal/domain"
	"linkhub/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// linkRepository is the PostgreSQL implementation of repository.LinkRepository
type linkRepository struct {
	db *pgxpool.Pool
}

// NewLinkRepository creates a new PostgreSQL link repository
func NewLinkRepository(db *pgxpool.Pool) repository.LinkRepository {
	return &linkRepository{db: db}
}

// Create inserts a new link into the database
func (r *linkRepository) Create(ctx context.Context, link *domain.Link) error {
	query := `
		INSERT INTO links (
			user_id, title, url, description, image, type,
			is_auto_imported, source, position
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		) RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx,
		query,
		link.UserID,
		link.Title,
		link.URL,
		link.Description, // Can be nil (NULL in database)
		link.Image,
		link.Category,
		link.IsAutoImported,
		link.Source,
		link.Position,
	).Scan(&link.ID, &link.CreatedAt, &link.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create link: %w", err)
	}

	return nil
}

// GetByID retrieves a link by ID, including soft-deleted rows. Callers that
// only want live links filter on IsActive themselves.
func (r *linkRepository) GetByID(ctx context.Context, id int64) (*domain.Link, error) {
	query := `
		SELECT id, user_id, title, url, description, image, type,
		       is_auto_imported, source, clicks, position, is_active,
		       created_at, updated_at
		FROM links
		WHERE id = $1
	`

	link := &domain.Link{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&link.ID,
		&link.UserID,
		&link.Title,
		&link.URL,
		&link.Description,
		&link.Image,
		&link.Category,
		&link.IsAutoImported,
		&link.Source,
		&link.Clicks,
		&link.Position,
		&link.IsActive,
		&link.CreatedAt,
		&link.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	return link, nil
}

// ListActiveByUser returns a profile's active links in page order:
// explicit position first, newest creation time breaking ties.
func (r *linkRepository) ListActiveByUser(ctx context.Context, userID int64) ([]*domain.Link, error) {
	query := `
		SELECT id, user_id, title, url, description, image, type,
		       is_auto_imported, source, clicks, position, is_active,
		       created_at, updated_at
		FROM links
		WHERE user_id = $1 AND is_active = true
		ORDER BY position ASC, created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	defer rows.Close()

	var links []*domain.Link
	for rows.Next() {
		link := &domain.Link{}
		err := rows.Scan(
			&link.ID,
			&link.UserID,
			&link.Title,
			&link.URL,
			&link.Description,
			&link.Image,
			&link.Category,
			&link.IsAutoImported,
			&link.Source,
			&link.Clicks,
			&link.Position,
			&link.IsActive,
			&link.CreatedAt,
			&link.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating links: %w", err)
	}

	return links, nil
}

// Update overwrites the editable link fields. Nil Description/Image are
// written through as NULL, matching the profile update contract.
func (r *linkRepository) Update(ctx context.Context, id int64, patch domain.LinkPatch) error {
	query := `
		UPDATE links
		SET title = $1, url = $2, description = $3, image = $4, type = $5,
		    updated_at = now()
		WHERE id = $6
	`

	result, err := r.db.Exec(
		ctx,
		query,
		patch.Title,
		patch.URL,
		patch.Description,
		patch.Image,
		patch.Category,
		id,
	)

	if err != nil {
		return fmt.Errorf("failed to update link: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// SoftDelete sets is_active = false. Repeated deletes succeed: the UPDATE
// matches the row either way, so the operation stays idempotent.
func (r *linkRepository) SoftDelete(ctx context.Context, id int64) error {
	query := `UPDATE links SET is_active = false, updated_at = now() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return nil
}
