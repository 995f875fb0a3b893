package postgres

import (
	"context"
	"fmt"
	"time"

	"linkhub/internal/domain"
	"linkhub/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

// eventRepository is the PostgreSQL implementation for the analytics log
type eventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository creates a new PostgreSQL event repository
func NewEventRepository(db *pgxpool.Pool) repository.EventRepository {
	return &eventRepository{db: db}
}

// CreateView appends a view event
func (r *eventRepository) CreateView(ctx context.Context, event *domain.Event) (err error) {
	start := time.Now()
	defer func() { observeQuery("create_view_event", start, err) }()

	query := `
		INSERT INTO analytics (user_id, type, referrer, user_agent, ip_address)
		VALUES ($1, 'view', $2, $3, $4)
		RETURNING id, created_at
	`

	err = r.db.QueryRow(
		ctx,
		query,
		event.UserID, // Can be nil: views degrade to an unattributed row
		event.Referrer,
		event.UserAgent,
		event.IPAddress,
	).Scan(&event.ID, &event.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create view event: %w", err)
	}

	return nil
}

// CreateClick appends a click event and bumps the link's denormalized
// counter inside one transaction. The counter invariant - clicks equals the
// number of click events for the link - holds exactly because these two
// writes commit or roll back together.
func (r *eventRepository) CreateClick(ctx context.Context, event *domain.Event) (err error) {
	if event.LinkID == nil {
		return fmt.Errorf("click event requires a link id")
	}

	start := time.Now()
	defer func() { observeQuery("create_click_event", start, err) }()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// Rollback is a no-op after a successful Commit
	defer tx.Rollback(ctx)

	// Increment first: the UPDATE doubles as the existence check and takes
	// the row lock that serializes concurrent clicks on the same link
	result, err := tx.Exec(
		ctx,
		`UPDATE links SET clicks = clicks + 1 WHERE id = $1 AND is_active = true`,
		*event.LinkID,
	)
	if err != nil {
		return fmt.Errorf("failed to increment clicks: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	err = tx.QueryRow(
		ctx,
		`INSERT INTO analytics (user_id, link_id, type, referrer, user_agent, ip_address)
		 VALUES ($1, $2, 'click', $3, $4, $5)
		 RETURNING id, created_at`,
		event.UserID,
		*event.LinkID,
		event.Referrer,
		event.UserAgent,
		event.IPAddress,
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create click event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit click: %w", err)
	}

	return nil
}

// CountByLink returns the number of click events referencing a link
func (r *eventRepository) CountByLink(ctx context.Context, linkID int64) (int64, error) {
	query := `SELECT COUNT(*) FROM analytics WHERE link_id = $1 AND type = 'click'`

	var count int64
	err := r.db.QueryRow(ctx, query, linkID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count clicks: %w", err)
	}

	return count, nil
}

// DailyClicks groups click events by calendar date within the window.
// Dates with no events simply don't appear - no zero backfill.
func (r *eventRepository) DailyClicks(ctx context.Context, userID int64, since time.Time) (_ []domain.DailyClicks, err error) {
	start := time.Now()
	defer func() { observeQuery("daily_clicks", start, err) }()

	query := `
		SELECT created_at::date AS date, COUNT(*) AS clicks
		FROM analytics
		WHERE user_id = $1 AND type = 'click' AND created_at >= $2
		GROUP BY created_at::date
		ORDER BY date DESC
	`

	rows, err := r.db.Query(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily clicks: %w", err)
	}
	defer rows.Close()

	var daily []domain.DailyClicks
	for rows.Next() {
		var d domain.DailyClicks
		if err := rows.Scan(&d.Date, &d.Clicks); err != nil {
			return nil, fmt.Errorf("failed to scan daily clicks: %w", err)
		}
		daily = append(daily, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily clicks: %w", err)
	}

	return daily, nil
}

// TopReferrers groups click events by exact referrer string. No
// normalization: "https://x.com/?q=1" and "https://x.com/" count apart.
// Tie order between equal counts is whatever the database picks.
func (r *eventRepository) TopReferrers(ctx context.Context, userID int64, limit int) (_ []domain.ReferrerClicks, err error) {
	start := time.Now()
	defer func() { observeQuery("top_referrers", start, err) }()

	query := `
		SELECT referrer, COUNT(*) AS clicks
		FROM analytics
		WHERE user_id = $1 AND type = 'click' AND referrer IS NOT NULL
		GROUP BY referrer
		ORDER BY clicks DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top referrers: %w", err)
	}
	defer rows.Close()

	var referrers []domain.ReferrerClicks
	for rows.Next() {
		var rc domain.ReferrerClicks
		if err := rows.Scan(&rc.Referrer, &rc.Clicks); err != nil {
			return nil, fmt.Errorf("failed to scan referrer: %w", err)
		}
		referrers = append(referrers, rc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating referrers: %w", err)
	}

	return referrers, nil
}

// LinkPerformance reports every active link with its all-time counter and a
// recomputed event count inside the recent window.
func (r *eventRepository) LinkPerformance(ctx context.Context, userID int64, since time.Time) (_ []domain.LinkPerformance, err error) {
	start := time.Now()
	defer func() { observeQuery("link_performance", start, err) }()

	query := `
		SELECT l.id, l.title, l.clicks, COUNT(a.id) AS recent_clicks
		FROM links l
		LEFT JOIN analytics a
			ON l.id = a.link_id AND a.type = 'click' AND a.created_at >= $2
		WHERE l.user_id = $1 AND l.is_active = true
		GROUP BY l.id, l.title, l.clicks
		ORDER BY l.clicks DESC
	`

	rows, err := r.db.Query(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get link performance: %w", err)
	}
	defer rows.Close()

	var performance []domain.LinkPerformance
	for rows.Next() {
		var lp domain.LinkPerformance
		if err := rows.Scan(&lp.LinkID, &lp.Title, &lp.Clicks, &lp.RecentClicks); err != nil {
			return nil, fmt.Errorf("failed to scan link performance: %w", err)
		}
		performance = append(performance, lp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating link performance: %w", err)
	}

	return performance, nil
}
