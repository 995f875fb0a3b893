package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"linkhub/internal/domain"
	"linkhub/internal/metrics"
	"linkhub/internal/repository"
)

// Default aggregation windows, matching what the dashboard renders.
const (
	DailyClicksWindowDays     = 30
	TopReferrersLimit         = 10
	LinkPerformanceWindowDays = 7
)

// ErrMissingLink is returned when a click tracking call names no link.
var ErrMissingLink = errors.New("link_id is required to track a click")

// ProfileRef references a profile by username or ID for event attribution.
// Both empty is allowed: the event is recorded unattributed.
type ProfileRef struct {
	UserID   *int64
	Username string
}

// AnalyticsService owns the event log: recording views and clicks, and the
// read-time aggregations over them. It never mutates recorded events.
type AnalyticsService struct {
	eventRepo   repository.EventRepository
	profileRepo repository.ProfileRepository
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(eventRepo repository.EventRepository, profileRepo repository.ProfileRepository) *AnalyticsService {
	return &AnalyticsService{
		eventRepo:   eventRepo,
		profileRepo: profileRepo,
	}
}

// RecordView appends a page view event. A profile reference that doesn't
// resolve degrades to an unattributed event instead of failing - view
// tracking is deliberately permissive.
func (s *AnalyticsService) RecordView(ctx context.Context, ref ProfileRef, client domain.ClientInfo) error {
	userID := s.resolveRef(ctx, ref)

	event := domain.NewViewEvent(userID, client)
	if err := s.eventRepo.CreateView(ctx, event); err != nil {
		metrics.RecordTrackingFailure(domain.EventView)
		return err
	}

	metrics.RecordViewRecorded()
	return nil
}

// RecordClick appends a click event for the link and increments the link's
// counter - one transaction, so the counter and the event log cannot
// diverge. Unknown or inactive links fail with domain.ErrNotFound and
// nothing is persisted.
func (s *AnalyticsService) RecordClick(ctx context.Context, ref ProfileRef, linkID int64, client domain.ClientInfo) error {
	if linkID <= 0 {
		return ErrMissingLink
	}

	userID := s.resolveRef(ctx, ref)

	event := domain.NewClickEvent(userID, linkID, client)
	if err := s.eventRepo.CreateClick(ctx, event); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			metrics.RecordTrackingFailure(domain.EventClick)
		}
		return err
	}

	metrics.RecordClickRecorded()
	return nil
}

// Report builds the per-profile analytics payload: the trailing daily click
// series, the top referrers, and per-link performance.
func (s *AnalyticsService) Report(ctx context.Context, userID int64) (*domain.AnalyticsReport, error) {
	now := time.Now()

	daily, err := s.eventRepo.DailyClicks(ctx, userID, now.AddDate(0, 0, -DailyClicksWindowDays))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate daily clicks: %w", err)
	}

	referrers, err := s.eventRepo.TopReferrers(ctx, userID, TopReferrersLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate referrers: %w", err)
	}

	performance, err := s.eventRepo.LinkPerformance(ctx, userID, now.AddDate(0, 0, -LinkPerformanceWindowDays))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate link performance: %w", err)
	}

	return &domain.AnalyticsReport{
		DailyClicks:     daily,
		TopReferrers:    referrers,
		LinkPerformance: performance,
	}, nil
}

// resolveRef maps a profile reference to a user ID, or nil when it cannot
// be resolved. Only attribution is lost on a miss, never the event.
func (s *AnalyticsService) resolveRef(ctx context.Context, ref ProfileRef) *int64 {
	if ref.Username != "" {
		id, err := s.profileRepo.ResolveID(ctx, ref.Username)
		if err != nil {
			return nil
		}
		return &id
	}
	return ref.UserID
}
