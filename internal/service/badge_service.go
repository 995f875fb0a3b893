package service

import (
	"context"
	"encoding/json"

	"linkhub/internal/domain"
	"linkhub/internal/repository"
)

// BadgeService exposes the storage primitives for community badges: an
// insertion hook for whatever policy decides to award them, and the read
// path the profile page uses. There is intentionally no scoring logic here.
type BadgeService struct {
	badgeRepo   repository.BadgeRepository
	profileRepo repository.ProfileRepository
}

// NewBadgeService creates a new badge service
func NewBadgeService(badgeRepo repository.BadgeRepository, profileRepo repository.ProfileRepository) *BadgeService {
	return &BadgeService{
		badgeRepo:   badgeRepo,
		profileRepo: profileRepo,
	}
}

// Award inserts a badge for the profile. criteria is stored verbatim as the
// opaque condition payload; nil is stored as NULL.
func (s *BadgeService) Award(ctx context.Context, userID int64, badgeType string, criteria json.RawMessage) (*domain.Badge, error) {
	if !domain.ValidBadgeType(badgeType) {
		return nil, domain.ErrInvalidBadgeType
	}

	// Awarding against a missing profile should fail loudly, not via an
	// FK error string
	if _, err := s.profileRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	badge := &domain.Badge{
		UserID:   userID,
		Type:     badgeType,
		Criteria: criteria,
	}

	if err := s.badgeRepo.Create(ctx, badge); err != nil {
		return nil, err
	}

	return badge, nil
}

// List returns a profile's badges, newest first.
func (s *BadgeService) List(ctx context.Context, userID int64) ([]*domain.Badge, error) {
	return s.badgeRepo.ListByUser(ctx, userID)
}
