package service

import (
	"context"
	"errors"

	"linkhub/internal/domain"
	"linkhub/internal/metrics"
	"linkhub/internal/repository"
)

// ErrMissingOwner is returned when a link create names no owner at all.
var ErrMissingOwner = errors.New("link owner is required: supply user_id or username")

// CreateLinkInput carries a link create request. The owner is referenced
// either by explicit ID or by username - username wins when both are set,
// and an unknown username is a hard ErrNotFound.
type CreateLinkInput struct {
	UserID         *int64
	Username       string
	Title          string
	URL            string
	Description    *string
	Image          *string
	Category       string
	IsAutoImported bool
	Source         *string
	Position       int
}

// LinkService handles business logic for links on a profile page.
type LinkService struct {
	linkRepo    repository.LinkRepository
	profileRepo repository.ProfileRepository
	cache       PageCache
}

// NewLinkService creates a new link service
func NewLinkService(linkRepo repository.LinkRepository, profileRepo repository.ProfileRepository, cache PageCache) *LinkService {
	return &LinkService{
		linkRepo:    linkRepo,
		profileRepo: profileRepo,
		cache:       cache,
	}
}

// Create validates and stores a new link for the resolved owner.
func (s *LinkService) Create(ctx context.Context, input CreateLinkInput) (*domain.Link, error) {
	userID, username, err := s.resolveOwner(ctx, input)
	if err != nil {
		return nil, err
	}

	link := domain.NewLink(userID, input.Title, input.URL)
	link.Description = input.Description
	link.Image = input.Image
	if input.Category != "" {
		link.Category = input.Category
	}
	link.IsAutoImported = input.IsAutoImported
	link.Source = input.Source
	link.Position = input.Position

	if err := link.Validate(); err != nil {
		return nil, err
	}

	if err := s.linkRepo.Create(ctx, link); err != nil {
		return nil, err
	}

	metrics.RecordLinkCreated()
	s.invalidateOwner(ctx, username, userID)

	return link, nil
}

// Update overwrites a link's editable fields. Absent optional fields become
// NULL; an absent category falls back to custom, mirroring create defaults.
func (s *LinkService) Update(ctx context.Context, id int64, patch domain.LinkPatch) error {
	if patch.Category == "" {
		patch.Category = domain.CategoryCustom
	}

	check := domain.Link{Title: patch.Title, URL: patch.URL, Category: patch.Category}
	if err := check.Validate(); err != nil {
		return err
	}

	if err := s.linkRepo.Update(ctx, id, patch); err != nil {
		return err
	}

	s.invalidateByLink(ctx, id)

	return nil
}

// SoftDelete marks a link inactive. Deleting an already-deleted link is
// still a success.
func (s *LinkService) SoftDelete(ctx context.Context, id int64) error {
	if err := s.linkRepo.SoftDelete(ctx, id); err != nil {
		return err
	}

	s.invalidateByLink(ctx, id)

	return nil
}

// resolveOwner turns the owner reference into a user ID, preferring the
// username path when present.
func (s *LinkService) resolveOwner(ctx context.Context, input CreateLinkInput) (int64, string, error) {
	if input.Username != "" {
		id, err := s.profileRepo.ResolveID(ctx, input.Username)
		if err != nil {
			return 0, "", err
		}
		return id, input.Username, nil
	}
	if input.UserID != nil {
		return *input.UserID, "", nil
	}
	return 0, "", ErrMissingOwner
}

// invalidateOwner drops the owner's cached page. Best-effort: a stale cache
// entry expires on its own TTL anyway.
func (s *LinkService) invalidateOwner(ctx context.Context, username string, userID int64) {
	if username == "" {
		if userID == 0 {
			return
		}
		profile, err := s.profileRepo.GetByID(ctx, userID)
		if err != nil {
			return
		}
		username = profile.Username
	}
	_ = s.cache.DeleteProfilePage(ctx, username)
}

// invalidateByLink drops the cached page of the link's owner.
func (s *LinkService) invalidateByLink(ctx context.Context, linkID int64) {
	link, err := s.linkRepo.GetByID(ctx, linkID)
	if err != nil {
		return
	}
	s.invalidateOwner(ctx, "", link.UserID)
}
