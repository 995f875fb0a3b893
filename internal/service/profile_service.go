package service

import (
	"context"
	"errors"
	"fmt"

	"linkhub/internal/domain"
	"linkhub/internal/metrics"
	"linkhub/internal/repository"
)

// PageCache is the profile page cache as seen by the services.
// Using an interface allows for easy testing and swapping implementations.
type PageCache interface {
	GetProfilePage(ctx context.Context, username string) (*domain.ProfilePage, error)
	SetProfilePage(ctx context.Context, username string, page *domain.ProfilePage) error
	DeleteProfilePage(ctx context.Context, username string) error
}

// usernameAttempts bounds the retry loop for synthesized-username collisions.
const usernameAttempts = 5

// CreateProfileInput is the caller-supplied part of an anonymous signup.
// Every field is optional; Username left empty gets synthesized.
type CreateProfileInput struct {
	Name     string
	Username string
	Bio      string
	Mode     string
	Theme    string
}

// ProfileService handles business logic for profiles: anonymous creation
// with its claim-token contract, the public page read path, and the
// destructive-overwrite update.
type ProfileService struct {
	profileRepo repository.ProfileRepository
	linkRepo    repository.LinkRepository
	badgeRepo   repository.BadgeRepository
	cache       PageCache
}

// NewProfileService creates a new profile service
func NewProfileService(
	profileRepo repository.ProfileRepository,
	linkRepo repository.LinkRepository,
	badgeRepo repository.BadgeRepository,
	cache PageCache,
) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		linkRepo:    linkRepo,
		badgeRepo:   badgeRepo,
		cache:       cache,
	}
}

// CreateAnonymous creates an anonymous profile. The returned profile carries
// the claim token - this is the only time it is ever handed out.
//
// When the username was synthesized, a uniqueness collision is retried with
// a fresh suffix; a caller-supplied username surfaces the conflict instead.
func (s *ProfileService) CreateAnonymous(ctx context.Context, input CreateProfileInput) (*domain.Profile, error) {
	for attempt := 0; attempt < usernameAttempts; attempt++ {
		profile, err := domain.NewAnonymousProfile(input.Name, input.Username, input.Bio, input.Mode, input.Theme)
		if err != nil {
			return nil, err
		}

		err = s.profileRepo.Create(ctx, profile)
		if err == nil {
			metrics.RecordProfileCreated()
			return profile, nil
		}
		if errors.Is(err, domain.ErrUsernameTaken) && input.Username == "" {
			continue
		}
		return nil, err
	}

	return nil, fmt.Errorf("failed to find a free username after %d attempts", usernameAttempts)
}

// GetPage returns the public page payload for a username: profile, stats,
// active links in page order, and badges newest first.
// Implements the cache-aside pattern; a cache failure falls through to the
// database rather than failing the read.
func (s *ProfileService) GetPage(ctx context.Context, username string) (*domain.ProfilePage, error) {
	if cached, err := s.cache.GetProfilePage(ctx, username); err == nil && cached != nil {
		return cached, nil
	}

	profile, stats, err := s.profileRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	links, err := s.linkRepo.ListActiveByUser(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load links: %w", err)
	}

	badges, err := s.badgeRepo.ListByUser(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load badges: %w", err)
	}

	page := &domain.ProfilePage{
		Profile: *profile,
		Stats:   *stats,
		Links:   links,
		Badges:  badges,
	}

	// Caching is best-effort; the page is already built
	_ = s.cache.SetProfilePage(ctx, username, page)

	return page, nil
}

// Update overwrites the editable profile fields. Patch fields left nil are
// written as NULL - this is the preserved API contract, not an oversight.
func (s *ProfileService) Update(ctx context.Context, username string, patch domain.ProfilePatch) error {
	if err := s.profileRepo.Update(ctx, username, patch); err != nil {
		return err
	}

	_ = s.cache.DeleteProfilePage(ctx, username)

	return nil
}
