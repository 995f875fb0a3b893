package service

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"linkhub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newProfileService() (*ProfileService, *MockProfileRepository, *MockLinkRepository, *MockBadgeRepository, *MockPageCache) {
	profileRepo := new(MockProfileRepository)
	linkRepo := new(MockLinkRepository)
	badgeRepo := new(MockBadgeRepository)
	cache := new(MockPageCache)
	return NewProfileService(profileRepo, linkRepo, badgeRepo, cache), profileRepo, linkRepo, badgeRepo, cache
}

func TestCreateAnonymous_SynthesizesUsernameAndToken(t *testing.T) {
	// Arrange
	ctx := context.Background()
	service, profileRepo, _, _, _ := newProfileService()

	profileRepo.On("Create", ctx, mock.AnythingOfType("*domain.Profile")).Return(nil)

	// Act
	profile, err := service.CreateAnonymous(ctx, CreateProfileInput{Name: "Ada"})

	// Assert
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^user\d{10,}\d{3}$`), profile.Username)
	require.NotNil(t, profile.ClaimToken)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{64}$`), *profile.ClaimToken)
	assert.True(t, profile.IsAnonymous)
	assert.Equal(t, domain.ModeCreator, profile.Mode)
	assert.Equal(t, domain.DefaultTheme, profile.Theme)
	profileRepo.AssertExpectations(t)
}

func TestCreateAnonymous_EmptyBioStoredAsNull(t *testing.T) {
	// Arrange
	ctx := context.Background()
	service, profileRepo, _, _, _ := newProfileService()

	profileRepo.On("Create", ctx, mock.AnythingOfType("*domain.Profile")).Return(nil)

	// Act
	profile, err := service.CreateAnonymous(ctx, CreateProfileInput{})

	// Assert
	require.NoError(t, err)
	assert.Nil(t, profile.Name)
	assert.Nil(t, profile.Bio)
}

func TestCreateAnonymous_RetriesSynthesizedCollision(t *testing.T) {
	// Arrange
	ctx := context.Background()
	service, profileRepo, _, _, _ := newProfileService()

	// First insert collides, second succeeds with a fresh username
	profileRepo.On("Create", ctx, mock.AnythingOfType("*domain.Profile")).
		Return(domain.ErrUsernameTaken).Once()
	profileRepo.On("Create", ctx, mock.AnythingOfType("*domain.Profile")).
		Return(nil).Once()

	// Act
	profile, err := service.CreateAnonymous(ctx, CreateProfileInput{})

	// Assert
	require.NoError(t, err)
	assert.NotNil(t, profile)
	profileRepo.AssertNumberOfCalls(t, "Create", 2)
}

func TestCreateAnonymous_SuppliedUsernameConflictSurfaces(t *testing.T) {
	// Arrange
	ctx := context.Background()
	service, profileRepo, _, _, _ := newProfileService()

	// A caller-chosen username must not be silently replaced
	profileRepo.On("Create", ctx, mock.AnythingOfType("*domain.Profile")).
		Return(domain.ErrUsernameTaken).Once()

	// Act
	profile, err := service.CreateAnonymous(ctx, CreateProfileInput{Username: "taken-handle"})

	// Assert
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
	assert.Nil(t, profile)
	profileRepo.AssertNumberOfCalls(t, "Create", 1)
}

func TestCreateAnonymous_InvalidUsernameRejected(t *testing.T) {
	// Arrange
	ctx := context.Background()
	service, profileRepo, _, _, _ := newProfileService()

	// Act
	profile, err := service.CreateAnonymous(ctx, CreateProfileInput{Username: "no spaces!"})

	// Assert
	assert.ErrorIs(t, err, domain.ErrInvalidUsername)
	assert.Nil(t, profile)
	profileRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateAnonymous_InvalidModeRejected(t *testing.T) {
	// Arrange
	ctx := context.Background()
	service, _, _, _, _ := newProfileService()

	// Act
	profile, err := service.CreateAnonymous(ctx, CreateProfileInput{Mode: "agency"})

	// Assert
	assert.ErrorIs(t, err, domain.ErrInvalidMode)
	assert.Nil(t, profile)
}

func TestGetPage_CacheHit(t *testing.T) {
	// Arrange
	ctx := context.Background()
	service, profileRepo, _, _, cache := newProfileService()

	cached := &domain.ProfilePage{
		Profile: domain.Profile{ID: 1, Username: "ada"},
	}
	cache.On("GetProfilePage", ctx, "ada").Return(cached, nil)

	// Act
	page, err := service.GetPage(ctx, "ada")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, cached, page)
	profileRepo.AssertNotCalled(t, "GetByUsername", mock.Anything, mock.Anything)
}

func TestGetPage_CacheMissLoadsEverything(t *testing.T) {
	// Arrange
	ctx := context.Background()
	service, profileRepo, linkRepo, badgeRepo, cache := newProfileService()

	profile := &domain.Profile{ID: 7, Username: "ada"}
	stats := &domain.ProfileStats{LinkCount: 2, TotalClicks: 40, TotalViews: 100}
	links := []*domain.Link{
		{ID: 1, UserID: 7, Title: "Blog", URL: "https://example.com", Position: 0},
		{ID: 2, UserID: 7, Title: "Shop", URL: "https://example.com/shop", Position: 1},
	}
	badges := []*domain.Badge{{ID: 3, UserID: 7, Type: domain.BadgeTopFan}}

	cache.On("GetProfilePage", ctx, "ada").Return(nil, nil)
	profileRepo.On("GetByUsername", ctx, "ada").Return(profile, stats, nil)
	linkRepo.On("ListActiveByUser", ctx, int64(7)).Return(links, nil)
	badgeRepo.On("ListByUser", ctx, int64(7)).Return(badges, nil)
	cache.On("SetProfilePage", ctx, "ada", mock.AnythingOfType("*domain.ProfilePage")).Return(nil)

	// Act
	page, err := service.GetPage(ctx, "ada")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, *profile, page.Profile)
	assert.Equal(t, *stats, page.Stats)
	assert.Len(t, page.Links, 2)
	assert.Len(t, page.Badges, 1)
	cache.AssertExpectations(t)
}

func TestGetPage_UnknownUsername(t *testing.T) {
	// Arrange
	ctx := context.Background()
	service, profileRepo, _, _, cache := newProfileService()

	cache.On("GetProfilePage", ctx, "ghost").Return(nil, nil)
	profileRepo.On("GetByUsername", ctx, "ghost").Return(nil, nil, domain.ErrNotFound)

	// Act
	page, err := service.GetPage(ctx, "ghost")

	// Assert
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, page)
}

func TestGetPage_CacheErrorFallsThrough(t *testing.T) {
	// Arrange
	ctx := context.Background()
	service, profileRepo, linkRepo, badgeRepo, cache := newProfileService()

	cache.On("GetProfilePage", ctx, "ada").Return(nil, errors.New("redis down"))
	profileRepo.On("GetByUsername", ctx, "ada").
		Return(&domain.Profile{ID: 7, Username: "ada"}, &domain.ProfileStats{}, nil)
	linkRepo.On("ListActiveByUser", ctx, int64(7)).Return([]*domain.Link{}, nil)
	badgeRepo.On("ListByUser", ctx, int64(7)).Return([]*domain.Badge{}, nil)
	cache.On("SetProfilePage", ctx, "ada", mock.Anything).Return(errors.New("redis down"))

	// Act
	page, err := service.GetPage(ctx, "ada")

	// Assert
	require.NoError(t, err)
	assert.NotNil(t, page)
}

func TestUpdateProfile_NilFieldsPassedThrough(t *testing.T) {
	// Arrange
	ctx := context.Background()
	service, profileRepo, _, _, cache := newProfileService()

	name := "Ada Lovelace"
	patch := domain.ProfilePatch{Name: &name} // bio, theme, photos absent

	profileRepo.On("Update", ctx, "ada", patch).Return(nil)
	cache.On("DeleteProfilePage", ctx, "ada").Return(nil)

	// Act
	err := service.Update(ctx, "ada", patch)

	// Assert
	require.NoError(t, err)
	// The patch reaches the repository with its nil fields intact - they
	// become NULL, they are not skipped
	profileRepo.AssertCalled(t, "Update", ctx, "ada", patch)
	cache.AssertExpectations(t)
}

func TestUpdateProfile_NotFoundSkipsInvalidation(t *testing.T) {
	// Arrange
	ctx := context.Background()
	service, profileRepo, _, _, cache := newProfileService()

	profileRepo.On("Update", ctx, "ghost", mock.Anything).Return(domain.ErrNotFound)

	// Act
	err := service.Update(ctx, "ghost", domain.ProfilePatch{})

	// Assert
	assert.ErrorIs(t, err, domain.ErrNotFound)
	cache.AssertNotCalled(t, "DeleteProfilePage", mock.Anything, mock.Anything)
}
