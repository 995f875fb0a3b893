package service

import (
	"context"
	"testing"

	"linkhub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newLinkService() (*LinkService, *MockLinkRepository, *MockProfileRepository, *MockPageCache) {
	linkRepo := new(MockLinkRepository)
	profileRepo := new(MockProfileRepository)
	cache := new(MockPageCache)
	return NewLinkService(linkRepo, profileRepo, cache), linkRepo, profileRepo, cache
}

func TestCreateLink_ByUsername(t *testing.T) {
	// Arrange
	ctx := context.Background()
	service, linkRepo, profileRepo, cache := newLinkService()

	profileRepo.On("ResolveID", ctx, "ada").Return(int64(7), nil)
	linkRepo.On("Create", ctx, mock.AnythingOfType("*domain.Link")).Return(nil)
	cache.On("DeleteProfilePage", ctx, "ada").Return(nil)

	// Act
	link, err := service.Create(ctx, CreateLinkInput{
		Username: "ada",
		Title:    "My Blog",
		URL:      "https://example.com/blog",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(7), link.UserID)
	assert.Equal(t, domain.CategoryCustom, link.Category)
	assert.True(t, link.IsActive)
	cache.AssertExpectations(t)
}

func TestCreateLink_UsernameWinsOverUserID(t *testing.T) {
	// Arrange
	ctx := context.Background()
	service, linkRepo, profileRepo, cache := newLinkService()

	other := int64(99)
	profileRepo.On("ResolveID", ctx, "ada").Return(int64(7), nil)
	linkRepo.On("Create", ctx, mock.AnythingOfType("*domain.Link")).Return(nil)
	cache.On("DeleteProfilePage", mock.Anything, mock.Anything).Return(nil).Maybe()

	// Act
	link, err := service.Create(ctx, CreateLinkInput{
		UserID:   &other,
		Username: "ada",
		Title:    "My Blog",
		URL:      "https://example.com",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(7), link.UserID)
}

func TestCreateLink_UnknownUsernameIsHardError(t *testing.T) {
	// Arrange
	ctx := context.Background()
	service, linkRepo, profileRepo, _ := newLinkService()

	profileRepo.On("ResolveID", ctx, "ghost").Return(int64(0), domain.ErrNotFound)

	// Act
	link, err := service.Create(ctx, CreateLinkInput{
		Username: "ghost",
		Title:    "My Blog",
		URL:      "https://example.com",
	})

	// Assert
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, link)
	linkRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateLink_NoOwner(t *testing.T) {
	// Arrange
	ctx := context.Background()
	service, _, _, _ := newLinkService()

	// Act
	link, err := service.Create(ctx, CreateLinkInput{
		Title: "My Blog",
		URL:   "https://example.com",
	})

	// Assert
	assert.ErrorIs(t, err, ErrMissingOwner)
	assert.Nil(t, link)
}

func TestCreateLink_Validation(t *testing.T) {
	ctx := context.Background()
	owner := int64(7)

	tests := []struct {
		name    string
		input   CreateLinkInput
		wantErr error
	}{
		{
			name:    "empty title",
			input:   CreateLinkInput{UserID: &owner, Title: "  ", URL: "https://example.com"},
			wantErr: domain.ErrEmptyTitle,
		},
		{
			name:    "empty url",
			input:   CreateLinkInput{UserID: &owner, Title: "Blog", URL: ""},
			wantErr: domain.ErrEmptyURL,
		},
		{
			name:    "non-http scheme",
			input:   CreateLinkInput{UserID: &owner, Title: "Blog", URL: "ftp://example.com"},
			wantErr: domain.ErrInvalidURL,
		},
		{
			name:    "unknown category",
			input:   CreateLinkInput{UserID: &owner, Title: "Blog", URL: "https://example.com", Category: "podcast"},
			wantErr: domain.ErrInvalidCategory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, linkRepo, _, _ := newLinkService()

			link, err := service.Create(ctx, tt.input)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, link)
			linkRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestUpdateLink_MissingCategoryDefaultsToCustom(t *testing.T) {
	// Arrange
	ctx := context.Background()
	service, linkRepo, profileRepo, cache := newLinkService()

	linkRepo.On("Update", ctx, int64(3), mock.MatchedBy(func(patch domain.LinkPatch) bool {
		return patch.Category == domain.CategoryCustom
	})).Return(nil)
	linkRepo.On("GetByID", ctx, int64(3)).Return(&domain.Link{ID: 3, UserID: 7}, nil)
	profileRepo.On("GetByID", ctx, int64(7)).Return(&domain.Profile{ID: 7, Username: "ada"}, nil)
	cache.On("DeleteProfilePage", ctx, "ada").Return(nil)

	// Act
	err := service.Update(ctx, 3, domain.LinkPatch{
		Title: "Updated",
		URL:   "https://example.com/new",
	})

	// Assert
	require.NoError(t, err)
	linkRepo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestUpdateLink_UnknownLink(t *testing.T) {
	// Arrange
	ctx := context.Background()
	service, linkRepo, _, cache := newLinkService()

	linkRepo.On("Update", ctx, int64(404), mock.Anything).Return(domain.ErrNotFound)

	// Act
	err := service.Update(ctx, 404, domain.LinkPatch{Title: "x", URL: "https://example.com"})

	// Assert
	assert.ErrorIs(t, err, domain.ErrNotFound)
	cache.AssertNotCalled(t, "DeleteProfilePage", mock.Anything, mock.Anything)
}

func TestSoftDelete_Idempotent(t *testing.T) {
	// Arrange
	ctx := context.Background()
	service, linkRepo, profileRepo, cache := newLinkService()

	// The repository reports success for an already-inactive link too
	linkRepo.On("SoftDelete", ctx, int64(3)).Return(nil).Twice()
	linkRepo.On("GetByID", ctx, int64(3)).Return(&domain.Link{ID: 3, UserID: 7, IsActive: false}, nil)
	profileRepo.On("GetByID", ctx, int64(7)).Return(&domain.Profile{ID: 7, Username: "ada"}, nil)
	cache.On("DeleteProfilePage", ctx, "ada").Return(nil)

	// Act
	err1 := service.SoftDelete(ctx, 3)
	err2 := service.SoftDelete(ctx, 3)

	// Assert
	require.NoError(t, err1)
	require.NoError(t, err2)
}
