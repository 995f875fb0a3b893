package service

import (
	"context"
	"time"

	"linkhub/internal/domain"

	"github.com/stretchr/testify/mock"
)

// ==================== MOCKS ====================

// MockProfileRepository is a mock implementation of repository.ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) GetByUsername(ctx context.Context, username string) (*domain.Profile, *domain.ProfileStats, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Profile), args.Get(1).(*domain.ProfileStats), args.Error(2)
}

func (m *MockProfileRepository) GetByID(ctx context.Context, id int64) (*domain.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileRepository) ResolveID(ctx context.Context, username string) (int64, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProfileRepository) Update(ctx context.Context, username string, patch domain.ProfilePatch) error {
	args := m.Called(ctx, username, patch)
	return args.Error(0)
}

// MockLinkRepository is a mock implementation of repository.LinkRepository
type MockLinkRepository struct {
	mock.Mock
}

func (m *MockLinkRepository) Create(ctx context.Context, link *domain.Link) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *MockLinkRepository) GetByID(ctx context.Context, id int64) (*domain.Link, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

func (m *MockLinkRepository) ListActiveByUser(ctx context.Context, userID int64) ([]*domain.Link, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Link), args.Error(1)
}

func (m *MockLinkRepository) Update(ctx context.Context, id int64, patch domain.LinkPatch) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}

func (m *MockLinkRepository) SoftDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockEventRepository is a mock implementation of repository.EventRepository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) CreateView(ctx context.Context, event *domain.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventRepository) CreateClick(ctx context.Context, event *domain.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventRepository) CountByLink(ctx context.Context, linkID int64) (int64, error) {
	args := m.Called(ctx, linkID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEventRepository) DailyClicks(ctx context.Context, userID int64, since time.Time) ([]domain.DailyClicks, error) {
	args := m.Called(ctx, userID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DailyClicks), args.Error(1)
}

func (m *MockEventRepository) TopReferrers(ctx context.Context, userID int64, limit int) ([]domain.ReferrerClicks, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReferrerClicks), args.Error(1)
}

func (m *MockEventRepository) LinkPerformance(ctx context.Context, userID int64, since time.Time) ([]domain.LinkPerformance, error) {
	args := m.Called(ctx, userID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LinkPerformance), args.Error(1)
}

// MockBadgeRepository is a mock implementation of repository.BadgeRepository
type MockBadgeRepository struct {
	mock.Mock
}

func (m *MockBadgeRepository) Create(ctx context.Context, badge *domain.Badge) error {
	args := m.Called(ctx, badge)
	return args.Error(0)
}

func (m *MockBadgeRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.Badge, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Badge), args.Error(1)
}

// MockPageCache is a mock implementation of PageCache
type MockPageCache struct {
	mock.Mock
}

func (m *MockPageCache) GetProfilePage(ctx context.Context, username string) (*domain.ProfilePage, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProfilePage), args.Error(1)
}

func (m *MockPageCache) SetProfilePage(ctx context.Context, username string, page *domain.ProfilePage) error {
	args := m.Called(ctx, username, page)
	return args.Error(0)
}

func (m *MockPageCache) DeleteProfilePage(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}
