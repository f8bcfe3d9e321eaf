package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"listky/internal/model"
	"listky/internal/privacy"
	"listky/internal/repository"
)

// MockViewRepository is a mock implementation of ViewRepository.
type MockViewRepository struct {
	mock.Mock
}

func (m *MockViewRepository) Insert(ctx context.Context, event *model.ViewEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockViewRepository) CountForList(ctx context.Context, listID uuid.UUID, sinceDay string) (int64, error) {
	args := m.Called(ctx, listID, sinceDay)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockViewRepository) Trending(ctx context.Context, sinceDay string, limit int) ([]repository.TrendingEntry, error) {
	args := m.Called(ctx, sinceDay, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.TrendingEntry), args.Error(1)
}

func TestViewService_RecordView(t *testing.T) {
	listID := uuid.New()
	asOf := time.Date(2026, 8, 28, 15, 4, 5, 0, time.UTC)

	tests := []struct {
		name       string
		insertErr  error
		wantUnique bool
		wantErr    bool
	}{
		{name: "new unique view", insertErr: nil, wantUnique: true},
		{name: "already counted today", insertErr: gorm.ErrDuplicatedKey, wantUnique: false},
		{name: "storage failure", insertErr: errors.New("connection refused"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var inserted *model.ViewEvent
			mockRepo := new(MockViewRepository)
			mockRepo.On("Insert", mock.Anything, mock.AnythingOfType("*model.ViewEvent")).
				Run(func(args mock.Arguments) {
					inserted = args.Get(1).(*model.ViewEvent)
				}).Return(tt.insertErr)

			service := NewViewService(mockRepo, privacy.NewIPHasher("test-salt"))
			newUnique, err := service.RecordView(context.Background(), listID, "203.0.113.7", asOf)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantUnique, newUnique)

			// The event carries only the salted hash and the UTC day bucket.
			assert.Equal(t, listID, inserted.ListID)
			assert.Equal(t, "2026-08-28", inserted.Day)
			assert.NotEqual(t, "203.0.113.7", inserted.ViewerIPHash)
			assert.Len(t, inserted.ViewerIPHash, 64)
			mockRepo.AssertExpectations(t)
		})
	}
}

// fakeViewRepo enforces the (list, hash, day) uniqueness invariant in memory
// for scenario tests spanning several views.
type fakeViewRepo struct {
	events map[string]bool
}

func newFakeViewRepo() *fakeViewRepo {
	return &fakeViewRepo{events: map[string]bool{}}
}

func (f *fakeViewRepo) key(e *model.ViewEvent) string {
	return e.ListID.String() + "|" + e.ViewerIPHash + "|" + e.Day
}

func (f *fakeViewRepo) Insert(ctx context.Context, event *model.ViewEvent) error {
	k := f.key(event)
	if f.events[k] {
		return gorm.ErrDuplicatedKey
	}
	f.events[k] = true
	return nil
}

func (f *fakeViewRepo) CountForList(ctx context.Context, listID uuid.UUID, sinceDay string) (int64, error) {
	var count int64
	for k := range f.events {
		if len(k) >= 36 && k[:36] == listID.String() && k[len(k)-10:] >= sinceDay {
			count++
		}
	}
	return count, nil
}

func (f *fakeViewRepo) Trending(ctx context.Context, sinceDay string, limit int) ([]repository.TrendingEntry, error) {
	return nil, nil
}

func TestViewService_RecordView_DedupAcrossDays(t *testing.T) {
	listID := uuid.New()
	day1 := time.Date(2026, 8, 28, 23, 59, 0, 0, time.UTC)
	day2 := day1.Add(2 * time.Minute) // crosses the UTC day boundary

	repo := newFakeViewRepo()
	service := NewViewService(repo, privacy.NewIPHasher("test-salt"))
	ctx := context.Background()

	first, err := service.RecordView(ctx, listID, "203.0.113.7", day1)
	assert.NoError(t, err)
	assert.True(t, first)

	second, err := service.RecordView(ctx, listID, "203.0.113.7", day1)
	assert.NoError(t, err)
	assert.False(t, second, "same visitor same day must not count twice")

	count, err := service.RecentViewCount(ctx, listID, day1, 7)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count, "duplicate view must not increment the count")

	third, err := service.RecordView(ctx, listID, "203.0.113.7", day2)
	assert.NoError(t, err)
	assert.True(t, third, "next day counts again")

	otherVisitor, err := service.RecordView(ctx, listID, "198.51.100.9", day2)
	assert.NoError(t, err)
	assert.True(t, otherVisitor, "distinct visitors count separately")

	count, err = service.RecentViewCount(ctx, listID, day2, 7)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestViewService_RecentViewCount(t *testing.T) {
	listID := uuid.New()
	asOf := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	mockRepo := new(MockViewRepository)
	mockRepo.On("CountForList", mock.Anything, listID, "2026-08-21").Return(int64(42), nil)

	service := NewViewService(mockRepo, privacy.NewIPHasher("test-salt"))
	count, err := service.RecentViewCount(context.Background(), listID, asOf, 7)

	assert.NoError(t, err)
	assert.Equal(t, int64(42), count)
	mockRepo.AssertExpectations(t)
}
