package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"listky/internal/auth"
	apperrors "listky/internal/errors"
	"listky/internal/model"
	"listky/internal/privacy"
)

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, account *model.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) Update(ctx context.Context, account *model.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) FindByUsername(ctx context.Context, username string) (*model.Account, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateTrendingOptIn(ctx context.Context, username string, optIn bool) error {
	args := m.Called(ctx, username, optIn)
	return args.Error(0)
}

// MockSessionStore is a mock implementation of SessionStoreInterface.
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) StoreSession(ctx context.Context, tokenID, username string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, username, ttl)
	return args.Error(0)
}

func (m *MockSessionStore) GetSession(ctx context.Context, tokenID string) (string, error) {
	args := m.Called(ctx, tokenID)
	return args.String(0), args.Error(1)
}

func (m *MockSessionStore) DeleteSession(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

func newTestAuthService(repo *MockAccountRepository, sessions *MockSessionStore) AuthService {
	return NewAuthService(repo, auth.NewJWTService("test-secret"), sessions, privacy.NewIPHasher("test-salt"))
}

func accountWithPin(t *testing.T, username, pin string) *model.Account {
	t.Helper()
	pinHash, err := auth.HashPIN(pin)
	assert.NoError(t, err)
	return &model.Account{
		Username:      username,
		PinHash:       pinHash,
		TrendingOptIn: true,
	}
}

func TestAuthService_Claim(t *testing.T) {
	tests := []struct {
		name          string
		username      string
		pin           string
		setupMock     func(*MockAccountRepository, *MockSessionStore)
		expectedError error
	}{
		{
			name:     "successful claim",
			username: "alice",
			pin:      "123456",
			setupMock: func(mRepo *MockAccountRepository, mSessions *MockSessionStore) {
				mRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Account")).Return(nil)
				mSessions.On("StoreSession", mock.Anything, mock.Anything, "alice", auth.SessionExpiry).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:     "username taken",
			username: "alice",
			pin:      "123456",
			setupMock: func(mRepo *MockAccountRepository, mSessions *MockSessionStore) {
				mRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Account")).Return(gorm.ErrDuplicatedKey)
			},
			expectedError: apperrors.ErrUsernameTaken,
		},
		{
			name:          "username too short",
			username:      "ab",
			pin:           "123456",
			setupMock:     func(mRepo *MockAccountRepository, mSessions *MockSessionStore) {},
			expectedError: apperrors.ErrInvalidUsernameFormat,
		},
		{
			name:          "username with punctuation",
			username:      "al.ice",
			pin:           "123456",
			setupMock:     func(mRepo *MockAccountRepository, mSessions *MockSessionStore) {},
			expectedError: apperrors.ErrInvalidUsernameFormat,
		},
		{
			name:          "pin too short",
			username:      "alice",
			pin:           "12345",
			setupMock:     func(mRepo *MockAccountRepository, mSessions *MockSessionStore) {},
			expectedError: apperrors.ErrInvalidPinFormat,
		},
		{
			name:          "pin with letters",
			username:      "alice",
			pin:           "12a456",
			setupMock:     func(mRepo *MockAccountRepository, mSessions *MockSessionStore) {},
			expectedError: apperrors.ErrInvalidPinFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockAccountRepository)
			mockSessions := new(MockSessionStore)
			tt.setupMock(mockRepo, mockSessions)

			service := newTestAuthService(mockRepo, mockSessions)
			account, token, err := service.Claim(context.Background(), tt.username, tt.pin, "203.0.113.7")

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, account)
				assert.Empty(t, token)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, account)
				assert.NotEmpty(t, token)
				assert.Equal(t, tt.username, account.Username)
				assert.NotEmpty(t, account.PinHash)
				assert.NotEqual(t, tt.pin, account.PinHash)
				assert.True(t, account.TrendingOptIn)
				// The claim stores a salted hash of the client IP, never the raw IP.
				assert.NotEqual(t, "203.0.113.7", account.LastIPHash)
				assert.Len(t, account.LastIPHash, 64)
			}

			mockRepo.AssertExpectations(t)
			mockSessions.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	account := accountWithPin(t, "alice", "123456")
	account.FailedAttempts = 2 // prior failures below the threshold

	mockRepo := new(MockAccountRepository)
	mockRepo.On("FindByUsername", mock.Anything, "alice").Return(account, nil)
	mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.Account")).Return(nil)
	mockSessions := new(MockSessionStore)
	mockSessions.On("StoreSession", mock.Anything, mock.Anything, "alice", auth.SessionExpiry).Return(nil)

	service := newTestAuthService(mockRepo, mockSessions)
	got, token, err := service.Login(context.Background(), "alice", "123456", "203.0.113.7")

	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, 0, got.FailedAttempts)
	assert.Nil(t, got.LockoutUntil)
	assert.Len(t, got.LastIPHash, 64)
	mockRepo.AssertExpectations(t)
	mockSessions.AssertExpectations(t)
}

func TestAuthService_Login_WrongPin(t *testing.T) {
	tests := []struct {
		name            string
		priorFailures   int
		wantAttempts    int
		wantLocked      bool
		wantMinDuration time.Duration
	}{
		{name: "first failure", priorFailures: 0, wantAttempts: 1, wantLocked: false},
		{name: "below threshold", priorFailures: 2, wantAttempts: 3, wantLocked: false},
		{name: "fourth failure locks for 5 minutes", priorFailures: 3, wantAttempts: 4, wantLocked: true, wantMinDuration: 5 * time.Minute},
		{name: "sixth failure locks for 15 minutes", priorFailures: 5, wantAttempts: 6, wantLocked: true, wantMinDuration: 15 * time.Minute},
		{name: "eighth failure locks for an hour", priorFailures: 7, wantAttempts: 8, wantLocked: true, wantMinDuration: 60 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := accountWithPin(t, "alice", "123456")
			account.FailedAttempts = tt.priorFailures

			var updated *model.Account
			mockRepo := new(MockAccountRepository)
			mockRepo.On("FindByUsername", mock.Anything, "alice").Return(account, nil)
			mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.Account")).
				Run(func(args mock.Arguments) {
					updated = args.Get(1).(*model.Account)
				}).Return(nil)
			mockSessions := new(MockSessionStore)

			before := time.Now()
			service := newTestAuthService(mockRepo, mockSessions)
			_, token, err := service.Login(context.Background(), "alice", "999999", "203.0.113.7")

			assert.ErrorIs(t, err, apperrors.ErrInvalidPin)
			assert.Empty(t, token)
			// The failed attempt is persisted so lockouts survive restarts.
			assert.NotNil(t, updated)
			assert.Equal(t, tt.wantAttempts, updated.FailedAttempts)
			if tt.wantLocked {
				assert.NotNil(t, updated.LockoutUntil)
				remaining := updated.LockoutUntil.Sub(before)
				assert.GreaterOrEqual(t, remaining, tt.wantMinDuration-time.Second)
				assert.LessOrEqual(t, remaining, tt.wantMinDuration+time.Minute)
			} else {
				assert.Nil(t, updated.LockoutUntil)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login_LockedOut(t *testing.T) {
	account := accountWithPin(t, "alice", "123456")
	account.FailedAttempts = 4
	until := time.Now().Add(3 * time.Minute)
	account.LockoutUntil = &until

	mockRepo := new(MockAccountRepository)
	mockRepo.On("FindByUsername", mock.Anything, "alice").Return(account, nil)
	mockSessions := new(MockSessionStore)

	service := newTestAuthService(mockRepo, mockSessions)

	// Even the correct PIN fails during lockout, consumes no attempt, and
	// leaves the counter untouched.
	_, token, err := service.Login(context.Background(), "alice", "123456", "203.0.113.7")

	var locked *apperrors.LockedOutError
	assert.ErrorAs(t, err, &locked)
	assert.Greater(t, locked.RetryAfter, time.Duration(0))
	assert.Empty(t, token)
	assert.Equal(t, 4, account.FailedAttempts)
	// No Update expectation was set: the lockout path must not touch storage.
	mockRepo.AssertExpectations(t)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAuthService_Login_ExpiredLockout(t *testing.T) {
	account := accountWithPin(t, "alice", "123456")
	account.FailedAttempts = 4
	until := time.Now().Add(-time.Minute)
	account.LockoutUntil = &until

	mockRepo := new(MockAccountRepository)
	mockRepo.On("FindByUsername", mock.Anything, "alice").Return(account, nil)
	mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.Account")).Return(nil)
	mockSessions := new(MockSessionStore)
	mockSessions.On("StoreSession", mock.Anything, mock.Anything, "alice", auth.SessionExpiry).Return(nil)

	service := newTestAuthService(mockRepo, mockSessions)
	got, token, err := service.Login(context.Background(), "alice", "123456", "203.0.113.7")

	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, 0, got.FailedAttempts)
	assert.Nil(t, got.LockoutUntil)
}

func TestAuthService_Login_UnknownUsername(t *testing.T) {
	mockRepo := new(MockAccountRepository)
	mockRepo.On("FindByUsername", mock.Anything, "ghost").Return(nil, gorm.ErrRecordNotFound)
	mockSessions := new(MockSessionStore)

	service := newTestAuthService(mockRepo, mockSessions)
	_, token, err := service.Login(context.Background(), "ghost", "123456", "203.0.113.7")

	// Unknown usernames look exactly like wrong PINs.
	assert.ErrorIs(t, err, apperrors.ErrInvalidPin)
	assert.Empty(t, token)
}

func TestAuthService_Login_MalformedInputsSkipStorage(t *testing.T) {
	mockRepo := new(MockAccountRepository)
	mockSessions := new(MockSessionStore)
	service := newTestAuthService(mockRepo, mockSessions)

	_, _, err := service.Login(context.Background(), "alice", "12345", "203.0.113.7")
	assert.ErrorIs(t, err, apperrors.ErrInvalidPinFormat)

	_, _, err = service.Login(context.Background(), "no spaces", "123456", "203.0.113.7")
	assert.ErrorIs(t, err, apperrors.ErrInvalidPin)

	mockRepo.AssertNotCalled(t, "FindByUsername", mock.Anything, mock.Anything)
}

// fakeAccountRepo is a stateful single-account repository for scenario tests
// that span several sequential login attempts.
type fakeAccountRepo struct {
	account *model.Account
}

func (f *fakeAccountRepo) Create(ctx context.Context, account *model.Account) error {
	if f.account != nil && f.account.Username == account.Username {
		return gorm.ErrDuplicatedKey
	}
	f.account = account
	return nil
}

func (f *fakeAccountRepo) Update(ctx context.Context, account *model.Account) error {
	f.account = account
	return nil
}

func (f *fakeAccountRepo) FindByUsername(ctx context.Context, username string) (*model.Account, error) {
	if f.account == nil || f.account.Username != username {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *f.account
	return &copied, nil
}

func (f *fakeAccountRepo) UpdateTrendingOptIn(ctx context.Context, username string, optIn bool) error {
	if f.account == nil || f.account.Username != username {
		return gorm.ErrRecordNotFound
	}
	f.account.TrendingOptIn = optIn
	return nil
}

func TestAuthService_LockoutScenario(t *testing.T) {
	repo := &fakeAccountRepo{}
	sessions := new(MockSessionStore)
	sessions.On("StoreSession", mock.Anything, mock.Anything, "alice", auth.SessionExpiry).Return(nil)
	service := NewAuthService(repo, auth.NewJWTService("test-secret"), sessions, privacy.NewIPHasher("test-salt"))
	ctx := context.Background()

	_, _, err := service.Claim(ctx, "alice", "123456", "203.0.113.7")
	assert.NoError(t, err)

	// Three wrong attempts, then the correct PIN: authenticated and the
	// counter resets to zero.
	for i := 0; i < 3; i++ {
		_, _, err := service.Login(ctx, "alice", "000000", "203.0.113.7")
		assert.ErrorIs(t, err, apperrors.ErrInvalidPin)
	}
	account, token, err := service.Login(ctx, "alice", "123456", "203.0.113.7")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, 0, account.FailedAttempts)

	// Four wrong attempts in a row arm a lockout; the fifth attempt fails
	// with LockedOut even though the PIN is correct.
	for i := 0; i < 4; i++ {
		_, _, err := service.Login(ctx, "alice", "000000", "203.0.113.7")
		assert.ErrorIs(t, err, apperrors.ErrInvalidPin)
	}
	_, _, err = service.Login(ctx, "alice", "123456", "203.0.113.7")
	var locked *apperrors.LockedOutError
	assert.ErrorAs(t, err, &locked)
	assert.Greater(t, locked.RetryAfter, time.Duration(0))
	assert.Equal(t, 4, repo.account.FailedAttempts)
}

func TestAuthService_SetTrendingOptIn(t *testing.T) {
	mockRepo := new(MockAccountRepository)
	mockRepo.On("UpdateTrendingOptIn", mock.Anything, "alice", false).Return(nil)
	mockRepo.On("UpdateTrendingOptIn", mock.Anything, "ghost", true).Return(gorm.ErrRecordNotFound)
	mockSessions := new(MockSessionStore)
	service := newTestAuthService(mockRepo, mockSessions)

	assert.NoError(t, service.SetTrendingOptIn(context.Background(), "alice", false))
	assert.ErrorIs(t, service.SetTrendingOptIn(context.Background(), "ghost", true), apperrors.ErrAccountNotFound)
	mockRepo.AssertExpectations(t)
}
