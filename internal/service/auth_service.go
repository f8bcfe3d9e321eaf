package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"listky/internal/auth"
	apperrors "listky/internal/errors"
	"listky/internal/model"
	"listky/internal/privacy"
	"listky/internal/repository"
)

// AuthService handles username claims and PIN authentication.
type AuthService interface {
	// Claim registers a username first-come-first-served. Exactly one of N
	// concurrent claimers of the same name succeeds.
	Claim(ctx context.Context, username, pin, clientIP string) (*model.Account, string, error)
	// Login verifies a PIN and issues a session token. Every attempt durably
	// mutates the account's lockout bookkeeping so lockouts survive restarts.
	Login(ctx context.Context, username, pin, clientIP string) (*model.Account, string, error)
	Logout(ctx context.Context, token string) error
	GetAccount(ctx context.Context, username string) (*model.Account, error)
	SetTrendingOptIn(ctx context.Context, username string, optIn bool) error
}

type authService struct {
	accountRepo  repository.AccountRepository
	jwtService   *auth.JWTService
	sessionStore auth.SessionStoreInterface
	hasher       *privacy.IPHasher
}

// NewAuthService creates a new authentication service.
func NewAuthService(accountRepo repository.AccountRepository, jwtService *auth.JWTService, sessionStore auth.SessionStoreInterface, hasher *privacy.IPHasher) AuthService {
	return &authService{
		accountRepo:  accountRepo,
		jwtService:   jwtService,
		sessionStore: sessionStore,
		hasher:       hasher,
	}
}

// Claim registers a new account with a hashed PIN.
func (s *authService) Claim(ctx context.Context, username, pin, clientIP string) (*model.Account, string, error) {
	if !auth.ValidUsername(username) {
		return nil, "", apperrors.ErrInvalidUsernameFormat
	}
	if !auth.ValidPIN(pin) {
		return nil, "", apperrors.ErrInvalidPinFormat
	}

	pinHash, err := auth.HashPIN(pin)
	if err != nil {
		return nil, "", fmt.Errorf("hash pin: %w", err)
	}

	account := &model.Account{
		Username:      username,
		PinHash:       pinHash,
		LastIPHash:    s.hasher.HashIP(clientIP),
		TrendingOptIn: true,
	}

	// The insert is the claim: the username primary key arbitrates concurrent
	// claims, so we never check-then-create.
	if err := s.accountRepo.Create(ctx, account); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", apperrors.ErrUsernameTaken
		}
		return nil, "", fmt.Errorf("create account: %w", err)
	}

	token, err := s.issueSession(ctx, username)
	if err != nil {
		return nil, "", err
	}

	return account, token, nil
}

// Login authenticates an account by PIN and returns a session token.
func (s *authService) Login(ctx context.Context, username, pin, clientIP string) (*model.Account, string, error) {
	if !auth.ValidPIN(pin) {
		return nil, "", apperrors.ErrInvalidPinFormat
	}
	if !auth.ValidUsername(username) {
		// Indistinguishable from a wrong PIN so the API never confirms
		// whether a username exists.
		return nil, "", apperrors.ErrInvalidPin
	}

	account, err := s.accountRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", apperrors.ErrInvalidPin
		}
		return nil, "", fmt.Errorf("find account: %w", err)
	}

	now := time.Now()
	if account.LockedOut(now) {
		// No hash comparison during lockout: a correct PIN neither succeeds
		// nor consumes an attempt.
		return nil, "", &apperrors.LockedOutError{RetryAfter: account.LockoutUntil.Sub(now)}
	}

	if !auth.CheckPIN(pin, account.PinHash) {
		account.FailedAttempts++
		if account.FailedAttempts >= auth.LockoutThreshold {
			until := now.Add(auth.LockoutDuration(account.FailedAttempts))
			account.LockoutUntil = &until
		}
		if err := s.accountRepo.Update(ctx, account); err != nil {
			return nil, "", fmt.Errorf("record failed attempt: %w", err)
		}
		return nil, "", apperrors.ErrInvalidPin
	}

	account.FailedAttempts = 0
	account.LockoutUntil = nil
	account.LastIPHash = s.hasher.HashIP(clientIP)
	if err := s.accountRepo.Update(ctx, account); err != nil {
		return nil, "", fmt.Errorf("record login: %w", err)
	}

	token, err := s.issueSession(ctx, username)
	if err != nil {
		return nil, "", err
	}

	return account, token, nil
}

// Logout revokes a session token.
func (s *authService) Logout(ctx context.Context, token string) error {
	tokenID, err := s.jwtService.ExtractTokenID(token)
	if err != nil {
		return apperrors.ErrInvalidSession
	}
	return s.sessionStore.DeleteSession(ctx, tokenID)
}

// GetAccount fetches an account by username.
func (s *authService) GetAccount(ctx context.Context, username string) (*model.Account, error) {
	account, err := s.accountRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

// SetTrendingOptIn flips the creator's trending inclusion toggle.
func (s *authService) SetTrendingOptIn(ctx context.Context, username string, optIn bool) error {
	if err := s.accountRepo.UpdateTrendingOptIn(ctx, username, optIn); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrAccountNotFound
		}
		return err
	}
	return nil
}

func (s *authService) issueSession(ctx context.Context, username string) (string, error) {
	tokenID, token, err := s.jwtService.GenerateSessionToken(username)
	if err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	if err := s.sessionStore.StoreSession(ctx, tokenID, username, auth.SessionExpiry); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}
