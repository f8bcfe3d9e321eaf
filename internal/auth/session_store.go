package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"listky/internal/cache"
)

const sessionKeyPrefix = "session:"

// SessionStoreInterface defines the interface for session storage operations.
type SessionStoreInterface interface {
	StoreSession(ctx context.Context, tokenID, username string, ttl time.Duration) error
	GetSession(ctx context.Context, tokenID string) (username string, err error)
	DeleteSession(ctx context.Context, tokenID string) error
}

// SessionStore records active session token IDs in Redis so that logout can
// revoke a token before its JWT expiry.
type SessionStore struct {
	cache *cache.Client
}

// Ensure SessionStore implements SessionStoreInterface
var _ SessionStoreInterface = (*SessionStore)(nil)

// NewSessionStore creates a new session store.
func NewSessionStore(cache *cache.Client) *SessionStore {
	return &SessionStore{cache: cache}
}

// StoreSession stores a session in Redis with TTL.
func (s *SessionStore) StoreSession(ctx context.Context, tokenID, username string, ttl time.Duration) error {
	payload, err := json.Marshal(map[string]string{"username": username})
	if err != nil {
		return fmt.Errorf("marshal session data: %w", err)
	}

	key := sessionKeyPrefix + tokenID
	return s.cache.Set(ctx, key, payload, ttl)
}

// GetSession retrieves the username bound to a session token ID.
func (s *SessionStore) GetSession(ctx context.Context, tokenID string) (string, error) {
	key := sessionKeyPrefix + tokenID
	data, err := s.cache.Get(ctx, key)
	if err != nil || data == nil {
		return "", fmt.Errorf("session not found")
	}

	var sessionData map[string]string
	if err := json.Unmarshal(data, &sessionData); err != nil {
		return "", fmt.Errorf("unmarshal session data: %w", err)
	}

	username, ok := sessionData["username"]
	if !ok || username == "" {
		return "", fmt.Errorf("invalid username in session data")
	}

	return username, nil
}

// DeleteSession removes a session from Redis.
func (s *SessionStore) DeleteSession(ctx context.Context, tokenID string) error {
	key := sessionKeyPrefix + tokenID
	return s.cache.Delete(ctx, key)
}
