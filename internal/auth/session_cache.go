package auth

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/devsanbid/bravo-test-sub001/internal/domain"
)

// ProfileLoader reads the current profile document of a user.
type ProfileLoader func(ctx context.Context, userID string) (*domain.Profile, error)

// SessionCache keeps the current profile of signed-in users in Redis. Token claims are a
// login-time snapshot; the cache is the fresher view, stale by at most its TTL unless
// refreshed or invalidated explicitly.
type SessionCache struct {
	client *redis.Client
	ttl    time.Duration
	load   ProfileLoader
}

// NewSessionCache constructs the cache.
func NewSessionCache(client *redis.Client, ttl time.Duration, load ProfileLoader) *SessionCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SessionCache{client: client, ttl: ttl, load: load}
}

func cacheKey(userID string) string {
	return "session-cache:" + userID
}

// Get returns the cached profile; ok is false on a miss.
func (s *SessionCache) Get(ctx context.Context, userID string) (*domain.Profile, bool, error) {
	raw, err := s.client.Get(ctx, cacheKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var profile domain.Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, false, err
	}
	return &profile, true, nil
}

// Refresh reloads the profile from the document store and caches it.
func (s *SessionCache) Refresh(ctx context.Context, userID string) (*domain.Profile, error) {
	profile, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(profile)
	if err != nil {
		return nil, err
	}
	if err := s.client.Set(ctx, cacheKey(userID), raw, s.ttl).Err(); err != nil {
		return nil, err
	}
	return profile, nil
}

// Invalidate drops the cached profile.
func (s *SessionCache) Invalidate(ctx context.Context, userID string) error {
	return s.client.Del(ctx, cacheKey(userID)).Err()
}
