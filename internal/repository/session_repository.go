package repository

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/devsanbid/bravo-test-sub001/internal/domain"
)

// ErrSessionNotFound is returned for unknown or expired backend sessions.
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository stores backend sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.BackendSession) error
	Get(ctx context.Context, id string) (*domain.BackendSession, error)
	Delete(ctx context.Context, id string) error
}

type sessionRepository struct {
	client *redis.Client
}

// NewSessionRepository returns a Redis-backed implementation; sessions expire with their TTL.
func NewSessionRepository(client *redis.Client) SessionRepository {
	return &sessionRepository{client: client}
}

func sessionKey(id string) string {
	return "backend-session:" + id
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.BackendSession) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return errors.New("session already expired")
	}
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, sessionKey(session.ID), raw, ttl).Err()
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*domain.BackendSession, error) {
	raw, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var session domain.BackendSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	n, err := r.client.Del(ctx, sessionKey(id)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}
