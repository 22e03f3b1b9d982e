package repositories

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/wabdevconsult/batuta/domain"
)

// RedisSessionRepository implements domain.SessionPersister using Redis.
// The record never expires; Clear removes it.
type RedisSessionRepository struct {
	client *redis.Client
	key    string
}

// NewRedisSessionRepository stores the record under prefix+name
func NewRedisSessionRepository(client *redis.Client, prefix, name string) domain.SessionPersister {
	return &RedisSessionRepository{
		client: client,
		key:    prefix + name,
	}
}

// Load implements domain.SessionPersister
func (r *RedisSessionRepository) Load(ctx context.Context) (*domain.PersistedSession, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return decodeSession(data)
}

// Save implements domain.SessionPersister
func (r *RedisSessionRepository) Save(ctx context.Context, session *domain.PersistedSession) error {
	data, err := encodeSession(session)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key, data, 0).Err()
}

// Clear implements domain.SessionPersister
func (r *RedisSessionRepository) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}
