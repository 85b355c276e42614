package captcha

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "webtwist:captcha:"

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, id, answer string, ttl time.Duration) error {
	return s.client.Set(ctx, keyPrefix+id, answer, ttl).Err()
}

// Take uses GETDEL so concurrent checks of the same id cannot both succeed.
func (s *RedisStore) Take(ctx context.Context, id string) (string, bool, error) {
	answer, err := s.client.GetDel(ctx, keyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return answer, true, nil
}
