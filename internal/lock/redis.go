package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLock распределенная блокировка на SET NX с TTL
// TTL страхует от вечной блокировки при падении держателя
type RedisLock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisLock подключается к Redis и возвращает блокировку с фиксированным ключом
func NewRedisLock(addr string, key string, ttl time.Duration) (*RedisLock, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%w: NewRedisLock - ping failed: %v", ErrConnect, err)
	}

	return &RedisLock{
		client: client,
		key:    fmt.Sprintf("lock:%s", key),
		ttl:    ttl,
	}, nil
}

// Acquire пытается захватить блокировку
// Возвращает false без ошибки, если блокировка уже у другого экземпляра
func (r *RedisLock) Acquire(ctx context.Context) (bool, error) {
	acquired, err := r.client.SetNX(ctx, r.key, "1", r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%w: Acquire - setnx failed: %v", ErrInternal, err)
	}

	return acquired, nil
}

// Release снимает блокировку
func (r *RedisLock) Release(ctx context.Context) error {
	if _, err := r.client.Del(ctx, r.key).Result(); err != nil {
		return fmt.Errorf("%w: Release - del failed: %v", ErrInternal, err)
	}

	return nil
}

// Close закрывает подключение к Redis
func (r *RedisLock) Close() error {
	return r.client.Close()
}
