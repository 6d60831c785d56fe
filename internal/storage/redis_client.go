package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisClient wraps the Redis client with application-specific methods. It
// backs the exchange-rate cache; the service degrades to its in-memory
// fallback when Redis is not configured.
type RedisClient struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisClient creates a new Redis client
func NewRedisClient(host string, port string) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", host, port),
		PoolSize:     50,
		MinIdleConns: 5,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		MaxRetries:   3,
	})

	ctx := context.Background()

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisClient{
		client: client,
		ctx:    ctx,
	}, nil
}

const ratesKey = "viewer:exchange-rates"

// GetRates retrieves the cached exchange-rate table. A missing key returns a
// nil map, not an error.
func (r *RedisClient) GetRates() (map[string]float64, error) {
	val, err := r.client.Get(r.ctx, ratesKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rates map[string]float64
	if err := json.Unmarshal(val, &rates); err != nil {
		return nil, err
	}
	return rates, nil
}

// SetRates stores the exchange-rate table with the given lifetime.
func (r *RedisClient) SetRates(rates map[string]float64, expiration time.Duration) error {
	data, err := json.Marshal(rates)
	if err != nil {
		return err
	}
	return r.client.Set(r.ctx, ratesKey, data, expiration).Err()
}

// Exists checks if a key exists in Redis
func (r *RedisClient) Exists(keys ...string) (int64, error) {
	return r.client.Exists(r.ctx, keys...).Result()
}

// Delete removes keys from Redis
func (r *RedisClient) Delete(keys ...string) error {
	return r.client.Del(r.ctx, keys...).Err()
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	return r.client.Close()
}
