// Package cache кэширует ответы векторного индекса в Redis.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/akozadaev/go_service_finder/internal/models"
)

// ErrCacheMiss - ключа нет в кэше.
var ErrCacheMiss = errors.New("cache miss")

// DefaultPrefix - префикс ключей кэша результатов поиска.
const DefaultPrefix = "lsf:retrieval:"

// RedisCache хранит пары (id, score), которые вернул векторный индекс для (текст, k).
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisConfig содержит параметры подключения к Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string
}

// NewRedisCache создает клиент и проверяет соединение.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewRedisCacheFromClient(client, cfg.Prefix, cfg.TTL), nil
}

// NewRedisCacheFromClient оборачивает готовый клиент.
func NewRedisCacheFromClient(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

// Key возвращает ключ для пары (текст запроса, k).
func (c *RedisCache) Key(text string, k int) string {
	sum := sha256.Sum256([]byte(text + "|" + strconv.Itoa(k)))
	return c.prefix + hex.EncodeToString(sum[:])
}

// GetMatches возвращает закэшированные совпадения или ErrCacheMiss.
func (c *RedisCache) GetMatches(ctx context.Context, text string, k int) ([]models.Match, error) {
	data, err := c.client.Get(ctx, c.Key(text, k)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var matches []models.Match
	if err := json.Unmarshal(data, &matches); err != nil {
		return nil, fmt.Errorf("failed to decode cached matches: %w", err)
	}
	return matches, nil
}

// SetMatches сохраняет совпадения с TTL кэша.
func (c *RedisCache) SetMatches(ctx context.Context, text string, k int, matches []models.Match) error {
	data, err := json.Marshal(matches)
	if err != nil {
		return fmt.Errorf("failed to encode matches: %w", err)
	}
	if err := c.client.Set(ctx, c.Key(text, k), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Flush удаляет все ключи с префиксом кэша. Вызывается индексатором после переиндексации.
func (c *RedisCache) Flush(ctx context.Context) (int, error) {
	deleted := 0
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return deleted, fmt.Errorf("redis delete: %w", err)
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("redis scan: %w", err)
	}
	return deleted, nil
}

// Close закрывает соединение.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
