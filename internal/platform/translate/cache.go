// Copyright (c) 2026 Verbum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package translate

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zeebo/blake3"

	"github.com/taibuivan/verbum/internal/platform/constants"
	"github.com/taibuivan/verbum/internal/platform/ctxutil"
)

// Cache stores finished translations.
type Cache interface {
	// Get reports a hit with ok; a miss is not an error.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// RedisCache implements [Cache] on plain string keys.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis-backed [Cache].
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get retrieves a cached translation.
func (cache *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := cache.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis_translation_get_failed: %w", err)
	}
	return value, true, nil
}

// Set stores a translation with its TTL.
func (cache *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := cache.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis_translation_set_failed: %w", err)
	}
	return nil
}

// CachedTranslator answers from the [Cache] and falls back to the wrapped [Translator].
//
// Cache failures are logged and never fail a translation.
type CachedTranslator struct {
	next   Translator
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedTranslator wraps next with a cache.
func NewCachedTranslator(next Translator, cache Cache, ttl time.Duration, logger *slog.Logger) *CachedTranslator {
	return &CachedTranslator{next: next, cache: cache, ttl: ttl, logger: logger}
}

// loggerFor prefers the run-scoped logger when called from a clone run.
func (translator *CachedTranslator) loggerFor(ctx context.Context) *slog.Logger {
	if ctxutil.GetRunID(ctx) != "" {
		return ctxutil.GetLogger(ctx)
	}
	return translator.logger
}

// CacheKey derives the cache key for a text and target language.
func CacheKey(text, targetLang string) string {
	sum := blake3.Sum256([]byte(text))
	return constants.RedisPrefixTranslation + targetLang + ":" + hex.EncodeToString(sum[:])
}

// Translate implements [Translator].
func (translator *CachedTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	key := CacheKey(text, targetLang)

	cached, ok, err := translator.cache.Get(ctx, key)
	if err != nil {
		translator.loggerFor(ctx).WarnContext(ctx, "translation_cache_read_failed", slog.String("error", err.Error()))
	}
	if ok {
		return cached, nil
	}

	translated, err := translator.next.Translate(ctx, text, targetLang)
	if err != nil {
		return "", err
	}

	if err := translator.cache.Set(ctx, key, translated, translator.ttl); err != nil {
		translator.loggerFor(ctx).WarnContext(ctx, "translation_cache_write_failed", slog.String("error", err.Error()))
	}

	return translated, nil
}
