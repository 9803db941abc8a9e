// Copyright (c) 2026 Verbum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/verbum/internal/platform/constants"
	"github.com/taibuivan/verbum/internal/platform/dberr"
)

// RedisRunStore implements [RunStore] with one JSON value per run.
type RedisRunStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRunStore creates a new Redis-backed [RunStore]. Snapshots expire
// ttl after their last update.
func NewRedisRunStore(client *redis.Client, ttl time.Duration) *RedisRunStore {
	return &RedisRunStore{client: client, ttl: ttl}
}

func runKey(runID string) string {
	return constants.RedisPrefixMigrationRun + runID
}

/*
Save stores the snapshot, refreshing its TTL.

Parameters:
  - ctx: context.Context
  - report: Report

Returns:
  - error: encoding or connectivity errors
*/
func (store *RedisRunStore) Save(ctx context.Context, report Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("redis_run_encode_failed: %w", err)
	}

	if err := store.client.Set(ctx, runKey(report.RunID), payload, store.ttl).Err(); err != nil {
		return fmt.Errorf("redis_run_set_failed: %w", err)
	}
	return nil
}

/*
Get retrieves the latest snapshot of a run.

Returns:
  - *Report: decoded snapshot
  - error: dberr.ErrNotFound if absent or expired, otherwise connectivity errors
*/
func (store *RedisRunStore) Get(ctx context.Context, runID string) (*Report, error) {
	payload, err := store.client.Get(ctx, runKey(runID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, dberr.ErrNotFound
		}
		return nil, fmt.Errorf("redis_run_get_failed: %w", err)
	}

	var report Report
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, fmt.Errorf("redis_run_decode_failed: %w", err)
	}
	return &report, nil
}
