// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// tree.go provides a Valkey-backed cache for assembled category trees and
// breadcrumb chains. Tree reads dominate the catalog workload while
// structural changes are rare, so the whole forest is cached as one JSON
// document and every mutation clears the namespace wholesale.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"smartparts/internal/models"
)

const (
	// treeKeyPrefix is the Valkey key prefix for all category tree entries.
	treeKeyPrefix = "cattree:"

	// DefaultTreeTTL is how long cached tree data stays valid. Mutations
	// invalidate eagerly; the TTL only bounds staleness after a missed
	// invalidation.
	DefaultTreeTTL = 5 * time.Minute
)

// TreeCache manages cached category forests and breadcrumb chains in Valkey.
type TreeCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTreeCache creates a tree cache backed by the given Valkey client.
func NewTreeCache(client *redis.Client, ttl time.Duration) *TreeCache {
	if ttl == 0 {
		ttl = DefaultTreeTTL
	}
	return &TreeCache{client: client, ttl: ttl}
}

// GetForest retrieves the cached full tree. Returns false on miss.
func (tc *TreeCache) GetForest(ctx context.Context) ([]*models.Category, bool) {
	val, err := tc.client.Get(ctx, ForestKey()).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("tree cache get error", "key", ForestKey(), "error", err)
		return nil, false
	}

	var forest []*models.Category
	if err := json.Unmarshal(val, &forest); err != nil {
		slog.Warn("tree cache decode error", "key", ForestKey(), "error", err)
		return nil, false
	}
	slog.Debug("tree cache hit", "key", ForestKey())
	return forest, true
}

// SetForest stores the assembled tree with the configured TTL.
func (tc *TreeCache) SetForest(ctx context.Context, forest []*models.Category) {
	val, err := json.Marshal(forest)
	if err != nil {
		slog.Warn("tree cache encode error", "key", ForestKey(), "error", err)
		return
	}
	if err := tc.client.Set(ctx, ForestKey(), val, tc.ttl).Err(); err != nil {
		slog.Warn("tree cache set error", "key", ForestKey(), "error", err)
	}
}

// GetBreadcrumbs retrieves the cached breadcrumb chain for a category.
// Returns false on miss.
func (tc *TreeCache) GetBreadcrumbs(ctx context.Context, id uuid.UUID) ([]models.Category, bool) {
	key := BreadcrumbKey(id)
	val, err := tc.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("tree cache get error", "key", key, "error", err)
		return nil, false
	}

	var chain []models.Category
	if err := json.Unmarshal(val, &chain); err != nil {
		slog.Warn("tree cache decode error", "key", key, "error", err)
		return nil, false
	}
	return chain, true
}

// SetBreadcrumbs stores a breadcrumb chain with the configured TTL.
func (tc *TreeCache) SetBreadcrumbs(ctx context.Context, id uuid.UUID, chain []models.Category) {
	val, err := json.Marshal(chain)
	if err != nil {
		slog.Warn("tree cache encode error", "id", id, "error", err)
		return
	}
	if err := tc.client.Set(ctx, BreadcrumbKey(id), val, tc.ttl).Err(); err != nil {
		slog.Warn("tree cache set error", "id", id, "error", err)
	}
}

// InvalidateAll removes every cached tree entry by scanning for the prefix.
// Any structural mutation can change paths or nesting anywhere in the
// forest, so partial invalidation is not worth the bookkeeping.
func (tc *TreeCache) InvalidateAll(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := tc.client.Scan(ctx, cursor, treeKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("tree cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := tc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("tree cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Debug("tree cache cleared", "deleted", deleted)
	}
}

// ForestKey returns the cache key for the full assembled tree.
func ForestKey() string {
	return treeKeyPrefix + "forest"
}

// BreadcrumbKey returns the cache key for one category's breadcrumb chain.
func BreadcrumbKey(id uuid.UUID) string {
	return treeKeyPrefix + "crumbs:" + id.String()
}
