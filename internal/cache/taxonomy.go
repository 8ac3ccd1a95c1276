// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// taxonomy.go provides a Valkey-backed cache for the category tree.
// Building the tree walks every category row; the public API serves it on
// most requests, so the JSON-encoded tree is kept in Valkey and dropped
// whenever a category mutation lands.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"lumina/internal/models"
)

const (
	// treeKey is the Valkey key holding the encoded category tree.
	treeKey = "taxonomy:tree"

	// DefaultTreeTTL is how long the tree stays cached without invalidation.
	DefaultTreeTTL = 10 * time.Minute
)

// TaxonomyCache holds the category tree in Valkey.
type TaxonomyCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTaxonomyCache creates a taxonomy cache backed by the given Valkey client.
func NewTaxonomyCache(client *redis.Client, ttl time.Duration) *TaxonomyCache {
	if ttl == 0 {
		ttl = DefaultTreeTTL
	}
	return &TaxonomyCache{client: client, ttl: ttl}
}

// GetTree retrieves the cached category tree. Returns false on miss or on
// a decode failure, in which case the caller rebuilds from the database.
func (tc *TaxonomyCache) GetTree(ctx context.Context) ([]models.Category, bool) {
	val, err := tc.client.Get(ctx, treeKey).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("taxonomy cache get error", "error", err)
		return nil, false
	}

	var tree []models.Category
	if err := json.Unmarshal(val, &tree); err != nil {
		slog.Warn("taxonomy cache decode error", "error", err)
		return nil, false
	}
	slog.Debug("taxonomy cache hit")
	return tree, true
}

// SetTree stores the category tree with the configured TTL.
func (tc *TaxonomyCache) SetTree(ctx context.Context, tree []models.Category) {
	encoded, err := json.Marshal(tree)
	if err != nil {
		slog.Warn("taxonomy cache encode error", "error", err)
		return
	}
	if err := tc.client.Set(ctx, treeKey, encoded, tc.ttl).Err(); err != nil {
		slog.Warn("taxonomy cache set error", "error", err)
	}
}

// Invalidate drops the cached tree. Called after every category mutation.
func (tc *TaxonomyCache) Invalidate(ctx context.Context) {
	if err := tc.client.Del(ctx, treeKey).Err(); err != nil {
		slog.Warn("taxonomy cache invalidate error", "error", err)
	}
	slog.Debug("taxonomy cache invalidated")
}
