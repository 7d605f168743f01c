// Package featurestore persists raw feature WKT per (table, record id) on
// top of the redis client. It is the concrete form of the external record
// store the codec reads from; values are opaque bytes here and only the
// codec decides whether they parse.
package featurestore

import (
	"context"
	"fmt"
	"time"

	"github.com/linnea-strand/wkt-spatial-tools/internal/cache/keys"
	"github.com/linnea-strand/wkt-spatial-tools/internal/cache/redisstore"
)

type Store interface {
	Get(ctx context.Context, table, id string) ([]byte, bool, error)
	MGet(ctx context.Context, table string, ids []string) (map[string][]byte, error)
	Put(ctx context.Context, table, id string, raw []byte, ttl time.Duration) error
	Delete(ctx context.Context, table string, ids ...string) error
}

type redisFeatureStore struct {
	cli        *redisstore.Client
	defaultTTL time.Duration
}

func NewRedis(cli *redisstore.Client, defaultTTL time.Duration) Store {
	return &redisFeatureStore{cli: cli, defaultTTL: defaultTTL}
}

func (s *redisFeatureStore) Get(ctx context.Context, table, id string) ([]byte, bool, error) {
	raw, found, err := s.cli.Get(ctx, keys.FeatureKey(table, id))
	if err != nil {
		return nil, false, fmt.Errorf("featurestore get %s/%s: %w", table, id, err)
	}
	return raw, found, nil
}

func (s *redisFeatureStore) MGet(ctx context.Context, table string, ids []string) (map[string][]byte, error) {
	if len(ids) == 0 {
		return map[string][]byte{}, nil
	}

	kk := make([]string, len(ids))
	for i, id := range ids {
		kk[i] = keys.FeatureKey(table, id)
	}

	raw, err := s.cli.MGet(ctx, kk)
	if err != nil {
		return nil, fmt.Errorf("featurestore mget %d keys: %w", len(kk), err)
	}

	out := make(map[string][]byte, len(raw))
	for i, id := range ids {
		if v, ok := raw[kk[i]]; ok {
			out[id] = v
		}
	}
	return out, nil
}

func (s *redisFeatureStore) Put(ctx context.Context, table, id string, raw []byte, ttl time.Duration) error {
	t := ttl
	if t <= 0 {
		t = s.defaultTTL
	}
	k := keys.FeatureKey(table, id)
	if err := s.cli.Set(ctx, k, raw, t); err != nil {
		return fmt.Errorf("featurestore put %q: %w", k, err)
	}
	return nil
}

func (s *redisFeatureStore) Delete(ctx context.Context, table string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	kk := make([]string, len(ids))
	for i, id := range ids {
		kk[i] = keys.FeatureKey(table, id)
	}
	if err := s.cli.Del(ctx, kk...); err != nil {
		return fmt.Errorf("featurestore delete %d keys: %w", len(kk), err)
	}
	return nil
}
