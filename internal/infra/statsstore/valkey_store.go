package statsstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/merchant-insights/internal/domain/auth"
	"github.com/yanqian/merchant-insights/internal/domain/insight"
)

// ValkeyStore caches stats snapshots in a Valkey-compatible database.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "merchant-insights"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

func (s *ValkeyStore) GetStats(ctx context.Context, shopID, productID string, period insight.Period) (insight.ProductStats, bool, error) {
	cmd := s.client.B().Get().Key(s.statsKey(shopID, productID, period)).Build()
	payload, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return insight.ProductStats{}, false, nil
		}
		return insight.ProductStats{}, false, err
	}
	var stats insight.ProductStats
	if err := json.Unmarshal([]byte(payload), &stats); err != nil {
		return insight.ProductStats{}, false, err
	}
	return stats, true, nil
}

// SaveStats writes the snapshot and records its key in the shop's index set for purging.
func (s *ValkeyStore) SaveStats(ctx context.Context, shopID string, stats insight.ProductStats, ttl time.Duration) error {
	payload, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	key := s.statsKey(shopID, stats.ProductID, stats.Period)
	if err := s.setString(ctx, key, string(payload), ttl); err != nil {
		return err
	}
	return s.client.Do(ctx, s.client.B().Sadd().Key(s.indexKey(shopID)).Member(key).Build()).Error()
}

// PurgeShop deletes every snapshot indexed for the shop.
func (s *ValkeyStore) PurgeShop(ctx context.Context, shopID string) error {
	index := s.indexKey(shopID)
	keys, err := s.client.Do(ctx, s.client.B().Smembers().Key(index).Build()).AsStrSlice()
	if err != nil && !valkey.IsValkeyNil(err) {
		return err
	}
	keys = append(keys, index)
	return s.client.Do(ctx, s.client.B().Del().Key(keys...).Build()).Error()
}

func (s *ValkeyStore) setString(ctx context.Context, key, value string, ttl time.Duration) error {
	builder := s.client.B().Set().Key(key).Value(value)
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) statsKey(shopID, productID string, period insight.Period) string {
	return fmt.Sprintf("%s:stats:%s:%s:%s", s.prefix, shopID, productID, period)
}

func (s *ValkeyStore) indexKey(shopID string) string {
	return fmt.Sprintf("%s:stats-index:%s", s.prefix, shopID)
}

var (
	_ insight.StatsStore  = (*ValkeyStore)(nil)
	_ auth.ShopDataPurger = (*ValkeyStore)(nil)
)
