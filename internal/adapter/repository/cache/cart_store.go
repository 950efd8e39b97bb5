package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/srgjo27/resort_booking/internal/core/domain"
)

const DefaultCartTTL = 2 * time.Hour

// CartStore keeps session carts as JSON snapshots. Every save refreshes the
// TTL, so an abandoned browsing session drops its cart on its own.
type CartStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewCartStore(client *redis.Client, ttl time.Duration) *CartStore {
	if ttl <= 0 {
		ttl = DefaultCartTTL
	}
	return &CartStore{client: client, ttl: ttl, prefix: "cart"}
}

func (s *CartStore) key(sessionID string) string {
	return fmt.Sprintf("%s:%s", s.prefix, sessionID)
}

func (s *CartStore) Load(ctx context.Context, sessionID string) (*domain.CartSnapshot, error) {
	raw, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var snap domain.CartSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", sessionID, err)
	}

	return &snap, nil
}

func (s *CartStore) Save(ctx context.Context, sessionID string, snapshot domain.CartSnapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode cart %s: %w", sessionID, err)
	}

	return s.client.Set(ctx, s.key(sessionID), raw, s.ttl).Err()
}

func (s *CartStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.key(sessionID)).Err()
}
