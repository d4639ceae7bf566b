package cart

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each ledger in a hash of product id to quantity.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func itemsKey(key string) string {
	return fmt.Sprintf("cart:%s:items", key)
}

func (s *RedisStore) Load(ctx context.Context, key string) (*Ledger, error) {
	fields, err := s.client.HGetAll(ctx, itemsKey(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	l := NewLedger()
	for field, value := range fields {
		productID, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid product id %q in cart: %w", field, err)
		}
		qty, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid quantity for product %d: %w", productID, err)
		}
		l.Set(productID, qty)
	}
	return l, nil
}

// Save rewrites the whole hash in one MULTI so readers never see a partial cart.
func (s *RedisStore) Save(ctx context.Context, key string, l *Ledger) error {
	k := itemsKey(key)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, k)
		if l.IsEmpty() {
			return nil
		}
		values := make([]interface{}, 0, l.Len()*2)
		for _, line := range l.Lines() {
			values = append(values, strconv.FormatInt(line.ProductID, 10), line.Quantity)
		}
		pipe.HSet(ctx, k, values...)
		if s.ttl > 0 {
			pipe.Expire(ctx, k, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, itemsKey(key)).Err(); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}
