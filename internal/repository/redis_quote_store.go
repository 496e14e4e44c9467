package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"aaiti/internal/domain/models"
	drepo "aaiti/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

// RedisQuoteStore mirrors the latest fetched quotes into Redis so external
// consumers (dashboards, sibling services) can read them without touching
// the provider chain.
type RedisQuoteStore struct {
	client *redis.Client
}

func NewRedisQuoteStore(addr, password string, db int) (drepo.QuoteStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisQuoteStore{client: client}, nil
}

func quoteKey(symbol, currency string) string {
	return "quote:" + strings.ToUpper(symbol) + ":" + strings.ToUpper(currency)
}

func (s *RedisQuoteStore) Put(ctx context.Context, q *models.PriceQuote, ttl time.Duration) error {
	b, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("marshal quote: %w", err)
	}
	if err := s.client.Set(ctx, quoteKey(q.Symbol, q.Currency), b, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisQuoteStore) Get(ctx context.Context, symbol, currency string) (*models.PriceQuote, error) {
	b, err := s.client.Get(ctx, quoteKey(symbol, currency)).Bytes()
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var q models.PriceQuote
	if err := json.Unmarshal(b, &q); err != nil {
		return nil, fmt.Errorf("unmarshal quote: %w", err)
	}
	return &q, nil
}

func (s *RedisQuoteStore) Close() error {
	return s.client.Close()
}
