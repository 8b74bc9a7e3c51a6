package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/sbilibin2017/gw-finance-ledger/internal/logger"
)

// ErrRateNotCached is returned on a cache miss.
var ErrRateNotCached = errors.New("exchange rate not cached")

// ExchangeRateCacheRepository provides cached exchange rates using Redis
type ExchangeRateCacheRepository struct {
	client *redis.Client
	exp    time.Duration // expiration duration for cached rates
}

// NewExchangeRateCacheRepository creates a new repository instance with the given TTL
func NewExchangeRateCacheRepository(client *redis.Client, expiration time.Duration) *ExchangeRateCacheRepository {
	return &ExchangeRateCacheRepository{
		client: client,
		exp:    expiration,
	}
}

func rateKey(fromCurrency, toCurrency string) string {
	return fmt.Sprintf("exchange_rate:%s:%s", fromCurrency, toCurrency)
}

// GetExchangeRateForCurrency fetches a cached exchange rate between two currencies
func (r *ExchangeRateCacheRepository) GetExchangeRateForCurrency(ctx context.Context, fromCurrency, toCurrency string) (decimal.Decimal, error) {
	key := rateKey(fromCurrency, toCurrency)

	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		logger.Log.Infow("key", key, "result", val, "error", err)
		if errors.Is(err, redis.Nil) {
			return decimal.Zero, fmt.Errorf("%w: %s->%s", ErrRateNotCached, fromCurrency, toCurrency)
		}
		return decimal.Zero, err
	}

	rate, err := decimal.NewFromString(val)
	logger.Log.Infow("key", key, "value", val, "result", rate, "error", err)
	if err != nil {
		return decimal.Zero, err
	}
	return rate, nil
}

// SetExchangeRateForCurrency caches a new exchange rate in Redis with expiration
func (r *ExchangeRateCacheRepository) SetExchangeRateForCurrency(ctx context.Context, fromCurrency, toCurrency string, rate decimal.Decimal) error {
	key := rateKey(fromCurrency, toCurrency)
	err := r.client.Set(ctx, key, rate.String(), r.exp).Err()

	logger.Log.Infow("key", key, "rate", rate, "result", "ok", "error", err)
	return err
}
