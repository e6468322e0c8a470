package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/race-insight-platform/pkg/contracts/events"
)

// RedisCache guarda o preço corrente de cada cavalo com TTL.
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisCache(c *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: c, TTL: ttl}
}

// key gera a chave Redis do preço corrente de um cavalo numa corrida.
func key(raceID, horseID string) string { return "price:current:" + raceID + ":" + horseID }

// SetCurrent armazena a última observação de preço do cavalo.
func (r *RedisCache) SetCurrent(ctx context.Context, e events.OddsChange) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, key(e.RaceID, e.HorseID), b, r.TTL).Err()
}

// GetCurrent recupera a última observação, se ainda estiver no cache.
func (r *RedisCache) GetCurrent(ctx context.Context, raceID, horseID string, dst *events.OddsChange) (bool, error) {
	b, err := r.Client.Get(ctx, key(raceID, horseID)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dst)
}
