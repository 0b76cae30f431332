package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"agro-advisory/internal/domain/ports/adapter"
)

// WeatherCache fronts the weather provider with a short-TTL cache keyed by
// rounded coordinates. Weather barely moves inside a few minutes and the
// upstream is metered.
type WeatherCache struct {
	client   RedisClient
	upstream adapter.WeatherProvider
	ttl      time.Duration
}

var _ adapter.WeatherProvider = (*WeatherCache)(nil)

func NewWeatherCache(client RedisClient, upstream adapter.WeatherProvider, ttl time.Duration) *WeatherCache {
	return &WeatherCache{client: client, upstream: upstream, ttl: ttl}
}

func (c *WeatherCache) Current(ctx context.Context, lat, lon float64) (*adapter.Weather, error) {
	key := fmt.Sprintf("weather:%.2f:%.2f", lat, lon)

	// A miss or Redis trouble both fall through to the upstream; the cache
	// must never take the weather route down.
	if raw, err := c.client.Get(ctx, key); err == nil {
		var w adapter.Weather
		if json.Unmarshal([]byte(raw), &w) == nil {
			return &w, nil
		}
	}

	w, err := c.upstream.Current(ctx, lat, lon)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(w); err == nil {
		_ = c.client.Set(ctx, key, data, c.ttl)
	}
	return w, nil
}
