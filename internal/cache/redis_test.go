package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestRedisCache_UnreachableServerReportsErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 200 * time.Millisecond,
	})
	c := NewRedisCacheWithClient(client, time.Minute)
	defer c.Close()

	ctx := context.Background()
	flights, err := c.GetFlights(ctx)
	assert.Error(t, err)
	assert.Nil(t, flights)

	assert.Error(t, c.SetFlights(ctx, nil))
	assert.Error(t, c.InvalidateFlights(ctx))
	assert.Error(t, c.Ping(ctx))
}
