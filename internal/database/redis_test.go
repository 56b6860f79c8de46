package database

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestRedisClient_HealthCheck(t *testing.T) {
	redisServer := miniredis.RunT(t)

	client := &RedisClient{Client: redis.NewClient(&redis.Options{
		Addr: redisServer.Addr(),
	})}

	assert.NoError(t, client.HealthCheck(context.Background()))

	redisServer.Close()
	assert.Error(t, client.HealthCheck(context.Background()))
}
