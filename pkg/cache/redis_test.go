package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRedisCache runs against a real server when DEBGEMS_TEST_REDIS is set,
// e.g. DEBGEMS_TEST_REDIS=redis://localhost:6379/15.
func TestRedisCache(t *testing.T) {
	url := os.Getenv("DEBGEMS_TEST_REDIS")
	if url == "" {
		t.Skip("DEBGEMS_TEST_REDIS not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, url)
	require.NoError(t, err)
	defer c.Close()

	key := "debgems-test:" + time.Now().Format(time.RFC3339Nano)
	_, hit, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, key, []byte("v"), time.Minute))
	data, hit, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "v", string(data))

	require.NoError(t, c.Delete(ctx, key))
}

func TestNewRedisCacheBadURL(t *testing.T) {
	_, err := NewRedisCache(context.Background(), "not-a-url")
	assert.Error(t, err)
}
