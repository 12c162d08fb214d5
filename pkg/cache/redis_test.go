package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = rc.Close() })
	return rc, mr
}

type payload struct {
	Code string `json:"code"`
	Rate string `json:"rate"`
}

func TestJSONRoundTripAndExpiry(t *testing.T) {
	rc, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, rc.SetJSON(ctx, "k", payload{Code: "PERSONAL", Rate: "12"}, time.Minute))

	var got payload
	require.NoError(t, rc.GetJSON(ctx, "k", &got))
	assert.Equal(t, "PERSONAL", got.Code)

	mr.FastForward(2 * time.Minute)
	assert.ErrorIs(t, rc.GetJSON(ctx, "k", &got), ErrMiss)
}

func TestDelete(t *testing.T) {
	rc, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, rc.SetJSON(ctx, "a", payload{}, 0))
	require.NoError(t, rc.Delete(ctx, "a"))
	assert.False(t, mr.Exists("a"))
	assert.NoError(t, rc.Delete(ctx))
}

func TestGetJSON_CorruptValue(t *testing.T) {
	rc, mr := newTestCache(t)
	require.NoError(t, mr.Set("bad", "{not json"))

	var got payload
	err := rc.GetJSON(context.Background(), "bad", &got)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)
}
