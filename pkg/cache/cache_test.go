package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "kycore/pkg/domain-errors"
)

func unreachable(t *testing.T) *Cache {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 50 * time.Millisecond})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, WithPrefix("kycore"))
}

func TestCache_Key(t *testing.T) {
	assert.Equal(t, "kycore:user:42", unreachable(t).Key("user", "42"))
	assert.Equal(t, "user:42", New(nil).Key("user", "42"))
}

func TestCache_SetValidation(t *testing.T) {
	c := unreachable(t)

	_, err := c.Set(context.Background(), "k", "v", SetOptions{NX: true, XX: true})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeArgumentInvalid))

	_, err = c.Set(context.Background(), "", "v", SetOptions{})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeArgumentMissing))
}

func TestCache_EmptyKeyLists(t *testing.T) {
	c := unreachable(t)
	n, err := c.Del(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = c.Exists(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

type recordingLogger struct{ msgs []string }

func (l *recordingLogger) Warn(_ context.Context, msg string, _ ...any) { l.msgs = append(l.msgs, msg) }

func TestGetOrLoad_StoreUnavailable(t *testing.T) {
	log := &recordingLogger{}
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 50 * time.Millisecond})
	t.Cleanup(func() { _ = client.Close() })
	c := New(client, WithLogger(log))

	calls := 0
	value, err := GetOrLoad(context.Background(), c, "user:1", time.Minute, func(context.Context) (map[string]int, error) {
		calls++
		return map[string]int{"n": 1}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"n": 1}, value)
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"cache read failed", "cache write failed"}, log.msgs)
}

func TestSeconds(t *testing.T) {
	assert.EqualValues(t, 1, seconds(0))
	assert.EqualValues(t, 1, seconds(300*time.Millisecond))
	assert.EqualValues(t, 90, seconds(90*time.Second))
}
