package blacklist

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKV struct {
	data map[string]int // ключ -> ttl сек
}

func (f *fakeKV) SetNX(_ context.Context, key string, _ []byte, ttlSeconds int) (bool, error) {
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	f.data[key] = ttlSeconds
	return true, nil
}

func (f *fakeKV) Exists(_ context.Context, key string) (bool, error) {
	_, ok := f.data[key]
	return ok, nil
}

func TestRevokeAndCheck(t *testing.T) {
	kv := &fakeKV{data: map[string]int{}}
	s := NewStore(kv)
	ctx := context.Background()

	revoked, err := s.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, s.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))

	revoked, err = s.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	// TTL примерно равен остатку жизни токена
	assert.InDelta(t, 3600, kv.data["jti:jti-1"], 5)
}

func TestRevokeSubSecondTTLRoundsUp(t *testing.T) {
	kv := &fakeKV{data: map[string]int{}}
	s := NewStore(kv)
	ctx := context.Background()

	// токену жить меньше секунды: ключ всё равно должен получить TTL,
	// иначе он останется в redis навсегда
	require.NoError(t, s.Revoke(ctx, "jti-3", time.Now().Add(300*time.Millisecond)))
	assert.GreaterOrEqual(t, kv.data["jti:jti-3"], 1)
	assert.LessOrEqual(t, kv.data["jti:jti-3"], 2)
}

func TestRevokeExpiredTokenStillBlocksBriefly(t *testing.T) {
	kv := &fakeKV{data: map[string]int{}}
	s := NewStore(kv)
	ctx := context.Background()

	require.NoError(t, s.Revoke(ctx, "jti-2", time.Now().Add(-time.Hour)))
	assert.Equal(t, 60, kv.data["jti:jti-2"])
}
