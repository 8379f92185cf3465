package replay

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_ClaimOncePerTTL(t *testing.T) {
	now := time.Unix(1700000000, 0)
	m := NewMemory(0)
	m.Now = func() time.Time { return now }
	ctx := context.Background()

	ok, err := m.Claim(ctx, "sig-a", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.Claim(ctx, "sig-a", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	now = now.Add(time.Minute)
	ok, err = m.Claim(ctx, "sig-a", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "expired claim should be reclaimable")
}

func TestMemory_EmptyKey(t *testing.T) {
	_, err := NewMemory(0).Claim(context.Background(), "  ", time.Minute)
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestMemory_EvictsOldestAtCapacity(t *testing.T) {
	now := time.Unix(1700000000, 0)
	m := NewMemory(2)
	m.Now = func() time.Time { return now }
	ctx := context.Background()

	_, _ = m.Claim(ctx, "a", time.Minute)
	_, _ = m.Claim(ctx, "b", 2*time.Minute)
	_, _ = m.Claim(ctx, "c", 3*time.Minute)
	assert.Equal(t, 2, m.Len())

	ok, _ := m.Claim(ctx, "a", time.Minute)
	assert.True(t, ok, "oldest entry should have been evicted")
}

func TestMemory_ConcurrentClaimsWinOnce(t *testing.T) {
	m := NewMemory(0)
	ctx := context.Background()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := m.Claim(ctx, "same", time.Minute)
			if err == nil && ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestMemory_ReleaseAllowsReclaim(t *testing.T) {
	m := NewMemory(0)
	ctx := context.Background()

	ok, err := m.Claim(ctx, "sig-r", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, m.Release(ctx, "sig-r"))
	ok, err = m.Claim(ctx, "sig-r", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.NoError(t, m.Release(ctx, "never-claimed"))
	assert.ErrorIs(t, m.Release(ctx, ""), ErrEmptyKey)
}
