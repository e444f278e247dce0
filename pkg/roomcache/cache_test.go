package roomcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func brightness(v float64) *float64 { return &v }

func TestCacheSetAndGet(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	defer c.Close()

	c.Set("room-1", RoomState{On: true, Brightness: brightness(42.3)})
	c.Wait()

	got, ok := c.Get("room-1")
	require.True(t, ok)
	assert.True(t, got.On)
	require.NotNil(t, got.Brightness)
	assert.Equal(t, 42.3, *got.Brightness)
}

func TestCacheMissIsNotAuthoritativeOff(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	defer c.Close()

	_, ok := c.Get("unknown-room")
	assert.False(t, ok)
}

func TestCacheSetReplacesWholeEntry(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	defer c.Close()

	c.Set("room-1", RoomState{On: true, Brightness: brightness(50)})
	c.Wait()
	c.Set("room-1", RoomState{On: false})
	c.Wait()

	got, ok := c.Get("room-1")
	require.True(t, ok)
	assert.False(t, got.On)
	assert.Nil(t, got.Brightness)
}

func TestCacheExpiresAfterTTL(t *testing.T) {
	c, err := NewWithTTL(20 * time.Millisecond)
	require.NoError(t, err)
	defer c.Close()

	c.Set("room-1", RoomState{On: false})
	c.Wait()

	_, ok := c.Get("room-1")
	require.True(t, ok)

	time.Sleep(80 * time.Millisecond)

	_, ok = c.Get("room-1")
	assert.False(t, ok)
}
