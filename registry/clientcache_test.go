package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientCache_SetGetRoundtrip(t *testing.T) {
	c := NewClientCache(2, time.Minute)
	c.Set("a", 1)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestClientCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewClientCache(2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	// touch "a" so "b" becomes the least-recently-used entry.
	c.Get("a")
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok, "b should have been evicted")

	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestClientCache_TTLExpiryIsLazy(t *testing.T) {
	c := NewClientCache(10, 10*time.Millisecond)
	c.Set("a", 1)
	time.Sleep(20 * time.Millisecond)
	_, ok := c.Get("a")
	assert.False(t, ok, "entry should have expired")
}

func TestClientCache_SetExistingKeyRefreshesTTLAndPromotes(t *testing.T) {
	c := NewClientCache(2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("a", 11) // re-set "a": should promote it, not evict it later

	c.Set("c", 3) // now "b" is least-recently-used and should be evicted
	_, ok := c.Get("b")
	assert.False(t, ok)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 11, v)
}
