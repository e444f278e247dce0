package roomcache

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/dkulla01/caseta-listener/pkg/topology"
)

// DefaultTTL is the expiry applied to every entry, counted from its last
// write or read hit.
const DefaultTTL = 120 * time.Second

// Capacity bounds the number of entries the cache holds at once.
const Capacity = 1000

// RoomState is a snapshot of what the dispatcher last believed about one
// room's lighting. Invariant: On implies Brightness is non-nil; !On implies
// Brightness is nil.
type RoomState struct {
	ActiveScene *topology.Scene
	Brightness  *float64
	On          bool
}

// Cache is a thread-safe room_id -> RoomState mapping with bounded capacity,
// backed by ristretto. Each write or read hit restarts an entry's TTL, so an
// entry expires only after DefaultTTL without being written or read; there
// is no separate bound on an entry's total age.
type Cache struct {
	store *ristretto.Cache[string, RoomState]
	ttl   time.Duration
}

// New builds a Cache with the spec's default TTL (120s) and capacity (1000).
func New() (*Cache, error) {
	return NewWithTTL(DefaultTTL)
}

// NewWithTTL builds a Cache with a custom TTL, for tests that need faster
// expiry than the 120s default.
func NewWithTTL(ttl time.Duration) (*Cache, error) {
	store, err := ristretto.NewCache(&ristretto.Config[string, RoomState]{
		NumCounters:        Capacity * 10,
		MaxCost:            Capacity,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("roomcache: failed to create cache: %w", err)
	}
	return &Cache{store: store, ttl: ttl}, nil
}

// Get returns a value-copy snapshot of the cached state for roomID, and
// refreshes its TTL, so expiry counts from the last read or write. ok is
// false when the room is not cached (unknown, not "known off").
func (c *Cache) Get(roomID string) (state RoomState, ok bool) {
	state, ok = c.store.Get(roomID)
	if ok {
		c.store.SetWithTTL(roomID, state, 1, c.ttl)
	}
	return state, ok
}

// Set inserts or replaces the whole entry for roomID. Partial updates are
// the caller's responsibility (read-modify-write).
func (c *Cache) Set(roomID string, state RoomState) {
	c.store.SetWithTTL(roomID, state, 1, c.ttl)
}

// Wait blocks until all preceding Set calls have been applied. Ristretto
// applies writes asynchronously through a buffered channel; callers that
// need a just-written value to be immediately visible (mainly tests) should
// call Wait before the next Get.
func (c *Cache) Wait() {
	c.store.Wait()
}

// Close releases the cache's background resources.
func (c *Cache) Close() {
	c.store.Close()
}
