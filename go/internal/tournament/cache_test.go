package tournament

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/livequiz/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_GetPut(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cache := NewCache(time.Minute, clock)
	tour := &models.Tournament{ID: uuid.New()}

	_, ok := cache.Get(tour.ID)
	require.False(t, ok)

	cache.Put(tour)
	got, ok := cache.Get(tour.ID)
	require.True(t, ok)
	assert.Same(t, tour, got)
}

func TestCache_Expires(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cache := NewCache(time.Minute, clock)
	tour := &models.Tournament{ID: uuid.New()}
	cache.Put(tour)

	clock.Advance(59 * time.Second)
	_, ok := cache.Get(tour.ID)
	assert.True(t, ok)

	clock.Advance(time.Second)
	_, ok = cache.Get(tour.ID)
	assert.False(t, ok)
}

func TestCache_PutEvictsExpired(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cache := NewCache(time.Minute, clock)
	cache.Put(&models.Tournament{ID: uuid.New()})

	clock.Advance(2 * time.Minute)
	cache.Put(&models.Tournament{ID: uuid.New()})

	assert.Equal(t, 1, cache.Len())
}

func TestCache_InvalidateAndClear(t *testing.T) {
	cache := NewCache(time.Minute, clockwork.NewFakeClock())
	a := &models.Tournament{ID: uuid.New()}
	b := &models.Tournament{ID: uuid.New()}
	cache.Put(a)
	cache.Put(b)

	cache.Invalidate(a.ID)
	_, ok := cache.Get(a.ID)
	assert.False(t, ok)
	_, ok = cache.Get(b.ID)
	assert.True(t, ok)

	cache.Clear()
	assert.Equal(t, 0, cache.Len())
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(0, clockwork.NewFakeClock())
	tour := &models.Tournament{ID: uuid.New()}

	cache.Put(tour)
	_, ok := cache.Get(tour.ID)

	assert.False(t, ok)
	assert.Equal(t, 0, cache.Len())
}

func TestCache_PutIfCurrent(t *testing.T) {
	cache := NewCache(time.Minute, clockwork.NewFakeClock())
	tour := &models.Tournament{ID: uuid.New()}

	generation := cache.Generation()
	cache.Invalidate(tour.ID)
	assert.False(t, cache.PutIfCurrent(tour, generation))
	_, ok := cache.Get(tour.ID)
	assert.False(t, ok)

	assert.True(t, cache.PutIfCurrent(tour, cache.Generation()))
	_, ok = cache.Get(tour.ID)
	assert.True(t, ok)

	generation = cache.Generation()
	cache.Clear()
	assert.False(t, cache.PutIfCurrent(tour, generation))
}
