
package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGetClear(t *testing.T) {
	s := New(time.Minute)

	_, ok := s.Get(1)
	assert.False(t, ok)

	s.Set(1, Entry{State: StateAwaitHashtags, ContentKind: "quote"})
	e, ok := s.Get(1)
	require.True(t, ok)
	assert.Equal(t, StateAwaitHashtags, e.State)
	assert.Equal(t, "quote", e.ContentKind)

	// other users are unaffected
	_, ok = s.Get(2)
	assert.False(t, ok)

	s.Clear(1)
	_, ok = s.Get(1)
	assert.False(t, ok)
}

func TestEntriesExpire(t *testing.T) {
	s := New(time.Minute)
	clock := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	s.Set(7, Entry{State: StateAwaitBookTitle, BookID: 3})

	clock = clock.Add(59 * time.Second)
	e, ok := s.Get(7)
	require.True(t, ok)
	assert.EqualValues(t, 3, e.BookID)

	clock = clock.Add(2 * time.Second)
	_, ok = s.Get(7)
	assert.False(t, ok, "entry past its ttl must be dropped")

	// and the drop is permanent even if the clock rolls back
	clock = clock.Add(-time.Minute)
	_, ok = s.Get(7)
	assert.False(t, ok)
}

func TestZeroTTLUsesDefault(t *testing.T) {
	s := New(0)
	assert.Equal(t, DefaultTTL, s.ttl)
}

func TestSetRefreshesDeadline(t *testing.T) {
	s := New(time.Minute)
	clock := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	s.Set(9, Entry{State: StateAwaitManualText})
	clock = clock.Add(50 * time.Second)
	s.Set(9, Entry{State: StateAwaitManualFile})

	clock = clock.Add(50 * time.Second)
	e, ok := s.Get(9)
	require.True(t, ok)
	assert.Equal(t, StateAwaitManualFile, e.State)
}
