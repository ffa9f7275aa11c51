package game

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T, maxRooms int) (*Registry, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	reg := NewRegistry(maxRooms, testPolicy(), Deps{
		Clock:  clock,
		Tracks: &fakeTracks{},
		Mirror: &recordMirror{},
		Logger: zerolog.Nop(),
	})
	t.Cleanup(reg.CloseAll)
	return reg, clock
}

func TestRegistry_CreateAndGet(t *testing.T) {
	t.Parallel()
	reg, _ := newTestRegistry(t, 10)

	room, hostID, err := reg.Create("Alice", "")
	require.NoError(t, err)
	assert.True(t, ValidRoomCode(room.Code()))
	assert.GreaterOrEqual(t, hostID, 10000)

	assert.Same(t, room, reg.Get(room.Code()))
	assert.Nil(t, reg.Get("ZZZZZZ"))
	assert.Equal(t, 1, reg.Count())
}

func TestRegistry_MaxRooms(t *testing.T) {
	t.Parallel()
	reg, _ := newTestRegistry(t, 2)

	_, _, err := reg.Create("A", "")
	require.NoError(t, err)
	_, _, err = reg.Create("B", "")
	require.NoError(t, err)

	_, _, err = reg.Create("C", "")
	assert.ErrorIs(t, err, ErrTooManyRooms)
}

func TestRegistry_ListPublicHidesPassworded(t *testing.T) {
	t.Parallel()
	reg, clock := newTestRegistry(t, 10)

	first, _, err := reg.Create("Alice", "")
	require.NoError(t, err)
	clock.Advance(time.Second)
	second, _, err := reg.Create("Bob", "")
	require.NoError(t, err)
	clock.Advance(time.Second)
	_, _, err = reg.Create("Carol", "hunter2")
	require.NoError(t, err)

	listed := reg.ListPublic()
	require.Len(t, listed, 2)
	// Newest first.
	assert.Equal(t, second.Code(), listed[0].Code)
	assert.Equal(t, first.Code(), listed[1].Code)
	assert.Equal(t, "Bob", listed[0].HostName)
}

func TestRegistry_PasswordCheck(t *testing.T) {
	t.Parallel()
	reg, _ := newTestRegistry(t, 10)

	open, _, err := reg.Create("Alice", "")
	require.NoError(t, err)
	locked, _, err := reg.Create("Bob", "hunter2")
	require.NoError(t, err)

	assert.True(t, open.CheckPassword(""))
	assert.True(t, open.CheckPassword("whatever"))
	assert.True(t, locked.CheckPassword("hunter2"))
	assert.False(t, locked.CheckPassword("wrong"))
	assert.False(t, locked.CheckPassword(""))

	assert.True(t, locked.Info().HasPassword)
	assert.False(t, open.Info().HasPassword)
}

func TestRegistry_ReapsAbandonedRooms(t *testing.T) {
	t.Parallel()
	reg, clock := newTestRegistry(t, 10)

	abandoned, _, err := reg.Create("Alice", "")
	require.NoError(t, err)

	live, liveHost, err := reg.Create("Bob", "")
	require.NoError(t, err)

	// Bob actually claims his seat, so his room has a live connection.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = live.Join(ctx, JoinRequest{PlayerID: liveHost, Conn: newFakeConn()})
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	removed := reg.Reap(time.Minute)

	assert.Equal(t, 1, removed)
	assert.Nil(t, reg.Get(abandoned.Code()))
	assert.Same(t, live, reg.Get(live.Code()))
}
