package game

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// --- Clock ---

type fakeTimer struct {
	when    time.Time
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.stopped = true
	return !t.fired
}

// fakeClock is a virtual clock: time moves only through Advance, which fires
// due timers in order.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{when: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	due := []*fakeTimer{}
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.when.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	sort.SliceStable(due, func(i, j int) bool { return due[i].when.Before(due[j].when) })
	c.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}

// --- Conn ---

type fakeConn struct {
	mu     sync.Mutex
	id     string
	sent   [][]byte
	closed bool
	reason string
}

var connSeq int

func newFakeConn() *fakeConn {
	connSeq++
	return &fakeConn{id: fmt.Sprintf("conn-%d", connSeq)}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Send(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.sent = append(c.sent, data)
	return true
}

func (c *fakeConn) Close(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.reason = reason
}

// messages decodes everything sent so far into generic maps.
func (c *fakeConn) messages() []map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]map[string]any, 0, len(c.sent))
	for _, raw := range c.sent {
		var m map[string]any
		if json.Unmarshal(raw, &m) == nil {
			out = append(out, m)
		}
	}
	return out
}

// lastOf returns the most recent message with the given action, or nil.
func (c *fakeConn) lastOf(action string) map[string]any {
	msgs := c.messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i]["action"] == action {
			return msgs[i]
		}
	}
	return nil
}

func (c *fakeConn) countOf(action string) int {
	n := 0
	for _, m := range c.messages() {
		if m["action"] == action {
			n++
		}
	}
	return n
}

// --- TrackProvider ---

type trackResult struct {
	track Track
	err   error
}

// fakeTracks pops queued results; an empty queue serves a fixed track.
type fakeTracks struct {
	mu    sync.Mutex
	queue []trackResult
	calls int
}

func (f *fakeTracks) push(t Track, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, trackResult{track: t, err: err})
}

func (f *fakeTracks) QuizTrack(ctx context.Context) (Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.queue) == 0 {
		return Track{Title: "Tum Hi Ho", Answer: "Aashiqui 2", PreviewURL: "https://cdn.example/clip.mp3", ImageURL: "https://cdn.example/art.jpg"}, nil
	}
	res := f.queue[0]
	f.queue = f.queue[1:]
	return res.track, res.err
}

// --- ScoreMirror ---

type recordMirror struct {
	mu        sync.Mutex
	codes     []string
	standings [][]Standing
}

func (m *recordMirror) Record(roomCode string, standings []Standing) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes = append(m.codes, roomCode)
	m.standings = append(m.standings, standings)
}

// --- room harness ---

type roomHarness struct {
	t      *testing.T
	room   *Room
	clock  *fakeClock
	tracks *fakeTracks
	mirror *recordMirror
	hostID int
}

// newHarness builds a room without starting its goroutine: tests apply
// commands synchronously through handle, so every assertion sees a settled
// state with no sleeps or races.
func newHarness(t *testing.T, policy Policy) *roomHarness {
	t.Helper()
	clock := newFakeClock()
	tracks := &fakeTracks{}
	mirror := &recordMirror{}
	room, hostID := newRoom("ABC123", "Alice", "", policy, Deps{
		Clock:  clock,
		Tracks: tracks,
		Mirror: mirror,
		Logger: zerolog.Nop(),
	})
	return &roomHarness{t: t, room: room, clock: clock, tracks: tracks, mirror: mirror, hostID: hostID}
}

func testPolicy() Policy {
	return Policy{
		MaxPlayers:     10,
		RevealDuration: 10 * time.Second,
		ReconnectGrace: 60 * time.Second,
	}
}

// drain applies every command already queued (timer firings, fetch results).
func (h *roomHarness) drain() {
	h.t.Helper()
	for {
		select {
		case cmd := <-h.room.inbox:
			h.room.handle(cmd)
		default:
			return
		}
	}
}

// awaitOne blocks for the next queued command, for results produced by the
// asynchronous track fetch.
func (h *roomHarness) awaitOne() {
	h.t.Helper()
	select {
	case cmd := <-h.room.inbox:
		h.room.handle(cmd)
	case <-time.After(2 * time.Second):
		h.t.Fatal("timed out waiting for a queued command")
	}
}

func (h *roomHarness) join(name string, playerID int) (*fakeConn, JoinResult, error) {
	h.t.Helper()
	conn := newFakeConn()
	res, err := h.room.handleJoin(JoinRequest{Name: name, PlayerID: playerID, Conn: conn})
	return conn, res, err
}

func (h *roomHarness) mustJoin(name string, playerID int) (*fakeConn, JoinResult) {
	h.t.Helper()
	conn, res, err := h.join(name, playerID)
	if err != nil {
		h.t.Fatalf("join %s: %v", name, err)
	}
	return conn, res
}

// startGame kicks off the game and applies the first track result.
func (h *roomHarness) startGame() {
	h.t.Helper()
	h.room.handleAction(h.hostID, StartGameAction{})
	h.awaitOne()
}
