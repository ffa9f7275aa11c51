package game

import "time"

// Conn is the transport side of one live websocket, as seen by the room.
// Send must never block: it enqueues on the connection's write buffer and
// reports false when the buffer is full or the connection is gone, letting
// the room prune dead connections during fan-out.
type Conn interface {
	ID() string
	Send(data []byte) bool
	Close(reason string)
}

// Player is one seat in a room. The id is a five-digit number unique within
// the room for its lifetime; it survives disconnects for the grace window so
// score and host status persist across a reconnect.
type Player struct {
	ID       int
	Name     string
	Ready    bool
	JoinedAt time.Time

	conn       Conn  // nil while detached
	graceTimer Timer // pending removal while detached
}

// Connected reports whether the player has a live transport attached.
func (p *Player) Connected() bool { return p.conn != nil }

func (p *Player) send(data []byte) bool {
	if p.conn == nil {
		return false
	}
	return p.conn.Send(data)
}

func (p *Player) stopGraceTimer() {
	if p.graceTimer != nil {
		p.graceTimer.Stop()
		p.graceTimer = nil
	}
}
