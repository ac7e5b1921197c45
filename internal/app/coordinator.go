package app

import (
	"github.com/huddle-app/huddle/internal/domain"
)

// Coordinator drives the membership state machine and fans resulting
// room snapshots out to live connections. It owns no transport; the WS
// adapter feeds it connection events and receives notifications through
// the Emitter. Constructed once at process start and passed in
// explicitly, no package-level state.
type Coordinator struct {
	Presence *Presence
	Buffer   *SignalBuffer
	Grants   *GrantTable
	Gateway  *Gateway

	emit Emitter
}

func NewCoordinator(presence *Presence, gateway *Gateway, grants *GrantTable, buffer *SignalBuffer, emit Emitter) *Coordinator {
	return &Coordinator{
		Presence: presence,
		Buffer:   buffer,
		Grants:   grants,
		Gateway:  gateway,
		emit:     emit,
	}
}

// Close tears down the background timers owned by the coordinator's
// state bundle.
func (c *Coordinator) Close() {
	c.Buffer.Close()
	c.Grants.Close()
}

func (c *Coordinator) broadcastRoom(room domain.RoomID, event string, data any) {
	for _, id := range c.Presence.ConnsInRoom(room) {
		c.emit.Unicast(id, event, data)
	}
}

// broadcastHost sends directly to every connection of the host, joined
// to the room or not; the host may still be on the lobby channel.
func (c *Coordinator) broadcastHost(host domain.UserID, event string, data any) {
	for _, id := range c.Presence.ConnsOfUser(host) {
		c.emit.Unicast(id, event, data)
	}
}
