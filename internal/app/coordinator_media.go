package app

import (
	"encoding/json"

	"github.com/huddle-app/huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

// RelaySignal forwards an offer, answer or ICE candidate to the
// recipient through the signal buffer. The payload is opaque; the
// coordinator is a dumb, typed relay.
func (c *Coordinator) RelaySignal(event string, to, from domain.UserID, payload json.RawMessage) {
	c.Buffer.Relay(to, event, SignalPayload{From: from, Payload: payload})
}

// MediaToggle broadcasts a mic/camera state hint to every connection in
// the room except the sender's own. Never buffered; a missed delivery
// self-corrects on the next toggle or room update.
func (c *Coordinator) MediaToggle(room domain.RoomID, user domain.UserID, micEnabled, cameraEnabled bool) {
	conns := c.Presence.ConnsInRoomExcept(room, user)
	if len(conns) == 0 {
		return
	}
	log.Debug().Str("module", "app.coordinator").Str("user", string(user)).Str("room", string(room)).Int("peers", len(conns)).Msg("media-toggle")
	toggle := MediaToggle{UserID: user, MicEnabled: micEnabled, CameraEnabled: cameraEnabled}
	for _, id := range conns {
		c.emit.Unicast(id, EventMediaToggle, toggle)
	}
}
