package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/huddle-app/huddle/internal/domain"
)

// handleMediaSignal relays offers, answers and candidates verbatim; the
// server never parses SDP or ICE contents.
func (ctl *Controller) handleMediaSignal(c *wsConn, event string, data []byte) {
	type mediaPayload struct {
		To      domain.UserID   `json:"to"`
		From    domain.UserID   `json:"from"`
		Payload json.RawMessage `json:"payload"`
	}
	var p mediaPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "adapters.signal").Str("event", event).Msg("bad media payload")
		return
	}
	if p.To == "" {
		log.Warn().Str("module", "adapters.signal").Str("event", event).Str("conn", string(c.id)).Msg("media signal without recipient")
		return
	}
	ctl.Coord.RelaySignal(event, p.To, p.From, p.Payload)
}

func (ctl *Controller) handleMediaToggle(c *wsConn, data []byte) {
	type togglePayload struct {
		RoomID        domain.RoomID `json:"roomid"`
		UserID        domain.UserID `json:"userid"`
		MicEnabled    bool          `json:"micEnabled"`
		CameraEnabled bool          `json:"cameraEnabled"`
	}
	var p togglePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "adapters.signal").Msg("bad media-toggle payload")
		return
	}
	ctl.Coord.MediaToggle(p.RoomID, p.UserID, p.MicEnabled, p.CameraEnabled)
}
