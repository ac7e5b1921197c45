package signal

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/huddle-app/huddle/internal/domain"
)

type joinPayload struct {
	RoomID domain.RoomID `json:"roomid"`
	UserID domain.UserID `json:"userid"`
}

func (ctl *Controller) handleJoinRoom(ctx context.Context, c *wsConn, data []byte) {
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "adapters.signal").Msg("bad join-room payload")
		return
	}
	if domain.ValidateUserID(p.UserID) != nil || domain.ValidateRoomID(p.RoomID) != nil {
		log.Warn().Str("module", "adapters.signal").Str("conn", string(c.id)).Msg("join-room: invalid ids")
		return
	}
	ctl.Coord.JoinRoom(ctx, c.id, p.UserID, p.RoomID)
}

func (ctl *Controller) handleAskJoin(ctx context.Context, c *wsConn, data []byte) {
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "adapters.signal").Msg("bad ask-join payload")
		return
	}
	if domain.ValidateUserID(p.UserID) != nil || domain.ValidateRoomID(p.RoomID) != nil {
		return
	}
	ctl.Coord.AskJoin(ctx, p.UserID, p.RoomID)
}

func (ctl *Controller) handleHostApprove(ctx context.Context, c *wsConn, data []byte) {
	type approvePayload struct {
		RoomID  domain.RoomID `json:"roomid"`
		UserID  domain.UserID `json:"userid"`
		Approve bool          `json:"approve"`
	}
	var p approvePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "adapters.signal").Msg("bad host-approve payload")
		return
	}
	ctl.Coord.HostApprove(ctx, c.id, p.UserID, p.RoomID, p.Approve)
}

func (ctl *Controller) handleWaitingList(ctx context.Context, c *wsConn, data []byte) {
	type waitingPayload struct {
		RoomID domain.RoomID `json:"roomid"`
	}
	var p waitingPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "adapters.signal").Msg("bad get-waiting-list payload")
		return
	}
	ctl.Coord.WaitingList(ctx, c.id, p.RoomID)
}
