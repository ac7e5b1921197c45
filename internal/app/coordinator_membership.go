package app

import (
	"context"

	"github.com/huddle-app/huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

// JoinRoom registers the connection, consumes any pending approval
// grant, flushes buffered signals, then broadcasts the room snapshot.
// Registration happens before the store read: it is idempotent and a
// failed read leaves presence consistent (the cleanup path handles it).
func (c *Coordinator) JoinRoom(ctx context.Context, conn domain.ConnID, user domain.UserID, room domain.RoomID) {
	c.Presence.Register(conn, user, room)

	if c.Grants.Consume(user, room) {
		log.Info().Str("module", "app.coordinator").Str("user", string(user)).Str("room", string(room)).Msg("join landed within approval grace")
	}
	c.Buffer.Flush(user)

	rec, err := c.Gateway.Snapshot(ctx, room)
	if err != nil {
		log.Warn().Err(err).Str("module", "app.coordinator").Str("room", string(room)).Msg("join-room: snapshot failed")
		return
	}

	update := participantsUpdate(rec, c.Presence.HostActive(room, rec.CreatedBy))
	c.emit.Unicast(conn, EventParticipantsUpdate, update)
	c.broadcastRoom(room, EventParticipantsUpdate, update)

	if rec.Locked {
		waiting := waitingUpdate(rec)
		c.broadcastRoom(room, EventWaitingUpdate, waiting)
		c.broadcastHost(rec.CreatedBy, EventWaitingUpdate, waiting)
	}
	c.emit.Unicast(conn, EventWaitingUpdate, waitingUpdate(rec))
}

// AskJoin puts the user on a locked room's waiting list. Intentionally
// idempotent; clients resend it defensively and the waiting list is
// re-broadcast either way.
func (c *Coordinator) AskJoin(ctx context.Context, user domain.UserID, room domain.RoomID) {
	rec, err := c.Gateway.Snapshot(ctx, room)
	if err != nil {
		log.Warn().Err(err).Str("module", "app.coordinator").Str("room", string(room)).Msg("ask-join: snapshot failed")
		return
	}
	if rec.Locked && !rec.HasWaiting(user) {
		rec, err = c.Gateway.AddWaiting(ctx, room, user)
		if err != nil {
			log.Warn().Err(err).Str("module", "app.coordinator").Str("room", string(room)).Msg("ask-join: add waiting failed")
			return
		}
	}
	waiting := waitingUpdate(rec)
	c.broadcastRoom(room, EventWaitingUpdate, waiting)
	c.broadcastHost(rec.CreatedBy, EventWaitingUpdate, waiting)
	log.Info().Str("module", "app.coordinator").Str("user", string(user)).Str("room", string(room)).Int("waiting", len(rec.WaitingParticipants)).Msg("ask-join")
}

// HostApprove admits or rejects a waiting user. Only the connection
// whose registered identity matches the room's creator may act, and
// only for users currently waiting; anything else is a silent no-op.
func (c *Coordinator) HostApprove(ctx context.Context, conn domain.ConnID, user domain.UserID, room domain.RoomID, approve bool) {
	approver, _, ok := c.Presence.Lookup(conn)
	if !ok {
		return
	}

	rec, err := c.Gateway.Snapshot(ctx, room)
	if err != nil {
		log.Warn().Err(err).Str("module", "app.coordinator").Str("room", string(room)).Msg("host-approve: snapshot failed")
		return
	}
	if rec.CreatedBy != approver {
		log.Warn().Str("module", "app.coordinator").Str("approver", string(approver)).Str("room", string(room)).Msg("host-approve: not the host")
		return
	}
	if !rec.HasWaiting(user) {
		return
	}

	if approve {
		rec, err = c.Gateway.Approve(ctx, room, user)
		if err == nil {
			// Grant only after the store accepted the admission.
			c.Grants.Grant(user, room)
		}
	} else {
		rec, err = c.Gateway.RemoveWaiting(ctx, room, user)
	}
	if err != nil {
		log.Warn().Err(err).Str("module", "app.coordinator").Str("room", string(room)).Msg("host-approve: update failed")
		return
	}

	c.broadcastRoom(room, EventParticipantsUpdate, participantsUpdate(rec, c.Presence.HostActive(room, rec.CreatedBy)))
	waiting := waitingUpdate(rec)
	c.broadcastRoom(room, EventWaitingUpdate, waiting)
	c.broadcastHost(rec.CreatedBy, EventWaitingUpdate, waiting)

	outcome := ApprovalResult{RoomID: room, UserID: user, Approve: approve}
	for _, id := range c.Presence.ConnsOfUser(user) {
		c.emit.Unicast(id, EventParticipantApproved, outcome)
	}
	log.Info().Str("module", "app.coordinator").Str("host", string(approver)).Str("user", string(user)).Str("room", string(room)).Bool("approve", approve).Msg("host-approve")
}

// WaitingList replies with the current waiting list to the requesting
// connection only.
func (c *Coordinator) WaitingList(ctx context.Context, conn domain.ConnID, room domain.RoomID) {
	rec, err := c.Gateway.Snapshot(ctx, room)
	if err != nil {
		return
	}
	c.emit.Unicast(conn, EventWaitingUpdate, waitingUpdate(rec))
}

// Disconnect runs the membership cleanup algorithm for a closing
// connection, whether it closed explicitly (leave-room) or the
// transport dropped.
func (c *Coordinator) Disconnect(ctx context.Context, conn domain.ConnID) {
	user, room, ok := c.Presence.Lookup(conn)
	if !ok {
		return
	}

	rec, err := c.Gateway.Snapshot(ctx, room)
	if err != nil {
		// Room record is gone; drop the presence entry and stop.
		c.Presence.Unregister(conn)
		log.Warn().Err(err).Str("module", "app.coordinator").Str("room", string(room)).Msg("disconnect: snapshot failed")
		return
	}

	// Computed before the connection is removed.
	isHost := rec.CreatedBy == user
	wasParticipant := rec.HasParticipant(user)
	wasWaiting := rec.HasWaiting(user)
	hasOtherConns := len(c.Presence.ConnsOfUserInRoom(user, room, conn)) > 0

	c.Presence.Unregister(conn)

	if wasWaiting && !hasOtherConns {
		updated, err := c.Gateway.RemoveWaiting(ctx, room, user)
		if err == nil {
			rec = updated
			waiting := waitingUpdate(rec)
			c.broadcastRoom(room, EventWaitingUpdate, waiting)
			c.broadcastHost(rec.CreatedBy, EventWaitingUpdate, waiting)
			log.Info().Str("module", "app.coordinator").Str("user", string(user)).Str("room", string(room)).Msg("left the lobby")
		}
	}

	// The grant check keeps this step from undoing a host-approve whose
	// reconnect has not landed yet.
	if wasParticipant && !isHost && !hasOtherConns && !c.Grants.Active(user, room) {
		updated, err := c.Gateway.RemoveParticipant(ctx, room, user)
		if err == nil {
			rec = updated
			log.Info().Str("module", "app.coordinator").Str("user", string(user)).Str("room", string(room)).Msg("removed from participants")
		}
	}

	switch {
	case isHost && rec.Locked && !hasOtherConns:
		// The meeting is over; the host's participant entry stays.
		c.broadcastRoom(room, EventHostLeft, HostLeft{RoomID: room, Message: "Host has left the meeting. The room has been closed."})
		c.broadcastRoom(room, EventParticipantsUpdate, participantsUpdate(rec, false))
		log.Info().Str("module", "app.coordinator").Str("host", string(user)).Str("room", string(room)).Msg("host left locked room, meeting ended")
	case isHost && !rec.Locked && !hasOtherConns:
		c.broadcastRoom(room, EventParticipantsUpdate, participantsUpdate(rec, false))
		log.Info().Str("module", "app.coordinator").Str("host", string(user)).Str("room", string(room)).Msg("host left open room")
	default:
		hostActive := c.Presence.HostActive(room, rec.CreatedBy)
		c.broadcastRoom(room, EventParticipantsUpdate, participantsUpdate(rec, hostActive))
	}
}
