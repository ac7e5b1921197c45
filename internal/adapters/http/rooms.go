package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/huddle-app/huddle/internal/app"
	"github.com/huddle-app/huddle/internal/domain"
	"github.com/huddle-app/huddle/internal/store"
)

// RoomsHandler exposes the thin REST surface over the room records.
// Every mutation goes through the same gateway the coordinator uses, so
// REST and socket traffic serialize on the same per-room locks.
type RoomsHandler struct {
	Gateway *app.Gateway
	Grants  *app.GrantTable
}

type createRoomRequest struct {
	UserID domain.UserID `json:"userid" binding:"required"`
	Locked bool          `json:"locked"`
}

func (h *RoomsHandler) Create(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "missing userid"})
		return
	}
	if err := domain.ValidateUserID(req.UserID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	room := &domain.Room{
		RoomID:       domain.RoomID(uuid.NewString()[:8]),
		CreatedBy:    req.UserID,
		Locked:       req.Locked,
		Participants: []domain.UserID{req.UserID},
	}
	if err := h.Gateway.Create(c.Request.Context(), room); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("create room")
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Room created", "room": room})
}

func (h *RoomsHandler) List(c *gin.Context) {
	rooms, err := h.Gateway.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

func (h *RoomsHandler) Get(c *gin.Context) {
	room, err := h.Gateway.Snapshot(c.Request.Context(), domain.RoomID(c.Param("roomid")))
	if errors.Is(err, store.ErrRoomNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Room not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": room})
}

type joinRoomRequest struct {
	UserID domain.UserID `json:"userid" binding:"required"`
}

// Join admits directly when the room is unlocked, otherwise places the
// caller on the waiting list.
func (h *RoomsHandler) Join(c *gin.Context) {
	var req joinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "missing userid"})
		return
	}
	roomID := domain.RoomID(c.Param("roomid"))

	room, err := h.Gateway.Snapshot(c.Request.Context(), roomID)
	if errors.Is(err, store.ErrRoomNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Room not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	if room.HasParticipant(req.UserID) {
		c.JSON(http.StatusOK, gin.H{"message": "Already a participant", "room": room})
		return
	}
	if !room.Locked {
		room, err = h.Gateway.AddParticipant(c.Request.Context(), roomID, req.UserID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Joined room", "room": room})
		return
	}

	room, err = h.Gateway.AddWaiting(c.Request.Context(), roomID, req.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Requested to join. Wait for approval.", "waiting": true, "room": room})
}

type approveRequest struct {
	AdminID domain.UserID `json:"adminid" binding:"required"`
	UserID  domain.UserID `json:"userid" binding:"required"`
	Approve bool          `json:"approve"`
}

// Approve mirrors the socket-side host-approve, including the approval
// grant, so a REST approval survives the same reconnect race.
func (h *RoomsHandler) Approve(c *gin.Context) {
	var req approveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "missing fields"})
		return
	}
	roomID := domain.RoomID(c.Param("roomid"))

	room, err := h.Gateway.Snapshot(c.Request.Context(), roomID)
	if errors.Is(err, store.ErrRoomNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Room not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	if room.CreatedBy != req.AdminID {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not room admin"})
		return
	}
	if !room.HasWaiting(req.UserID) {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not waiting"})
		return
	}

	if req.Approve {
		room, err = h.Gateway.Approve(c.Request.Context(), roomID, req.UserID)
		if err == nil {
			h.Grants.Grant(req.UserID, roomID)
		}
	} else {
		room, err = h.Gateway.RemoveWaiting(c.Request.Context(), roomID, req.UserID)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	msg := "User rejected"
	if req.Approve {
		msg = "User approved"
	}
	c.JSON(http.StatusOK, gin.H{"message": msg, "room": room})
}
