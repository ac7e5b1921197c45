package app

import (
	"encoding/json"

	"github.com/huddle-app/huddle/internal/domain"
)

// Outbound event names.
const (
	EventParticipantsUpdate  = "participants-update"
	EventWaitingUpdate       = "waiting-update"
	EventHostLeft            = "host-left"
	EventParticipantApproved = "participant-approved"
	EventMediaOffer          = "media-offer"
	EventMediaAnswer         = "media-answer"
	EventMediaCandidate      = "media-candidate"
	EventMediaToggle         = "media-toggle"
)

// Emitter delivers one event to a single live connection. The WS
// adapter implements it; delivery is best-effort and never blocks.
type Emitter interface {
	Unicast(id domain.ConnID, event string, data any)
}

type ParticipantsUpdate struct {
	Participants []domain.UserID `json:"participants"`
	CreatedBy    domain.UserID   `json:"createdBy"`
	HostActive   bool            `json:"hostActive"`
}

type WaitingUpdate struct {
	WaitingParticipants []domain.UserID `json:"waitingParticipants"`
}

type HostLeft struct {
	RoomID  domain.RoomID `json:"roomid"`
	Message string        `json:"message"`
}

type ApprovalResult struct {
	RoomID  domain.RoomID `json:"roomid"`
	UserID  domain.UserID `json:"userid"`
	Approve bool          `json:"approve"`
}

// SignalPayload wraps a relayed signaling message. The payload is never
// inspected, only forwarded.
type SignalPayload struct {
	From    domain.UserID   `json:"from"`
	Payload json.RawMessage `json:"payload"`
}

type MediaToggle struct {
	UserID        domain.UserID `json:"userid"`
	MicEnabled    bool          `json:"micEnabled"`
	CameraEnabled bool          `json:"cameraEnabled"`
}

func waitingUpdate(room *domain.Room) WaitingUpdate {
	w := room.WaitingParticipants
	if w == nil {
		w = []domain.UserID{}
	}
	return WaitingUpdate{WaitingParticipants: w}
}

func participantsUpdate(room *domain.Room, hostActive bool) ParticipantsUpdate {
	p := room.Participants
	if p == nil {
		p = []domain.UserID{}
	}
	return ParticipantsUpdate{Participants: p, CreatedBy: room.CreatedBy, HostActive: hostActive}
}
