// Package domain contains entity types without logic, just meta-data
// and the small set-level helpers the room record needs.
package domain

type (
	RoomID string
	UserID string
	ConnID string
)

// Room is the persisted room record. The coordinator holds no copy of
// truth; it always reads and mutates through the store gateway.
// CreatedBy is immutable for the record's lifetime and is never removed
// from Participants by the coordinator.
type Room struct {
	RoomID              RoomID   `bson:"roomid" json:"roomid"`
	CreatedBy           UserID   `bson:"createdBy" json:"createdBy"`
	Locked              bool     `bson:"locked" json:"locked"`
	Participants        []UserID `bson:"participants" json:"participants"`
	WaitingParticipants []UserID `bson:"waitingParticipants" json:"waitingParticipants"`
}

func (r *Room) HasParticipant(u UserID) bool { return contains(r.Participants, u) }
func (r *Room) HasWaiting(u UserID) bool     { return contains(r.WaitingParticipants, u) }

// AddParticipant appends u unless already present. Reports whether the
// record changed.
func (r *Room) AddParticipant(u UserID) bool {
	if contains(r.Participants, u) {
		return false
	}
	r.Participants = append(r.Participants, u)
	return true
}

func (r *Room) RemoveParticipant(u UserID) bool {
	var changed bool
	r.Participants, changed = remove(r.Participants, u)
	return changed
}

func (r *Room) AddWaiting(u UserID) bool {
	if contains(r.WaitingParticipants, u) {
		return false
	}
	r.WaitingParticipants = append(r.WaitingParticipants, u)
	return true
}

func (r *Room) RemoveWaiting(u UserID) bool {
	var changed bool
	r.WaitingParticipants, changed = remove(r.WaitingParticipants, u)
	return changed
}

// Clone returns a deep copy so callers can mutate without sharing
// backing arrays with the store.
func (r *Room) Clone() *Room {
	c := *r
	c.Participants = append([]UserID(nil), r.Participants...)
	c.WaitingParticipants = append([]UserID(nil), r.WaitingParticipants...)
	return &c
}

func contains(s []UserID, u UserID) bool {
	for _, v := range s {
		if v == u {
			return true
		}
	}
	return false
}

func remove(s []UserID, u UserID) ([]UserID, bool) {
	out := s[:0]
	changed := false
	for _, v := range s {
		if v == u {
			changed = true
			continue
		}
		out = append(out, v)
	}
	return out, changed
}
