package app

import (
	"sync"

	"github.com/huddle-app/huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

type presenceEntry struct {
	User domain.UserID
	Room domain.RoomID
}

// Presence is the bidirectional connection<->user<->room index. Pure
// in-memory bookkeeping, no I/O. A user may hold several connections at
// once (multi-tab); lookups scan the connection table, which stays
// small and short-lived under a single lock.
type Presence struct {
	mu    sync.RWMutex
	conns map[domain.ConnID]presenceEntry
}

func NewPresence() *Presence {
	return &Presence{conns: make(map[domain.ConnID]presenceEntry)}
}

// Register associates a connection with a user and room. Idempotent;
// overwrites any prior association for that connection.
func (p *Presence) Register(id domain.ConnID, user domain.UserID, room domain.RoomID) {
	p.mu.Lock()
	p.conns[id] = presenceEntry{User: user, Room: room}
	p.mu.Unlock()
	log.Info().Str("module", "app.presence").Str("conn", string(id)).Str("user", string(user)).Str("room", string(room)).Msg("registered")
}

// Unregister removes the connection and returns the association it held.
func (p *Presence) Unregister(id domain.ConnID) (domain.UserID, domain.RoomID, bool) {
	p.mu.Lock()
	e, ok := p.conns[id]
	delete(p.conns, id)
	p.mu.Unlock()
	if !ok {
		return "", "", false
	}
	log.Info().Str("module", "app.presence").Str("conn", string(id)).Str("user", string(e.User)).Msg("unregistered")
	return e.User, e.Room, true
}

func (p *Presence) Lookup(id domain.ConnID) (domain.UserID, domain.RoomID, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	e, ok := p.conns[id]
	return e.User, e.Room, ok
}

// ConnsOfUser returns every live connection of a user across all rooms.
func (p *Presence) ConnsOfUser(user domain.UserID) []domain.ConnID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []domain.ConnID
	for id, e := range p.conns {
		if e.User == user {
			out = append(out, id)
		}
	}
	return out
}

// ConnsOfUserInRoom returns the user's connections joined to one room,
// skipping any connection listed in except.
func (p *Presence) ConnsOfUserInRoom(user domain.UserID, room domain.RoomID, except ...domain.ConnID) []domain.ConnID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []domain.ConnID
	for id, e := range p.conns {
		if e.User != user || e.Room != room {
			continue
		}
		if excluded(id, except) {
			continue
		}
		out = append(out, id)
	}
	return out
}

func (p *Presence) ConnsInRoom(room domain.RoomID) []domain.ConnID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []domain.ConnID
	for id, e := range p.conns {
		if e.Room == room {
			out = append(out, id)
		}
	}
	return out
}

// ConnsInRoomExcept returns the room's connections not owned by user.
func (p *Presence) ConnsInRoomExcept(room domain.RoomID, user domain.UserID) []domain.ConnID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []domain.ConnID
	for id, e := range p.conns {
		if e.Room == room && e.User != user {
			out = append(out, id)
		}
	}
	return out
}

// HostActive reports whether host holds at least one live connection
// currently joined to room.
func (p *Presence) HostActive(room domain.RoomID, host domain.UserID) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, e := range p.conns {
		if e.User == host && e.Room == room {
			return true
		}
	}
	return false
}

func excluded(id domain.ConnID, except []domain.ConnID) bool {
	for _, x := range except {
		if id == x {
			return true
		}
	}
	return false
}
