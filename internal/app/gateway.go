package app

import (
	"context"
	"sync"

	"github.com/huddle-app/huddle/internal/domain"
	"github.com/huddle-app/huddle/internal/store"
)

// Gateway is the only component that reads or writes the room record
// store. Every mutation is a load-modify-save under a per-room lock so
// concurrent events on the same room cannot lose updates; operations on
// different rooms run in parallel. All mutations are idempotent at the
// set level, which tolerates duplicate events from retried client
// requests and multi-tab double-submits.
type Gateway struct {
	store store.RoomStore

	mu    sync.Mutex
	locks map[domain.RoomID]*sync.Mutex
}

func NewGateway(s store.RoomStore) *Gateway {
	return &Gateway{store: s, locks: make(map[domain.RoomID]*sync.Mutex)}
}

func (g *Gateway) roomLock(id domain.RoomID) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	l, ok := g.locks[id]
	if !ok {
		l = &sync.Mutex{}
		g.locks[id] = l
	}
	return l
}

// Snapshot returns the current record without mutation.
func (g *Gateway) Snapshot(ctx context.Context, id domain.RoomID) (*domain.Room, error) {
	return g.store.Find(ctx, id)
}

func (g *Gateway) AddParticipant(ctx context.Context, id domain.RoomID, user domain.UserID) (*domain.Room, error) {
	return g.update(ctx, id, func(r *domain.Room) bool { return r.AddParticipant(user) })
}

func (g *Gateway) RemoveParticipant(ctx context.Context, id domain.RoomID, user domain.UserID) (*domain.Room, error) {
	return g.update(ctx, id, func(r *domain.Room) bool { return r.RemoveParticipant(user) })
}

func (g *Gateway) AddWaiting(ctx context.Context, id domain.RoomID, user domain.UserID) (*domain.Room, error) {
	return g.update(ctx, id, func(r *domain.Room) bool { return r.AddWaiting(user) })
}

func (g *Gateway) RemoveWaiting(ctx context.Context, id domain.RoomID, user domain.UserID) (*domain.Room, error) {
	return g.update(ctx, id, func(r *domain.Room) bool { return r.RemoveWaiting(user) })
}

// Approve moves a user from the waiting list into participants.
func (g *Gateway) Approve(ctx context.Context, id domain.RoomID, user domain.UserID) (*domain.Room, error) {
	return g.update(ctx, id, func(r *domain.Room) bool {
		added := r.AddParticipant(user)
		removed := r.RemoveWaiting(user)
		return added || removed
	})
}

// Create persists a fresh record; no room lock needed, the store
// rejects duplicates.
func (g *Gateway) Create(ctx context.Context, room *domain.Room) error {
	return g.store.Create(ctx, room)
}

func (g *Gateway) List(ctx context.Context) ([]*domain.Room, error) {
	return g.store.List(ctx)
}

func (g *Gateway) update(ctx context.Context, id domain.RoomID, mutate func(*domain.Room) bool) (*domain.Room, error) {
	l := g.roomLock(id)
	l.Lock()
	defer l.Unlock()

	room, err := g.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !mutate(room) {
		return room, nil
	}
	if err := g.store.Save(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}
