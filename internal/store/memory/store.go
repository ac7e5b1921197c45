// Package memory provides an in-memory RoomStore, used in tests and as
// the default backend when no database is configured.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/huddle-app/huddle/internal/domain"
	"github.com/huddle-app/huddle/internal/store"
)

type Store struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*domain.Room
}

func New() *Store {
	return &Store{rooms: make(map[domain.RoomID]*domain.Room)}
}

func (s *Store) Find(_ context.Context, id domain.RoomID) (*domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[id]
	if !ok {
		return nil, store.ErrRoomNotFound
	}
	return r.Clone(), nil
}

func (s *Store) Save(_ context.Context, room *domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[room.RoomID]; !ok {
		return store.ErrRoomNotFound
	}
	s.rooms[room.RoomID] = room.Clone()
	return nil
}

func (s *Store) Create(_ context.Context, room *domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[room.RoomID]; ok {
		return store.ErrRoomExists
	}
	s.rooms[room.RoomID] = room.Clone()
	return nil
}

func (s *Store) List(_ context.Context) ([]*domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, r.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomID < out[j].RoomID })
	return out, nil
}
