// Package store defines the persistence boundary for room records.
package store

import (
	"context"
	"errors"

	"github.com/huddle-app/huddle/internal/domain"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomExists   = errors.New("room already exists")
)

// RoomStore is the external room record collaborator. Implementations
// must return copies; callers mutate the returned record and hand it
// back through Save.
type RoomStore interface {
	Find(ctx context.Context, id domain.RoomID) (*domain.Room, error)
	Save(ctx context.Context, room *domain.Room) error
	Create(ctx context.Context, room *domain.Room) error
	List(ctx context.Context) ([]*domain.Room, error)
}
