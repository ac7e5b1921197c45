// Package mongo provides a MongoDB-backed RoomStore.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/huddle-app/huddle/internal/domain"
	"github.com/huddle-app/huddle/internal/store"
)

const collection = "rooms"

type Store struct {
	client *mongo.Client
	rooms  *mongo.Collection
}

// Connect dials MongoDB and prepares the rooms collection with a unique
// index on roomid.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	rooms := client.Database(database).Collection(collection)
	_, err = rooms.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "roomid", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("mongo ensure index: %w", err)
	}
	return &Store{client: client, rooms: rooms}, nil
}

func (s *Store) Find(ctx context.Context, id domain.RoomID) (*domain.Room, error) {
	var room domain.Room
	err := s.rooms.FindOne(ctx, bson.M{"roomid": id}).Decode(&room)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find room: %w", err)
	}
	return &room, nil
}

func (s *Store) Save(ctx context.Context, room *domain.Room) error {
	res, err := s.rooms.ReplaceOne(ctx, bson.M{"roomid": room.RoomID}, room)
	if err != nil {
		return fmt.Errorf("mongo save room: %w", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrRoomNotFound
	}
	return nil
}

func (s *Store) Create(ctx context.Context, room *domain.Room) error {
	_, err := s.rooms.InsertOne(ctx, room)
	if mongo.IsDuplicateKeyError(err) {
		return store.ErrRoomExists
	}
	if err != nil {
		return fmt.Errorf("mongo create room: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]*domain.Room, error) {
	cur, err := s.rooms.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("mongo list rooms: %w", err)
	}
	var out []*domain.Room
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("mongo decode rooms: %w", err)
	}
	return out, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
