package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Eray464646/Algorithmen/internal/model"
)

// MongoStore persists room documents in a MongoDB collection and fans out
// every committed write as the full document on a per-room Redis channel.
type MongoStore struct {
	collection *mongo.Collection
	rdb        *redis.Client
}

func NewMongoStore(client *mongo.Client, rdb *redis.Client, database string) *MongoStore {
	db := client.Database(database)
	return &MongoStore{
		collection: db.Collection("rooms"),
		rdb:        rdb,
	}
}

func (s *MongoStore) channel(id string) string {
	return fmt.Sprintf("room:%s:feed", id)
}

func (s *MongoStore) Create(ctx context.Context, room *model.Room) error {
	if _, err := s.collection.InsertOne(ctx, room); err != nil {
		return fmt.Errorf("failed to insert room: %w", err)
	}
	return s.publish(ctx, room)
}

func (s *MongoStore) GetByID(ctx context.Context, id string) (*model.Room, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoStore) GetByCode(ctx context.Context, code string) (*model.Room, error) {
	return s.findOne(ctx, bson.M{"code": code})
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (*model.Room, error) {
	var room model.Room
	err := s.collection.FindOne(ctx, filter).Decode(&room)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch room: %w", err)
	}
	return &room, nil
}

func (s *MongoStore) Update(ctx context.Context, room *model.Room) error {
	res, err := s.collection.ReplaceOne(ctx, bson.M{"_id": room.ID}, room)
	if err != nil {
		return fmt.Errorf("failed to update room: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return s.publish(ctx, room)
}

func (s *MongoStore) SetReveal(ctx context.Context, id string, reveal *model.Reveal) (bool, error) {
	// Conditional update instead of read-then-write: two host evaluations
	// racing on the same question can both pass a local null check, but only
	// one filter match commits.
	filter := bson.M{
		"_id": id,
		"$or": bson.A{
			bson.M{"lastReveal": nil},
			bson.M{"lastReveal.questionIndex": bson.M{"$lt": reveal.QuestionIndex}},
		},
	}
	res, err := s.collection.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"lastReveal": reveal}})
	if err != nil {
		return false, fmt.Errorf("failed to set reveal: %w", err)
	}
	if res.MatchedCount == 0 {
		return false, nil
	}

	room, err := s.GetByID(ctx, id)
	if err != nil {
		return true, err
	}
	return true, s.publish(ctx, room)
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	// Closing the channel is signalled by an empty payload; subscribers end
	// their feed on it.
	if err := s.rdb.Publish(ctx, s.channel(id), "").Err(); err != nil {
		return fmt.Errorf("failed to publish room deletion: %w", err)
	}
	return nil
}

func (s *MongoStore) publish(ctx context.Context, room *model.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("failed to marshal room: %w", err)
	}
	if err := s.rdb.Publish(ctx, s.channel(room.ID), data).Err(); err != nil {
		return fmt.Errorf("failed to publish room update: %w", err)
	}
	return nil
}

func (s *MongoStore) Subscribe(ctx context.Context, id string) (Subscription, error) {
	pubsub := s.rdb.Subscribe(ctx, s.channel(id))
	// Force the SUBSCRIBE round-trip so a failed transport surfaces here,
	// not on the first missed update.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to room feed: %w", err)
	}

	sub := &redisSubscription{
		pubsub:  pubsub,
		updates: make(chan *model.Room, 16),
	}
	go sub.pump()
	return sub, nil
}

type redisSubscription struct {
	pubsub  *redis.PubSub
	updates chan *model.Room
}

func (s *redisSubscription) pump() {
	defer close(s.updates)
	for msg := range s.pubsub.Channel() {
		if msg.Payload == "" {
			// Room deleted.
			return
		}
		var room model.Room
		if err := json.Unmarshal([]byte(msg.Payload), &room); err != nil {
			log.Printf("room feed: dropping undecodable update: %v", err)
			continue
		}
		select {
		case s.updates <- &room:
		default:
			// Slow consumer; it will converge on the next snapshot anyway.
		}
	}
}

func (s *redisSubscription) Updates() <-chan *model.Room {
	return s.updates
}

func (s *redisSubscription) Close() error {
	return s.pubsub.Close()
}
