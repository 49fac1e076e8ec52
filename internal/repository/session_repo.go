package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/DaveMolla/Emoji-Game/internal/model"
)

// GameSessionRepo persists session records: a full document at creation,
// score increments during play, winner and end time at the end.
type GameSessionRepo interface {
	Create(ctx context.Context, record *model.GameRecord) error
	IncrementScore(ctx context.Context, sessionID, playerID string) error
	Finish(ctx context.Context, sessionID, winner string, endedAt time.Time) (*model.GameRecord, error)
	GetBySessionID(ctx context.Context, sessionID string) (*model.GameRecord, error)
}

type gameSessionRepo struct {
	collection *mongo.Collection
}

func NewGameSessionRepo(db *mongo.Database) GameSessionRepo {
	return &gameSessionRepo{
		collection: db.Collection("game_sessions"),
	}
}

func (r *gameSessionRepo) Create(ctx context.Context, record *model.GameRecord) error {
	_, err := r.collection.InsertOne(ctx, record)
	return err
}

func (r *gameSessionRepo) IncrementScore(ctx context.Context, sessionID, playerID string) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"sessionId": sessionID},
		bson.M{"$inc": bson.M{"scores." + playerID: 1}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("no session record with id %s", sessionID)
	}
	return nil
}

func (r *gameSessionRepo) Finish(ctx context.Context, sessionID, winner string, endedAt time.Time) (*model.GameRecord, error) {
	update := bson.M{"$set": bson.M{"endTime": endedAt}}
	if winner != "" {
		update["$set"].(bson.M)["winner"] = winner
	}

	var record model.GameRecord
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"sessionId": sessionID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&record)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *gameSessionRepo) GetBySessionID(ctx context.Context, sessionID string) (*model.GameRecord, error) {
	var record model.GameRecord
	err := r.collection.FindOne(ctx, bson.M{"sessionId": sessionID}).Decode(&record)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}
