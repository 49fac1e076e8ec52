package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/DaveMolla/Emoji-Game/internal/model"
)

var ErrUserExists = errors.New("user already exists")

type UserRepo interface {
	Create(ctx context.Context, user *model.User) error
	GetByPhoneNumber(ctx context.Context, phoneNumber string) (*model.User, error)
}

type userRepo struct {
	collection *mongo.Collection
}

func NewUserRepo(db *mongo.Database) UserRepo {
	return &userRepo{
		collection: db.Collection("users"),
	}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	existing, err := r.GetByPhoneNumber(ctx, user.PhoneNumber)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrUserExists
	}

	if user.ID == "" {
		user.ID = primitive.NewObjectID().Hex()
	}
	user.CreatedAt = time.Now()

	_, err = r.collection.InsertOne(ctx, user)
	return err
}

func (r *userRepo) GetByPhoneNumber(ctx context.Context, phoneNumber string) (*model.User, error) {
	var user model.User
	err := r.collection.FindOne(ctx, bson.M{"phone_number": phoneNumber}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}
