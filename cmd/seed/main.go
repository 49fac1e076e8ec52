package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/DaveMolla/Emoji-Game/internal/model"
	"github.com/DaveMolla/Emoji-Game/internal/repository"
)

// Seeds a pair of demo accounts so two clients can log in and play locally.
func main() {
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}
	database := os.Getenv("MONGO_DATABASE")
	if database == "" {
		database = "emoji_game"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	userRepo := repository.NewUserRepo(client.Database(database))

	demo := []struct {
		phone    string
		password string
	}{
		{"+15550000001", "player-one"},
		{"+15550000002", "player-two"},
	}

	for _, d := range demo {
		hash, err := bcrypt.GenerateFromPassword([]byte(d.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("Failed to hash password: %v", err)
		}
		user := &model.User{PhoneNumber: d.phone, Password: string(hash)}
		if err := userRepo.Create(ctx, user); err != nil {
			if err == repository.ErrUserExists {
				fmt.Printf("user %s already seeded\n", d.phone)
				continue
			}
			log.Fatalf("Failed to seed user %s: %v", d.phone, err)
		}
		fmt.Printf("seeded user %s (password %q)\n", d.phone, d.password)
	}
}
