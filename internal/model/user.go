package model

import "time"

// User is a registered account. The password field holds a bcrypt hash and
// never leaves the server.
type User struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	PhoneNumber string    `json:"phone_number" bson:"phone_number"`
	Password    string    `json:"-" bson:"password"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}
