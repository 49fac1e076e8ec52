package model

import "github.com/golang-jwt/jwt/v5"

// UserClaims are the JWT claims identifying a player.
type UserClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// RegisterRequest is the request body for registration.
type RegisterRequest struct {
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

// LoginResponse is returned after successful login.
type LoginResponse struct {
	Message string    `json:"message"`
	Token   string    `json:"token"`
	User    *UserInfo `json:"user"`
}

// UserInfo is the public view of an account.
type UserInfo struct {
	ID          string `json:"id"`
	PhoneNumber string `json:"phone_number"`
}
