package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/DaveMolla/Emoji-Game/internal/model"
	"github.com/DaveMolla/Emoji-Game/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid phone number or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// AuthService handles registration, login and token validation. The core
// game only consumes it to identify a player.
type AuthService struct {
	userRepo  repository.UserRepo
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAuthService creates a new auth service.
func NewAuthService(userRepo repository.UserRepo, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  time.Hour,
	}
}

// Register creates an account with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, phoneNumber, password string) (*model.UserInfo, error) {
	if phoneNumber == "" || password == "" {
		return nil, errors.New("both phone number and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		PhoneNumber: phoneNumber,
		Password:    string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return &model.UserInfo{ID: user.ID, PhoneNumber: user.PhoneNumber}, nil
}

// Login verifies credentials and issues an HS256 token.
func (s *AuthService) Login(ctx context.Context, phoneNumber, password string) (*model.LoginResponse, error) {
	user, err := s.userRepo.GetByPhoneNumber(ctx, phoneNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	claims := &model.UserClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		Message: "Login successful.",
		Token:   tokenString,
		User:    &model.UserInfo{ID: user.ID, PhoneNumber: user.PhoneNumber},
	}, nil
}

// ValidateToken validates a user JWT and returns its claims.
func (s *AuthService) ValidateToken(tokenString string) (*model.UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.UserClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
