package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MikeMC777/shoppulse/internal/user"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// UserFinder is the part of user.Repository login needs.
type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
}

// LoginRequest payload for POST /auth/login.
// swagger:model LoginRequest
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"admin@shoppulse.dev"`
	Password string `json:"password" binding:"required" example:"admin123"`
}

// LoginResponse carries the session token and the signed-in user.
// swagger:model LoginResponse
type LoginResponse struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

type Service struct {
	users  UserFinder
	issuer *Issuer
}

func NewService(users UserFinder, issuer *Issuer) *Service {
	return &Service{users: users, issuer: issuer}
}

// Login checks the password against the stored bcrypt hash. Unknown email
// and wrong password both yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, user.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !user.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	tok, err := s.issuer.Issue(u)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{Token: tok, User: u}, nil
}
