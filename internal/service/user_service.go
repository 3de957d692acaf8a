package service

import (
	"context"
	"errors"
	"time"

	"dashboard/internal/apperror"
	"dashboard/internal/authz"
	"dashboard/internal/config"
	"dashboard/internal/model"
	"dashboard/internal/repository"
	"dashboard/internal/session"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DTOs for Request validation
type LoginUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenResponse struct {
	AccessToken      string       `json:"access_token"`
	AccessExpiresAt  string       `json:"access_expires_at"`
	RefreshToken     string       `json:"refresh_token"`
	RefreshExpiresIn int64        `json:"refresh_expires_in"` // seconds
	User             UserResponse `json:"user"`
}

// UserResponse never exposes the stored password.
type UserResponse struct {
	Username    string     `json:"username"`
	DisplayName string     `json:"display_name"`
	Role        authz.Role `json:"role"`
}

// AccessTokenIssuer signs short-lived access tokens.
type AccessTokenIssuer interface {
	Issue(id authz.Identity) (string, time.Time, error)
}

// UserService defines the business logic of sessions and seeded users
type UserService interface {
	Login(ctx context.Context, req LoginUserRequest) (*TokenResponse, error)
	// Refresh revokes refreshToken and issues a new token pair.
	Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context, id authz.Identity) (*UserResponse, error)
	ListUsers(ctx context.Context) ([]UserResponse, error)
	// Seed inserts the bootstrap users that are not stored yet.
	Seed(ctx context.Context, users []config.SeedUser) error
}

type userService struct {
	repo       repository.UserRepository
	sessions   session.Store
	tokens     AccessTokenIssuer
	refreshTTL time.Duration
	gate       authz.Gate
	log        logrus.FieldLogger
}

// NewUserService returns a new instance of UserService
func NewUserService(repo repository.UserRepository, sessions session.Store, tokens AccessTokenIssuer, refreshTTL time.Duration, gate authz.Gate, log logrus.FieldLogger) UserService {
	return &userService{repo: repo, sessions: sessions, tokens: tokens, refreshTTL: refreshTTL, gate: gate, log: log}
}

func (s *userService) toResponse(user *model.User) UserResponse {
	id := authz.Identity{Username: user.Username, DisplayName: user.DisplayName}
	return UserResponse{Username: user.Username, DisplayName: user.DisplayName, Role: s.gate.RoleOf(id)}
}

func (s *userService) Login(ctx context.Context, req LoginUserRequest) (*TokenResponse, error) {
	user, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Infrastructure(err, "failed to load user")
	}
	// Plaintext comparison against the seed list.
	if user == nil || user.Password != req.Password {
		s.log.WithField("username", req.Username).Info("login rejected")
		return nil, apperror.Unauthenticated("invalid username or password")
	}

	res, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}
	s.log.WithField("username", user.Username).Info("user logged in")
	return res, nil
}

func (s *userService) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	if refreshToken == "" {
		return nil, apperror.Unauthenticated("refresh token is required")
	}

	id, err := s.sessions.Consume(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetByUsername(ctx, id.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Unauthenticated("user no longer exists")
		}
		return nil, apperror.Infrastructure(err, "failed to load user")
	}

	return s.issue(ctx, user)
}

func (s *userService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.sessions.Revoke(ctx, refreshToken)
}

func (s *userService) Me(ctx context.Context, id authz.Identity) (*UserResponse, error) {
	user, err := s.repo.GetByUsername(ctx, id.Username)
	if err != nil {
		return nil, loadErr(err, "user "+id.Username)
	}
	res := s.toResponse(user)
	return &res, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]UserResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperror.Infrastructure(err, "failed to list users")
	}
	res := make([]UserResponse, 0, len(users))
	for i := range users {
		res = append(res, s.toResponse(&users[i]))
	}
	return res, nil
}

func (s *userService) Seed(ctx context.Context, users []config.SeedUser) error {
	rows := make([]model.User, 0, len(users))
	for _, u := range users {
		rows = append(rows, model.User{Username: u.Username, DisplayName: u.DisplayName, Password: u.Password})
	}
	if err := s.repo.SeedIfMissing(ctx, rows); err != nil {
		return apperror.Infrastructure(err, "failed to seed users")
	}
	s.log.WithField("users", len(rows)).Info("bootstrap users ensured")
	return nil
}

func (s *userService) issue(ctx context.Context, user *model.User) (*TokenResponse, error) {
	id := authz.Identity{Username: user.Username, DisplayName: user.DisplayName}

	access, expiresAt, err := s.tokens.Issue(id)
	if err != nil {
		return nil, apperror.Infrastructure(err, "failed to issue access token")
	}

	refresh := uuid.NewString()
	if err := s.sessions.Save(ctx, refresh, id, s.refreshTTL); err != nil {
		return nil, err
	}

	return &TokenResponse{
		AccessToken:      access,
		AccessExpiresAt:  expiresAt.UTC().Format(timeLayout),
		RefreshToken:     refresh,
		RefreshExpiresIn: int64(s.refreshTTL / time.Second),
		User:             s.toResponse(user),
	}, nil
}
