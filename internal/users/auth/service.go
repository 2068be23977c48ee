// Copyright (c) 2026 Dokusha. All rights reserved.
// Author: duc.phamanh.vn@gmail.com

/*
Package auth implements identity and access management for Dokusha.

It handles user registration with secure password hashing, login issuing
RSA-signed JWT access tokens, and refresh sessions held in Redis.

Architecture:

  - Service: Orchestrates business logic (Register, Login, Refresh, Logout).
  - UserRepository: Postgres persistence for accounts.
  - SessionRepository: Redis persistence for disposable refresh sessions.
*/
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phamduc/dokusha/internal/platform/apperr"
	"github.com/phamduc/dokusha/internal/platform/sec"
	"github.com/phamduc/dokusha/internal/platform/validate"
	"github.com/phamduc/dokusha/pkg/uuid"
)

// TokenProvider defines the contract for generating access tokens.
type TokenProvider interface {
	GenerateAccessToken(userID, username, role string, timeToLive time.Duration) (string, error)
}

// Service implements user authentication use cases.
type Service struct {
	userRepository    UserRepository
	sessionRepository SessionRepository
	tokenProvider     TokenProvider
	logger            *slog.Logger
}

// NewService constructs a new auth [Service].
func NewService(userRepo UserRepository, sessionRepo SessionRepository, tokenProv TokenProvider, logger *slog.Logger) *Service {
	return &Service{
		userRepository:    userRepo,
		sessionRepository: sessionRepo,
		tokenProvider:     tokenProv,
		logger:            logger,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

/*
Register validates, hashes, and persists a brand new user account.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *User: Created entity
  - error: Validation errors, Conflict if the identity exists, storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {
	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username).
		MinLen(FieldUsername, input.Username, 3).
		MaxLen(FieldUsername, input.Username, 32)
	validator.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)
	validator.Required(FieldPassword, input.Password).MinLen(FieldPassword, input.Password, 8)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	// Verify email uniqueness. Return a client-safe Conflict error.
	if _, err := service.userRepository.FindByEmail(context, input.Email); err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	// Verify username uniqueness. Return a client-safe Conflict error.
	if _, err := service.userRepository.FindByUsername(context, input.Username); err == nil {
		return nil, apperr.Conflict("Username is already taken")
	}

	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:           uuid.New(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		Role:         string(sec.RoleMember),
	}

	if err := service.userRepository.Create(context, user); err != nil {
		return nil, err
	}

	service.logger.Info("user_registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// # Session Flow

// TokenPair is the credential set returned by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

/*
Login verifies credentials and opens a new session.

Parameters:
  - context: context.Context
  - email, password: string

Returns:
  - *User: Authenticated entity
  - *TokenPair: Fresh access + refresh tokens
  - error: Unauthorized on bad credentials or disabled accounts
*/
func (service *Service) Login(context context.Context, email, password string) (*User, *TokenPair, error) {
	user, err := service.userRepository.FindByEmail(context, email)
	if err != nil {
		// Deliberately indistinguishable from a wrong password.
		return nil, nil, apperr.Unauthorized("Invalid email or password")
	}

	if !sec.CheckPasswordHash(password, user.PasswordHash) {
		return nil, nil, apperr.Unauthorized("Invalid email or password")
	}

	if !user.IsActive {
		return nil, nil, apperr.Forbidden("Account is disabled")
	}

	pair, err := service.openSession(context, user)
	if err != nil {
		return nil, nil, err
	}

	service.logger.Info("user_logged_in", slog.String("user_id", user.ID))
	return user, pair, nil
}

/*
Refresh rotates a refresh session into a new token pair.

Description: The presented refresh token is revoked and replaced so a stolen
token is only usable once.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - *TokenPair: Fresh access + refresh tokens
  - error: Unauthorized on unknown/expired sessions
*/
func (service *Service) Refresh(context context.Context, refreshToken string) (*TokenPair, error) {
	session, err := service.sessionRepository.Find(context, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := service.userRepository.FindByID(context, session.UserID)
	if err != nil {
		return nil, apperr.Unauthorized("Account no longer exists")
	}

	// Rotation: revoke before reissue.
	if err := service.sessionRepository.Delete(context, refreshToken); err != nil {
		return nil, err
	}

	return service.openSession(context, user)
}

/*
Logout revokes a refresh session.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - error: Connectivity failures
*/
func (service *Service) Logout(context context.Context, refreshToken string) error {
	return service.sessionRepository.Delete(context, refreshToken)
}

/*
Me loads the authenticated user's own account.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *User: Hydrated entity
  - error: ErrNotFound if the account vanished
*/
func (service *Service) Me(context context.Context, userID string) (*User, error) {
	return service.userRepository.FindByID(context, userID)
}

// openSession signs an access token and persists a fresh refresh session.
func (service *Service) openSession(context context.Context, user *User) (*TokenPair, error) {
	accessToken, err := service.tokenProvider.GenerateAccessToken(user.ID, user.Username, user.Role, AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_sign_failed: %w", err)
	}

	refreshToken := uuid.New()
	session := Session{UserID: user.ID, CreatedAt: time.Now().UTC()}

	if err := service.sessionRepository.Save(context, refreshToken, session, RefreshTokenTTL); err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
