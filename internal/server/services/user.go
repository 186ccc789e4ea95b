// Package services contains the application services: account lifecycle and
// the message delivery pipeline. Services own validation and orchestration;
// persistence stays behind the repository interfaces.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/duochat/internal/common"
	"github.com/dmitrijs2005/duochat/internal/logging"
	"github.com/dmitrijs2005/duochat/internal/sanitize"
	"github.com/dmitrijs2005/duochat/internal/server/auth"
	"github.com/dmitrijs2005/duochat/internal/server/config"
	"github.com/dmitrijs2005/duochat/internal/server/models"
	"github.com/dmitrijs2005/duochat/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

type UserService struct {
	repo               users.Repository
	jwtSecret          []byte
	tokenValidity      time.Duration
	maxProfilePicBytes int64
	logger             logging.Logger
}

func NewUserService(repo users.Repository, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		repo:               repo,
		jwtSecret:          []byte(cfg.SecretKey),
		tokenValidity:      cfg.TokenValidityDuration,
		maxProfilePicBytes: cfg.MaxProfilePicBytes,
		logger:             logger,
	}
}

// Signup creates an account and returns the new user together with a signed
// session token.
func (s *UserService) Signup(ctx context.Context, fullName, email, password string) (*models.User, string, error) {

	name, err := sanitize.FullName(fullName)
	if err != nil {
		return nil, "", err
	}

	normalized := sanitize.Email(email)
	if normalized == "" {
		return nil, "", common.NewValidationError("email", "please provide a valid email address")
	}

	if err := sanitize.Password(password); err != nil {
		return nil, "", err
	}

	if _, err := s.repo.GetByEmail(ctx, normalized); err == nil {
		return nil, "", common.ErrorAlreadyExists
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, "", common.ErrorInternal
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, "", common.ErrorInternal
	}

	user, err := s.repo.Create(ctx, &models.User{
		Email:    normalized,
		FullName: name,
		Password: string(hash),
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, "", common.ErrorAlreadyExists
		}
		return nil, "", common.ErrorInternal
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return nil, "", common.ErrorInternal
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return user, token, nil
}

// Login verifies credentials and returns the user with a fresh session
// token. The error never hints whether the email or the password was wrong.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {

	normalized := sanitize.Email(email)
	if normalized == "" || password == "" {
		return nil, "", common.NewValidationError("credentials", "email and password are required")
	}

	user, err := s.repo.GetByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, "", common.ErrorUnauthorized
		}
		return nil, "", common.ErrorInternal
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", common.ErrorUnauthorized
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return nil, "", common.ErrorInternal
	}

	return user, token, nil
}

// Authenticate resolves a session token to a full user record. Any failure
// (bad signature, expiry, vanished user) comes back as ErrorUnauthorized and
// the caller must not proceed to the protected operation.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	return user, nil
}

// UpdateProfilePic validates the inline image and stores the data URI as the
// user's profile picture. Profile pictures use a stricter size ceiling than
// message attachments.
func (s *UserService) UpdateProfilePic(ctx context.Context, userID int64, profilePic string) (*models.User, error) {
	if profilePic == "" {
		return nil, common.NewValidationError("profilePic", "profile pic is required")
	}

	if _, err := sanitize.Image(profilePic, s.maxProfilePicBytes); err != nil {
		return nil, err
	}

	user, err := s.repo.UpdateProfilePic(ctx, userID, profilePic)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("updating profile pic: %w", err)
	}

	return user, nil
}

// Contacts lists every other registered user.
func (s *UserService) Contacts(ctx context.Context, userID int64) ([]*models.User, error) {
	result, err := s.repo.ListExcept(ctx, userID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return result, nil
}
