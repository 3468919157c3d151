package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mzagorenko/clinic/internal/apperr"
	"github.com/mzagorenko/clinic/internal/hash"
	"github.com/mzagorenko/clinic/internal/logging"
	"github.com/mzagorenko/clinic/internal/models"
	"github.com/mzagorenko/clinic/internal/mykafka"
	"github.com/mzagorenko/clinic/internal/session"
	"github.com/mzagorenko/clinic/internal/tokens"
)

const publishTimeout = 5 * time.Second

type AuthService struct {
	DB         *gorm.DB
	Sessions   *session.Store
	Hasher     hash.Hasher
	Issuer     tokens.Issuer
	RefreshTTL time.Duration
	Producer   *mykafka.Producer
}

type TokenPair struct {
	AccessToken  string
	RefreshToken uuid.UUID
	AccessExp    time.Time
	RefreshExp   time.Time
}

// Login authenticates by username and password and opens a new session.
// Unknown users and wrong passwords fail with the same error so callers
// cannot tell which case occurred.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, *TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	var user models.User
	if err := s.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.ErrInvalidCredentials
		}
		l.Error("login failed", "status", 500, "error", err)
		return nil, nil, fmt.Errorf("db error: %w", err)
	}

	if !s.Hasher.Verify(password, user.HashedPassword) {
		return nil, nil, apperr.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, nil, apperr.ErrForbidden
	}

	pair, err := s.issuePair(ctx, user.ID)
	if err != nil {
		l.Error("login failed", "status", 500, "error", err)
		return nil, nil, err
	}

	s.publish(ctx, user.ID, map[string]any{
		"type":     "user_logged_in",
		"user_id":  user.ID,
		"username": user.Username,
	})

	return &user, pair, nil
}

// Refresh validates and rotates the session behind the supplied refresh
// token and mints a new access token. The old token value never validates
// again after a successful rotation.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*TokenPair, error) {
	if rawToken == "" {
		return nil, apperr.ErrUnauthorized
	}

	token, err := uuid.Parse(rawToken)
	if err != nil {
		return nil, apperr.ErrInvalidToken
	}

	rt, err := s.Sessions.Validate(ctx, token)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := s.DB.WithContext(ctx).Where("id = ?", rt.UserID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrInvalidToken
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	access, accessExp, err := s.Issuer.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	newToken, err := s.Sessions.Rotate(ctx, rt, s.RefreshTTL)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: newToken,
		AccessExp:    accessExp,
		RefreshExp:   time.Now().Add(s.RefreshTTL),
	}, nil
}

// Logout revokes the session matching the token. A token with no session is
// not an error; the caller's cookies get cleared either way.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return apperr.ErrUnauthorized
	}

	token, err := uuid.Parse(rawToken)
	if err != nil {
		return nil
	}
	return s.Sessions.Revoke(ctx, token)
}

func (s *AuthService) AbortAllSessions(ctx context.Context, userID uuid.UUID) error {
	if err := s.Sessions.RevokeAllForUser(ctx, userID); err != nil {
		return err
	}

	s.publish(ctx, userID, map[string]any{
		"type":    "sessions_aborted",
		"user_id": userID,
	})
	return nil
}

func (s *AuthService) issuePair(ctx context.Context, userID uuid.UUID) (*TokenPair, error) {
	access, accessExp, err := s.Issuer.Issue(userID)
	if err != nil {
		return nil, err
	}

	rt, err := s.Sessions.Create(ctx, userID, s.RefreshTTL)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: rt.Token,
		AccessExp:    accessExp,
		RefreshExp:   rt.ExpiresAt(),
	}, nil
}

func (s *AuthService) publish(ctx context.Context, key uuid.UUID, event map[string]any) {
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := s.Producer.PublishEvent(pubCtx, key.String(), event); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "error", err)
	}
}
