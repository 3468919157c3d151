package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mzagorenko/clinic/internal/apperr"
	"github.com/mzagorenko/clinic/internal/models"
)

// Store keeps refresh-token sessions in the refresh_tokens table. A session
// row holds exactly one valid token value at a time.
type Store struct {
	DB *gorm.DB
}

func (s *Store) Create(ctx context.Context, userID uuid.UUID, ttl time.Duration) (*models.RefreshToken, error) {
	rt := models.RefreshToken{
		Token:     uuid.New(),
		UserID:    userID,
		ExpiresIn: int64(ttl.Seconds()),
	}
	if err := s.DB.WithContext(ctx).Create(&rt).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &rt, nil
}

// Validate loads the session for a token value and checks expiry. An expired
// session is deleted on the spot and reported as expired; a token with no
// matching row is simply invalid.
func (s *Store) Validate(ctx context.Context, token uuid.UUID) (*models.RefreshToken, error) {
	var rt models.RefreshToken
	if err := s.DB.WithContext(ctx).Where("token = ?", token).First(&rt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrInvalidToken
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if !time.Now().Before(rt.ExpiresAt()) {
		if err := s.DB.WithContext(ctx).Delete(&models.RefreshToken{}, rt.ID).Error; err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		return nil, apperr.ErrTokenExpired
	}

	return &rt, nil
}

// Rotate replaces the session's token value and resets its clock. The update
// is keyed on the old token value, so when two refreshes race on the same
// token only one of them rotates; the loser gets ErrInvalidToken.
func (s *Store) Rotate(ctx context.Context, rt *models.RefreshToken, ttl time.Duration) (uuid.UUID, error) {
	newToken := uuid.New()
	res := s.DB.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("id = ? AND token = ?", rt.ID, rt.Token).
		Updates(map[string]any{
			"token":      newToken,
			"expires_in": int64(ttl.Seconds()),
			"created_at": time.Now(),
		})
	if res.Error != nil {
		return uuid.Nil, fmt.Errorf("db error: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return uuid.Nil, apperr.ErrInvalidToken
	}
	return newToken, nil
}

// Revoke deletes the session matching the token value. Absence is not an
// error.
func (s *Store) Revoke(ctx context.Context, token uuid.UUID) error {
	return s.DB.WithContext(ctx).Where("token = ?", token).Delete(&models.RefreshToken{}).Error
}

// RevokeAllForUser deletes every session of the user ("sign out everywhere").
func (s *Store) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	return s.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error
}
