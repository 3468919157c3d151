package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mzagorenko/clinic/internal/apperr"
	"github.com/mzagorenko/clinic/internal/hash"
	"github.com/mzagorenko/clinic/internal/logging"
	"github.com/mzagorenko/clinic/internal/models"
	"github.com/mzagorenko/clinic/internal/mykafka"
	"github.com/mzagorenko/clinic/internal/session"
	"github.com/mzagorenko/clinic/internal/util"
)

type UserService struct {
	DB       *gorm.DB
	Sessions *session.Store
	Hasher   hash.Hasher
	Producer *mykafka.Producer
}

func (s *UserService) Register(ctx context.Context, username, role, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "users.register", "username", username)

	if !models.ValidRole(role) {
		return nil, apperr.ErrUnexpectedRole
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).
		Where("username = ?", username).Count(&count).Error; err != nil {
		l.Error("register failed", "status", 500, "error", err)
		return nil, fmt.Errorf("db error: %w", err)
	}
	if count > 0 {
		return nil, apperr.ErrUserAlreadyExists
	}

	digest, err := s.Hasher.Hash(password)
	if err != nil {
		l.Error("register failed", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := models.User{
		Username:       username,
		HashedPassword: digest,
		Role:           role,
		IsActive:       true,
	}
	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		l.Error("register failed", "status", 500, "error", err)
		return nil, fmt.Errorf("db error: %w", err)
	}

	s.publish(ctx, user.ID, map[string]any{
		"type":     "user_registered",
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
	})

	return &user, nil
}

// Get looks a user up by id or username; at least one key is required.
func (s *UserService) Get(ctx context.Context, id uuid.UUID, username string) (*models.User, error) {
	if id == uuid.Nil && username == "" {
		return nil, apperr.ErrNoUserData
	}

	q := s.DB.WithContext(ctx)
	if id != uuid.Nil {
		q = q.Where("id = ?", id)
	} else {
		q = q.Where("username = ?", username)
	}

	var user models.User
	if err := q.First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrUserDoesNotExist
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &user, nil
}

func (s *UserService) List(ctx context.Context, offset, limit int) ([]models.User, error) {
	offset, limit = util.Calculate(offset, limit)

	var users []models.User
	if err := s.DB.WithContext(ctx).
		Order("created_at").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return users, nil
}

func (s *UserService) SetRole(ctx context.Context, userID uuid.UUID, newRole string) error {
	if !models.ValidRole(newRole) {
		return apperr.ErrUnexpectedRole
	}

	user, err := s.Get(ctx, userID, "")
	if err != nil {
		return err
	}

	return s.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", user.ID).Update("role", newRole).Error
}

// ToggleSuperuser flips the superuser flag and reports the new value.
func (s *UserService) ToggleSuperuser(ctx context.Context, userID uuid.UUID) (bool, error) {
	user, err := s.Get(ctx, userID, "")
	if err != nil {
		return false, err
	}

	next := !user.IsSuperuser
	if err := s.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", user.ID).Update("is_superuser", next).Error; err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return next, nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	user, err := s.Get(ctx, userID, "")
	if err != nil {
		return err
	}

	if !s.Hasher.Verify(oldPassword, user.HashedPassword) {
		return apperr.ErrInvalidCredentials
	}

	digest, err := s.Hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	return s.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", user.ID).Update("hashed_password", digest).Error
}

// Deactivate is the only delete path: the row stays, is_active drops, and
// every live session dies with it.
func (s *UserService) Deactivate(ctx context.Context, userID uuid.UUID) error {
	user, err := s.Get(ctx, userID, "")
	if err != nil {
		return err
	}

	if err := s.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", user.ID).Update("is_active", false).Error; err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	if err := s.Sessions.RevokeAllForUser(ctx, user.ID); err != nil {
		return err
	}

	s.publish(ctx, user.ID, map[string]any{
		"type":     "user_deactivated",
		"user_id":  user.ID,
		"username": user.Username,
	})
	return nil
}

func (s *UserService) publish(ctx context.Context, key uuid.UUID, event map[string]any) {
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := s.Producer.PublishEvent(pubCtx, key.String(), event); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "error", err)
	}
}
