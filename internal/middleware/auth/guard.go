package auth

import (
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mzagorenko/clinic/internal/apperr"
	"github.com/mzagorenko/clinic/internal/models"
	"github.com/mzagorenko/clinic/internal/tokens"
)

const (
	CookieAccess  = "access_token"
	CookieRefresh = "refresh_token"
)

const userContextKey = "current_user"

// Guard resolves the calling principal from the access-token cookie and
// gates protected routes on role and activity.
type Guard struct {
	DB     *gorm.DB
	Issuer tokens.Issuer
}

type ValidatorFunc func(user *models.User) error

func (g *Guard) RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return g.require(next, nil)
}

func (g *Guard) RequireTherapist(next echo.HandlerFunc) echo.HandlerFunc {
	return g.require(next, func(user *models.User) error {
		if user.Role != models.RoleTherapist {
			return apperr.ErrForbidden
		}
		return nil
	})
}

func (g *Guard) RequireSuperuser(next echo.HandlerFunc) echo.HandlerFunc {
	return g.require(next, func(user *models.User) error {
		if !user.IsSuperuser {
			return apperr.ErrForbidden
		}
		return nil
	})
}

func (g *Guard) require(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := g.CurrentUser(c)
		if err != nil {
			return err
		}

		if validator != nil {
			if err := validator(user); err != nil {
				return err
			}
		}

		c.Set(userContextKey, user)
		return next(c)
	}
}

// CurrentUser decodes the access cookie and loads the user behind it. An
// inactive user is rejected even with a valid token.
func (g *Guard) CurrentUser(c echo.Context) (*models.User, error) {
	cookie, err := c.Cookie(CookieAccess)
	if err != nil || cookie.Value == "" {
		return nil, apperr.ErrUnauthorized
	}

	userID, err := g.Issuer.Decode(cookie.Value)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := g.DB.WithContext(c.Request().Context()).
		Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrInvalidToken
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if !user.IsActive {
		return nil, apperr.ErrForbidden
	}

	return &user, nil
}

// UserFromContext returns the principal resolved by a Require* middleware.
func UserFromContext(c echo.Context) *models.User {
	if u, ok := c.Get(userContextKey).(*models.User); ok {
		return u
	}
	return nil
}
