package httpserver

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mzagorenko/clinic/internal/apperr"
	"github.com/mzagorenko/clinic/internal/config"
	authmw "github.com/mzagorenko/clinic/internal/middleware/auth"
	"github.com/mzagorenko/clinic/internal/models"
	"github.com/mzagorenko/clinic/internal/service"
)

type AuthHandler struct {
	Auth  *service.AuthService
	Users *service.UserService
	Cfg   *config.Config
}

type registerRequest struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

func (r registerRequest) Validate(cfg *config.Config) error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required,
			validation.Length(cfg.MinUsernameLength, cfg.MaxUsernameLength)),
		validation.Field(&r.Role, validation.Required,
			validation.In(models.RoleTherapist, models.RoleExplorer)),
		validation.Field(&r.Password, validation.Required,
			validation.Length(cfg.MinPasswordLength, cfg.MaxPasswordLength)),
	)
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(h.Cfg); err != nil {
		return err
	}

	user, err := h.Users.Register(c.Request().Context(), req.Username, req.Role, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, user)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	user, pair, err := h.Auth.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	setTokenCookies(c, pair, h.Cfg)

	return c.JSON(http.StatusOK, echo.Map{
		"user": user,
		"tokens": echo.Map{
			"access_token":  pair.AccessToken,
			"refresh_token": pair.RefreshToken,
			"token_type":    "Bearer",
		},
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	cookie, err := c.Cookie(authmw.CookieRefresh)
	if err != nil || cookie.Value == "" {
		return apperr.ErrUnauthorized
	}

	if err := h.Auth.Logout(c.Request().Context(), cookie.Value); err != nil {
		return err
	}

	clearTokenCookies(c, h.Cfg)

	return c.JSON(http.StatusOK, echo.Map{"message": "logout was successful"})
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie(authmw.CookieRefresh)
	if err != nil || cookie.Value == "" {
		return apperr.ErrUnauthorized
	}

	pair, err := h.Auth.Refresh(c.Request().Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, apperr.ErrTokenExpired) {
			clearTokenCookies(c, h.Cfg)
		}
		return err
	}

	setTokenCookies(c, pair, h.Cfg)

	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"token_type":    "Bearer",
	})
}

func (h *AuthHandler) AbortAllSessions(c echo.Context) error {
	userID, err := uuid.Parse(c.QueryParam("user_id"))
	if err != nil {
		return apperr.ErrNoUserData
	}

	if err := h.Auth.AbortAllSessions(c.Request().Context(), userID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "all user sessions were aborted"})
}
