package httpserver

import (
	"net/http"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mzagorenko/clinic/internal/apperr"
	"github.com/mzagorenko/clinic/internal/config"
	authmw "github.com/mzagorenko/clinic/internal/middleware/auth"
	"github.com/mzagorenko/clinic/internal/models"
	"github.com/mzagorenko/clinic/internal/service"
)

type UserHandler struct {
	Users *service.UserService
	Cfg   *config.Config
}

func (h *UserHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, authmw.UserFromContext(c))
}

func (h *UserHandler) List(c echo.Context) error {
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	users, err := h.Users.List(c.Request().Context(), offset, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

type setRoleRequest struct {
	UserID  string `json:"user_id"`
	NewRole string `json:"new_role"`
}

func (r setRoleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.Required),
		validation.Field(&r.NewRole, validation.Required,
			validation.In(models.RoleTherapist, models.RoleExplorer)),
	)
}

func (h *UserHandler) SetRole(c echo.Context) error {
	var req setRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return err
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return apperr.ErrNoUserData
	}

	if err := h.Users.SetRole(c.Request().Context(), userID, req.NewRole); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "role updated"})
}

func (h *UserHandler) ToggleSuperuser(c echo.Context) error {
	userID, err := uuid.Parse(c.QueryParam("user_id"))
	if err != nil {
		return apperr.ErrNoUserData
	}

	status, err := h.Users.ToggleSuperuser(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"user_id": userID, "is_superuser": status})
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (r changePasswordRequest) Validate(cfg *config.Config) error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.OldPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required,
			validation.Length(cfg.MinPasswordLength, cfg.MaxPasswordLength)),
	)
}

func (h *UserHandler) ChangePassword(c echo.Context) error {
	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(h.Cfg); err != nil {
		return err
	}

	user := authmw.UserFromContext(c)

	if err := h.Users.ChangePassword(c.Request().Context(), user.ID, req.OldPassword, req.NewPassword); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

// Deactivate disables the caller's own account, or any account when the
// caller is a superuser.
func (h *UserHandler) Deactivate(c echo.Context) error {
	current := authmw.UserFromContext(c)

	target := current.ID
	if raw := c.QueryParam("user_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return apperr.ErrNoUserData
		}
		if parsed != current.ID && !current.IsSuperuser {
			return apperr.ErrForbidden
		}
		target = parsed
	}

	if err := h.Users.Deactivate(c.Request().Context(), target); err != nil {
		return err
	}

	if target == current.ID {
		clearTokenCookies(c, h.Cfg)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "user was deactivated"})
}
