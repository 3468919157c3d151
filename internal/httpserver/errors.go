package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/labstack/echo/v4"

	"github.com/mzagorenko/clinic/internal/apperr"
)

// ErrorHandler maps error kinds to transport statuses in one place so
// handlers and middleware can return them raw.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		_ = c.JSON(he.Code, echo.Map{"message": fmt.Sprint(he.Message)})
		return
	}

	var ve validation.Errors
	if errors.As(err, &ve) {
		_ = c.JSON(http.StatusUnprocessableEntity, echo.Map{"message": ve})
		return
	}

	status, message := statusFor(err)
	_ = c.JSON(status, echo.Map{"message": message})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, apperr.ErrUserAlreadyExists):
		return http.StatusConflict, err.Error()
	case errors.Is(err, apperr.ErrInvalidCredentials),
		errors.Is(err, apperr.ErrUnauthorized),
		errors.Is(err, apperr.ErrInvalidToken),
		errors.Is(err, apperr.ErrTokenExpired):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, apperr.ErrUserDoesNotExist),
		errors.Is(err, apperr.ErrPatientNotFound),
		errors.Is(err, apperr.ErrRecordNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, apperr.ErrNoUserData),
		errors.Is(err, apperr.ErrInvalidField),
		errors.Is(err, apperr.ErrInvalidRule),
		errors.Is(err, apperr.ErrInvalidValueFormat),
		errors.Is(err, apperr.ErrUnsupportedGlobalRule):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, apperr.ErrUnexpectedRole):
		return http.StatusInternalServerError, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
