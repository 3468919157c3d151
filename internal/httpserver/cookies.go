package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mzagorenko/clinic/internal/config"
	authmw "github.com/mzagorenko/clinic/internal/middleware/auth"
	"github.com/mzagorenko/clinic/internal/service"
)

func createCookie(name, value string, maxAge time.Duration, cfg *config.Config) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: cfg.CookieSameSite,
	}
}

func deleteCookie(name string, cfg *config.Config) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: cfg.CookieSameSite,
	}
}

func setTokenCookies(c echo.Context, pair *service.TokenPair, cfg *config.Config) {
	c.SetCookie(createCookie(authmw.CookieAccess, pair.AccessToken, time.Until(pair.AccessExp), cfg))
	c.SetCookie(createCookie(authmw.CookieRefresh, pair.RefreshToken.String(), time.Until(pair.RefreshExp), cfg))
}

func clearTokenCookies(c echo.Context, cfg *config.Config) {
	c.SetCookie(deleteCookie(authmw.CookieAccess, cfg))
	c.SetCookie(deleteCookie(authmw.CookieRefresh, cfg))
}
