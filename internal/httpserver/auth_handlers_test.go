package httpserver

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	authmw "github.com/mzagorenko/clinic/internal/middleware/auth"
	"github.com/mzagorenko/clinic/internal/models"
)

func TestRegisterEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/auth/registration", map[string]string{
		"username": "doctor",
		"role":     "therapist",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var user models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	require.Equal(t, "doctor", user.Username)
	require.Equal(t, models.RoleTherapist, user.Role)
	require.NotEmpty(t, user.ID)

	// the hash never leaves the server
	require.NotContains(t, rec.Body.String(), "hashed_password")
}

func TestRegisterEndpointDuplicate(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser("doctor", "therapist")

	rec := env.do(http.MethodPost, "/auth/registration", map[string]string{
		"username": "doctor",
		"role":     "explorer",
		"password": "password123",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterEndpointValidation(t *testing.T) {
	env := newTestEnv(t)

	for name, payload := range map[string]map[string]string{
		"short password": {"username": "doctor", "role": "therapist", "password": "short"},
		"short username": {"username": "ab", "role": "therapist", "password": "password123"},
		"unknown role":   {"username": "doctor", "role": "admin", "password": "password123"},
		"missing role":   {"username": "doctor", "password": "password123"},
	} {
		rec := env.do(http.MethodPost, "/auth/registration", payload)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code, name)
	}
}

func TestLoginEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser("doctor", "therapist")

	cookies := env.login("doctor")
	access := findCookie(cookies, authmw.CookieAccess)
	require.True(t, access.HttpOnly)
}

func TestLoginEndpointBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser("doctor", "therapist")

	rec := env.do(http.MethodPost, "/auth/login", map[string]string{
		"username": "doctor", "password": "wrong_password",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodPost, "/auth/login", map[string]string{
		"username": "nobody", "password": "password123",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshEndpointRotates(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.loginAs("doctor", "therapist")
	oldRefresh := findCookie(cookies, authmw.CookieRefresh)

	rec := env.do(http.MethodPut, "/auth/refresh_token", nil, cookies...)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	newRefresh := findCookie(rec.Result().Cookies(), authmw.CookieRefresh)
	require.NotNil(t, newRefresh)
	require.NotEqual(t, oldRefresh.Value, newRefresh.Value)

	// the consumed refresh token is dead
	rec = env.do(http.MethodPut, "/auth/refresh_token", nil, oldRefresh)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// the rotated one works
	rec = env.do(http.MethodPut, "/auth/refresh_token", nil, newRefresh)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRefreshEndpointWithoutCookie(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPut, "/auth/refresh_token", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutEndpoint(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.loginAs("doctor", "therapist")
	refresh := findCookie(cookies, authmw.CookieRefresh)

	rec := env.do(http.MethodPost, "/auth/logout", nil, cookies...)
	require.Equal(t, http.StatusOK, rec.Code)

	// cookies are instructed to expire
	for _, c := range rec.Result().Cookies() {
		if c.Name == authmw.CookieAccess || c.Name == authmw.CookieRefresh {
			require.Less(t, c.MaxAge, 0)
		}
	}

	// the session is gone
	rec = env.do(http.MethodPut, "/auth/refresh_token", nil, refresh)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutEndpointWithoutCookie(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/auth/logout", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAbortAllSessionsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	targetCookies := env.loginAs("doctor", "therapist")
	targetRefresh := findCookie(targetCookies, authmw.CookieRefresh)
	target := env.userByName("doctor")

	adminCookies := env.loginAs("admin_user", "therapist")

	// a plain user may not abort sessions
	rec := env.do(http.MethodDelete, "/auth/abort_all_sessions?user_id="+target.ID.String(), nil, adminCookies...)
	require.Equal(t, http.StatusForbidden, rec.Code)

	env.promoteSuperuser("admin_user")

	rec = env.do(http.MethodDelete, "/auth/abort_all_sessions?user_id="+target.ID.String(), nil, adminCookies...)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(http.MethodPut, "/auth/refresh_token", nil, targetRefresh)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
