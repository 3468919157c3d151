package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mzagorenko/clinic/internal/apperr"
	"github.com/mzagorenko/clinic/internal/models"
	"github.com/mzagorenko/clinic/internal/tokens"
)

func newTestGuard(t *testing.T) (*Guard, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}))

	issuer := tokens.Issuer{Secret: []byte("test-secret-key"), Algorithm: "HS256", TTL: 15 * time.Minute}
	return &Guard{DB: db, Issuer: issuer}, db
}

func createGuardUser(t *testing.T, db *gorm.DB, role string, superuser bool) *models.User {
	user := models.User{
		Username:       "user_" + role,
		HashedPassword: "irrelevant",
		Role:           role,
		IsSuperuser:    superuser,
		IsActive:       true,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func contextWithAccessCookie(g *Guard, t *testing.T, user *models.User) echo.Context {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if user != nil {
		signed, _, err := g.Issuer.Issue(user.ID)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: CookieAccess, Value: signed})
	}
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func okHandler(c echo.Context) error { return c.NoContent(http.StatusOK) }

func TestRequireUser(t *testing.T) {
	g, db := newTestGuard(t)
	user := createGuardUser(t, db, models.RoleExplorer, false)

	c := contextWithAccessCookie(g, t, user)
	require.NoError(t, g.RequireUser(okHandler)(c))

	// the principal is available downstream
	require.Equal(t, user.ID, UserFromContext(c).ID)
}

func TestRequireUserWithoutCookie(t *testing.T) {
	g, _ := newTestGuard(t)

	c := contextWithAccessCookie(g, t, nil)
	err := g.RequireUser(okHandler)(c)
	require.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestRequireUserBadToken(t *testing.T) {
	g, _ := newTestGuard(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieAccess, Value: "garbage"})
	c := echo.New().NewContext(req, httptest.NewRecorder())

	err := g.RequireUser(okHandler)(c)
	require.ErrorIs(t, err, apperr.ErrInvalidToken)
}

func TestRequireUserDeletedUser(t *testing.T) {
	g, db := newTestGuard(t)
	user := createGuardUser(t, db, models.RoleExplorer, false)
	c := contextWithAccessCookie(g, t, user)
	require.NoError(t, db.Delete(&models.User{}, "id = ?", user.ID).Error)

	err := g.RequireUser(okHandler)(c)
	require.ErrorIs(t, err, apperr.ErrInvalidToken)
}

func TestRequireUserDatabaseError(t *testing.T) {
	g, db := newTestGuard(t)
	user := createGuardUser(t, db, models.RoleExplorer, false)
	c := contextWithAccessCookie(g, t, user)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	err = g.RequireUser(okHandler)(c)
	require.Error(t, err)
	require.NotErrorIs(t, err, apperr.ErrInvalidToken)
	require.Contains(t, err.Error(), "db error")
}

func TestRequireUserInactive(t *testing.T) {
	g, db := newTestGuard(t)
	user := createGuardUser(t, db, models.RoleExplorer, false)
	require.NoError(t, db.Model(user).Update("is_active", false).Error)

	c := contextWithAccessCookie(g, t, user)
	err := g.RequireUser(okHandler)(c)
	require.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestRequireTherapist(t *testing.T) {
	g, db := newTestGuard(t)

	therapist := createGuardUser(t, db, models.RoleTherapist, false)
	c := contextWithAccessCookie(g, t, therapist)
	require.NoError(t, g.RequireTherapist(okHandler)(c))

	explorer := createGuardUser(t, db, models.RoleExplorer, false)
	c = contextWithAccessCookie(g, t, explorer)
	require.ErrorIs(t, g.RequireTherapist(okHandler)(c), apperr.ErrForbidden)
}

func TestRequireSuperuser(t *testing.T) {
	g, db := newTestGuard(t)

	admin := createGuardUser(t, db, models.RoleTherapist, true)
	c := contextWithAccessCookie(g, t, admin)
	require.NoError(t, g.RequireSuperuser(okHandler)(c))

	plain := createGuardUser(t, db, models.RoleExplorer, false)
	c = contextWithAccessCookie(g, t, plain)
	require.ErrorIs(t, g.RequireSuperuser(okHandler)(c), apperr.ErrForbidden)
}
