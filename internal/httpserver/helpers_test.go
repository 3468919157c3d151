package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mzagorenko/clinic/internal/config"
	"github.com/mzagorenko/clinic/internal/hash"
	authmw "github.com/mzagorenko/clinic/internal/middleware/auth"
	"github.com/mzagorenko/clinic/internal/models"
	"github.com/mzagorenko/clinic/internal/service"
	"github.com/mzagorenko/clinic/internal/session"
	"github.com/mzagorenko/clinic/internal/tokens"
)

type testEnv struct {
	t   *testing.T
	e   *echo.Echo
	db  *gorm.DB
	cfg *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Patient{},
		&models.PatientRecord{},
	))

	cfg := &config.Config{
		Mode:              "TEST",
		AccessTokenTTL:    15 * time.Minute,
		RefreshTokenTTL:   24 * time.Hour,
		MinUsernameLength: 3,
		MaxUsernameLength: 30,
		MinPasswordLength: 8,
		MaxPasswordLength: 64,
		CookieSameSite:    http.SameSiteLaxMode,
	}

	hasher := hash.Hasher{Name: "sha256", Iterations: 1000, Separator: "$"}
	issuer := tokens.Issuer{Secret: []byte("test-secret-key"), Algorithm: "HS256", TTL: cfg.AccessTokenTTL}
	sessions := &session.Store{DB: db}

	authSvc := &service.AuthService{
		DB: db, Sessions: sessions, Hasher: hasher, Issuer: issuer, RefreshTTL: cfg.RefreshTokenTTL,
	}
	userSvc := &service.UserService{DB: db, Sessions: sessions, Hasher: hasher}
	patientSvc := &service.PatientService{DB: db}
	recordSvc := &service.RecordService{DB: db}

	e := echo.New()
	Register(e, &Deps{
		Guard:          &authmw.Guard{DB: db, Issuer: issuer},
		AuthHandler:    &AuthHandler{Auth: authSvc, Users: userSvc, Cfg: cfg},
		UserHandler:    &UserHandler{Users: userSvc, Cfg: cfg},
		PatientHandler: &PatientHandler{Patients: patientSvc},
		RecordHandler:  &RecordHandler{Records: recordSvc},
	})

	return &testEnv{t: t, e: e, db: db, cfg: cfg}
}

func (env *testEnv) do(method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	env.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) registerUser(username, role string) {
	env.t.Helper()
	rec := env.do(http.MethodPost, "/auth/registration", map[string]string{
		"username": username,
		"role":     role,
		"password": "password123",
	})
	require.Equal(env.t, http.StatusCreated, rec.Code, rec.Body.String())
}

func (env *testEnv) login(username string) []*http.Cookie {
	env.t.Helper()
	rec := env.do(http.MethodPost, "/auth/login", map[string]string{
		"username": username,
		"password": "password123",
	})
	require.Equal(env.t, http.StatusOK, rec.Code, rec.Body.String())

	cookies := rec.Result().Cookies()
	require.NotNil(env.t, findCookie(cookies, authmw.CookieAccess))
	require.NotNil(env.t, findCookie(cookies, authmw.CookieRefresh))
	return cookies
}

func (env *testEnv) loginAs(username, role string) []*http.Cookie {
	env.t.Helper()
	env.registerUser(username, role)
	return env.login(username)
}

func (env *testEnv) promoteSuperuser(username string) {
	env.t.Helper()
	require.NoError(env.t, env.db.Model(&models.User{}).
		Where("username = ?", username).Update("is_superuser", true).Error)
}

func (env *testEnv) userByName(username string) *models.User {
	env.t.Helper()
	var user models.User
	require.NoError(env.t, env.db.Where("username = ?", username).First(&user).Error)
	return &user
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name && c.Value != "" {
			return c
		}
	}
	return nil
}
