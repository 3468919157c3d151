package service

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mzagorenko/clinic/internal/hash"
	"github.com/mzagorenko/clinic/internal/models"
	"github.com/mzagorenko/clinic/internal/session"
	"github.com/mzagorenko/clinic/internal/tokens"
)

func newTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func testHasher() hash.Hasher {
	return hash.Hasher{Name: "sha256", Iterations: 1000, Separator: "$"}
}

func testIssuer() tokens.Issuer {
	return tokens.Issuer{Secret: []byte("test-secret-key"), Algorithm: "HS256", TTL: 15 * time.Minute}
}

func newAuthService(db *gorm.DB) *AuthService {
	return &AuthService{
		DB:         db,
		Sessions:   &session.Store{DB: db},
		Hasher:     testHasher(),
		Issuer:     testIssuer(),
		RefreshTTL: 24 * time.Hour,
	}
}

func newUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db, Sessions: &session.Store{DB: db}, Hasher: testHasher()}
}

func createTestUser(t *testing.T, db *gorm.DB, username, role, password string) *models.User {
	digest, err := testHasher().Hash(password)
	require.NoError(t, err)

	user := models.User{
		Username:       username,
		HashedPassword: digest,
		Role:           role,
		IsActive:       true,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createTestPatient(t *testing.T, db *gorm.DB, p models.Patient) *models.Patient {
	require.NoError(t, db.Create(&p).Error)
	return &p
}

func testCtx() context.Context {
	return context.Background()
}
