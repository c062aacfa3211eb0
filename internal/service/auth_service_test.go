package service

import (
	"testing"
	"time"

	"cogniedu_backend/internal/config"
	"cogniedu_backend/internal/model"
	"cogniedu_backend/internal/repository"
	"cogniedu_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthService(db *gorm.DB) *AuthService {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret-that-is-long-enough-1234"
	cfg.JWT.ExpireTime = time.Hour
	return NewAuthService(repository.NewUserRepository(db), cfg)
}

func TestRegister(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	user, err := svc.Register("آرش", "arash@example.com", "secret123")
	require.NoError(t, err)

	assert.Equal(t, model.RoleCitizen, user.Role)
	assert.Equal(t, 0, user.Level)
	assert.Zero(t, user.XP)
	// The stored password is a bcrypt hash, never the plaintext.
	assert.NotEqual(t, "secret123", user.Password)

	_, err = svc.Register("دیگری", "arash@example.com", "other")
	assert.ErrorIs(t, err, util.ErrEmailRegistered)
}

func TestCreateStaff(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	teacher, err := svc.CreateStaff("معلم", "teacher@example.com", "secret123", model.RoleTeacher)
	require.NoError(t, err)
	assert.Equal(t, util.StaffDefaultLevel, teacher.Level)

	admin, err := svc.CreateStaff("مدیر", "admin@example.com", "secret123", model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, util.MaxLevel, admin.Level)

	_, err = svc.CreateStaff("شهروند", "citizen@example.com", "secret123", model.RoleCitizen)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}

func TestLogin(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	registered, err := svc.Register("آرش", "login@example.com", "secret123")
	require.NoError(t, err)

	token, user, err := svc.Login("login@example.com", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, registered.ID, user.ID)
	assert.NotNil(t, user.LastLogin)

	claims, err := util.ParseJWT(token, svc.Cfg.JWT.Secret)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, claims.UserID)
	assert.Equal(t, model.RoleCitizen, claims.Role)

	_, _, err = svc.Login("login@example.com", "wrong")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)

	_, _, err = svc.Login("nobody@example.com", "secret123")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
}
