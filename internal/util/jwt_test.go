package util

import (
	"testing"
	"time"

	"cogniedu_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	user := &model.User{Email: "u@example.com", Role: model.RoleCitizen}
	user.ID = 42
	secret := "test-secret-that-is-long-enough-1234"

	token, err := GenerateJWT(user, secret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, secret)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, model.RoleCitizen, claims.Role)
	assert.Equal(t, "u@example.com", claims.Email)
}

func TestParseJWTRejectsBadTokens(t *testing.T) {
	user := &model.User{Email: "u@example.com", Role: model.RoleCitizen}
	user.ID = 1
	secret := "test-secret-that-is-long-enough-1234"

	token, err := GenerateJWT(user, secret, time.Hour)
	require.NoError(t, err)

	_, err = ParseJWT(token, "a-different-secret-also-long-enough")
	assert.Error(t, err)

	expired, err := GenerateJWT(user, secret, -time.Hour)
	require.NoError(t, err)
	_, err = ParseJWT(expired, secret)
	assert.Error(t, err)

	_, err = ParseJWT("not-a-token", secret)
	assert.Error(t, err)
}
