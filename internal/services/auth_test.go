package services_test

import (
	"testing"
	"time"

	"bullet-journal/backend/internal/services"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRegisterAndLogin(t *testing.T) {
	db := setupTestDB(t)
	register := services.NewRegisterService(bcrypt.MinCost)
	auth := services.NewAuthService("test-secret", time.Hour)

	user, err := register.RegisterUser(db, services.RegistrationRequest{
		Email:    "ryder@example.com",
		Password: "correct horse battery",
		Name:     "Ryder",
	})
	require.NoError(t, err)
	assert.Equal(t, "ryder@example.com", user.Email)
	assert.NotEqual(t, "correct horse battery", user.PasswordHash)

	loggedIn, err := auth.LoginUser(db, "ryder@example.com", "correct horse battery")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	_, err = auth.LoginUser(db, "ryder@example.com", "wrong password")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	_, err = auth.LoginUser(db, "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	register := services.NewRegisterService(bcrypt.MinCost)

	_, err := register.RegisterUser(db, services.RegistrationRequest{
		Email:    "dup@example.com",
		Password: "first password",
		Name:     "First",
	})
	require.NoError(t, err)

	_, err = register.RegisterUser(db, services.RegistrationRequest{
		Email:    "dup@example.com",
		Password: "second password",
		Name:     "Second",
	})
	assert.ErrorIs(t, err, services.ErrEmailTaken)
}

func TestGenerateTokenClaims(t *testing.T) {
	db := setupTestDB(t)
	register := services.NewRegisterService(bcrypt.MinCost)
	auth := services.NewAuthService("test-secret", time.Hour)

	user, err := register.RegisterUser(db, services.RegistrationRequest{
		Email:    "claims@example.com",
		Password: "long enough pw",
		Name:     "Claims",
	})
	require.NoError(t, err)

	tokenStr, err := auth.GenerateToken(user)
	require.NoError(t, err)

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, user.ID.String(), claims["id"])
	assert.Equal(t, user.Email, claims["email"])
	_, hasTeam := claims["teamId"]
	assert.False(t, hasTeam)
}
