package users

import (
	"testing"
	"time"

	"mercato/globals"
	"mercato/middleware"
	"mercato/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

func TestGenerateAccessTokenRoundTrip(t *testing.T) {
	user := models.User{
		ID:      primitive.NewObjectID(),
		Email:   "admin@example.com",
		IsAdmin: true,
	}

	tokenString, err := GenerateAccessToken(user)
	require.NoError(t, err)

	claims := &middleware.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return globals.JwtSecret, nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.True(t, claims.IsAdmin)

	remaining := time.Until(claims.ExpiresAt.Time)
	assert.Greater(t, remaining, 23*time.Hour)
	assert.LessOrEqual(t, remaining, 24*time.Hour)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	tokenString, err := GenerateAccessToken(models.User{ID: primitive.NewObjectID()})
	require.NoError(t, err)

	_, err = jwt.ParseWithClaims(tokenString, &middleware.Claims{}, func(*jwt.Token) (any, error) {
		return []byte("some-other-secret"), nil
	})
	assert.Error(t, err)
}

func TestPasswordHashVerification(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.DefaultCost)
	require.NoError(t, err)

	assert.NoError(t, bcrypt.CompareHashAndPassword(hash, []byte("s3cret-pass")))
	assert.Error(t, bcrypt.CompareHashAndPassword(hash, []byte("wrong-pass")))
}

func TestUserInputValidation(t *testing.T) {
	valid := userInput{
		Username: "giulia",
		Email:    "giulia@example.com",
		Password: "hunter22",
		Phone:    "555-0101",
	}
	assert.NoError(t, valid.validate())

	missing := valid
	missing.Email = ""
	assert.Error(t, missing.validate())

	missing = valid
	missing.Password = ""
	assert.Error(t, missing.validate())
}
