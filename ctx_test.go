package auth

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func sessionClaims() *JWTClaims {
	return &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user123"},
		UID:              "user123",
		UserEmail:        "ada@x.com",
		Scope:            PurposeSession,
	}
}

func TestUserContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	_, ok = FromContext(WithContext(context.Background(), nil))
	assert.False(t, ok, "nil user should not count as present")

	user := &User{ID: uuid.New(), Email: "ada@x.com"}
	got, ok := FromContext(WithContext(context.Background(), user))
	assert.True(t, ok)
	assert.Same(t, user, got)
}

func TestClaimsContext(t *testing.T) {
	_, ok := GetClaims(context.Background())
	assert.False(t, ok)

	claims := sessionClaims()
	got, ok := GetClaims(WithClaimsContext(context.Background(), claims))
	assert.True(t, ok)
	assert.Equal(t, "user123", got.UserID())
	assert.Equal(t, "ada@x.com", got.Email())
}
