package auth_test

import (
	"strings"
	"testing"

	"github.com/groceria/groceria-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "Valid password",
			password: "pw123456",
			wantErr:  false,
		},
		{
			name:     "Empty password",
			password: "",
			wantErr:  true,
		},
		{
			name:     "Password over 72 bytes",
			password: strings.Repeat("x", auth.MaxPasswordBytes+1),
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := auth.HashPassword(tt.password)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, hash)
			assert.NotEqual(t, tt.password, hash)

			cost, err := bcrypt.Cost([]byte(hash))
			require.NoError(t, err)
			assert.GreaterOrEqual(t, cost, 10)

			assert.NoError(t, auth.ComparePasswordAndHash(tt.password, hash))
		})
	}
}

func TestHashPassword_Salted(t *testing.T) {
	first, err := auth.HashPassword("pw123456")
	require.NoError(t, err)
	second, err := auth.HashPassword("pw123456")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestComparePasswordAndHash(t *testing.T) {
	password := "pw123456"
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		hash     string
		wantErr  bool
	}{
		{
			name:     "Matching password",
			password: password,
			hash:     hash,
		},
		{
			name:     "Wrong password",
			password: "wrong",
			hash:     hash,
			wantErr:  true,
		},
		{
			name:     "Different case",
			password: "PW123456",
			hash:     hash,
			wantErr:  true,
		},
		{
			name:     "Invalid hash",
			password: password,
			hash:     "invalidhash",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := auth.ComparePasswordAndHash(tt.password, tt.hash)

			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			assert.Error(t, err)
			if tt.hash == hash {
				assert.Equal(t, auth.ErrMismatchedHashAndPassword, err)
			}
		})
	}
}

func TestHashPassword_TooLongIsValidation(t *testing.T) {
	_, err := auth.HashPassword(strings.Repeat("x", auth.MaxPasswordBytes+1))
	assert.ErrorIs(t, err, auth.ErrPasswordTooLong)
	assert.True(t, auth.HasTextCode(err, auth.TextCodeValidation))

	hash, err := auth.HashPassword(strings.Repeat("x", auth.MaxPasswordBytes))
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
}
