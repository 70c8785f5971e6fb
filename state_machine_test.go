package auth_test

import (
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/groceria/groceria-auth"
)

func TestApplyTransition(t *testing.T) {
	tests := []struct {
		name       string
		transition auth.AccountTransition
		flag       func(*auth.User) bool
	}{
		{name: "verify", transition: auth.TransitionVerify, flag: func(u *auth.User) bool { return u.IsVerified }},
		{name: "admin", transition: auth.TransitionPromoteAdmin, flag: func(u *auth.User) bool { return u.IsAdmin }},
		{name: "super admin", transition: auth.TransitionPromoteSuperAdmin, flag: func(u *auth.User) bool { return u.IsSuperAdmin }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &auth.User{}

			changed, err := auth.ApplyTransition(user, tt.transition)
			require.NoError(t, err)
			assert.True(t, changed)
			assert.True(t, tt.flag(user))

			changed, err = auth.ApplyTransition(user, tt.transition)
			require.NoError(t, err)
			assert.False(t, changed)
			assert.True(t, tt.flag(user))
		})
	}
}

func TestApplyTransition_OnlyTouchesItsFlag(t *testing.T) {
	user := &auth.User{}

	_, err := auth.ApplyTransition(user, auth.TransitionPromoteSuperAdmin)
	require.NoError(t, err)

	assert.True(t, user.IsSuperAdmin)
	assert.False(t, user.IsAdmin)
	assert.False(t, user.IsVerified)
}

func TestApplyTransition_Invalid(t *testing.T) {
	_, err := auth.ApplyTransition(&auth.User{}, auth.AccountTransition("unverify"))
	require.Error(t, err)

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, goerrors.CategoryValidation, richErr.Category)

	_, err = auth.ApplyTransition(nil, auth.TransitionVerify)
	assert.Error(t, err)
}
