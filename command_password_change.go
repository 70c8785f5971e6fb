package auth

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation"
)

type ChangePasswordMessage struct {
	Token            string `json:"-"`
	ExistingPassword string `json:"existingPassword"`
	NewPassword      string `json:"newPassword"`
}

func (p ChangePasswordMessage) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Token, validation.Required),
		validation.Field(&p.ExistingPassword, validation.Required),
		validation.Field(&p.NewPassword, validation.Required, validation.Length(1, MaxPasswordBytes)),
	)
}

// ChangePassword requires a live session token and the current password.
func (a *Accounts) ChangePassword(ctx context.Context, msg ChangePasswordMessage) (string, error) {
	ctx, cancel, err := a.begin(ctx, "password change")
	if err != nil {
		return "", err
	}
	defer cancel()

	if err := msg.Validate(); err != nil {
		return "", validationError(err)
	}

	claims, err := a.tokens.Parse(msg.Token, PurposeSession)
	if err != nil {
		return "", err
	}

	user, err := a.findByEmail(ctx, claims.Email(), "User not found.")
	if err != nil {
		return "", err
	}

	if user.IsBlacklisted(msg.Token) {
		return "", NewUnauthorizedError("Token has been revoked. Please log in again.", TextCodeTokenRevoked)
	}

	if err := a.passwords.ComparePasswordAndHash(msg.ExistingPassword, user.PasswordHash); err != nil {
		return "", NewUnauthorizedError("Existing password does not match.", TextCodePasswordMismatch)
	}

	hash, err := a.passwords.HashPassword(msg.NewPassword)
	if err != nil {
		return "", asRichError(err, "failed to hash password")
	}
	user.PasswordHash = hash

	if _, err := a.save(ctx, user, "password change"); err != nil {
		return "", err
	}

	a.notify(ctx, user, "Password Changed", templatePasswordChanged, nil)
	a.record(ctx, ActivityEventPasswordChanged, user, nil)

	return "Password changed successfully.", nil
}
