package auth

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation"
)

type ResetPasswordMessage struct {
	Token    string `json:"-"`
	Password string `json:"password" doc:"New password."`
}

func (p ResetPasswordMessage) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Token, validation.Required),
		validation.Field(&p.Password, validation.Required, validation.Length(1, MaxPasswordBytes)),
	)
}

// ResetPassword replaces the password of the account named by a reset
// token. Reset tokens are not single use; they stay valid until expiry.
func (a *Accounts) ResetPassword(ctx context.Context, msg ResetPasswordMessage) (string, error) {
	ctx, cancel, err := a.begin(ctx, "password reset")
	if err != nil {
		return "", err
	}
	defer cancel()

	if err := msg.Validate(); err != nil {
		return "", validationError(err)
	}

	claims, err := a.tokens.Parse(msg.Token, PurposeReset)
	if err != nil {
		return "", err
	}

	user, err := a.findByEmail(ctx, claims.Email(), "User not found.")
	if err != nil {
		return "", err
	}

	hash, err := a.passwords.HashPassword(msg.Password)
	if err != nil {
		return "", asRichError(err, "failed to hash password")
	}
	user.PasswordHash = hash

	if _, err := a.save(ctx, user, "password reset"); err != nil {
		return "", err
	}

	a.record(ctx, ActivityEventPasswordResetSuccess, user, nil)

	return "Password reset successful", nil
}
