package auth

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation"
)

type ForgotPasswordMessage struct {
	Email string `json:"email" example:"ada@example.com" doc:"Account email."`
}

func (p ForgotPasswordMessage) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required),
	)
}

// ForgotPassword mails a reset link to a known account. Unknown addresses
// are reported as not found.
func (a *Accounts) ForgotPassword(ctx context.Context, msg ForgotPasswordMessage) (string, error) {
	ctx, cancel, err := a.begin(ctx, "password reset request")
	if err != nil {
		return "", err
	}
	defer cancel()

	if err := msg.Validate(); err != nil {
		return "", NewValidationError("Email is required.")
	}

	user, err := a.findByEmail(ctx, msg.Email, "User not found.")
	if err != nil {
		return "", err
	}

	token, _, err := a.tokens.Mint(PurposeReset, SubjectFromUser(user))
	if err != nil {
		return "", asRichError(err, "failed to mint reset token")
	}

	a.notify(ctx, user, "Password Reset", templatePasswordReset, map[string]any{
		"link": a.link("reset-password", token),
	})

	a.record(ctx, ActivityEventPasswordResetRequest, user, nil)

	return "Password reset email sent successfully.", nil
}
