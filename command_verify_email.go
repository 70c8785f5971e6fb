package auth

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation"
)

// VerificationStatus describes how a verification request ended.
type VerificationStatus string

const (
	VerificationVerified        VerificationStatus = "verified"
	VerificationAlreadyVerified VerificationStatus = "already_verified"
	VerificationExpired         VerificationStatus = "expired"
	VerificationResent          VerificationStatus = "resent"
)

// VerificationResult tells the transport where to send the user.
type VerificationResult struct {
	Status   VerificationStatus
	Redirect string
	Message  string
}

// VerifyEmail flips the account to verified. Bad or expired tokens resolve
// to the expired destination instead of an error.
func (a *Accounts) VerifyEmail(ctx context.Context, token string) (*VerificationResult, error) {
	ctx, cancel, err := a.begin(ctx, "email verification")
	if err != nil {
		return nil, err
	}
	defer cancel()

	claims, err := a.tokens.Parse(token, PurposeVerify, PurposeResend)
	if err != nil {
		a.logger.Info("verification token rejected: %v", err)
		return &VerificationResult{
			Status:   VerificationExpired,
			Redirect: a.cfg.GetVerifyExpiredURL(),
		}, nil
	}

	user, err := a.findByEmail(ctx, claims.Email(), "User not found")
	if err != nil {
		return nil, err
	}

	changed, err := ApplyTransition(user, TransitionVerify)
	if err != nil {
		return nil, err
	}

	if !changed {
		return &VerificationResult{
			Status:   VerificationAlreadyVerified,
			Redirect: a.cfg.GetVerifySuccessURL(),
		}, nil
	}

	promoted := a.bootstrapPromote(user)

	if _, err := a.save(ctx, user, "email verification"); err != nil {
		return nil, err
	}

	a.record(ctx, ActivityEventEmailVerified, user, nil)
	a.recordPromotions(ctx, user, promoted)

	return &VerificationResult{
		Status:   VerificationVerified,
		Redirect: a.cfg.GetVerifySuccessURL(),
	}, nil
}

type ResendVerificationMessage struct {
	Email string `json:"email"`
}

func (e ResendVerificationMessage) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Email, validation.Required),
	)
}

// ResendVerification mails a fresh verification link. Verified accounts
// short-circuit to the success destination.
func (a *Accounts) ResendVerification(ctx context.Context, msg ResendVerificationMessage) (*VerificationResult, error) {
	ctx, cancel, err := a.begin(ctx, "verification resend")
	if err != nil {
		return nil, err
	}
	defer cancel()

	if err := msg.Validate(); err != nil {
		return nil, NewValidationError("Email is required.")
	}

	user, err := a.findByEmail(ctx, msg.Email, "User not found.")
	if err != nil {
		return nil, err
	}

	if user.IsVerified {
		return &VerificationResult{
			Status:   VerificationAlreadyVerified,
			Redirect: a.cfg.GetVerifySuccessURL(),
		}, nil
	}

	token, _, err := a.tokens.Mint(PurposeResend, SubjectFromUser(user))
	if err != nil {
		return nil, asRichError(err, "failed to mint verification token")
	}

	a.notify(ctx, user, "Verification email", templateVerifyEmail, map[string]any{
		"link": a.link("verify", token),
	})

	a.record(ctx, ActivityEventVerificationResent, user, nil)

	return &VerificationResult{
		Status:  VerificationResent,
		Message: "Verification email resent successfully.",
	}, nil
}
