package auth

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

type LoginMessage struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (e LoginMessage) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Email, validation.Required),
		validation.Field(&e.Password, validation.Required),
	)
}

// LoginResult carries the session token issued on login.
type LoginResult struct {
	Message   string
	User      *UserView
	Token     string
	ExpiresAt time.Time
}

// Login checks, in order: required fields, account existence, password,
// verification. Only then is a session token minted.
func (a *Accounts) Login(ctx context.Context, msg LoginMessage) (*LoginResult, error) {
	ctx, cancel, err := a.begin(ctx, "login")
	if err != nil {
		return nil, err
	}
	defer cancel()

	if err := msg.Validate(); err != nil {
		return nil, NewValidationError("Please enter all fields (email & password).")
	}

	user, err := a.findByEmail(ctx, msg.Email, "User not found.")
	if err != nil {
		return nil, err
	}

	if err := a.passwords.ComparePasswordAndHash(msg.Password, user.PasswordHash); err != nil {
		a.record(ctx, ActivityEventLoginFailure, user, map[string]any{"reason": "password"})
		return nil, NewUnauthorizedError("Incorrect Password.", TextCodeInvalidCredentials)
	}

	if !user.IsVerified {
		a.record(ctx, ActivityEventLoginFailure, user, map[string]any{"reason": "not_verified"})
		return nil, NewForbiddenError("Your account is not verified. Kindly check your mail for the verification link.", TextCodeNotVerified)
	}

	if promoted := a.bootstrapPromote(user); len(promoted) > 0 {
		if user, err = a.save(ctx, user, "bootstrap promotion"); err != nil {
			return nil, err
		}
		a.recordPromotions(ctx, user, promoted)
	}

	token, expiresAt, err := a.tokens.Mint(PurposeSession, SubjectFromUser(user))
	if err != nil {
		return nil, asRichError(err, "failed to mint session token")
	}

	a.record(ctx, ActivityEventLoginSuccess, user, nil)

	return &LoginResult{
		Message:   "User logged in successfully",
		User:      user.View(),
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}
