package auth

import (
	"context"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/hashid/pkg/hashid"
)

type SignupMessage struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber"`
}

func (e SignupMessage) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.FullName, validation.Required, validation.Length(1, 200)),
		validation.Field(&e.Email, validation.Required, validation.Length(3, 320), is.Email),
		validation.Field(&e.Password, validation.Required, validation.Length(1, MaxPasswordBytes)),
		validation.Field(&e.PhoneNumber, validation.Required, validation.Length(3, 32)),
	)
}

// SignupResult is the outcome of a successful signup.
type SignupResult struct {
	Message string
	User    *UserView
}

// Signup creates an unverified account and mails a verification link.
func (a *Accounts) Signup(ctx context.Context, msg SignupMessage) (*SignupResult, error) {
	ctx, cancel, err := a.begin(ctx, "signup")
	if err != nil {
		return nil, err
	}
	defer cancel()

	msg.FullName = strings.TrimSpace(msg.FullName)
	msg.Email = NormalizeEmail(msg.Email)
	msg.PhoneNumber = strings.TrimSpace(msg.PhoneNumber)

	if err := msg.Validate(); err != nil {
		return nil, validationError(err)
	}

	if _, err := a.store.FindByEmail(ctx, msg.Email); err == nil {
		return nil, NewConflictError("email")
	} else if !IsNotFound(err) {
		return nil, asRichError(err, "failed to check existing user")
	}

	hash, err := a.passwords.HashPassword(msg.Password)
	if err != nil {
		return nil, asRichError(err, "failed to hash password")
	}

	user := &User{
		FullName:     msg.FullName,
		Email:        msg.Email,
		PhoneNumber:  NormalizePhoneNumber(msg.PhoneNumber, a.cfg.GetDefaultPhoneRegion()),
		PasswordHash: hash,
	}

	if a.cfg.GetUseHashid() {
		if id, err := hashid.NewUUID(msg.Email); err == nil {
			user.ID = id
		}
	}

	// the unique index closes the race between the lookup above and this insert
	created, err := a.store.Create(ctx, user)
	if err != nil {
		return nil, asRichError(err, "could not create user")
	}

	token, _, err := a.tokens.Mint(PurposeVerify, SubjectFromUser(created))
	if err != nil {
		return nil, asRichError(err, "failed to mint verification token")
	}

	a.notify(ctx, created, "Email Verification", templateVerifyEmail, map[string]any{
		"link": a.link("verify", token),
	})

	a.record(ctx, ActivityEventSignup, created, nil)

	return &SignupResult{
		Message: fmt.Sprintf("Welcome %s, kindly check your mail to access the link to verify your email", created.FullName),
		User:    created.View(),
	}, nil
}
