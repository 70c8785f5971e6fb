package auth

import (
	goerrors "github.com/goliatone/go-errors"
)

const textCodeInvalidTransition = "INVALID_ACCOUNT_TRANSITION"

// AccountTransition names a one-way change to an account's flags.
type AccountTransition string

const (
	TransitionVerify            AccountTransition = "verify"
	TransitionPromoteAdmin      AccountTransition = "promote_admin"
	TransitionPromoteSuperAdmin AccountTransition = "promote_superadmin"
)

// ActorRef identifies who/what triggered a transition.
type ActorRef struct {
	ID   string
	Type string
}

var systemActor = ActorRef{ID: "system", Type: "system"}

// ApplyTransition flips the flag behind t. It reports false when the flag
// was already set, which callers treat as an idempotent no-op. There are no
// reverse transitions.
func ApplyTransition(user *User, t AccountTransition) (bool, error) {
	if user == nil {
		return false, goerrors.New("user is required for a transition", goerrors.CategoryBadInput).
			WithTextCode(textCodeInvalidTransition)
	}

	var flag *bool
	switch t {
	case TransitionVerify:
		flag = &user.IsVerified
	case TransitionPromoteAdmin:
		flag = &user.IsAdmin
	case TransitionPromoteSuperAdmin:
		flag = &user.IsSuperAdmin
	default:
		return false, goerrors.New("invalid account transition", goerrors.CategoryValidation).
			WithTextCode(textCodeInvalidTransition).
			WithCode(goerrors.CodeBadRequest).
			WithMetadata(map[string]any{"transition": string(t)})
	}

	if *flag {
		return false, nil
	}

	*flag = true
	return true, nil
}
