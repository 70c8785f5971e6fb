package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenSubject is the identity embedded in a minted token.
type TokenSubject struct {
	UserID string
	Email  string
}

// SubjectFromUser builds a TokenSubject for the given account.
func SubjectFromUser(user *User) TokenSubject {
	if user == nil {
		return TokenSubject{}
	}
	return TokenSubject{UserID: user.ID.String(), Email: user.Email}
}

// purposeClaims shapes the claim set for each purpose:
// verify and session carry id and email, resend and reset carry the email only.
func purposeClaims(purpose TokenPurpose, subject TokenSubject, issuer string, issuedAt time.Time, ttl time.Duration) (*JWTClaims, error) {
	if ttl <= 0 {
		return nil, goerrors.New("token TTL must be positive", goerrors.CategoryBadInput).
			WithMetadata(map[string]any{"purpose": string(purpose)})
	}

	email := NormalizeEmail(subject.Email)
	if email == "" {
		return nil, goerrors.New("token subject requires an email", goerrors.CategoryBadInput)
	}

	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
		UserEmail: email,
		Scope:     purpose,
	}

	switch purpose {
	case PurposeVerify, PurposeSession:
		if subject.UserID == "" {
			return nil, goerrors.New("token subject requires a user id", goerrors.CategoryBadInput).
				WithMetadata(map[string]any{"purpose": string(purpose)})
		}
		claims.UID = subject.UserID
		claims.RegisteredClaims.Subject = subject.UserID
	case PurposeResend, PurposeReset:
	default:
		return nil, goerrors.New("unknown token purpose", goerrors.CategoryBadInput).
			WithMetadata(map[string]any{"purpose": string(purpose)})
	}

	return claims, nil
}
