package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenPurpose scopes a token to one flow. A token minted for one purpose
// is rejected by every other flow.
type TokenPurpose string

const (
	PurposeVerify  TokenPurpose = "verify"
	PurposeResend  TokenPurpose = "resend"
	PurposeReset   TokenPurpose = "reset"
	PurposeSession TokenPurpose = "session"
)

// AuthClaims represents the decoded claims of a validated token
type AuthClaims interface {
	Subject() string
	UserID() string
	Email() string
	Purpose() TokenPurpose
	TokenID() string
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete implementation of AuthClaims
type JWTClaims struct {
	jwt.RegisteredClaims
	UID       string       `json:"uid,omitempty"`
	UserEmail string       `json:"email,omitempty"`
	Scope     TokenPurpose `json:"purpose"`
}

// Verify interface compliance
var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user ID, falling back to the subject
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// Email returns the normalized email claim
func (c *JWTClaims) Email() string {
	return NormalizeEmail(c.UserEmail)
}

func (c *JWTClaims) Purpose() TokenPurpose {
	return c.Scope
}

func (c *JWTClaims) TokenID() string {
	return c.RegisteredClaims.ID
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt == nil {
		return time.Time{}
	}
	return c.RegisteredClaims.IssuedAt.Time
}

// RemainingTTL is how long the token stays valid after now. It is zero for
// expired tokens and for tokens without an expiry.
func (c *JWTClaims) RemainingTTL(now time.Time) time.Duration {
	exp := c.Expires()
	if exp.IsZero() || !exp.After(now) {
		return 0
	}
	return exp.Sub(now)
}
