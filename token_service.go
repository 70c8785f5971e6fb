package auth

import (
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// TokenService mints and checks purpose scoped tokens
type TokenService interface {
	Mint(purpose TokenPurpose, subject TokenSubject) (string, time.Time, error)
	Parse(tokenString string, allowed ...TokenPurpose) (*JWTClaims, error)
}

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey []byte
	issuer     string
	ttls       map[TokenPurpose]time.Duration
	now        func() time.Time
	logger     Logger
}

// TokenServiceOption customizes the token service.
type TokenServiceOption func(*TokenServiceImpl)

// WithTokenClock injects the clock used for issuing and validating tokens.
func WithTokenClock(now func() time.Time) TokenServiceOption {
	return func(ts *TokenServiceImpl) {
		if now != nil {
			ts.now = now
		}
	}
}

// WithTokenLogger sets the logger
func WithTokenLogger(logger Logger) TokenServiceOption {
	return func(ts *TokenServiceImpl) {
		if logger != nil {
			ts.logger = logger
		}
	}
}

// NewTokenService creates a new TokenService instance
func NewTokenService(cfg Config, opts ...TokenServiceOption) *TokenServiceImpl {
	ts := &TokenServiceImpl{
		signingKey: []byte(cfg.GetSigningKey()),
		issuer:     cfg.GetIssuer(),
		ttls: map[TokenPurpose]time.Duration{
			PurposeVerify:  orDuration(cfg.GetVerifyTokenTTL(), 10*time.Minute),
			PurposeResend:  orDuration(cfg.GetResendTokenTTL(), 20*time.Minute),
			PurposeReset:   orDuration(cfg.GetResetTokenTTL(), 30*time.Minute),
			PurposeSession: orDuration(cfg.GetSessionTokenTTL(), 3*time.Hour),
		},
		now:    time.Now,
		logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(ts)
		}
	}

	return ts
}

// TTL returns the lifetime of tokens minted for purpose.
func (ts *TokenServiceImpl) TTL(purpose TokenPurpose) time.Duration {
	return ts.ttls[purpose]
}

// Mint signs a token for the given purpose and returns it with its expiry.
func (ts *TokenServiceImpl) Mint(purpose TokenPurpose, subject TokenSubject) (string, time.Time, error) {
	claims, err := purposeClaims(purpose, subject, ts.issuer, ts.now(), ts.ttls[purpose])
	if err != nil {
		return "", time.Time{}, err
	}

	token, err := ts.SignClaims(claims)
	if err != nil {
		return "", time.Time{}, err
	}

	return token, claims.Expires(), nil
}

// SignClaims signs arbitrary JWT claims using the configured signing key.
func (ts *TokenServiceImpl) SignClaims(claims *JWTClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Parse validates signature and expiry. When allowed purposes are given the
// token must carry one of them.
func (ts *TokenServiceImpl) Parse(tokenString string, allowed ...TokenPurpose) (*JWTClaims, error) {
	if tokenString == "" {
		return nil, NewUnauthorizedError("token is missing", TextCodeTokenMissing)
	}

	parserOptions := []jwt.ParserOption{
		jwt.WithTimeFunc(ts.now),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("token service encountered unexpected signing method %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, newTokenExpiredError()
		}
		return nil, newTokenMalformedError(err)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		ts.logger.Error("token service could not decode claims")
		return nil, newTokenMalformedError(nil)
	}

	if len(allowed) > 0 && !slices.Contains(allowed, claims.Purpose()) {
		return nil, newTokenMalformedError(fmt.Errorf("purpose %q not accepted", claims.Purpose()))
	}

	return claims, nil
}

func orDuration(v, def time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return def
}
