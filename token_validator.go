package auth

import (
	"github.com/groceria/groceria-auth/middleware/jwtware"
)

// TokenValidatorFunc adapts a function into a jwtware.TokenValidator.
type TokenValidatorFunc func(tokenString string) (jwtware.AuthClaims, error)

// Validate satisfies the jwtware.TokenValidator interface.
func (f TokenValidatorFunc) Validate(tokenString string) (jwtware.AuthClaims, error) {
	if f == nil {
		return nil, newTokenMalformedError(nil)
	}
	return f(tokenString)
}

// SessionValidator accepts session tokens only. Verification and reset
// tokens never authenticate a request.
func SessionValidator(tokens TokenService) jwtware.TokenValidator {
	return TokenValidatorFunc(func(tokenString string) (jwtware.AuthClaims, error) {
		claims, err := tokens.Parse(tokenString, PurposeSession)
		if err != nil {
			return nil, err
		}
		return claims, nil
	})
}
