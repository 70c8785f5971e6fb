package auth

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"

	"github.com/groceria/groceria-auth/middleware/jwtware"
)

// RawTokenKey is the router local holding the bearer token of a protected
// request.
const RawTokenKey = "auth.raw_token"

// ValidationListener aliases the jwtware listener so consumers can use auth helpers directly.
type ValidationListener = jwtware.ValidationListener

// ContextEnricherAdapter adapts jwtware.AuthClaims to auth.AuthClaims and
// stores them in the standard context.
func ContextEnricherAdapter(c context.Context, claims jwtware.AuthClaims) context.Context {
	authClaims, ok := claims.(AuthClaims)
	if !ok {
		return c
	}
	return WithClaimsContext(c, authClaims)
}

// RegisterValidationListeners appends listeners to a jwtware.Config in a safe, reusable way.
func RegisterValidationListeners(cfg *jwtware.Config, listeners ...ValidationListener) {
	if cfg == nil || len(listeners) == 0 {
		return
	}
	cfg.ValidationListeners = append(cfg.ValidationListeners, listeners...)
}

// AccessControl guards account routes. Only session tokens authenticate,
// and every request is checked against the logout blacklist.
type AccessControl struct {
	accounts *Accounts
	tokens   TokenService
	cfg      Config
	errors   *ErrorResponder
}

func NewAccessControl(accounts *Accounts, tokens TokenService, cfg Config, responder *ErrorResponder) *AccessControl {
	if responder == nil {
		responder = NewErrorResponder(nil)
	}
	return &AccessControl{
		accounts: accounts,
		tokens:   tokens,
		cfg:      cfg,
		errors:   responder,
	}
}

// Protect authenticates the request with a bearer session token.
func (ac *AccessControl) Protect() router.MiddlewareFunc {
	jcfg := jwtware.Config{
		ErrorHandler:    ac.HandleError,
		ContextKey:      ac.cfg.GetContextKey(),
		RawTokenKey:     RawTokenKey,
		TokenLookup:     ac.cfg.GetTokenLookup(),
		AuthScheme:      ac.cfg.GetAuthScheme(),
		TokenValidator:  SessionValidator(ac.tokens),
		ContextEnricher: ContextEnricherAdapter,
	}
	RegisterValidationListeners(&jcfg, ac.rejectRevoked)
	return jwtware.New(jcfg)
}

// RequireAdmin must run after Protect. With super set it requires the
// super admin flag instead.
func (ac *AccessControl) RequireAdmin(super bool) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			user, ok := FromContext(ctx.Context())
			if !ok {
				return ac.HandleError(ctx, NewUnauthorizedError("Unauthorized", TextCodeTokenMissing))
			}

			allowed := user.IsAdmin || user.IsSuperAdmin
			message := "Access denied. Admins only."
			if super {
				allowed = user.IsSuperAdmin
				message = "Access denied. Super Admins only."
			}

			if !allowed {
				return ac.HandleError(ctx, NewForbiddenError(message, TextCodeAdminRequired))
			}
			return next(ctx)
		}
	}
}

func (ac *AccessControl) rejectRevoked(ctx router.Context, raw string, claims jwtware.AuthClaims) error {
	authClaims, ok := claims.(AuthClaims)
	if !ok {
		return newTokenMalformedError(nil)
	}

	revoked, user, err := ac.accounts.IsRevoked(ctx.Context(), raw, authClaims)
	if err != nil {
		return err
	}
	if revoked {
		return NewUnauthorizedError("Token has been revoked. Please log in again.", TextCodeTokenRevoked)
	}

	if user != nil {
		ctx.SetContext(WithContext(ctx.Context(), user))
	}
	return nil
}

// HandleError maps middleware failures. A missing header or a revoked token
// is 401; a token that fails validation is 403.
func (ac *AccessControl) HandleError(ctx router.Context, err error) error {
	if errors.Is(err, jwtware.ErrJWTMissingOrMalformed) {
		return ac.errors.Handle(ctx, NewUnauthorizedError("Unauthorized: No token provided", TextCodeTokenMissing))
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		switch {
		case richErr.Category == goerrors.CategoryInternal:
		case richErr.TextCode == TextCodeTokenRevoked:
		case IsTokenExpiredError(richErr), IsMalformedError(richErr):
			return ac.errors.Handle(ctx, NewForbiddenError("Invalid or expired token", richErr.TextCode))
		}
		return ac.errors.Handle(ctx, richErr)
	}

	return ac.errors.Handle(ctx, NewForbiddenError("Invalid or expired token", TextCodeTokenMalformed))
}
