package auth

import (
	"context"

	"github.com/groceria/groceria-auth/middleware/jwtware"
)

// LogoutMessage carries the raw Authorization header value.
type LogoutMessage struct {
	Authorization string
}

// Logout blacklists the presented session token. Logging out twice with
// the same token succeeds and leaves a single blacklist entry.
func (a *Accounts) Logout(ctx context.Context, msg LogoutMessage) (string, error) {
	ctx, cancel, err := a.begin(ctx, "logout")
	if err != nil {
		return "", err
	}
	defer cancel()

	token, err := jwtware.TokenFromAuthorization(msg.Authorization, a.authScheme())
	if err != nil {
		return "", NewUnauthorizedError("Unauthorized: No token provided", TextCodeTokenMissing)
	}

	claims, err := a.tokens.Parse(token, PurposeSession)
	if err != nil {
		return "", err
	}

	user, err := a.findByEmail(ctx, claims.Email(), "User not found.")
	if err != nil {
		return "", err
	}

	added, err := a.store.AppendBlacklist(ctx, user.ID, token)
	if err != nil {
		if IsNotFound(err) {
			return "", NewNotFoundError("User not found.")
		}
		return "", asRichError(err, "failed to persist user during logout")
	}
	if added {
		a.record(ctx, ActivityEventLogout, user, map[string]any{"jti": claims.TokenID()})
	}

	if a.revocations != nil {
		if ttl := claims.RemainingTTL(a.now()); ttl > 0 {
			if err := a.revocations.Revoke(ctx, token, ttl); err != nil {
				a.logger.Warn("failed to mirror revoked token to cache: %v", err)
			}
		}
	}

	return "User logged out successfully.", nil
}

func (a *Accounts) authScheme() string {
	if scheme := a.cfg.GetAuthScheme(); scheme != "" {
		return scheme
	}
	return "Bearer"
}
