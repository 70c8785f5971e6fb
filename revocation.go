package auth

import (
	"context"
)

// IsRevoked reports whether a validated session token was logged out. The
// cache answers positive hits; everything else is confirmed against the
// owner's blacklist. The owner is returned when it was loaded.
func (a *Accounts) IsRevoked(ctx context.Context, token string, claims AuthClaims) (bool, *User, error) {
	if a.revocations != nil {
		revoked, err := a.revocations.IsRevoked(ctx, token)
		if err != nil {
			a.logger.Warn("revocation cache lookup failed: %v", err)
		} else if revoked {
			return true, nil, nil
		}
	}

	user, err := a.store.FindByEmail(ctx, claims.Email())
	if err != nil {
		if IsNotFound(err) {
			return true, nil, nil
		}
		return false, nil, asRichError(err, "failed to retrieve user")
	}

	return user.IsBlacklisted(token), user, nil
}
