package auth

import (
	"context"
	"fmt"
	"slices"
)

// PromotionResult carries the promoted account.
type PromotionResult struct {
	Message string
	User    *UserView
}

// MakeAdmin grants the admin flag. Promoting an admin again is a no-op.
func (a *Accounts) MakeAdmin(ctx context.Context, id string) (*PromotionResult, error) {
	return a.promote(ctx, id, TransitionPromoteAdmin, "Dear %s, you're now an admin")
}

// MakeSuperAdmin grants the super admin flag. It does not imply admin.
func (a *Accounts) MakeSuperAdmin(ctx context.Context, id string) (*PromotionResult, error) {
	return a.promote(ctx, id, TransitionPromoteSuperAdmin, "Dear %s, you're now a Super Admin")
}

func (a *Accounts) promote(ctx context.Context, rawID string, t AccountTransition, format string) (*PromotionResult, error) {
	ctx, cancel, err := a.begin(ctx, string(t))
	if err != nil {
		return nil, err
	}
	defer cancel()

	id, err := ParseUserID(rawID)
	if err != nil {
		return nil, err
	}

	user, err := a.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changed, err := ApplyTransition(user, t)
	if err != nil {
		return nil, err
	}

	if changed {
		if user, err = a.save(ctx, user, string(t)); err != nil {
			return nil, err
		}
		a.record(ctx, ActivityEventAccountPromoted, user, map[string]any{"transition": string(t)})
	}

	return &PromotionResult{
		Message: fmt.Sprintf(format, user.FullName),
		User:    user.View(),
	}, nil
}

// bootstrapPromote grants both admin flags to a verified account listed in
// the bootstrap super admin emails. It returns the transitions it applied;
// the caller saves the user.
func (a *Accounts) bootstrapPromote(user *User) []AccountTransition {
	if user == nil || !user.IsVerified || !a.isBootstrapSuperAdmin(user.Email) {
		return nil
	}

	var applied []AccountTransition
	for _, t := range []AccountTransition{TransitionPromoteAdmin, TransitionPromoteSuperAdmin} {
		if changed, err := ApplyTransition(user, t); err == nil && changed {
			applied = append(applied, t)
		}
	}
	return applied
}

func (a *Accounts) isBootstrapSuperAdmin(email string) bool {
	email = NormalizeEmail(email)
	return slices.ContainsFunc(a.cfg.GetBootstrapSuperAdminEmails(), func(candidate string) bool {
		return NormalizeEmail(candidate) == email
	})
}

func (a *Accounts) recordPromotions(ctx context.Context, user *User, applied []AccountTransition) {
	for _, t := range applied {
		a.record(ctx, ActivityEventAccountPromoted, user, map[string]any{
			"transition": string(t),
			"bootstrap":  true,
		})
	}
}
