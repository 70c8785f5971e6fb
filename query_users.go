package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// UserResult is a single sanitized account.
type UserResult struct {
	Message string
	User    *UserView
}

// UserListResult is every registered account, sanitized.
type UserListResult struct {
	Message string
	Users   []*UserView
}

// GetOneUser returns the sanitized record for id.
func (a *Accounts) GetOneUser(ctx context.Context, id string) (*UserResult, error) {
	ctx, cancel, err := a.begin(ctx, "get user")
	if err != nil {
		return nil, err
	}
	defer cancel()

	userID, err := ParseUserID(id)
	if err != nil {
		return nil, err
	}

	user, err := a.findByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &UserResult{
		Message: fmt.Sprintf("Dear %s, kindly find your information below:", user.FullName),
		User:    user.View(),
	}, nil
}

// GetAllUsers lists every account. An empty collection is reported as not
// found.
func (a *Accounts) GetAllUsers(ctx context.Context) (*UserListResult, error) {
	ctx, cancel, err := a.begin(ctx, "list users")
	if err != nil {
		return nil, err
	}
	defer cancel()

	records, err := a.store.List(ctx)
	if err != nil {
		return nil, asRichError(err, "failed to list users")
	}

	if len(records) == 0 {
		return nil, NewNotFoundError("No available users").WithTextCode(TextCodeNoUsers)
	}

	views := make([]*UserView, 0, len(records))
	for _, record := range records {
		views = append(views, record.View())
	}

	return &UserListResult{
		Message: fmt.Sprintf("Kindly find the %d registered users below", len(views)),
		Users:   views,
	}, nil
}

func (a *Accounts) findByID(ctx context.Context, id uuid.UUID) (*User, error) {
	user, err := a.store.FindByID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, NewNotFoundError("User not found")
		}
		return nil, asRichError(err, "failed to retrieve user")
	}
	return user, nil
}
