package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds the account service options. A single signing key is shared
// by the token service and the access control middleware.
type Config interface {
	GetSigningKey() string
	GetIssuer() string
	GetContextKey() string
	GetAuthScheme() string
	GetTokenLookup() string
	GetVerifyTokenTTL() time.Duration
	GetResendTokenTTL() time.Duration
	GetResetTokenTTL() time.Duration
	GetSessionTokenTTL() time.Duration
	GetPublicBaseURL() string
	GetVerifySuccessURL() string
	GetVerifyExpiredURL() string
	GetDefaultPhoneRegion() string
	GetUseHashid() bool
	GetProtectAdminRoutes() bool
	// GetBootstrapSuperAdminEmails lists accounts promoted to admin and
	// super admin once verified.
	GetBootstrapSuperAdminEmails() []string
}

// CredentialStore persists user records.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	Create(ctx context.Context, user *User) (*User, error)
	// Save persists every field except TokenBlacklist.
	Save(ctx context.Context, user *User) (*User, error)
	// AppendBlacklist atomically adds token to the user's blacklist and
	// reports whether it was not already present.
	AppendBlacklist(ctx context.Context, id uuid.UUID, token string) (bool, error)
	List(ctx context.Context) ([]*User, error)
}

// Message is an outbound email.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
}

// Mailer delivers messages. Implementations decide whether delivery is
// synchronous; Accounts never fails a request because of a mail error.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// MessageRenderer turns a named template and its data into an HTML body.
type MessageRenderer interface {
	Render(name string, data map[string]any) (string, error)
}

// RevocationCache mirrors blacklisted tokens for fast lookups.
type RevocationCache interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] ACCOUNTS "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

type noopMailer struct{}

func (noopMailer) Send(context.Context, Message) error { return nil }
