package auth

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
)

const defaultOperationTimeout = 10 * time.Second

const (
	templateVerifyEmail     = "verify_email"
	templatePasswordReset   = "password_reset"
	templatePasswordChanged = "password_changed"
)

// Accounts orchestrates the account lifecycle.
type Accounts struct {
	store       CredentialStore
	tokens      TokenService
	cfg         Config
	passwords   PasswordAuthenticator
	mailer      Mailer
	renderer    MessageRenderer
	revocations RevocationCache
	activity    ActivitySink
	logger      Logger
	now         func() time.Time
	timeout     time.Duration
}

// AccountsOption customizes Accounts.
type AccountsOption func(*Accounts)

func WithMailer(m Mailer) AccountsOption {
	return func(a *Accounts) {
		if m != nil {
			a.mailer = m
		}
	}
}

func WithRenderer(r MessageRenderer) AccountsOption {
	return func(a *Accounts) {
		if r != nil {
			a.renderer = r
		}
	}
}

// WithRevocationCache mirrors logouts into cache so access checks can skip
// the store for revoked tokens.
func WithRevocationCache(c RevocationCache) AccountsOption {
	return func(a *Accounts) {
		a.revocations = c
	}
}

func WithActivitySink(sink ActivitySink) AccountsOption {
	return func(a *Accounts) {
		a.activity = normalizeActivitySink(sink)
	}
}

func WithLogger(logger Logger) AccountsOption {
	return func(a *Accounts) {
		if logger != nil {
			a.logger = logger
		}
	}
}

func WithPasswordAuthenticator(p PasswordAuthenticator) AccountsOption {
	return func(a *Accounts) {
		if p != nil {
			a.passwords = p
		}
	}
}

// WithClock injects the clock used for activity timestamps and revocation TTLs.
func WithClock(now func() time.Time) AccountsOption {
	return func(a *Accounts) {
		if now != nil {
			a.now = now
		}
	}
}

func WithOperationTimeout(d time.Duration) AccountsOption {
	return func(a *Accounts) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// NewAccounts wires the lifecycle around a store and a token service.
func NewAccounts(store CredentialStore, tokens TokenService, cfg Config, opts ...AccountsOption) *Accounts {
	if store == nil {
		panic("ACCOUNTS: credential store is required")
	}
	if tokens == nil {
		panic("ACCOUNTS: token service is required")
	}
	if cfg == nil {
		panic("ACCOUNTS: config is required")
	}

	a := &Accounts{
		store:     store,
		tokens:    tokens,
		cfg:       cfg,
		passwords: BcryptPasswords{},
		mailer:    noopMailer{},
		renderer:  defaultRenderer{},
		activity:  noopActivitySink{},
		logger:    defLogger{},
		now:       time.Now,
		timeout:   defaultOperationTimeout,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}

	return a
}

// begin checks for cancellation and scopes the operation to the timeout.
func (a *Accounts) begin(ctx context.Context, op string) (context.Context, context.CancelFunc, error) {
	select {
	case <-ctx.Done():
		return nil, nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during "+op,
		)
	default:
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	return ctx, cancel, nil
}

func (a *Accounts) findByEmail(ctx context.Context, email, notFoundMessage string) (*User, error) {
	user, err := a.store.FindByEmail(ctx, email)
	if err != nil {
		if IsNotFound(err) {
			return nil, NewNotFoundError(notFoundMessage)
		}
		return nil, asRichError(err, "failed to retrieve user")
	}
	return user, nil
}

func (a *Accounts) save(ctx context.Context, user *User, op string) (*User, error) {
	saved, err := a.store.Save(ctx, user)
	if err != nil {
		if IsNotFound(err) {
			return nil, NewNotFoundError("User not found.")
		}
		return nil, asRichError(err, "failed to persist user during "+op)
	}
	return saved, nil
}

// notify renders and hands a message to the mailer. Delivery failures are
// logged and never surface to the caller.
func (a *Accounts) notify(ctx context.Context, user *User, subject, template string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	data["fullName"] = user.FullName
	data["email"] = user.Email

	body, err := a.renderer.Render(template, data)
	if err != nil {
		a.logger.Error("failed to render email %s: %v", template, err)
		return
	}

	msg := Message{
		To:       user.Email,
		Subject:  subject,
		HTMLBody: body,
	}

	if err := a.mailer.Send(ctx, msg); err != nil {
		a.logger.Error("failed to send %q to %s: %v", subject, user.Email, err)
	}
}

func (a *Accounts) record(ctx context.Context, eventType ActivityEventType, user *User, metadata map[string]any) {
	event := ActivityEvent{
		EventType:  eventType,
		Actor:      systemActor,
		Metadata:   metadata,
		OccurredAt: a.now().UTC(),
	}
	if user != nil {
		event.UserID = user.ID.String()
		event.Email = user.Email
		event.Actor = ActorRef{ID: event.UserID, Type: "user"}
	}

	if err := a.activity.Record(ctx, event); err != nil {
		a.logger.Warn("activity sink error for %s: %v", eventType, err)
	}
}

// link builds an absolute API link on the public base URL.
func (a *Accounts) link(path, token string) string {
	base := strings.TrimRight(a.cfg.GetPublicBaseURL(), "/")
	return fmt.Sprintf("%s/api/v1/%s/%s", base, strings.Trim(path, "/"), token)
}

// validationError turns ozzo errors into a tagged validation error that
// lists the offending fields.
func validationError(err error) error {
	if err == nil {
		return nil
	}

	richErr := NewValidationError(err.Error())
	if fieldErrs, ok := err.(validation.Errors); ok {
		fields := make(map[string]any, len(fieldErrs))
		for field, ferr := range fieldErrs {
			fields[field] = ferr.Error()
		}
		richErr = richErr.WithMetadata(map[string]any{"fields": fields})
	}
	return richErr
}

type defaultRenderer struct{}

func (defaultRenderer) Render(name string, data map[string]any) (string, error) {
	fullName, link := escapeValue(data["fullName"]), escapeValue(data["link"])
	switch name {
	case templateVerifyEmail:
		return fmt.Sprintf(`<p>Hello %s,</p><p>Verify your email: <a href="%s">%s</a></p>`, fullName, link, link), nil
	case templatePasswordReset:
		return fmt.Sprintf(`<p>Hello %s,</p><p>Reset your password: <a href="%s">%s</a></p>`, fullName, link, link), nil
	case templatePasswordChanged:
		return fmt.Sprintf(`<p>Hello %s,</p><p>Your password was changed.</p>`, fullName), nil
	}
	return "", fmt.Errorf("unknown template %q", name)
}

func escapeValue(v any) string {
	if v == nil {
		return ""
	}
	return html.EscapeString(fmt.Sprint(v))
}
