package auth_test

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	auth "github.com/groceria/groceria-auth"
)

// testConfig implements auth.Config
type testConfig struct {
	signingKey   string
	issuer       string
	baseURL      string
	protectAdmin bool
	useHashid    bool
	superAdmins  []string
}

func newTestConfig() *testConfig {
	return &testConfig{
		signingKey:   "test-signing-key",
		issuer:       "groceria-test",
		baseURL:      "https://api.groceria.test",
		protectAdmin: true,
	}
}

func (c *testConfig) GetSigningKey() string             { return c.signingKey }
func (c *testConfig) GetIssuer() string                 { return c.issuer }
func (c *testConfig) GetContextKey() string             { return "user" }
func (c *testConfig) GetAuthScheme() string             { return "Bearer" }
func (c *testConfig) GetTokenLookup() string            { return "header:Authorization" }
func (c *testConfig) GetVerifyTokenTTL() time.Duration  { return 10 * time.Minute }
func (c *testConfig) GetResendTokenTTL() time.Duration  { return 20 * time.Minute }
func (c *testConfig) GetResetTokenTTL() time.Duration   { return 30 * time.Minute }
func (c *testConfig) GetSessionTokenTTL() time.Duration { return 3 * time.Hour }
func (c *testConfig) GetPublicBaseURL() string          { return c.baseURL }
func (c *testConfig) GetVerifySuccessURL() string       { return "https://app.test/#/congrat" }
func (c *testConfig) GetVerifyExpiredURL() string       { return "https://app.test/#/expired" }
func (c *testConfig) GetDefaultPhoneRegion() string     { return "NG" }
func (c *testConfig) GetUseHashid() bool                { return c.useHashid }
func (c *testConfig) GetProtectAdminRoutes() bool       { return c.protectAdmin }
func (c *testConfig) GetBootstrapSuperAdminEmails() []string {
	return c.superAdmins
}

// memStore is an in-memory CredentialStore. Records are copied on the way
// in and out so callers never share state with the store.
type memStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]*auth.User
	saves   int
	now     func() time.Time
}

func newMemStore(now func() time.Time) *memStore {
	return &memStore{records: map[uuid.UUID]*auth.User{}, now: now}
}

func cloneUser(u *auth.User) *auth.User {
	c := *u
	c.TokenBlacklist = slices.Clone(u.TokenBlacklist)
	if c.TokenBlacklist == nil {
		c.TokenBlacklist = []string{}
	}
	return &c
}

func (s *memStore) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = auth.NormalizeEmail(email)
	for _, u := range s.records {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (s *memStore) FindByID(_ context.Context, id uuid.UUID) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.records[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (s *memStore) Create(_ context.Context, user *auth.User) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.Email = auth.NormalizeEmail(user.Email)
	for _, u := range s.records {
		if u.Email == user.Email {
			return nil, &auth.DuplicateKeyError{Field: "email"}
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := s.now()
	user.CreatedAt, user.UpdatedAt = &now, &now

	s.records[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

func (s *memStore) Save(_ context.Context, user *auth.User) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[user.ID]; !ok {
		return nil, auth.ErrUserNotFound
	}
	now := s.now()
	user.UpdatedAt = &now
	s.records[user.ID] = cloneUser(user)
	s.saves++
	return cloneUser(user), nil
}

func (s *memStore) AppendBlacklist(_ context.Context, id uuid.UUID, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.records[id]
	if !ok {
		return false, auth.ErrUserNotFound
	}
	if slices.Contains(u.TokenBlacklist, token) {
		return false, nil
	}
	u.TokenBlacklist = append(u.TokenBlacklist, token)
	return true, nil
}

func (s *memStore) List(_ context.Context) ([]*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*auth.User, 0, len(s.records))
	for _, u := range s.records {
		out = append(out, cloneUser(u))
	}
	slices.SortFunc(out, func(a, b *auth.User) int {
		return a.CreatedAt.Compare(*b.CreatedAt)
	})
	return out, nil
}

func (s *memStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func (s *memStore) remove(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// recordingMailer keeps every message in order.
type recordingMailer struct {
	mu   sync.Mutex
	sent []auth.Message
}

func (m *recordingMailer) Send(_ context.Context, msg auth.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) last() auth.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return auth.Message{}
	}
	return m.sent[len(m.sent)-1]
}

func (m *recordingMailer) subjects() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.sent))
	for _, msg := range m.sent {
		out = append(out, msg.Subject)
	}
	return out
}

// linkRenderer renders the link alone so tests can read tokens back.
type linkRenderer struct{}

func (linkRenderer) Render(name string, data map[string]any) (string, error) {
	if link, ok := data["link"].(string); ok {
		return link, nil
	}
	return name, nil
}

// MockRevocationCache implements auth.RevocationCache
type MockRevocationCache struct {
	mock.Mock
}

func (m *MockRevocationCache) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	args := m.Called(ctx, token, ttl)
	return args.Error(0)
}

func (m *MockRevocationCache) IsRevoked(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

// MockLogger implements auth.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) { m.Called(format, args) }
func (m *MockLogger) Info(format string, args ...any)  { m.Called(format, args) }
func (m *MockLogger) Warn(format string, args ...any)  { m.Called(format, args) }
func (m *MockLogger) Error(format string, args ...any) { m.Called(format, args) }

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// fakeClock is a settable clock shared by the token service and Accounts.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	cfg      *testConfig
	clock    *fakeClock
	store    *memStore
	mailer   *recordingMailer
	tokens   *auth.TokenServiceImpl
	accounts *auth.Accounts
	events   []auth.ActivityEvent
}

func newHarness(opts ...auth.AccountsOption) *harness {
	h := &harness{
		cfg:    newTestConfig(),
		clock:  newFakeClock(),
		mailer: &recordingMailer{},
	}
	h.store = newMemStore(h.clock.Now)
	h.tokens = auth.NewTokenService(h.cfg, auth.WithTokenClock(h.clock.Now), auth.WithTokenLogger(nopLogger{}))

	base := []auth.AccountsOption{
		auth.WithMailer(h.mailer),
		auth.WithRenderer(linkRenderer{}),
		auth.WithClock(h.clock.Now),
		auth.WithLogger(nopLogger{}),
		auth.WithActivitySink(auth.ActivitySinkFunc(func(_ context.Context, e auth.ActivityEvent) error {
			h.events = append(h.events, e)
			return nil
		})),
	}
	h.accounts = auth.NewAccounts(h.store, h.tokens, h.cfg, append(base, opts...)...)
	return h
}

// tokenFromLastMail extracts the token at the end of the last link sent.
func (h *harness) tokenFromLastMail() string {
	body := h.mailer.last().HTMLBody
	for i := len(body) - 1; i >= 0; i-- {
		if body[i] == '/' {
			return body[i+1:]
		}
	}
	return ""
}
