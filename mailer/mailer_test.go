package mailer_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/groceria/groceria-auth"
	"github.com/groceria/groceria-auth/mailer"
)

func TestRenderer_EmbeddedTemplates(t *testing.T) {
	r := mailer.NewRenderer()

	tests := []struct {
		name     string
		data     map[string]any
		contains []string
	}{
		{
			name:     "verify_email",
			data:     map[string]any{"fullName": "Ada", "link": "https://api.test/api/v1/verify/abc"},
			contains: []string{"Ada", "https://api.test/api/v1/verify/abc"},
		},
		{
			name:     "password_reset",
			data:     map[string]any{"fullName": "Ada", "email": "ada@x.com", "link": "https://api.test/api/v1/reset-password/xyz"},
			contains: []string{"ada@x.com", "reset-password/xyz"},
		},
		{
			name:     "password_changed",
			data:     map[string]any{"fullName": "Ada", "email": "ada@x.com"},
			contains: []string{"Ada", "was just changed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := r.Render(tt.name, tt.data)
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, body, s)
			}
		})
	}
}

func TestRenderer_UnknownTemplate(t *testing.T) {
	_, err := mailer.NewRenderer().Render("missing", nil)
	assert.Error(t, err)
}

type captureMailer struct {
	mu   sync.Mutex
	sent []auth.Message
	err  error
}

func (c *captureMailer) Send(ctx context.Context, msg auth.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("missing deadline")
	}
	c.sent = append(c.sent, msg)
	return c.err
}

func (c *captureMailer) messages() []auth.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]auth.Message(nil), c.sent...)
}

func TestAsync_DetachesFromRequestContext(t *testing.T) {
	next := &captureMailer{}
	async := mailer.NewAsync(next, mailer.WithSendTimeout(time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, async.Send(ctx, auth.Message{To: "ada@x.com", Subject: "Email Verification"}))
	cancel()

	async.Wait()

	sent := next.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "ada@x.com", sent[0].To)
}

func TestAsync_SwallowsDeliveryErrors(t *testing.T) {
	next := &captureMailer{err: errors.New("smtp down")}
	async := mailer.NewAsync(next)

	assert.NoError(t, async.Send(context.Background(), auth.Message{To: "ada@x.com"}))
	async.Wait()
	assert.Len(t, next.messages(), 1)
}

func TestLogMailer_RecordsMessages(t *testing.T) {
	m := mailer.NewLogMailer(nil)

	require.NoError(t, m.Send(context.Background(), auth.Message{To: "a@x.com", Subject: "one"}))
	require.NoError(t, m.Send(context.Background(), auth.Message{To: "b@x.com", Subject: "two"}))

	sent := m.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "two", sent[1].Subject)
}

func TestLogMailer_KeepsBoundedHistory(t *testing.T) {
	m := mailer.NewLogMailer(nil)

	total := mailer.LogHistory + 7
	for i := 0; i < total; i++ {
		require.NoError(t, m.Send(context.Background(), auth.Message{To: "a@x.com", Subject: fmt.Sprintf("msg-%d", i)}))
	}

	sent := m.Sent()
	require.Len(t, sent, mailer.LogHistory)
	assert.Equal(t, "msg-7", sent[0].Subject)
	assert.Equal(t, fmt.Sprintf("msg-%d", total-1), sent[len(sent)-1].Subject)
}

func TestSMTPMailer_CancelledContext(t *testing.T) {
	m := mailer.NewSMTPMailer(mailer.SMTPConfig{Host: "127.0.0.1", Port: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.Send(ctx, auth.Message{To: "ada@x.com"})
	assert.ErrorIs(t, err, context.Canceled)
}
