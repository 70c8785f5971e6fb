package mailer

import (
	"context"
	"sync"

	"github.com/goliatone/go-print"

	auth "github.com/groceria/groceria-auth"
)

// LogHistory is how many messages a LogMailer keeps.
const LogHistory = 50

// LogMailer writes messages to a logger instead of sending them. It keeps
// the last LogHistory messages for inspection in development.
type LogMailer struct {
	logger auth.Logger
	mu     sync.Mutex
	sent   []auth.Message
}

func NewLogMailer(logger auth.Logger) *LogMailer {
	if logger == nil {
		logger = nopLogger{}
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, msg auth.Message) error {
	m.mu.Lock()
	if len(m.sent) == LogHistory {
		copy(m.sent, m.sent[1:])
		m.sent = m.sent[:LogHistory-1]
	}
	m.sent = append(m.sent, msg)
	m.mu.Unlock()

	m.logger.Info("mail %s", print.MaybePrettyJSON(map[string]any{
		"to":      msg.To,
		"subject": msg.Subject,
		"bytes":   len(msg.HTMLBody),
	}))
	return nil
}

// Sent returns a copy of the retained messages, oldest first.
func (m *LogMailer) Sent() []auth.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]auth.Message, len(m.sent))
	copy(out, m.sent)
	return out
}
