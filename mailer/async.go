package mailer

import (
	"context"
	"sync"
	"time"

	auth "github.com/groceria/groceria-auth"
)

const defaultSendTimeout = 30 * time.Second

// Async hands messages to a goroutine and returns immediately. Delivery
// is detached from the request context.
type Async struct {
	next    auth.Mailer
	logger  auth.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

type AsyncOption func(*Async)

func WithSendTimeout(d time.Duration) AsyncOption {
	return func(a *Async) {
		if d > 0 {
			a.timeout = d
		}
	}
}

func WithAsyncLogger(logger auth.Logger) AsyncOption {
	return func(a *Async) {
		if logger != nil {
			a.logger = logger
		}
	}
}

func NewAsync(next auth.Mailer, opts ...AsyncOption) *Async {
	a := &Async{
		next:    next,
		logger:  nopLogger{},
		timeout: defaultSendTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Async) Send(ctx context.Context, msg auth.Message) error {
	sendCtx := context.WithoutCancel(ctx)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		sendCtx, cancel := context.WithTimeout(sendCtx, a.timeout)
		defer cancel()

		if err := a.next.Send(sendCtx, msg); err != nil {
			a.logger.Error("mail to %s (%q) failed: %v", msg.To, msg.Subject, err)
			return
		}
		a.logger.Debug("mail to %s (%q) sent", msg.To, msg.Subject)
	}()

	return nil
}

// Wait blocks until in-flight sends finish.
func (a *Async) Wait() {
	a.wg.Wait()
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
