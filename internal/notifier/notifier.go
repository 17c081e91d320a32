// Package notifier simulates outgoing mail. Nothing leaves the process: each
// message is logged and appended to a mail log kept in storage so it can be
// inspected later.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/loandesk/internal/logging"
	"github.com/dmitrijs2005/loandesk/internal/models"
	"github.com/dmitrijs2005/loandesk/internal/storage"
)

// SendResult mirrors what a mail provider would report.
type SendResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type Notifier struct {
	kv  storage.Store
	now func() time.Time
	log logging.Logger

	mu sync.Mutex
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithClock sets the time source used to stamp sent messages.
func WithClock(now func() time.Time) Option {
	return func(n *Notifier) { n.now = now }
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(l logging.Logger) Option {
	return func(n *Notifier) { n.log = l }
}

// New returns a Notifier that keeps its mail log in kv.
func New(kv storage.Store, opts ...Option) *Notifier {
	n := &Notifier{kv: kv, now: time.Now, log: logging.Discard()}
	for _, o := range opts {
		o(n)
	}
	n.log = n.log.With("component", "notifier")
	return n
}

// SendEmail records e in the mail log. It fails only when the log cannot be
// written.
func (n *Notifier) SendEmail(ctx context.Context, e models.Email) (SendResult, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	entry := models.SentEmail{Email: e, SentAt: n.now().UTC()}
	err := storage.Update(ctx, n.kv, storage.KeySentEmails, func(cur []byte) ([]byte, error) {
		log, err := decode(cur)
		if err != nil {
			return nil, err
		}
		return json.Marshal(append(log, entry))
	})
	if err != nil {
		n.log.Error(ctx, "failed to record email", "to", e.To, "subject", e.Subject, "error", err)
		return SendResult{Success: false, Message: "email could not be sent"}, fmt.Errorf("send email to %s: %w", e.To, err)
	}

	n.log.Info(ctx, "email sent", "to", e.To, "subject", e.Subject)
	return SendResult{Success: true, Message: "email sent to " + e.To}, nil
}

// Sent returns the mail log, oldest first. An unreadable or corrupt log is
// logged and reported as empty; the stored bytes are left untouched.
func (n *Notifier) Sent(ctx context.Context) ([]models.SentEmail, error) {
	b, err := n.kv.Get(ctx, storage.KeySentEmails)
	if err != nil {
		n.log.Error(ctx, "failed to read mail log", "error", err)
		return []models.SentEmail{}, nil
	}
	log, err := decode(b)
	if err != nil {
		n.log.Error(ctx, "failed to read mail log", "error", err)
		return []models.SentEmail{}, nil
	}
	return log, nil
}

// SendPasswordReset delivers the reset template. It satisfies
// auth.ResetMailer.
func (n *Notifier) SendPasswordReset(ctx context.Context, email, redirectTo string) error {
	_, err := n.SendEmail(ctx, PasswordReset(email, redirectTo))
	return err
}

func decode(b []byte) ([]models.SentEmail, error) {
	if len(b) == 0 {
		return []models.SentEmail{}, nil
	}
	var out []models.SentEmail
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", storage.KeySentEmails, err)
	}
	if out == nil {
		out = []models.SentEmail{}
	}
	return out, nil
}
