package notifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/loandesk/internal/models"
	"github.com/dmitrijs2005/loandesk/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixed = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func app(status models.Status) models.LoanApplication {
	return models.LoanApplication{
		ID:          "APP-007",
		Name:        "Jane Doe",
		Email:       "jane@example.com",
		LoanType:    models.LoanBridging,
		Amount:      "KES 100,000",
		AmountValue: 100000,
		Status:      status,
	}
}

func TestSendEmail_AppendsToLog(t *testing.T) {
	ctx := context.Background()
	n := New(storage.NewMemoryStore(), WithClock(func() time.Time { return fixed }))

	first := models.Email{To: "a@example.com", Subject: "one", Body: "1"}
	second := models.Email{To: "b@example.com", Subject: "two", Body: "2"}

	res, err := n.SendEmail(ctx, first)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Contains(t, res.Message, "a@example.com")

	_, err = n.SendEmail(ctx, second)
	require.NoError(t, err)

	sent, err := n.Sent(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.SentEmail{
		{Email: first, SentAt: fixed},
		{Email: second, SentAt: fixed},
	}, sent)
}

func TestSent_Empty(t *testing.T) {
	n := New(storage.NewMemoryStore())
	sent, err := n.Sent(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sent)
}

type failingStore struct {
	storage.Store
}

func (failingStore) Set(context.Context, string, []byte) error { return errors.New("disk full") }

func TestSendEmail_StorageFailure(t *testing.T) {
	ctx := context.Background()
	n := New(failingStore{Store: storage.NewMemoryStore()})

	res, err := n.SendEmail(ctx, models.Email{To: "a@example.com"})
	require.Error(t, err)
	assert.False(t, res.Success)

	require.Error(t, n.SendPasswordReset(ctx, "a@example.com", ""))
}

func TestSendEmail_CorruptLogIsNotOverwritten(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, storage.KeySentEmails, []byte("nope")))
	n := New(kv)

	_, err := n.SendEmail(ctx, models.Email{To: "a@example.com"})
	require.Error(t, err)

	raw, _ := kv.Get(ctx, storage.KeySentEmails)
	assert.Equal(t, []byte("nope"), raw)
}

func TestSent_CorruptLogReadsAsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, storage.KeySentEmails, []byte("nope")))
	n := New(kv)

	sent, err := n.Sent(ctx)
	require.NoError(t, err)
	assert.NotNil(t, sent)
	assert.Empty(t, sent)

	raw, _ := kv.Get(ctx, storage.KeySentEmails)
	assert.Equal(t, []byte("nope"), raw)
}

func TestApplicationReceived(t *testing.T) {
	e := ApplicationReceived(app(models.StatusPending), fixed)

	assert.Equal(t, "jane@example.com", e.To)
	assert.Equal(t, "Application Received - APP-007", e.Subject)
	for _, want := range []string{"Dear Jane Doe", "APP-007", "Bridging Loan", "KES 100,000", "March 14, 2026"} {
		assert.Contains(t, e.Body, want)
	}
}

func TestStatusChanged(t *testing.T) {
	bodies := map[string]bool{}
	for _, st := range []models.Status{models.StatusApproved, models.StatusRejected, models.StatusPending} {
		e := StatusChanged(app(st))
		assert.Equal(t, "jane@example.com", e.To)
		assert.Contains(t, e.Subject, "APP-007")
		assert.Contains(t, e.Body, StatusMessage(st))
		assert.Contains(t, e.Body, "Bridging Loan")
		assert.Contains(t, e.Body, "KES 100,000")
		bodies[StatusMessage(st)] = true
	}
	assert.Len(t, bodies, 3)

	assert.Contains(t, StatusChanged(app(models.StatusApproved)).Body, "Status: APPROVED")
	assert.Equal(t, "Application APP-007 - Not Approved", StatusChanged(app(models.StatusRejected)).Subject)
}

func TestSendPasswordReset(t *testing.T) {
	ctx := context.Background()
	n := New(storage.NewMemoryStore())

	require.NoError(t, n.SendPasswordReset(ctx, "jane@example.com", "https://loandesk.example/reset"))

	sent, err := n.Sent(ctx)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, "Reset your password", sent[0].Subject)
	assert.Contains(t, sent[0].Body, "https://loandesk.example/reset")

	assert.NotContains(t, PasswordReset("x@example.com", "").Body, "Follow this link")
}
