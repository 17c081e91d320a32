// Package applications stores loan applications as one JSON array in a
// storage.Store and answers the dashboard's queries over it.
package applications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/loandesk/internal/common"
	"github.com/dmitrijs2005/loandesk/internal/currency"
	"github.com/dmitrijs2005/loandesk/internal/logging"
	"github.com/dmitrijs2005/loandesk/internal/models"
	"github.com/dmitrijs2005/loandesk/internal/storage"
)

const idPrefix = "APP-"

// Store is safe for concurrent use.
type Store struct {
	kv  storage.Store
	now func() time.Time
	log logging.Logger

	mu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source for created_at and updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.log = l }
}

// NewStore returns a Store backed by kv.
func NewStore(kv storage.Store, opts ...Option) *Store {
	s := &Store{kv: kv, now: time.Now, log: logging.Discard()}
	for _, o := range opts {
		o(s)
	}
	s.log = s.log.With("component", "applications")
	return s
}

// Create validates a submission and stores it as pending.
func (s *Store) Create(ctx context.Context, in models.NewApplication) (*models.LoanApplication, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	app := models.LoanApplication{
		Name:         strings.TrimSpace(in.Name),
		IDNumber:     strings.TrimSpace(in.IDNumber),
		Email:        strings.TrimSpace(in.Email),
		Phone:        strings.TrimSpace(in.Phone),
		LoanType:     in.LoanType,
		SecurityType: in.SecurityType,
		AmountValue:  in.AmountValue,
		Amount:       currency.Format(in.AmountValue),
		Message:      in.Message,
		Documents:    in.Documents,
		Status:       models.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if app.Documents == nil {
		app.Documents = []models.Document{}
	}

	current, err := s.kv.Get(ctx, storage.KeyApplications)
	if err != nil {
		return nil, s.writeError(ctx, "create", err)
	}
	existing, err := decode(current)
	if err != nil {
		return nil, s.writeError(ctx, "create", err)
	}
	seq, err := s.peekSeq(ctx, existing)
	if err != nil {
		return nil, s.writeError(ctx, "create", err)
	}
	app.ID = FormatID(seq)

	err = storage.Update(ctx, s.kv, storage.KeyApplications, func(cur []byte) ([]byte, error) {
		apps, err := decode(cur)
		if err != nil {
			return nil, err
		}
		return json.Marshal(append(apps, app))
	})
	if err != nil {
		return nil, s.writeError(ctx, "create", err)
	}
	s.commitSeq(ctx, seq)

	s.log.Info(ctx, "application created", "id", app.ID, "loan_type", app.LoanType)
	return &app, nil
}

// peekSeq returns the next sequence number without consuming it. The
// sequence never goes below the highest id already stored, so deleting
// records cannot cause reuse.
func (s *Store) peekSeq(ctx context.Context, apps []models.LoanApplication) (int, error) {
	cur, err := s.kv.Get(ctx, storage.KeyApplicationSeq)
	if err != nil {
		return 0, err
	}
	last, err := parseSeq(cur)
	if err != nil {
		return 0, err
	}
	return max(last, maxSeq(apps)) + 1, nil
}

// commitSeq records seq as used once its record is stored. A failure here
// is only logged: the record itself carries the number, and peekSeq reads
// it back from the stored ids.
func (s *Store) commitSeq(ctx context.Context, seq int) {
	err := storage.Update(ctx, s.kv, storage.KeyApplicationSeq, func(cur []byte) ([]byte, error) {
		last, err := parseSeq(cur)
		if err != nil {
			return nil, err
		}
		return []byte(strconv.Itoa(max(last, seq))), nil
	})
	if err != nil {
		s.log.Warn(ctx, "failed to record id sequence", "seq", seq, "error", err)
	}
}

func parseSeq(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		return 0, fmt.Errorf("decode %s: %w", storage.KeyApplicationSeq, err)
	}
	return n, nil
}

// FormatID renders n as APP-001. Numbers past 999 keep all digits.
func FormatID(n int) string {
	return fmt.Sprintf("%s%03d", idPrefix, n)
}

func maxSeq(apps []models.LoanApplication) int {
	m := 0
	for _, a := range apps {
		if n, err := strconv.Atoi(strings.TrimPrefix(a.ID, idPrefix)); err == nil && n > m {
			m = n
		}
	}
	return m
}

// GetByID returns nil when no application has id.
func (s *Store) GetByID(ctx context.Context, id string) (*models.LoanApplication, error) {
	for _, a := range s.read(ctx) {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, nil
}

// Update merges patch into the application with id and returns the result,
// or nil when id is unknown. A supplied Amount string is parsed and wins over
// AmountValue. UpdatedAt always moves.
func (s *Store) Update(ctx context.Context, id string, patch models.ApplicationPatch) (*models.LoanApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var updated *models.LoanApplication
	err := storage.Update(ctx, s.kv, storage.KeyApplications, func(cur []byte) ([]byte, error) {
		apps, err := decode(cur)
		if err != nil {
			return nil, err
		}
		for i := range apps {
			if apps[i].ID != id {
				continue
			}
			next := apps[i]
			if err := apply(&next, patch); err != nil {
				return nil, err
			}
			next.UpdatedAt = s.now().UTC()
			apps[i] = next
			updated = &next
			return json.Marshal(apps)
		}
		return nil, common.ErrNotFound
	})
	if errors.Is(err, common.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, s.writeError(ctx, "update", err)
	}

	s.log.Info(ctx, "application updated", "id", id, "status", updated.Status)
	return updated, nil
}

// Delete removes the application and reports whether it existed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := storage.Update(ctx, s.kv, storage.KeyApplications, func(cur []byte) ([]byte, error) {
		apps, err := decode(cur)
		if err != nil {
			return nil, err
		}
		for i := range apps {
			if apps[i].ID == id {
				return json.Marshal(append(apps[:i], apps[i+1:]...))
			}
		}
		return nil, common.ErrNotFound
	})
	if errors.Is(err, common.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, s.writeError(ctx, "delete", err)
	}

	s.log.Info(ctx, "application deleted", "id", id)
	return true, nil
}

// List returns all applications in insertion order.
func (s *Store) List(ctx context.Context) ([]models.LoanApplication, error) {
	return s.read(ctx), nil
}

// Search matches query case-insensitively against id, name, email and loan
// type. A blank query returns everything.
func (s *Store) Search(ctx context.Context, query string) ([]models.LoanApplication, error) {
	apps := s.read(ctx)
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return apps, nil
	}

	out := make([]models.LoanApplication, 0)
	for _, a := range apps {
		for _, field := range []string{a.ID, a.Name, a.Email, string(a.LoanType)} {
			if strings.Contains(strings.ToLower(field), q) {
				out = append(out, a)
				break
			}
		}
	}
	return out, nil
}

// FilterByStatus keeps applications with exactly status; StatusAll keeps all.
func (s *Store) FilterByStatus(ctx context.Context, status models.Status) ([]models.LoanApplication, error) {
	apps := s.read(ctx)
	if status == models.StatusAll {
		return apps, nil
	}
	out := make([]models.LoanApplication, 0)
	for _, a := range apps {
		if a.Status == status {
			out = append(out, a)
		}
	}
	return out, nil
}

// Stats counts applications by status. Amount totals and the mean cover
// every application; the mean of none is 0.
func (s *Store) Stats(ctx context.Context) (models.Stats, error) {
	apps := s.read(ctx)

	st := models.Stats{Total: len(apps)}
	var total float64
	for _, a := range apps {
		switch a.Status {
		case models.StatusPending:
			st.Pending++
		case models.StatusApproved:
			st.Approved++
		case models.StatusRejected:
			st.Rejected++
		}
		total += a.AmountValue
	}

	avg := 0.0
	if len(apps) > 0 {
		avg = total / float64(len(apps))
	}
	st.TotalAmount = currency.Format(total)
	st.AvgAmount = currency.Format(avg)
	return st, nil
}

// read loads all applications. Storage and decode failures are logged and
// reported as an empty list.
func (s *Store) read(ctx context.Context) []models.LoanApplication {
	b, err := s.kv.Get(ctx, storage.KeyApplications)
	if err != nil {
		s.log.Error(ctx, "read applications", "error", err)
		return []models.LoanApplication{}
	}
	apps, err := decode(b)
	if err != nil {
		s.log.Error(ctx, "decode applications", "error", err)
		return []models.LoanApplication{}
	}
	return apps
}

func (s *Store) writeError(ctx context.Context, op string, err error) error {
	if errors.Is(err, common.ErrValidation) {
		return err
	}
	s.log.Error(ctx, op+" application failed", "error", err)
	return fmt.Errorf("%s application: %w", op, common.ErrStorageFailure)
}

func decode(b []byte) ([]models.LoanApplication, error) {
	if len(b) == 0 {
		return []models.LoanApplication{}, nil
	}
	var apps []models.LoanApplication
	if err := json.Unmarshal(b, &apps); err != nil {
		return nil, fmt.Errorf("decode %s: %w", storage.KeyApplications, err)
	}
	if apps == nil {
		apps = []models.LoanApplication{}
	}
	return apps, nil
}
