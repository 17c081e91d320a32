// Package auth manages accounts and sessions on top of a storage.Store:
// sign-up, sign-in, session resolution, global sign-out, password changes
// and auth state subscriptions.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/loandesk/internal/common"
	"github.com/dmitrijs2005/loandesk/internal/cryptox"
	"github.com/dmitrijs2005/loandesk/internal/logging"
	"github.com/dmitrijs2005/loandesk/internal/models"
	"github.com/dmitrijs2005/loandesk/internal/storage"
	"github.com/google/uuid"
)

const (
	DefaultSessionValidity = 7 * 24 * time.Hour
	DefaultPollInterval    = 5 * time.Second
)

// PasswordHasher produces and checks encoded password hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(encoded, password string) (bool, error)
}

// ResetMailer delivers password reset links.
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, email, redirectTo string) error
}

// ResetOptions tune ResetPasswordForEmail.
type ResetOptions struct {
	RedirectTo string
}

// userRecord is the persisted user, hash included.
type userRecord struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u userRecord) public() *models.User {
	return &models.User{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the time source for session issue and expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithSessionValidity sets how long a new session stays valid.
func WithSessionValidity(d time.Duration) Option {
	return func(s *Service) { s.validity = d }
}

// WithPollInterval sets the fallback re-check period of subscriptions.
// Zero disables polling.
func WithPollInterval(d time.Duration) Option {
	return func(s *Service) { s.pollInterval = d }
}

// WithHasher replaces the password hasher.
func WithHasher(h PasswordHasher) Option {
	return func(s *Service) { s.hasher = h }
}

// WithMailer sets where password reset mail goes. Without one, reset
// requests are accepted and only logged.
func WithMailer(m ResetMailer) Option {
	return func(s *Service) { s.mailer = m }
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(l logging.Logger) Option {
	return func(s *Service) { s.log = l }
}

// Service is safe for concurrent use. Read-modify-write cycles are
// serialized within one Service; several Services sharing a store follow
// the store's own consistency (see storage.Updater).
type Service struct {
	store        storage.Store
	now          func() time.Time
	validity     time.Duration
	pollInterval time.Duration
	hasher       PasswordHasher
	mailer       ResetMailer
	log          logging.Logger

	mu sync.Mutex

	subsMu  sync.Mutex
	subs    map[int]*Subscription
	nextSub int

	dummyOnce sync.Once
	dummyHash string
}

// NewService returns a Service keeping users and sessions in store.
func NewService(store storage.Store, opts ...Option) *Service {
	s := &Service{
		store:        store,
		now:          time.Now,
		validity:     DefaultSessionValidity,
		pollInterval: DefaultPollInterval,
		hasher:       cryptox.NewHasher(cryptox.DefaultParams),
		log:          logging.Discard(),
		subs:         make(map[int]*Subscription),
	}
	for _, o := range opts {
		o(s)
	}
	s.log = s.log.With("component", "auth")
	return s
}

// SignUp registers a new account. Emails are compared exactly as stored.
// No session is created.
func (s *Service) SignUp(ctx context.Context, email, password string) (*models.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrValidation)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	rec := userRecord{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = storage.Update(ctx, s.store, storage.KeyUsers, func(cur []byte) ([]byte, error) {
		users, err := decodeList[userRecord](cur)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			if u.Email == email {
				return nil, common.ErrDuplicateUser
			}
		}
		return json.Marshal(append(users, rec))
	})
	if err != nil {
		return nil, s.writeError(ctx, "sign up", err)
	}

	s.log.Info(ctx, "user registered", "user_id", rec.ID)
	return rec.public(), nil
}

// SignIn checks credentials and opens a session that becomes current.
// Unknown email and wrong password yield the same ErrInvalidCredentials.
func (s *Service) SignIn(ctx context.Context, email, password string) (*models.User, *models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return nil, nil, s.writeError(ctx, "sign in", err)
	}

	rec, ok := findUser(users, func(u userRecord) bool { return u.Email == email })
	if !ok {
		// burn the same time as a real check
		_, _ = s.hasher.Verify(s.dummy(), password)
		return nil, nil, common.ErrInvalidCredentials
	}

	match, err := s.hasher.Verify(rec.PasswordHash, password)
	if err != nil {
		s.log.Error(ctx, "stored password hash unreadable", "user_id", rec.ID, "error", err)
		return nil, nil, common.ErrInvalidCredentials
	}
	if !match {
		return nil, nil, common.ErrInvalidCredentials
	}

	now := s.now().UTC()
	session := &models.Session{
		ID:        uuid.NewString(),
		UserID:    rec.ID,
		ExpiresAt: now.Add(s.validity),
		CreatedAt: now,
	}

	err = storage.Update(ctx, s.store, storage.KeySessions, func(cur []byte) ([]byte, error) {
		sessions, err := decodeList[models.Session](cur)
		if err != nil {
			return nil, err
		}
		return json.Marshal(append(sessions, *session))
	})
	if err != nil {
		return nil, nil, s.writeError(ctx, "sign in", err)
	}
	if err := s.setCurrent(ctx, session); err != nil {
		return nil, nil, s.writeError(ctx, "sign in", err)
	}

	s.log.Info(ctx, "user signed in", "user_id", rec.ID, "session_id", session.ID)
	s.publish(models.EventSignedIn, session)
	return rec.public(), session, nil
}

// GetSession returns the current session if it is still valid, otherwise
// the most recently created valid persisted session (which becomes
// current), otherwise nil. Unreadable storage is logged and reported as no
// session.
func (s *Service) GetSession(ctx context.Context) (*models.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolveSession(ctx), nil
}

func (s *Service) resolveSession(ctx context.Context) *models.Session {
	now := s.now()

	users, err := s.loadUsers(ctx)
	if err != nil {
		s.log.Error(ctx, "read users", "error", err)
		return nil
	}
	exists := func(id string) bool {
		_, ok := findUser(users, func(u userRecord) bool { return u.ID == id })
		return ok
	}

	current, err := s.loadCurrent(ctx)
	if err != nil {
		s.log.Warn(ctx, "read current session", "error", err)
	}
	if current != nil && !current.Expired(now) && exists(current.UserID) {
		return current
	}

	sessions, err := s.loadSessions(ctx)
	if err != nil {
		s.log.Error(ctx, "read sessions", "error", err)
		return nil
	}

	var best *models.Session
	for i := range sessions {
		sess := &sessions[i]
		if sess.Expired(now) || !exists(sess.UserID) {
			continue
		}
		if best == nil || !sess.CreatedAt.Before(best.CreatedAt) {
			best = sess
		}
	}

	if best != nil {
		if err := s.setCurrent(ctx, best); err != nil {
			s.log.Warn(ctx, "refresh current session", "error", err)
		}
		return best
	}

	if current != nil {
		if err := s.store.Delete(ctx, storage.KeyCurrentSession); err != nil {
			s.log.Warn(ctx, "clear stale session", "error", err)
		}
	}
	return nil
}

// SignOut clears the current session and every persisted session, on all
// devices. Calling it again is harmless.
func (s *Service) SignOut(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(ctx, storage.KeyCurrentSession); err != nil {
		return s.writeError(ctx, "sign out", err)
	}
	if err := s.store.Delete(ctx, storage.KeySessions); err != nil {
		return s.writeError(ctx, "sign out", err)
	}

	s.log.Info(ctx, "signed out everywhere")
	s.publish(models.EventSignedOut, nil)
	return nil
}

// ResetPasswordForEmail triggers a reset notification for a known email.
// Nothing is mutated; delivery failures are logged only.
func (s *Service) ResetPasswordForEmail(ctx context.Context, email string, opts ResetOptions) error {
	users, err := s.loadUsers(ctx)
	if err != nil {
		s.log.Error(ctx, "read users", "error", err)
		return common.ErrUserNotFound
	}
	if _, ok := findUser(users, func(u userRecord) bool { return u.Email == email }); !ok {
		return common.ErrUserNotFound
	}

	if s.mailer != nil {
		if err := s.mailer.SendPasswordReset(ctx, email, opts.RedirectTo); err != nil {
			s.log.Warn(ctx, "password reset notification failed", "error", err)
		}
	}
	return nil
}

// UpdatePassword re-hashes the password of the current session's user.
func (s *Service) UpdatePassword(ctx context.Context, newPassword string) (*models.User, error) {
	s.mu.Lock()
	session := s.resolveSession(ctx)
	s.mu.Unlock()

	if session == nil {
		return nil, common.ErrNotAuthenticated
	}
	return s.updatePassword(ctx, session, newPassword)
}

// UpdatePasswordForSession is UpdatePassword for an explicit session, as
// used by token-authenticated callers.
func (s *Service) UpdatePasswordForSession(ctx context.Context, sessionID, newPassword string) (*models.User, error) {
	session, _, err := s.ValidateSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.updatePassword(ctx, session, newPassword)
}

// updatePassword re-hashes the password of session's user and announces
// USER_UPDATED for that session.
func (s *Service) updatePassword(ctx context.Context, session *models.Session, newPassword string) (*models.User, error) {
	userID := session.UserID
	if newPassword == "" {
		return nil, fmt.Errorf("%w: password is required", common.ErrValidation)
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var updated userRecord
	err = storage.Update(ctx, s.store, storage.KeyUsers, func(cur []byte) ([]byte, error) {
		users, err := decodeList[userRecord](cur)
		if err != nil {
			return nil, err
		}
		for i := range users {
			if users[i].ID == userID {
				users[i].PasswordHash = hash
				updated = users[i]
				return json.Marshal(users)
			}
		}
		return nil, common.ErrNotAuthenticated
	})
	if err != nil {
		return nil, s.writeError(ctx, "update password", err)
	}

	s.log.Info(ctx, "password updated", "user_id", userID)
	s.publish(models.EventUserUpdated, session)
	return updated.public(), nil
}

// PruneExpiredSessions drops expired sessions and sessions of deleted users
// from storage and reports how many went.
func (s *Service) PruneExpiredSessions(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return 0, s.writeError(ctx, "prune sessions", err)
	}

	now := s.now()
	removed := 0
	err = storage.Update(ctx, s.store, storage.KeySessions, func(cur []byte) ([]byte, error) {
		sessions, err := decodeList[models.Session](cur)
		if err != nil {
			return nil, err
		}
		kept := sessions[:0]
		for _, sess := range sessions {
			_, ok := findUser(users, func(u userRecord) bool { return u.ID == sess.UserID })
			if ok && !sess.Expired(now) {
				kept = append(kept, sess)
			}
		}
		removed = len(sessions) - len(kept)
		return json.Marshal(kept)
	})
	if err != nil {
		return 0, s.writeError(ctx, "prune sessions", err)
	}

	if removed > 0 {
		s.log.Info(ctx, "expired sessions pruned", "count", removed)
	}
	return removed, nil
}

// ValidateSession looks a session up by id and checks it is still valid.
func (s *Service) ValidateSession(ctx context.Context, sessionID string) (*models.Session, *models.User, error) {
	sessions, err := s.loadSessions(ctx)
	if err != nil {
		s.log.Error(ctx, "read sessions", "error", err)
		return nil, nil, common.ErrNotAuthenticated
	}
	users, err := s.loadUsers(ctx)
	if err != nil {
		s.log.Error(ctx, "read users", "error", err)
		return nil, nil, common.ErrNotAuthenticated
	}

	for i := range sessions {
		sess := sessions[i]
		if sess.ID != sessionID {
			continue
		}
		if sess.Expired(s.now()) {
			return nil, nil, common.ErrNotAuthenticated
		}
		u, ok := findUser(users, func(u userRecord) bool { return u.ID == sess.UserID })
		if !ok {
			return nil, nil, common.ErrNotAuthenticated
		}
		return &sess, u.public(), nil
	}
	return nil, nil, common.ErrNotAuthenticated
}

// View builds the caller-facing shape of session. It returns nil when the
// owning user no longer exists.
func (s *Service) View(ctx context.Context, session *models.Session) *models.SessionView {
	if session == nil {
		return nil
	}
	users, err := s.loadUsers(ctx)
	if err != nil {
		s.log.Error(ctx, "read users", "error", err)
		return nil
	}
	u, ok := findUser(users, func(u userRecord) bool { return u.ID == session.UserID })
	if !ok {
		return nil
	}
	return &models.SessionView{ID: session.ID, User: *u.public(), ExpiresAt: session.ExpiresAt}
}

func (s *Service) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("loandesk-timing-equalizer")
	})
	return s.dummyHash
}

// writeError keeps expected outcomes as they are and folds everything else
// into ErrStorageFailure.
func (s *Service) writeError(ctx context.Context, op string, err error) error {
	for _, expected := range []error{
		common.ErrDuplicateUser,
		common.ErrInvalidCredentials,
		common.ErrNotAuthenticated,
		common.ErrValidation,
	} {
		if errors.Is(err, expected) {
			return err
		}
	}
	s.log.Error(ctx, op+" failed", "error", err)
	return fmt.Errorf("%s: %w", op, common.ErrStorageFailure)
}

func (s *Service) loadUsers(ctx context.Context) ([]userRecord, error) {
	b, err := s.store.Get(ctx, storage.KeyUsers)
	if err != nil {
		return nil, err
	}
	return decodeList[userRecord](b)
}

func (s *Service) loadSessions(ctx context.Context) ([]models.Session, error) {
	b, err := s.store.Get(ctx, storage.KeySessions)
	if err != nil {
		return nil, err
	}
	return decodeList[models.Session](b)
}

func (s *Service) loadCurrent(ctx context.Context) (*models.Session, error) {
	b, err := s.store.Get(ctx, storage.KeyCurrentSession)
	if err != nil || b == nil {
		return nil, err
	}
	var sess models.Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return nil, fmt.Errorf("decode %s: %w", storage.KeyCurrentSession, err)
	}
	return &sess, nil
}

func (s *Service) setCurrent(ctx context.Context, session *models.Session) error {
	b, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, storage.KeyCurrentSession, b)
}

func decodeList[T any](b []byte) ([]T, error) {
	if len(b) == 0 {
		return []T{}, nil
	}
	var out []T
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode stored list: %w", err)
	}
	return out, nil
}

func findUser(users []userRecord, match func(userRecord) bool) (userRecord, bool) {
	for _, u := range users {
		if match(u) {
			return u, true
		}
	}
	return userRecord{}, false
}
