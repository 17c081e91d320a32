package auth

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/loandesk/internal/models"
	"github.com/dmitrijs2005/loandesk/internal/storage"
)

// Callback receives auth state changes. Calls for one subscription never
// overlap.
type Callback func(event models.AuthEvent, session *models.Session)

type notification struct {
	event   models.AuthEvent
	session *models.Session
}

// Subscription is returned by OnAuthStateChange.
type Subscription struct {
	svc     *Service
	id      int
	events  chan notification
	recheck chan struct{}
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once

	// resolve re-reads the state a re-check compares against; accept
	// filters published events.
	resolve func(ctx context.Context) (*models.Session, error)
	accept  func(n notification) bool

	unwatch func()
}

// changeSource is implemented by storage.Observable.
type changeSource interface {
	Subscribe(fn func(storage.Change)) func()
}

// OnAuthStateChange calls cb right away with INITIAL_SESSION and then on
// every change: events published by this service, writes to auth keys seen
// through an observable store (another instance on the same store), and a
// periodic re-check. Re-check deliveries are skipped when the session did
// not change. The subscription ends on Unsubscribe or when ctx is done.
func (s *Service) OnAuthStateChange(ctx context.Context, cb Callback) *Subscription {
	all := func(notification) bool { return true }
	return s.subscribe(ctx, cb, s.GetSession, all)
}

// WatchSession is OnAuthStateChange scoped to one session, for callers that
// each hold their own token. INITIAL_SESSION carries that session, or nil
// when it is not valid. Events about other users are never delivered:
// only SIGNED_OUT (sign-out is global), USER_UPDATED for the session's
// own user and events for the session itself get through. A re-check that
// finds the session gone delivers SIGNED_OUT.
func (s *Service) WatchSession(ctx context.Context, sessionID string, cb Callback) *Subscription {
	resolve := func(ctx context.Context) (*models.Session, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sess, _, err := s.ValidateSession(ctx, sessionID)
		if err != nil {
			return nil, nil
		}
		return sess, nil
	}

	var userID string
	if sess, _ := resolve(ctx); sess != nil {
		userID = sess.UserID
	}
	accept := func(n notification) bool {
		switch {
		case n.session == nil:
			return n.event == models.EventSignedOut
		case n.session.ID == sessionID:
			return true
		default:
			return n.event == models.EventUserUpdated && userID != "" && n.session.UserID == userID
		}
	}
	return s.subscribe(ctx, cb, resolve, accept)
}

func (s *Service) subscribe(ctx context.Context, cb Callback,
	resolve func(context.Context) (*models.Session, error), accept func(notification) bool) *Subscription {
	sub := &Subscription{
		svc:     s,
		events:  make(chan notification, 16),
		recheck: make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		resolve: resolve,
		accept:  accept,
		unwatch: func() {},
	}

	s.subsMu.Lock()
	sub.id = s.nextSub
	s.nextSub++
	s.subs[sub.id] = sub
	s.subsMu.Unlock()

	if src, ok := s.store.(changeSource); ok {
		sub.unwatch = src.Subscribe(func(c storage.Change) {
			if storage.IsAuthKey(c.Key) {
				sub.poke()
			}
		})
	}

	initial, _ := resolve(ctx)
	cb(models.EventInitialSession, initial)

	go sub.loop(ctx, cb, sessionID(initial))
	return sub
}

func (sub *Subscription) loop(ctx context.Context, cb Callback, last string) {
	defer close(sub.done)

	var tick <-chan time.Time
	if sub.svc.pollInterval > 0 {
		t := time.NewTicker(sub.svc.pollInterval)
		defer t.Stop()
		tick = t.C
	}

	deliver := func(n notification) {
		select {
		case <-sub.stop:
			return
		default:
		}
		if n.event == models.EventUserUpdated {
			cb(n.event, n.session)
			return
		}
		id := sessionID(n.session)
		if id == last {
			return
		}
		last = id
		cb(n.event, n.session)
	}

	recheck := func() {
		sess, err := sub.resolve(ctx)
		if err != nil {
			return
		}
		if sess == nil {
			deliver(notification{event: models.EventSignedOut})
		} else {
			deliver(notification{event: models.EventSignedIn, session: sess})
		}
	}

	for {
		select {
		case <-sub.stop:
			return
		case <-ctx.Done():
			sub.Unsubscribe()
			return
		case n := <-sub.events:
			if sub.accept(n) {
				deliver(n)
			}
		case <-sub.recheck:
			recheck()
		case <-tick:
			recheck()
		}
	}
}

// poke asks for a re-check without blocking the writer.
func (sub *Subscription) poke() {
	select {
	case sub.recheck <- struct{}{}:
	default:
	}
}

func (sub *Subscription) notify(n notification) {
	select {
	case <-sub.stop:
	case sub.events <- n:
	default:
		// queue full: a re-check still converges on the latest state
		sub.poke()
	}
}

// Unsubscribe stops further callbacks. It is safe to call more than once
// and from inside the callback.
func (sub *Subscription) Unsubscribe() {
	sub.once.Do(func() {
		sub.svc.subsMu.Lock()
		delete(sub.svc.subs, sub.id)
		sub.svc.subsMu.Unlock()

		sub.unwatch()
		close(sub.stop)
	})
}

// Done is closed once the delivery goroutine has exited.
func (sub *Subscription) Done() <-chan struct{} {
	return sub.done
}

func (s *Service) publish(event models.AuthEvent, session *models.Session) {
	s.subsMu.Lock()
	subs := make([]*Subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.subsMu.Unlock()

	for _, sub := range subs {
		sub.notify(notification{event: event, session: session})
	}
}

func sessionID(s *models.Session) string {
	if s == nil {
		return ""
	}
	return s.ID
}
