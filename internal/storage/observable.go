package storage

import (
	"context"
	"sync"
)

type Op string

const (
	OpSet    Op = "set"
	OpDelete Op = "delete"
)

// Change describes a successful write.
type Change struct {
	Key string
	Op  Op
}

// Observable wraps a Store and notifies subscribers after each successful
// write. Two services sharing one Observable see each other's writes the way
// browser tabs see storage events.
type Observable struct {
	Store

	mu     sync.RWMutex
	nextID int
	subs   map[int]func(Change)
}

func NewObservable(s Store) *Observable {
	return &Observable{Store: s, subs: make(map[int]func(Change))}
}

// Subscribe registers fn and returns a function removing it. fn runs on the
// writer's goroutine and must not block.
func (o *Observable) Subscribe(fn func(Change)) func() {
	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.subs[id] = fn
	o.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.subs, id)
			o.mu.Unlock()
		})
	}
}

func (o *Observable) publish(c Change) {
	o.mu.RLock()
	fns := make([]func(Change), 0, len(o.subs))
	for _, fn := range o.subs {
		fns = append(fns, fn)
	}
	o.mu.RUnlock()

	for _, fn := range fns {
		fn(c)
	}
}

func (o *Observable) Set(ctx context.Context, key string, value []byte) error {
	if err := o.Store.Set(ctx, key, value); err != nil {
		return err
	}
	o.publish(Change{Key: key, Op: OpSet})
	return nil
}

func (o *Observable) Delete(ctx context.Context, key string) error {
	if err := o.Store.Delete(ctx, key); err != nil {
		return err
	}
	o.publish(Change{Key: key, Op: OpDelete})
	return nil
}

func (o *Observable) Update(ctx context.Context, key string, fn UpdateFunc) error {
	if err := Update(ctx, o.Store, key, fn); err != nil {
		return err
	}
	o.publish(Change{Key: key, Op: OpSet})
	return nil
}
