package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/safad/worklog/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub store
// ---------------------------------------------------------------------------

var errStubWrite = errors.New("stub: write failed")

type stubKV struct {
	mu       sync.Mutex
	docs     map[string][]byte
	getErr   error // if set, Get returns this error
	failSets bool  // if set, Set and Delete return errStubWrite
	failKeys map[string]bool
	sets     int
}

func newStubKV() *stubKV {
	return &stubKV{docs: make(map[string][]byte)}
}

func (s *stubKV) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	v, ok := s.docs[key]
	if !ok {
		return nil, domain.ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *stubKV) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSets || s.failKeys[key] {
		return errStubWrite
	}
	s.sets++
	s.docs[key] = append([]byte(nil), value...)
	return nil
}

func (s *stubKV) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSets || s.failKeys[key] {
		return errStubWrite
	}
	delete(s.docs, key)
	return nil
}

func (s *stubKV) Close() error { return nil }

func (s *stubKV) raw(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.docs[key])
}

func (s *stubKV) put(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[key] = []byte(value)
}

func (s *stubKV) setFailing(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failSets = fail
}

// failKey makes writes and deletes of key alone fail.
func (s *stubKV) failKey(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failKeys == nil {
		s.failKeys = make(map[string]bool)
	}
	s.failKeys[key] = true
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// fakeClock is a settable clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestApp(t *testing.T, kv *stubKV, clock *fakeClock) *App {
	t.Helper()
	app, err := Open(context.Background(), kv, Options{
		Clock:      clock,
		BcryptCost: bcrypt.MinCost,
	})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	return app
}

func mustRegister(t *testing.T, d *Directory, username, name, department string) *domain.User {
	t.Helper()
	u, err := d.Register(context.Background(), registerInput(username, name, department))
	if err != nil {
		t.Fatalf("Register(%q) returned error: %v", username, err)
	}
	return u
}
