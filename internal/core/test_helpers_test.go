package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"bioforge/pkg/domain"
)

var testNow = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func seqIDs() func() string {
	var n int
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestService(t *testing.T, opts ...Option) (*Service, *stepClock) {
	t.Helper()
	clock := &stepClock{now: testNow}
	base := []Option{WithClock(clock), WithIDGenerator(seqIDs())}
	return NewService(append(base, opts...)...), clock
}

func draft(id, refID, label string) domain.BlockDraft {
	return domain.BlockDraft{ID: id, Type: domain.BlockPeptide, RefID: refID, Label: label}
}

func blockIDs(ph domain.Phase) []string {
	ids := make([]string, 0, len(ph.Blocks))
	for _, b := range ph.Blocks {
		ids = append(ids, b.ID)
	}
	return ids
}

type failingStore struct {
	mu    sync.Mutex
	fail  bool
	saved []domain.State
}

var errStoreDown = errors.New("store down")

func (f *failingStore) Load(context.Context) (domain.State, bool, error) {
	return domain.State{}, false, nil
}

func (f *failingStore) Save(_ context.Context, st domain.State) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errStoreDown
	}
	f.saved = append(f.saved, st.Clone())
	return nil
}

func (f *failingStore) Close() error { return nil }

func (f *failingStore) setFail(v bool) {
	f.mu.Lock()
	f.fail = v
	f.mu.Unlock()
}
