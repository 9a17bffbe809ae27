// Package core owns the application state: the current and saved plans, the
// compendium, saved modules, focus selection, settings and tracking logs.
//
// Mutations never fail on invalid references. A mutation that cannot apply
// leaves the state untouched and reports false; one that applies swaps in a
// fresh snapshot and persists the whole blob through the configured
// domain.StateStore.
package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bioforge/internal/catalog"
	"bioforge/pkg/domain"

	"github.com/google/uuid"
)

// Service is the single authoritative application-state object.
type Service struct {
	mu         sync.RWMutex
	state      domain.State
	store      domain.StateStore
	catalog    *catalog.Catalog
	engine     *RulesEngine
	clock      Clock
	logger     Logger
	metrics    MetricsRecorder
	tracer     Tracer
	newID      func() string
	persistErr error
}

func newService(opts []Option) *Service {
	s := &Service{
		clock:   ClockFunc(func() time.Time { return time.Now().UTC() }),
		logger:  noopLogger{},
		metrics: noopMetrics{},
		tracer:  noopTracer{},
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.catalog == nil {
		s.catalog = catalog.Default()
	}
	if s.engine == nil {
		s.engine = NewDefaultRulesEngine()
	}
	return s
}

// NewService returns a service holding a fresh state with the unsaved default
// plan. Nothing is loaded from the state store, if one is configured.
func NewService(opts ...Option) *Service {
	s := newService(opts)
	s.state = domain.NewState(domain.NewDefaultPlan(s.clock.Now()))
	return s
}

// Open restores the state from store, falling back to a fresh state when the
// store is empty.
func Open(ctx context.Context, store domain.StateStore, opts ...Option) (*Service, error) {
	s := newService(append(opts, WithStateStore(store)))
	if store == nil {
		return nil, fmt.Errorf("open service: nil state store")
	}
	st, ok, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	if !ok {
		s.state = domain.NewState(domain.NewDefaultPlan(s.clock.Now()))
		s.logger.Info("initialised fresh state")
		return s, nil
	}
	s.state = st.Normalize()
	s.logger.Info("restored state",
		"saved_plans", len(s.state.SavedPlans),
		"compendium_items", len(s.state.CompendiumItems),
		"dose_logs", len(s.state.DoseLogs),
	)
	return s, nil
}

// Catalog returns the catalog the service resolves against.
func (s *Service) Catalog() *catalog.Catalog { return s.catalog }

// State returns a deep copy of the whole state.
func (s *Service) State() domain.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// CurrentPlan returns a copy of the current plan, or nil when none is active.
func (s *Service) CurrentPlan() *domain.UserPlan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.CurrentPlan == nil {
		return nil
	}
	plan := s.state.CurrentPlan.Clone()
	return &plan
}

// SavedPlans returns copies of the saved plans in save order.
func (s *Service) SavedPlans() []domain.UserPlan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.UserPlan, len(s.state.SavedPlans))
	for i, p := range s.state.SavedPlans {
		out[i] = p.Clone()
	}
	return out
}

// Flush writes the current state to the store and returns any error. A
// failure of an earlier automatic save is retried here.
func (s *Service) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked(ctx)
}

// Close flushes the state and releases the store.
func (s *Service) Close(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	flushErr := s.Flush(ctx)
	if err := s.store.Close(); err != nil {
		return fmt.Errorf("close state store: %w", err)
	}
	return flushErr
}

// mutate runs fn against a copy of the state. When fn reports a change the
// copy replaces the state and is persisted.
func (s *Service) mutate(ctx context.Context, op string, fn func(st *domain.State, now time.Time) bool) bool {
	ctx, span := s.tracer.Start(ctx, op)
	start := time.Now()

	s.mu.Lock()
	next := s.state.Clone()
	applied := fn(&next, s.clock.Now())
	var err error
	if applied {
		s.state = next
		err = s.persistLocked(ctx)
	}
	s.mu.Unlock()

	s.metrics.Observe(ctx, op, err == nil, time.Since(start))
	span.End(err)
	if !applied {
		s.logger.Debug("mutation skipped", "operation", op)
	} else {
		s.logger.Debug("mutation applied", "operation", op)
	}
	return applied
}

func (s *Service) persistLocked(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Save(ctx, s.state); err != nil {
		s.persistErr = err
		s.logger.Error("persist state failed", "error", err)
		return fmt.Errorf("persist state: %w", err)
	}
	s.persistErr = nil
	return nil
}

// LastPersistError returns the error of the most recent failed save, cleared
// by the next successful one.
func (s *Service) LastPersistError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persistErr
}
