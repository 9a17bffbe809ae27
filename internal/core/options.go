package core

import (
	"bioforge/internal/catalog"
	"bioforge/pkg/domain"
)

// Option customises a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(clock Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger routes service logs to logger.
func WithLogger(logger Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetricsRecorder records operation outcomes.
func WithMetricsRecorder(rec MetricsRecorder) Option {
	return func(s *Service) {
		if rec != nil {
			s.metrics = rec
		}
	}
}

// WithTracer wraps operations in spans.
func WithTracer(tracer Tracer) Option {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithStateStore persists the state blob after every applied mutation.
func WithStateStore(store domain.StateStore) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithCatalog resolves peptides and organs against c instead of the embedded
// catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithRulesEngine replaces the plan checks run by CheckCurrentPlan.
func WithRulesEngine(engine *RulesEngine) Option {
	return func(s *Service) {
		if engine != nil {
			s.engine = engine
		}
	}
}

// WithIDGenerator overrides how plan, log and module ids are minted.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}
