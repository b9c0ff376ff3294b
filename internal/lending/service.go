package lending

import (
	"time"
)

// Logger is satisfied by *slog.Logger
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Service implements the loan lifecycle and fee rules on top of a Store
type Service struct {
	store  Store
	policy Policy
	now    func() time.Time
	logger Logger
}

// Option configures a Service
type Option func(*Service)

// WithPolicy replaces the default lending policy
func WithPolicy(policy Policy) Option {
	return func(s *Service) {
		s.policy = policy
	}
}

// WithClock sets the time source used for borrow, return and fee computations
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLogger sets the logger for operation outcomes
func WithLogger(logger Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a lending service backed by store
func NewService(store Store, options ...Option) *Service {
	s := &Service{
		store:  store,
		policy: DefaultPolicy(),
		now:    time.Now,
		logger: nopLogger{},
	}

	for _, option := range options {
		option(s)
	}

	return s
}

// Policy returns the rules the service applies
func (s *Service) Policy() Policy {
	return s.policy
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
