package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/volunteer-scheduler/internal/application"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithFactoryClock overrides the clock used by the factory.
func WithFactoryClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithFactoryIDGenerator overrides the identifier generator used by the
// factory.
func WithFactoryIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// ScheduleServiceDeps captures dependencies for constructing a schedule
// service.
type ScheduleServiceDeps struct {
	Schedules   application.ScheduleStore
	Classes     application.ClassStore
	Terms       application.TermStore
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewScheduleService builds a schedule service using the supplied dependencies
// combined with the factory defaults.
func (f *ServiceFactory) NewScheduleService(deps ScheduleServiceDeps) *application.ScheduleService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewScheduleServiceWithLogger(
		deps.Schedules,
		deps.Classes,
		deps.Terms,
		idGen,
		now,
		deps.Logger,
	)
}

// PublishServiceDeps captures dependencies for constructing a publish service.
type PublishServiceDeps struct {
	Classes     application.ClassStore
	Terms       application.TermStore
	Schedules   application.ScheduleStore
	Publisher   application.Publisher
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewPublishService builds a publish service using the supplied dependencies.
func (f *ServiceFactory) NewPublishService(deps PublishServiceDeps) *application.PublishService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewPublishServiceWithLogger(
		deps.Classes,
		deps.Terms,
		deps.Schedules,
		deps.Publisher,
		idGen,
		now,
		deps.Logger,
	)
}

// TermServiceDeps captures dependencies for constructing a term service.
type TermServiceDeps struct {
	Terms       application.TermStore
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewTermService builds a term service using the supplied dependencies.
func (f *ServiceFactory) NewTermService(deps TermServiceDeps) *application.TermService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewTermServiceWithLogger(
		deps.Terms,
		idGen,
		now,
		deps.Logger,
	)
}

// ClassServiceDeps captures dependencies for constructing a class service.
type ClassServiceDeps struct {
	Classes     application.ClassStore
	Terms       application.TermStore
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewClassService builds a class service using the supplied dependencies.
func (f *ServiceFactory) NewClassService(deps ClassServiceDeps) *application.ClassService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewClassServiceWithLogger(
		deps.Classes,
		deps.Terms,
		idGen,
		now,
		deps.Logger,
	)
}
