package stats

import (
	"context"
	"time"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/internal/workouts"
)

//go:generate mockgen -source=$GOFILE -destination=stats_mocks_test.go -package=stats_test

type workoutsSource interface {
	All(ctx context.Context) []workouts.Workout
}

// Service takes a snapshot of the workout log and runs the engine over it,
// with calendar days taken in the configured location.
type Service struct {
	source   workoutsSource
	location *time.Location
	now      func() time.Time
}

func NewService(source workoutsSource, location *time.Location) *Service {
	return NewServiceWithClock(source, location, time.Now)
}

func NewServiceWithClock(source workoutsSource, location *time.Location, now func() time.Time) *Service {
	if location == nil {
		location = time.Local
	}
	return &Service{
		source:   source,
		location: location,
		now:      now,
	}
}

func (s *Service) Now() time.Time {
	return s.now().In(s.location)
}

func (s *Service) Summary(ctx context.Context) Summary {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.stats.summary")
	defer span.End()

	return ComputeSummary(s.source.All(ctx), s.Now())
}

func (s *Service) DailyProgress(ctx context.Context, windowDays int) []DailyPoint {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.stats.dailyProgress")
	defer span.End()

	return ComputeDailyProgress(s.source.All(ctx), s.Now(), windowDays)
}

func (s *Service) ExerciseFrequency(ctx context.Context) []FrequencyEntry {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.stats.exerciseFrequency")
	defer span.End()

	return ComputeExerciseFrequency(s.source.All(ctx))
}
