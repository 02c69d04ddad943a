package workouts

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/fittrack/internal/calories"
)

const (
	maxExerciseNameLength = 200
	// a full day
	MaxDurationMinutes = 1440
	MaxSetsOrReps      = 10000
)

// NewWorkoutRequest is the payload of a workout being logged.
type NewWorkoutRequest struct {
	ExerciseName string   `json:"exerciseName"`
	Sets         int      `json:"sets"`
	Reps         int      `json:"reps"`
	Duration     int      `json:"duration"`
	Weight       *float64 `json:"weight,omitempty"`
	Notes        string   `json:"notes,omitempty"`
}

// Validate checks the request and applies defaults (sets and reps default to 1).
func (req *NewWorkoutRequest) Validate() error {
	req.ExerciseName = strings.TrimSpace(req.ExerciseName)
	req.Notes = strings.TrimSpace(req.Notes)

	if req.ExerciseName == "" {
		return &ValidationError{Field: "exerciseName", Reason: "required"}
	}
	if len(req.ExerciseName) > maxExerciseNameLength {
		return &ValidationError{Field: "exerciseName", Reason: "too long"}
	}
	if req.Duration <= 0 {
		return &ValidationError{Field: "duration", Reason: "must be a positive number of minutes"}
	}
	if req.Duration > MaxDurationMinutes {
		return &ValidationError{Field: "duration", Reason: fmt.Sprintf("must not exceed %d minutes", MaxDurationMinutes)}
	}
	if req.Sets < 0 {
		return &ValidationError{Field: "sets", Reason: "must be at least 1"}
	}
	if req.Sets > MaxSetsOrReps {
		return &ValidationError{Field: "sets", Reason: fmt.Sprintf("must not exceed %d", MaxSetsOrReps)}
	}
	if req.Reps < 0 {
		return &ValidationError{Field: "reps", Reason: "must be at least 1"}
	}
	if req.Reps > MaxSetsOrReps {
		return &ValidationError{Field: "reps", Reason: fmt.Sprintf("must not exceed %d", MaxSetsOrReps)}
	}
	if req.Weight != nil && *req.Weight < 0 {
		return &ValidationError{Field: "weight", Reason: "must not be negative"}
	}

	if req.Sets == 0 {
		req.Sets = 1
	}
	if req.Reps == 0 {
		req.Reps = 1
	}

	return nil
}

type Service struct {
	store     *Store
	estimator *calories.Estimator
	now       func() time.Time
}

func NewService(store *Store, estimator *calories.Estimator) *Service {
	return &Service{
		store:     store,
		estimator: estimator,
		now:       time.Now,
	}
}

// Log validates the request, freezes its calorie estimate and stores it.
func (s *Service) Log(ctx context.Context, req NewWorkoutRequest) (Workout, error) {
	if err := req.Validate(); err != nil {
		return Workout{}, err
	}

	draft := Draft{
		ExerciseName: req.ExerciseName,
		Sets:         req.Sets,
		Reps:         req.Reps,
		Duration:     req.Duration,
		Weight:       req.Weight,
		Calories:     s.estimator.Estimate(req.ExerciseName, req.Duration, req.Sets, req.Reps),
		Notes:        req.Notes,
	}

	workout, err := s.store.Add(ctx, draft)
	if err != nil {
		return Workout{}, err
	}

	log.Debugf("workout logged: %s [%s], %d kcal", workout.ID, workout.ExerciseName, workout.Calories)
	return workout, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return &ValidationError{Field: "id", Reason: "required"}
	}
	return s.store.Delete(ctx, id)
}

// All returns a snapshot of the whole log.
func (s *Service) All(ctx context.Context) []Workout {
	return s.store.GetAll(ctx)
}

func (s *Service) List(ctx context.Context, params ListParams) []Workout {
	filtered := Filter(s.store.GetAll(ctx), params.Search)
	Sort(filtered, params.Sort)
	return filtered
}

func (s *Service) Recent(ctx context.Context, days, limit int) []Workout {
	return Recent(s.store.GetAll(ctx), s.now(), days, limit)
}
