package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fittrack/internal/storage"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
)

// Store keeps the whole workout log as one json array under a single key.
// Every write is a full read-modify-write cycle, serialized per store instance.
type Store struct {
	mutex sync.Mutex
	kv    storage.KV
	key   string

	now   func() time.Time
	newID func() string
}

func NewStore(kv storage.KV, key string) *Store {
	if key == "" {
		key = DefaultStorageKey
	}
	return &Store{
		kv:    kv,
		key:   key,
		now:   time.Now,
		newID: newWorkoutID,
	}
}

func newWorkoutID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// GetAll returns every stored workout, in storage order.
// Missing or unreadable data yields an empty list.
func (s *Store) GetAll(ctx context.Context) []Workout {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.workouts.getAll")
	defer span.End()

	workouts, err := s.load(ctx)
	if err != nil {
		log.Errorf("get all workouts: %s", err)
		return []Workout{}
	}
	return workouts
}

func (s *Store) Add(ctx context.Context, draft Draft) (_ Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.workouts.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	workouts, err := s.loadForWrite(ctx)
	if err != nil {
		return Workout{}, err
	}

	workout := Workout{
		ID:           s.newID(),
		ExerciseName: draft.ExerciseName,
		Sets:         draft.Sets,
		Reps:         draft.Reps,
		Duration:     draft.Duration,
		Weight:       draft.Weight,
		Calories:     draft.Calories,
		Notes:        draft.Notes,
		Date:         s.now(),
	}

	if err := s.persist(ctx, append(workouts, workout)); err != nil {
		return Workout{}, err
	}

	return workout, nil
}

// Delete removes the workout with the given id. Unknown ids are not an error.
func (s *Store) Delete(ctx context.Context, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.workouts.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	workouts, err := s.loadForWrite(ctx)
	if err != nil {
		return err
	}

	remaining := make([]Workout, 0, len(workouts))
	for _, w := range workouts {
		if w.ID != id {
			remaining = append(remaining, w)
		}
	}

	if len(remaining) == len(workouts) {
		log.Debugf("delete workout %s: not found", id)
		return nil
	}

	return s.persist(ctx, remaining)
}

func (s *Store) load(ctx context.Context) ([]Workout, error) {
	data, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []Workout{}, nil
		}
		return nil, &StorageError{Op: "read", Err: err}
	}

	var workouts []Workout
	if err := json.Unmarshal(data, &workouts); err != nil {
		return nil, &corruptDataError{err: err}
	}
	if workouts == nil {
		workouts = []Workout{}
	}

	return workouts, nil
}

// loadForWrite reads the current set before a write.
// Corrupt data is replaced, a failing substrate aborts the write.
func (s *Store) loadForWrite(ctx context.Context) ([]Workout, error) {
	workouts, err := s.load(ctx)
	if err == nil {
		return workouts, nil
	}

	var corruptErr *corruptDataError
	if errors.As(err, &corruptErr) {
		log.Warnf("stored workouts under [%s] are corrupt and will be overwritten: %s", s.key, corruptErr)
		return []Workout{}, nil
	}

	return nil, err
}

func (s *Store) persist(ctx context.Context, workouts []Workout) error {
	data, err := json.Marshal(workouts)
	if err != nil {
		return &StorageError{Op: "marshal", Err: err}
	}

	if err := s.kv.Set(ctx, s.key, data); err != nil {
		return &StorageError{Op: "write", Err: err}
	}

	return nil
}

type corruptDataError struct {
	err error
}

func (e *corruptDataError) Error() string {
	return "corrupt workouts data: " + e.err.Error()
}
