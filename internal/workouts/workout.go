package workouts

import (
	"fmt"
	"time"
)

const DefaultStorageKey = "fittrack_workouts"

// Workout is one logged exercise session. Records are immutable once stored.
type Workout struct {
	ID           string    `json:"id"`
	ExerciseName string    `json:"exerciseName"`
	Sets         int       `json:"sets"`
	Reps         int       `json:"reps"`
	Duration     int       `json:"duration"` // minutes
	Weight       *float64  `json:"weight,omitempty"`
	Calories     int       `json:"calories"`
	Notes        string    `json:"notes,omitempty"`
	Date         time.Time `json:"date"`
}

// Draft is a workout before the store assigns its id and date.
type Draft struct {
	ExerciseName string
	Sets         int
	Reps         int
	Duration     int
	Weight       *float64
	Calories     int
	Notes        string
}

type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("workouts storage %s: %s", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
