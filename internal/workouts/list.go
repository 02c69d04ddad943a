package workouts

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type SortMode string

const (
	SortDateDesc     SortMode = "date-desc"
	SortDateAsc      SortMode = "date-asc"
	SortCaloriesDesc SortMode = "calories-desc"
	SortCaloriesAsc  SortMode = "calories-asc"
	SortNameAsc      SortMode = "name-asc"
	SortNameDesc     SortMode = "name-desc"
)

func ParseSortMode(value string) (SortMode, error) {
	switch mode := SortMode(strings.ToLower(value)); mode {
	case "":
		return SortDateDesc, nil
	case SortDateDesc, SortDateAsc, SortCaloriesDesc, SortCaloriesAsc, SortNameAsc, SortNameDesc:
		return mode, nil
	default:
		return "", &ValidationError{Field: "sort", Reason: fmt.Sprintf("unknown sort mode %q", value)}
	}
}

type ListParams struct {
	Search string
	Sort   SortMode
}

// Filter keeps workouts whose exercise name contains search, case-insensitive.
func Filter(workouts []Workout, search string) []Workout {
	search = strings.ToLower(strings.TrimSpace(search))
	filtered := make([]Workout, 0, len(workouts))
	for _, w := range workouts {
		if search == "" || strings.Contains(strings.ToLower(w.ExerciseName), search) {
			filtered = append(filtered, w)
		}
	}
	return filtered
}

// Sort orders workouts in place. Equal keys keep their relative order.
func Sort(workouts []Workout, mode SortMode) {
	var less func(a, b Workout) bool
	switch mode {
	case SortDateAsc:
		less = func(a, b Workout) bool { return a.Date.Before(b.Date) }
	case SortCaloriesDesc:
		less = func(a, b Workout) bool { return a.Calories > b.Calories }
	case SortCaloriesAsc:
		less = func(a, b Workout) bool { return a.Calories < b.Calories }
	case SortNameAsc:
		less = func(a, b Workout) bool { return strings.ToLower(a.ExerciseName) < strings.ToLower(b.ExerciseName) }
	case SortNameDesc:
		less = func(a, b Workout) bool { return strings.ToLower(a.ExerciseName) > strings.ToLower(b.ExerciseName) }
	default:
		less = func(a, b Workout) bool { return a.Date.After(b.Date) }
	}

	sort.SliceStable(workouts, func(i, j int) bool {
		return less(workouts[i], workouts[j])
	})
}

// Recent returns the workouts of the last days days, newest first.
// A limit above zero caps the result.
func Recent(workouts []Workout, now time.Time, days, limit int) []Workout {
	cutoff := now.AddDate(0, 0, -days)
	recent := make([]Workout, 0)
	for _, w := range workouts {
		if !w.Date.Before(cutoff) {
			recent = append(recent, w)
		}
	}

	Sort(recent, SortDateDesc)
	if limit > 0 && len(recent) > limit {
		recent = recent[:limit]
	}

	return recent
}
