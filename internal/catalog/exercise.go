package catalog

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	PageSize           = 10
	MaxPage            = 1000
	OfflineWarning     = "Using offline exercise database"
	defaultDescription = "No description available"
	defaultType        = "strength"
	defaultMuscle      = "general"
	defaultDifficulty  = "beginner"
	defaultEquipment   = "none"
	fallbackEquipment  = "bodyweight"
)

// muscle groups browsed page by page when no search term is given
var browseMuscleGroups = []string{"chest", "biceps", "quadriceps", "abdominals", "lats", "triceps", "shoulders"}

var whitespaceRegex = regexp.MustCompile(`\s`)

type Exercise struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Muscle      string `json:"muscle"`
	Difficulty  string `json:"difficulty"`
	Equipment   string `json:"equipment"`
}

type SearchResult struct {
	Exercises []Exercise `json:"exercises"`
	Count     int        `json:"count"`
	Next      bool       `json:"next"`
	Previous  bool       `json:"previous"`
	Warning   string     `json:"warning,omitempty"`
	Degraded  bool       `json:"degraded"`
}

// remoteExercise is the api-ninjas exercise shape.
type remoteExercise struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Muscle       string `json:"muscle"`
	Equipment    string `json:"equipment"`
	Difficulty   string `json:"difficulty"`
	Instructions string `json:"instructions"`
}

func exerciseID(name string, page, index int) string {
	return fmt.Sprintf("%s_%d_%d", whitespaceRegex.ReplaceAllString(name, "_"), page, index)
}

func orDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}

func (re remoteExercise) toExercise(page, index int) Exercise {
	return Exercise{
		ID:          exerciseID(re.Name, page, index),
		Name:        re.Name,
		Description: orDefault(re.Instructions, defaultDescription),
		Type:        orDefault(re.Type, defaultType),
		Muscle:      orDefault(re.Muscle, defaultMuscle),
		Difficulty:  orDefault(re.Difficulty, defaultDifficulty),
		Equipment:   orDefault(re.Equipment, defaultEquipment),
	}
}

type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("exercises api %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("exercises api %s: %s", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

var offlineExercises = []remoteExercise{
	{Name: "Push-ups", Instructions: "Classic bodyweight chest exercise", Type: "strength", Muscle: "chest", Difficulty: "beginner"},
	{Name: "Squats", Instructions: "Lower body compound movement", Type: "strength", Muscle: "quadriceps", Difficulty: "beginner"},
	{Name: "Lunges", Instructions: "Single leg strength exercise", Type: "strength", Muscle: "quadriceps", Difficulty: "beginner"},
	{Name: "Plank", Instructions: "Core stability hold", Type: "strength", Muscle: "abdominals", Difficulty: "beginner"},
	{Name: "Jumping Jacks", Instructions: "Full body cardio exercise", Type: "cardio", Muscle: "general", Difficulty: "beginner"},
	{Name: "Burpees", Instructions: "High intensity full body exercise", Type: "cardio", Muscle: "general", Difficulty: "intermediate"},
	{Name: "Mountain Climbers", Instructions: "Dynamic core and cardio exercise", Type: "cardio", Muscle: "abdominals", Difficulty: "intermediate"},
	{Name: "Bicycle Crunches", Instructions: "Rotational ab exercise", Type: "strength", Muscle: "abdominals", Difficulty: "beginner"},
	{Name: "Pull-ups", Instructions: "Upper body pulling exercise", Type: "strength", Muscle: "lats", Difficulty: "intermediate"},
	{Name: "Dips", Instructions: "Triceps and chest exercise", Type: "strength", Muscle: "triceps", Difficulty: "intermediate"},
}

// OfflineExercises filters the bundled list by name or muscle and returns the given page of it.
func OfflineExercises(term string, page int) []Exercise {
	if page < 1 {
		page = 1
	}
	term = strings.ToLower(strings.TrimSpace(term))

	filtered := make([]remoteExercise, 0, len(offlineExercises))
	for _, ex := range offlineExercises {
		if term == "" ||
			strings.Contains(strings.ToLower(ex.Name), term) ||
			strings.Contains(strings.ToLower(ex.Muscle), term) {
			filtered = append(filtered, ex)
		}
	}

	exercises := make([]Exercise, 0, PageSize)
	if page > len(filtered)/PageSize+1 {
		return exercises
	}
	start := (page - 1) * PageSize
	if start >= len(filtered) {
		return exercises
	}
	end := min(start+PageSize, len(filtered))

	for i, ex := range filtered[start:end] {
		exercise := ex.toExercise(page, i)
		exercise.Equipment = fallbackEquipment
		exercises = append(exercises, exercise)
	}

	return exercises
}
