// Package calories estimates energy burned by a logged exercise session.
package calories

import (
	"math"
	"strings"
)

const (
	// body weight (kg) the MET values are scaled by
	referenceBodyWeight = 70.0
	defaultIntensity    = 5.0
	maxVolumeMultiplier = 2.0
	maxCalories         = math.MaxInt32
)

// Rule maps any of its keywords (substring of the lower-cased exercise name) to a MET-like intensity.
type Rule struct {
	Keywords  []string
	Intensity float64
}

// DefaultRules are checked in order, first match wins.
var DefaultRules = []Rule{
	{Keywords: []string{"run", "jog"}, Intensity: 9},
	{Keywords: []string{"swim"}, Intensity: 8},
	{Keywords: []string{"cycling", "bike"}, Intensity: 7},
	{Keywords: []string{"jump", "burpee"}, Intensity: 10},
	{Keywords: []string{"walk"}, Intensity: 4},
	{Keywords: []string{"squat", "deadlift"}, Intensity: 6},
	{Keywords: []string{"bench", "press"}, Intensity: 5},
	{Keywords: []string{"pull", "chin"}, Intensity: 5.5},
	{Keywords: []string{"row"}, Intensity: 5.5},
	{Keywords: []string{"curl"}, Intensity: 4},
	{Keywords: []string{"lunge"}, Intensity: 5},
}

type Estimator struct {
	rules []Rule
}

func NewEstimator(rules []Rule) *Estimator {
	return &Estimator{
		rules: rules,
	}
}

var defaultEstimator = NewEstimator(DefaultRules)

// Estimate uses the default keyword table.
func Estimate(exerciseName string, durationMinutes, sets, reps int) int {
	return defaultEstimator.Estimate(exerciseName, durationMinutes, sets, reps)
}

func (e *Estimator) Intensity(exerciseName string) float64 {
	name := strings.ToLower(exerciseName)
	for _, rule := range e.rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(name, keyword) {
				return rule.Intensity
			}
		}
	}
	return defaultIntensity
}

// Estimate returns the rounded calorie estimate in [0, math.MaxInt32].
// Sets and reps below 1 count as 1.
func (e *Estimator) Estimate(exerciseName string, durationMinutes, sets, reps int) int {
	if durationMinutes <= 0 {
		return 0
	}
	if sets < 1 {
		sets = 1
	}
	if reps < 1 {
		reps = 1
	}

	base := e.Intensity(exerciseName) * referenceBodyWeight * (float64(durationMinutes) / 60)
	multiplier := math.Min(float64(sets)*float64(reps)/10, maxVolumeMultiplier)

	calories := math.Round(base * multiplier)
	switch {
	case math.IsNaN(calories) || calories < 0:
		return 0
	case calories > maxCalories:
		return maxCalories
	}
	return int(calories)
}
