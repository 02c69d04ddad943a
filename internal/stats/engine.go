// Package stats aggregates the workout log into summary, streak, daily progress and frequency figures.
// All Compute* functions are pure; calendar days are taken in the location of now.
package stats

import (
	"sort"
	"time"

	"github.com/2beens/fittrack/internal/workouts"
)

const (
	DefaultProgressDays = 30
	FrequencyTopN       = 10

	dayKeyLayout   = "2006-01-02"
	dayLabelLayout = "Jan 2"
)

type Summary struct {
	TotalWorkouts int `json:"totalWorkouts"`
	WeekWorkouts  int `json:"weekWorkouts"`
	MonthWorkouts int `json:"monthWorkouts"`
	TotalCalories int `json:"totalCalories"`
	WeekCalories  int `json:"weekCalories"`
	StreakDays    int `json:"streakDays"`
}

type DailyPoint struct {
	Date     string `json:"date"`  // 2006-01-02
	Label    string `json:"label"` // Jan 2
	Workouts int    `json:"workouts"`
	Calories int    `json:"calories"`
	Duration int    `json:"duration"`
}

type FrequencyEntry struct {
	Name          string `json:"name"`
	Count         int    `json:"count"`
	TotalCalories int    `json:"totalCalories"`
}

func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dayKeyLayout)
}

// ComputeSummary counts the week (last 7 days) and month (last 30 days) windows
// up to and including now; totals cover the whole log.
func ComputeSummary(records []workouts.Workout, now time.Time) Summary {
	weekStart := now.Add(-7 * 24 * time.Hour)
	monthStart := now.Add(-30 * 24 * time.Hour)

	summary := Summary{
		TotalWorkouts: len(records),
		StreakDays:    ComputeStreak(records, now),
	}
	for _, r := range records {
		summary.TotalCalories += r.Calories
		if r.Date.After(now) {
			continue
		}
		if !r.Date.Before(weekStart) {
			summary.WeekWorkouts++
			summary.WeekCalories += r.Calories
		}
		if !r.Date.Before(monthStart) {
			summary.MonthWorkouts++
		}
	}

	return summary
}

// ComputeStreak returns the number of consecutive calendar days with at least one workout,
// ending today, or yesterday when nothing was logged today yet.
// An empty today never breaks the streak: workouts only on the three days before today
// give 3, not 0. The streak is 0 once neither today nor yesterday has a workout.
func ComputeStreak(records []workouts.Workout, now time.Time) int {
	if len(records) == 0 {
		return 0
	}

	loc := now.Location()
	activeDays := make(map[string]bool, len(records))
	for _, r := range records {
		activeDays[dayKey(r.Date, loc)] = true
	}

	// noon keeps day arithmetic clear of DST edges
	day := time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, loc)
	if !activeDays[day.Format(dayKeyLayout)] {
		day = day.AddDate(0, 0, -1)
		if !activeDays[day.Format(dayKeyLayout)] {
			return 0
		}
	}

	streak := 0
	for activeDays[day.Format(dayKeyLayout)] {
		streak++
		day = day.AddDate(0, 0, -1)
	}

	return streak
}

// ComputeDailyProgress groups the workouts of the last windowDays days by calendar day,
// in chronological order. windowDays <= 0 means DefaultProgressDays.
func ComputeDailyProgress(records []workouts.Workout, now time.Time, windowDays int) []DailyPoint {
	if windowDays <= 0 {
		windowDays = DefaultProgressDays
	}
	loc := now.Location()
	cutoff := now.AddDate(0, 0, -windowDays)

	inWindow := make([]workouts.Workout, 0, len(records))
	for _, r := range records {
		if !r.Date.Before(cutoff) && !r.Date.After(now) {
			inWindow = append(inWindow, r)
		}
	}
	sort.SliceStable(inWindow, func(i, j int) bool {
		return inWindow[i].Date.Before(inWindow[j].Date)
	})

	points := make([]DailyPoint, 0)
	pointIndex := make(map[string]int)
	for _, r := range inWindow {
		key := dayKey(r.Date, loc)
		i, ok := pointIndex[key]
		if !ok {
			points = append(points, DailyPoint{
				Date:  key,
				Label: r.Date.In(loc).Format(dayLabelLayout),
			})
			i = len(points) - 1
			pointIndex[key] = i
		}
		points[i].Workouts++
		points[i].Calories += r.Calories
		points[i].Duration += r.Duration
	}

	return points
}

// ComputeExerciseFrequency ranks exercise names by how often they were logged, top FrequencyTopN.
// Names are matched exactly; ties keep first-seen order.
func ComputeExerciseFrequency(records []workouts.Workout) []FrequencyEntry {
	entries := make([]FrequencyEntry, 0)
	entryIndex := make(map[string]int)
	for _, r := range records {
		i, ok := entryIndex[r.ExerciseName]
		if !ok {
			entries = append(entries, FrequencyEntry{Name: r.ExerciseName})
			i = len(entries) - 1
			entryIndex[r.ExerciseName] = i
		}
		entries[i].Count++
		entries[i].TotalCalories += r.Calories
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	if len(entries) > FrequencyTopN {
		entries = entries[:FrequencyTopN]
	}

	return entries
}
