package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2beens/fittrack/internal/calories"
	"github.com/2beens/fittrack/internal/stats"
	"github.com/2beens/fittrack/internal/workouts"
)

const maxProgressDays = 365

type statsService interface {
	Summary(ctx context.Context) stats.Summary
	DailyProgress(ctx context.Context, windowDays int) []stats.DailyPoint
	ExerciseFrequency(ctx context.Context) []stats.FrequencyEntry
}

type workoutsService interface {
	List(ctx context.Context, params workouts.ListParams) []workouts.Workout
	Recent(ctx context.Context, days, limit int) []workouts.Workout
}

type calorieEstimator interface {
	Intensity(exerciseName string) float64
	Estimate(exerciseName string, durationMinutes, sets, reps int) int
}

// Handler handles MCP tool requests and responses: parses input, calls the services, formats MCP result.
type Handler struct {
	stats     statsService
	workouts  workoutsService
	estimator calorieEstimator
}

func NewHandler(statsService statsService, workoutsService workoutsService, estimator calorieEstimator) *Handler {
	return &Handler{
		stats:     statsService,
		workouts:  workoutsService,
		estimator: estimator,
	}
}

// NoInput is the input of tools that take no arguments.
type NoInput struct{}

// GetWorkoutSummaryTool returns the MCP tool handler for get_workout_summary.
func (h *Handler) GetWorkoutSummaryTool() func(context.Context, *mcp.CallToolRequest, NoInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
		return jsonResult(h.stats.Summary(ctx))
	}
}

// DailyProgressInput is the input for get_daily_progress.
type DailyProgressInput struct {
	Days int `json:"days,omitempty" jsonschema:"Number of days in the window, ending today (default 30, max 365)"`
}

// GetDailyProgressTool returns the MCP tool handler for get_daily_progress.
func (h *Handler) GetDailyProgressTool() func(context.Context, *mcp.CallToolRequest, DailyProgressInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in DailyProgressInput) (*mcp.CallToolResult, any, error) {
		if in.Days < 0 || in.Days > maxProgressDays {
			return errorResult(fmt.Sprintf("Invalid days: use 1 to %d", maxProgressDays)), nil, nil
		}
		return jsonResult(h.stats.DailyProgress(ctx, in.Days))
	}
}

// GetExerciseFrequencyTool returns the MCP tool handler for get_exercise_frequency.
func (h *Handler) GetExerciseFrequencyTool() func(context.Context, *mcp.CallToolRequest, NoInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
		return jsonResult(h.stats.ExerciseFrequency(ctx))
	}
}

// ListWorkoutsInput is the input for list_workouts.
type ListWorkoutsInput struct {
	Search string `json:"search,omitempty" jsonschema:"Case-insensitive substring of the exercise name"`
	Sort   string `json:"sort,omitempty" jsonschema:"One of date-desc (default), date-asc, calories-desc, calories-asc, name-asc, name-desc"`
	Days   int    `json:"days,omitempty" jsonschema:"Only workouts from the last N days, newest first (ignores search and sort)"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum number of workouts to return (0 means all)"`
}

// ListWorkoutsTool returns the MCP tool handler for list_workouts.
func (h *Handler) ListWorkoutsTool() func(context.Context, *mcp.CallToolRequest, ListWorkoutsInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in ListWorkoutsInput) (*mcp.CallToolResult, any, error) {
		if in.Days < 0 || in.Limit < 0 {
			return errorResult("Invalid input: days and limit must not be negative"), nil, nil
		}

		if in.Days > 0 {
			return jsonResult(h.workouts.Recent(ctx, in.Days, in.Limit))
		}

		sortMode, err := workouts.ParseSortMode(in.Sort)
		if err != nil {
			return errorResult("Invalid sort: " + err.Error()), nil, nil
		}

		list := h.workouts.List(ctx, workouts.ListParams{
			Search: in.Search,
			Sort:   sortMode,
		})
		if in.Limit > 0 && len(list) > in.Limit {
			list = list[:in.Limit]
		}
		return jsonResult(list)
	}
}

// EstimateCaloriesInput is the input for estimate_calories.
type EstimateCaloriesInput struct {
	Exercise string `json:"exercise" jsonschema:"Exercise name (e.g. Running, Bench Press)"`
	Duration int    `json:"duration" jsonschema:"Duration in minutes"`
	Sets     int    `json:"sets,omitempty" jsonschema:"Number of sets (default 1)"`
	Reps     int    `json:"reps,omitempty" jsonschema:"Repetitions per set (default 1)"`
}

// EstimateCaloriesTool returns the MCP tool handler for estimate_calories.
func (h *Handler) EstimateCaloriesTool() func(context.Context, *mcp.CallToolRequest, EstimateCaloriesInput) (*mcp.CallToolResult, any, error) {
	return func(_ context.Context, _ *mcp.CallToolRequest, in EstimateCaloriesInput) (*mcp.CallToolResult, any, error) {
		if in.Exercise == "" {
			return errorResult("Invalid input: exercise is required"), nil, nil
		}
		if in.Duration < 0 || in.Sets < 0 || in.Reps < 0 {
			return errorResult("Invalid input: duration, sets and reps must not be negative"), nil, nil
		}
		return jsonResult(calories.EstimateResponse{
			Exercise:  in.Exercise,
			Intensity: h.estimator.Intensity(in.Exercise),
			Calories:  h.estimator.Estimate(in.Exercise, in.Duration, in.Sets, in.Reps),
		})
	}
}

func jsonResult(v any) (*mcp.CallToolResult, any, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("Error encoding response: " + err.Error()), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(raw)}},
	}, nil, nil
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}
