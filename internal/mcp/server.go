// Package mcp exposes the workout log and its statistics as MCP tools.
package mcp

import (
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	ToolGetWorkoutSummary    = "get_workout_summary"
	ToolGetDailyProgress     = "get_daily_progress"
	ToolGetExerciseFrequency = "get_exercise_frequency"
	ToolListWorkouts         = "list_workouts"
	ToolEstimateCalories     = "estimate_calories"
)

// NewServer builds an MCP server with the fittrack tools.
// Used by cmd/workouts_mcp over stdio and by the main backend mounted at /mcp.
func NewServer(
	statsService statsService,
	workoutsService workoutsService,
	estimator calorieEstimator,
	version string,
) *mcp.Server {
	h := NewHandler(statsService, workoutsService, estimator)
	s := mcp.NewServer(&mcp.Implementation{
		Name:    "fittrack",
		Version: version,
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        ToolGetWorkoutSummary,
		Description: "Returns totals of the workout log: all-time, this week and this month workout counts, total and weekly calories, and the current streak of consecutive training days.",
	}, h.GetWorkoutSummaryTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        ToolGetDailyProgress,
		Description: "Returns one point per calendar day (workouts, calories, duration) for the last N days ending today. Optional arg: days (default 30). Use when charting progress over time.",
	}, h.GetDailyProgressTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        ToolGetExerciseFrequency,
		Description: "Returns the 10 most frequently logged exercises with their counts and total calories.",
	}, h.GetExerciseFrequencyTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        ToolListWorkouts,
		Description: "Returns logged workouts. Optional filters: search (name substring), sort (date-desc, date-asc, calories-desc, calories-asc, name-asc, name-desc), days (only the last N days), limit.",
	}, h.ListWorkoutsTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        ToolEstimateCalories,
		Description: "Estimates calories burned for an exercise. Args: exercise, duration (minutes); optional: sets, reps.",
	}, h.EstimateCaloriesTool())

	return s
}

// NewHTTPHandler serves the given MCP server over the streamable HTTP transport.
func NewHTTPHandler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)
}
