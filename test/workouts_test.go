package test

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/fittrack/internal/catalog"
	"github.com/2beens/fittrack/internal/stats"
	"github.com/2beens/fittrack/internal/workouts"
)

func (s *IntegrationTestSuite) TestWorkoutsLifecycle() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	token := s.doLogin(ctx, t)

	var created []workouts.Workout
	for _, req := range []workouts.NewWorkoutRequest{
		{ExerciseName: "Running", Duration: 60},
		{ExerciseName: "Bench Press", Sets: 4, Reps: 10, Duration: 30},
		{ExerciseName: "Running", Duration: 30, Notes: "easy pace"},
	} {
		status, body := s.doRequest(ctx, t, "POST", "/workouts", token, req)
		require.Equal(t, http.StatusCreated, status, string(body))

		var w workouts.Workout
		require.NoError(t, json.Unmarshal(body, &w))
		created = append(created, w)
	}
	assert.Equal(t, 63, created[0].Calories)
	assert.Equal(t, 350, created[1].Calories)

	status, body := s.doRequest(ctx, t, "GET", "/workouts?sort=calories-desc", token, nil)
	require.Equal(t, http.StatusOK, status)
	var list workouts.ListResponse
	require.NoError(t, json.Unmarshal(body, &list))
	require.Equal(t, 3, list.Total)
	assert.Equal(t, "Bench Press", list.Workouts[0].ExerciseName)

	status, body = s.doRequest(ctx, t, "GET", "/stats/frequency", token, nil)
	require.Equal(t, http.StatusOK, status)
	var freq stats.FrequencyResponse
	require.NoError(t, json.Unmarshal(body, &freq))
	require.NotEmpty(t, freq.Exercises)
	assert.Equal(t, "Running", freq.Exercises[0].Name)
	assert.Equal(t, 2, freq.Exercises[0].Count)

	for _, w := range created {
		status, _ = s.doRequest(ctx, t, "DELETE", "/workouts/"+w.ID, token, nil)
		require.Equal(t, http.StatusOK, status)
	}

	status, body = s.doRequest(ctx, t, "GET", "/stats/summary", token, nil)
	require.Equal(t, http.StatusOK, status)
	var summary stats.Summary
	require.NoError(t, json.Unmarshal(body, &summary))
	assert.Equal(t, 0, summary.TotalWorkouts)
}

func (s *IntegrationTestSuite) TestExercisesFallback() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// public endpoint, remote API unreachable in tests
	status, body := s.doRequest(ctx, t, "GET", "/exercises?page=1", "", nil)
	require.Equal(t, http.StatusOK, status)

	var res catalog.SearchResult
	require.NoError(t, json.Unmarshal(body, &res))
	assert.True(t, res.Degraded)
	assert.Equal(t, catalog.OfflineWarning, res.Warning)
	assert.NotEmpty(t, res.Exercises)
}
