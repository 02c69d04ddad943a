package catalog

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOfflineExercises(t *testing.T) {
	all := OfflineExercises("", 1)
	require.Len(t, all, 10)
	assert.Equal(t, Exercise{
		ID:          "Push-ups_1_0",
		Name:        "Push-ups",
		Description: "Classic bodyweight chest exercise",
		Type:        "strength",
		Muscle:      "chest",
		Difficulty:  "beginner",
		Equipment:   "bodyweight",
	}, all[0])
	assert.Equal(t, "Jumping_Jacks_1_4", all[4].ID)
	assert.Equal(t, "Dips", all[9].Name)

	for _, ex := range all {
		assert.Equal(t, "bodyweight", ex.Equipment)
	}
}

func TestOfflineExercises_Filter(t *testing.T) {
	// matches muscle
	abs := OfflineExercises("ABDOMINALS", 1)
	require.Len(t, abs, 3)
	assert.Equal(t, "Plank", abs[0].Name)
	assert.Equal(t, "Mountain Climbers", abs[1].Name)
	assert.Equal(t, "Bicycle Crunches", abs[2].Name)
	// ids are re-indexed over the filtered page
	assert.Equal(t, "Bicycle_Crunches_1_2", abs[2].ID)

	// matches name
	ups := OfflineExercises("ups", 1)
	require.Len(t, ups, 2)
	assert.Equal(t, "Push-ups", ups[0].Name)
	assert.Equal(t, "Pull-ups", ups[1].Name)

	assert.Empty(t, OfflineExercises("zumba", 1))
}

func TestOfflineExercises_Paging(t *testing.T) {
	assert.Empty(t, OfflineExercises("", 2))
	assert.Len(t, OfflineExercises("", 0), 10)
	assert.NotNil(t, OfflineExercises("", 5))
	assert.Empty(t, OfflineExercises("", MaxPage))
	// (page-1)*PageSize would overflow int
	assert.Empty(t, OfflineExercises("", 922337203685477582))
	assert.Empty(t, OfflineExercises("", math.MaxInt))
}

func TestExerciseID(t *testing.T) {
	assert.Equal(t, "Barbell_Bench_Press_2_3", exerciseID("Barbell Bench Press", 2, 3))
	assert.Equal(t, "a__b_1_0", exerciseID("a \tb", 1, 0))
}
