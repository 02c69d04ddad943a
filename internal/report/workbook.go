// Package report renders the workout log and its statistics as an XLSX workbook.
package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/2beens/fittrack/internal/stats"
	"github.com/2beens/fittrack/internal/workouts"
)

const (
	SheetWorkouts = "Workouts"
	SheetSummary  = "Summary"

	dateLayout = "2006-01-02 15:04"
)

var workoutsHeader = []string{"Date", "Exercise", "Sets", "Reps", "Duration (min)", "Weight (kg)", "Calories", "Notes"}

type Data struct {
	Workouts    []workouts.Workout
	Summary     stats.Summary
	Frequency   []stats.FrequencyEntry
	Location    *time.Location
	GeneratedAt time.Time
}

// Build returns a workbook with the Workouts sheet (one row per record, in the given order)
// and the Summary sheet (totals and the most frequent exercises).
// Caller must Close the returned file.
func Build(data Data) (_ *excelize.File, err error) {
	loc := data.Location
	if loc == nil {
		loc = time.Local
	}

	f := excelize.NewFile()
	defer func() {
		if err != nil {
			_ = f.Close()
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetWorkouts); err != nil {
		return nil, fmt.Errorf("rename default sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return nil, fmt.Errorf("create summary sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#2E75B6"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	if err := writeWorkoutsSheet(f, data.Workouts, loc, headerStyle); err != nil {
		return nil, err
	}
	if err := writeSummarySheet(f, data, loc, headerStyle); err != nil {
		return nil, err
	}

	return f, nil
}

func writeWorkoutsSheet(f *excelize.File, records []workouts.Workout, loc *time.Location, headerStyle int) error {
	if err := writeRow(f, SheetWorkouts, 1, toAny(workoutsHeader)); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetWorkouts, "A1", "H1", headerStyle); err != nil {
		return fmt.Errorf("style workouts header: %w", err)
	}

	for i, w := range records {
		var weight any
		if w.Weight != nil {
			weight = *w.Weight
		}
		row := []any{
			w.Date.In(loc).Format(dateLayout),
			w.ExerciseName,
			w.Sets,
			w.Reps,
			w.Duration,
			weight,
			w.Calories,
			w.Notes,
		}
		if err := writeRow(f, SheetWorkouts, i+2, row); err != nil {
			return err
		}
	}

	_ = f.SetColWidth(SheetWorkouts, "A", "A", 18)
	_ = f.SetColWidth(SheetWorkouts, "B", "B", 28)
	_ = f.SetColWidth(SheetWorkouts, "C", "G", 14)
	_ = f.SetColWidth(SheetWorkouts, "H", "H", 40)

	if len(records) > 0 {
		if err := f.SetPanes(SheetWorkouts, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return fmt.Errorf("freeze workouts header: %w", err)
		}
	}

	return nil
}

func writeSummarySheet(f *excelize.File, data Data, loc *time.Location, headerStyle int) error {
	generatedAt := data.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	summaryRows := [][]any{
		{"Metric", "Value"},
		{"Total workouts", data.Summary.TotalWorkouts},
		{"Workouts this week", data.Summary.WeekWorkouts},
		{"Workouts this month", data.Summary.MonthWorkouts},
		{"Total calories", data.Summary.TotalCalories},
		{"Calories this week", data.Summary.WeekCalories},
		{"Current streak (days)", data.Summary.StreakDays},
		{"Generated at", generatedAt.In(loc).Format(dateLayout)},
	}
	for i, row := range summaryRows {
		if err := writeRow(f, SheetSummary, i+1, row); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(SheetSummary, "A1", "B1", headerStyle); err != nil {
		return fmt.Errorf("style summary header: %w", err)
	}

	// most frequent exercises below the totals, one blank row apart
	start := len(summaryRows) + 2
	if err := writeRow(f, SheetSummary, start, []any{"Exercise", "Count", "Total calories"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetSummary, cell("A", start), cell("C", start), headerStyle); err != nil {
		return fmt.Errorf("style frequency header: %w", err)
	}
	for i, entry := range data.Frequency {
		if err := writeRow(f, SheetSummary, start+1+i, []any{entry.Name, entry.Count, entry.TotalCalories}); err != nil {
			return err
		}
	}

	_ = f.SetColWidth(SheetSummary, "A", "A", 28)
	_ = f.SetColWidth(SheetSummary, "B", "C", 16)

	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	if err := f.SetSheetRow(sheet, cell("A", row), &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
