package report

import (
	"context"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/fittrack/internal/stats"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/internal/workouts"
	"github.com/2beens/fittrack/pkg"
)

type workoutsLister interface {
	List(ctx context.Context, params workouts.ListParams) []workouts.Workout
}

type statsProvider interface {
	Summary(ctx context.Context) stats.Summary
	ExerciseFrequency(ctx context.Context) []stats.FrequencyEntry
	Now() time.Time
}

type Handler struct {
	workouts workoutsLister
	stats    statsProvider
}

func NewHandler(workoutsLister workoutsLister, statsProvider statsProvider) *Handler {
	return &Handler{
		workouts: workoutsLister,
		stats:    statsProvider,
	}
}

func (handler *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.report.export")
	defer span.End()

	now := handler.stats.Now()
	f, err := Build(Data{
		Workouts:    handler.workouts.List(ctx, workouts.ListParams{Sort: workouts.SortDateDesc}),
		Summary:     handler.stats.Summary(ctx),
		Frequency:   handler.stats.ExerciseFrequency(ctx),
		Location:    now.Location(),
		GeneratedAt: now,
	})
	if err != nil {
		log.Errorf("build workouts report: %s", err)
		http.Error(w, "failed to build report", http.StatusInternalServerError)
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Errorf("close workouts report: %s", err)
		}
	}()

	buf, err := f.WriteToBuffer()
	if err != nil {
		log.Errorf("write workouts report: %s", err)
		http.Error(w, "failed to write report", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("fittrack-workouts-%s.xlsx", now.Format("2006-01-02"))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	pkg.WriteResponseBytesOK(w, pkg.ContentType.XLSX, buf.Bytes())
}
