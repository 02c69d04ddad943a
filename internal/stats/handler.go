package stats

import (
	"encoding/json"
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"
)

const maxProgressDays = 365

type ProgressResponse struct {
	Days   int          `json:"days"`
	Points []DailyPoint `json:"points"`
}

type FrequencyResponse struct {
	Exercises []FrequencyEntry `json:"exercises"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

func (handler *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.summary")
	defer span.End()

	writeJSON(w, handler.service.Summary(ctx))
}

func (handler *Handler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.progress")
	defer span.End()

	days := DefaultProgressDays
	if daysParam := r.URL.Query().Get("days"); daysParam != "" {
		var err error
		days, err = strconv.Atoi(daysParam)
		if err != nil || days <= 0 || days > maxProgressDays {
			http.Error(w, "error, invalid days", http.StatusBadRequest)
			return
		}
	}

	writeJSON(w, ProgressResponse{
		Days:   days,
		Points: handler.service.DailyProgress(ctx, days),
	})
}

func (handler *Handler) HandleFrequency(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.frequency")
	defer span.End()

	writeJSON(w, FrequencyResponse{
		Exercises: handler.service.ExerciseFrequency(ctx),
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	respJson, err := json.Marshal(v)
	if err != nil {
		log.Errorf("failed to marshal stats response: %s", err)
		http.Error(w, "failed to marshal stats", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}
