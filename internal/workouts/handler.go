package workouts

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"
)

const (
	defaultRecentDays = 7
	maxRecentDays     = 3650
)

type ListResponse struct {
	Workouts []Workout `json:"workouts"`
	Total    int       `json:"total"`
}

type DeleteWorkoutResponse struct {
	DeletedID string `json:"deletedId"`
}

type Handler struct {
	service        *Service
	metricsManager *metrics.Manager
}

func NewHandler(service *Service, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		service:        service,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.list")
	defer span.End()

	sortMode, err := ParseSortMode(r.URL.Query().Get("sort"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	workouts := handler.service.List(ctx, ListParams{
		Search: r.URL.Query().Get("search"),
		Sort:   sortMode,
	})

	handler.writeList(w, workouts)
}

func (handler *Handler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.recent")
	defer span.End()

	days, err := intQueryParam(r, "days", defaultRecentDays)
	if err != nil || days <= 0 || days > maxRecentDays {
		http.Error(w, "error, invalid days", http.StatusBadRequest)
		return
	}
	limit, err := intQueryParam(r, "limit", 0)
	if err != nil || limit < 0 {
		http.Error(w, "error, invalid limit", http.StatusBadRequest)
		return
	}

	handler.writeList(w, handler.service.Recent(ctx, days, limit))
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.new")
	defer span.End()

	if !strings.HasPrefix(r.Header.Get("Content-Type"), pkg.ContentType.JSON) {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req NewWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("new workout, unmarshal json params: %s", err)
		http.Error(w, "add workout failed", http.StatusBadRequest)
		return
	}

	workout, err := handler.service.Log(ctx, req)
	if err != nil {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			http.Error(w, "error, "+validationErr.Error(), http.StatusBadRequest)
			return
		}
		log.Errorf("failed to add new workout [%s]: %s", req.ExerciseName, err)
		http.Error(w, "error, failed to add new workout", http.StatusInternalServerError)
		return
	}

	handler.metricsManager.CounterWorkoutsAdded.Inc()

	workoutJson, err := json.Marshal(workout)
	if err != nil {
		log.Errorf("failed to marshal new workout: %s", err)
		http.Error(w, "error, failed to add new workout", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, workoutJson, http.StatusCreated)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.delete")
	defer span.End()

	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	if err := handler.service.Delete(ctx, id); err != nil {
		log.Errorf("failed to delete workout %s: %s", id, err)
		http.Error(w, "error, failed to delete workout", http.StatusInternalServerError)
		return
	}

	handler.metricsManager.CounterWorkoutsDeleted.Inc()

	respJson, err := json.Marshal(DeleteWorkoutResponse{DeletedID: id})
	if err != nil {
		log.Errorf("failed to marshal delete workout response: %s", err)
		http.Error(w, "error, failed to delete workout", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (handler *Handler) writeList(w http.ResponseWriter, workouts []Workout) {
	listJson, err := json.Marshal(ListResponse{
		Workouts: workouts,
		Total:    len(workouts),
	})
	if err != nil {
		log.Errorf("failed to marshal workouts: %s", err)
		http.Error(w, "failed to marshal workouts", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, listJson, http.StatusOK)
}

func intQueryParam(r *http.Request, name string, defaultValue int) (int, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(value)
}
