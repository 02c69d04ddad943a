package calories

import (
	"encoding/json"
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"
)

type EstimateResponse struct {
	Exercise  string  `json:"exercise"`
	Intensity float64 `json:"intensity"`
	Calories  int     `json:"calories"`
}

type Handler struct {
	estimator *Estimator
}

func NewHandler(estimator *Estimator) *Handler {
	return &Handler{
		estimator: estimator,
	}
}

// HandleEstimate serves live estimates while a workout is being filled in.
func (handler *Handler) HandleEstimate(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.calories.estimate")
	defer span.End()

	query := r.URL.Query()
	exercise := query.Get("exercise")
	if exercise == "" {
		http.Error(w, "error, exercise empty", http.StatusBadRequest)
		return
	}

	duration, err := strconv.Atoi(query.Get("duration"))
	if err != nil || duration <= 0 {
		http.Error(w, "error, duration must be a positive number of minutes", http.StatusBadRequest)
		return
	}

	sets, err := optionalPositiveInt(query.Get("sets"))
	if err != nil {
		http.Error(w, "error, invalid sets", http.StatusBadRequest)
		return
	}
	reps, err := optionalPositiveInt(query.Get("reps"))
	if err != nil {
		http.Error(w, "error, invalid reps", http.StatusBadRequest)
		return
	}

	resp := EstimateResponse{
		Exercise:  exercise,
		Intensity: handler.estimator.Intensity(exercise),
		Calories:  handler.estimator.Estimate(exercise, duration, sets, reps),
	}

	respJson, err := json.Marshal(resp)
	if err != nil {
		log.Errorf("failed to marshal calories estimate: %s", err)
		http.Error(w, "failed to marshal estimate", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

// optionalPositiveInt parses a query value defaulting to 1 when empty.
func optionalPositiveInt(value string) (int, error) {
	if value == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, strconv.ErrRange
	}
	return n, nil
}
