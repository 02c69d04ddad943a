package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"
)

type searcher interface {
	Search(ctx context.Context, term string, page int) *SearchResult
}

type Handler struct {
	client searcher
}

func NewHandler(client searcher) *Handler {
	return &Handler{
		client: client,
	}
}

func (handler *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.catalog.search")
	defer span.End()

	page := 1
	if pageParam := r.URL.Query().Get("page"); pageParam != "" {
		var err error
		page, err = strconv.Atoi(pageParam)
		if err != nil || page < 1 || page > MaxPage {
			http.Error(w, "error, invalid page", http.StatusBadRequest)
			return
		}
	}

	result := handler.client.Search(ctx, r.URL.Query().Get("search"), page)

	resultJson, err := json.Marshal(result)
	if err != nil {
		log.Errorf("failed to marshal exercises: %s", err)
		http.Error(w, "failed to marshal exercises", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, resultJson, http.StatusOK)
}
