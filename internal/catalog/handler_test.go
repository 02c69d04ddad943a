package catalog_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/fittrack/internal/catalog"
)

type stubSearcher struct {
	gotTerm string
	gotPage int
	result  *catalog.SearchResult
}

func (s *stubSearcher) Search(_ context.Context, term string, page int) *catalog.SearchResult {
	s.gotTerm = term
	s.gotPage = page
	return s.result
}

func TestHandler_HandleSearch(t *testing.T) {
	searcher := &stubSearcher{
		result: &catalog.SearchResult{
			Exercises: catalog.OfflineExercises("plank", 2),
			Previous:  true,
			Warning:   catalog.OfflineWarning,
			Degraded:  true,
		},
	}
	h := catalog.NewHandler(searcher)

	req, err := http.NewRequest("GET", "/exercises?page=2&search=plank", nil)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	h.HandleSearch(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "plank", searcher.gotTerm)
	assert.Equal(t, 2, searcher.gotPage)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, catalog.OfflineWarning, resp["warning"])
	assert.Equal(t, true, resp["degraded"])
	assert.Equal(t, true, resp["previous"])
	assert.Equal(t, []any{}, resp["exercises"])
}

func TestHandler_HandleSearch_DefaultPage(t *testing.T) {
	searcher := &stubSearcher{result: &catalog.SearchResult{Exercises: []catalog.Exercise{}}}
	h := catalog.NewHandler(searcher)

	req, err := http.NewRequest("GET", "/exercises", nil)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	h.HandleSearch(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, searcher.gotPage)
	assert.NotContains(t, rec.Body.String(), "warning")
}

func TestHandler_HandleSearch_LastPageFallback(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer remote.Close()

	client := catalog.NewClient(catalog.ClientParams{
		ApiUrl:     remote.URL,
		HttpClient: remote.Client(),
	})
	h := catalog.NewHandler(client)

	req, err := http.NewRequest("GET", fmt.Sprintf("/exercises?page=%d", catalog.MaxPage), nil)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	h.HandleSearch(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var res catalog.SearchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Degraded)
	assert.Empty(t, res.Exercises)
}

func TestHandler_HandleSearch_InvalidPage(t *testing.T) {
	h := catalog.NewHandler(&stubSearcher{})

	for _, url := range []string{
		"/exercises?page=0",
		"/exercises?page=two",
		"/exercises?page=1001",
		"/exercises?page=922337203685477582",
	} {
		req, err := http.NewRequest("GET", url, nil)
		require.NoError(t, err)
		rec := httptest.NewRecorder()
		h.HandleSearch(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, url)
	}
}
