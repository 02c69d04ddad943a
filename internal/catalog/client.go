package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
)

const (
	oneHour            = 60 * 60
	catalogCacheExpire = oneHour * 1
	megabyte           = 1024 * 1024
	maxResponseBytes   = 5 * megabyte
)

type ClientParams struct {
	ApiUrl         string // https://api.api-ninjas.com/v1/exercises
	ApiKey         string
	HttpClient     *http.Client
	CacheSizeBytes int
	MetricsManager *metrics.Manager
}

// Client searches the remote exercise database. It never fails: any remote problem
// is answered from the bundled offline list.
type Client struct {
	apiUrl         string
	apiKey         string
	httpClient     *http.Client
	cache          *freecache.Cache
	metricsManager *metrics.Manager
}

func NewClient(params ClientParams) *Client {
	cacheSize := params.CacheSizeBytes
	if cacheSize <= 0 {
		cacheSize = 10 * megabyte
	}
	httpClient := params.HttpClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		apiUrl:         params.ApiUrl,
		apiKey:         params.ApiKey,
		httpClient:     httpClient,
		cache:          freecache.NewCache(cacheSize),
		metricsManager: params.MetricsManager,
	}
}

func (c *Client) Search(ctx context.Context, term string, page int) *SearchResult {
	ctx, span := tracing.GlobalTracer.Start(ctx, "catalogClient.search")
	defer span.End()

	if page < 1 {
		page = 1
	}
	term = strings.TrimSpace(term)
	span.SetAttributes(
		attribute.String("term", term),
		attribute.Int("page", page),
	)

	if page > MaxPage {
		return &SearchResult{
			Exercises: []Exercise{},
			Previous:  true,
		}
	}

	remote, err := c.fetch(ctx, term, page)
	if err != nil {
		log.Warnf("exercise search [%s] page %d, falling back to offline list: %s", term, page, err)
		span.RecordError(err)
		c.countFallback("error")

		exercises := OfflineExercises(term, page)
		return &SearchResult{
			Exercises: exercises,
			Count:     len(exercises),
			Next:      false,
			Previous:  page > 1,
			Warning:   OfflineWarning,
			Degraded:  true,
		}
	}

	if len(remote) == 0 {
		c.countFallback("empty")
		exercises := OfflineExercises(term, page)
		return &SearchResult{
			Exercises: exercises,
			Count:     len(exercises),
			Next:      false,
			Previous:  page > 1,
		}
	}

	exercises := make([]Exercise, 0, len(remote))
	for i, re := range remote {
		exercises = append(exercises, re.toExercise(page, i))
	}

	return &SearchResult{
		Exercises: exercises,
		Count:     len(exercises),
		Next:      len(exercises) >= PageSize,
		Previous:  page > 1,
	}
}

func (c *Client) countFallback(reason string) {
	if c.metricsManager != nil {
		c.metricsManager.CounterCatalogFallbacks.WithLabelValues(reason).Inc()
	}
}

func (c *Client) searchURL(term string, page int) string {
	query := url.Values{}
	if term != "" {
		query.Set("name", term)
	} else {
		query.Set("muscle", browseMuscleGroups[page%len(browseMuscleGroups)])
		query.Set("offset", strconv.Itoa((page-1)*PageSize))
	}
	return c.apiUrl + "?" + query.Encode()
}

func (c *Client) fetch(ctx context.Context, term string, page int) ([]remoteExercise, error) {
	searchURL := c.searchURL(term, page)

	var exercises []remoteExercise
	cacheKey := []byte("exercises::" + searchURL)
	if cachedBytes, err := c.cache.Get(cacheKey); err == nil {
		if err := json.Unmarshal(cachedBytes, &exercises); err == nil {
			log.Tracef("found exercises for %s in cache", searchURL)
			return exercises, nil
		}
		log.Errorf("failed to unmarshal cached exercises for %s", searchURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, &NetworkError{URL: searchURL, Err: err}
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: searchURL, Err: fmt.Errorf("http client do: %w", err)}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, &NetworkError{URL: searchURL, StatusCode: resp.StatusCode}
	}

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &NetworkError{URL: searchURL, Err: fmt.Errorf("read response: %w", err)}
	}

	if err := json.Unmarshal(respBytes, &exercises); err != nil {
		return nil, &NetworkError{URL: searchURL, Err: fmt.Errorf("unmarshal response: %w", err)}
	}

	if len(exercises) > 0 {
		if err := c.cache.Set(cacheKey, respBytes, catalogCacheExpire); err != nil {
			log.Errorf("failed to cache exercises for %s: %s", searchURL, err)
		}
	}

	return exercises, nil
}
