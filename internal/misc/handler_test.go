package misc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/go-redis/redismock/v8"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/middleware"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
)

const (
	testUsername = "testuser"
	testPassword = "testpass"
	testToken    = "test_token"
	// httptest.NewRequest remote address
	testClientKey = "login:192.0.2.1"
)

type testAuthenticator struct {
	loggedOut []string
}

func (a *testAuthenticator) Login(_ context.Context, credentials auth.Credentials, _ time.Time) (string, error) {
	if credentials.Username != testUsername || credentials.Password != testPassword {
		return "", auth.ErrWrongPassword
	}
	return testToken, nil
}

func (a *testAuthenticator) Logout(_ context.Context, token string) error {
	if token != testToken {
		return auth.ErrInvalidToken
	}
	a.loggedOut = append(a.loggedOut, token)
	return nil
}

func (a *testAuthenticator) TTL() time.Duration {
	return auth.DefaultTTL
}

// use TestMain(m *testing.M) { ... } for
// global set-up/tear-down for all the tests in a package
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// INFO: https://github.com/go-redis/redis/issues/1029
		goleak.IgnoreTopFunction(
			"github.com/go-redis/redis/v8/internal/pool.(*ConnPool).reaper",
		),
	)
}

type testRequestRateLimiter struct {
	// key to limit map
	Limits map[string]int
}

func (l *testRequestRateLimiter) Allow(_ context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error) {
	res := &redis_rate.Result{
		Limit: limit,
	}

	foundLimit, ok := l.Limits[key]
	if !ok || foundLimit == 0 {
		return res, nil
	}

	res.Allowed = l.Limits[key]
	l.Limits[key]--

	return res, nil
}

func setupMiscRouterForTests(
	t *testing.T,
	redisClient *redis.Client,
	reqRateLimiter *testRequestRateLimiter,
) (*mux.Router, *testAuthenticator) {
	t.Helper()

	metricsManager := metrics.NewTestManager()
	authService := &testAuthenticator{}

	r := mux.NewRouter()
	authMiddleware := middleware.NewAuthMiddlewareHandler(
		auth.NewLoginChecker(time.Hour, redisClient),
	)

	// the same setup as in Server.routerSetup() ... these are not so much of a "unit" tests
	r.Use(middleware.PanicRecovery(metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(metricsManager))
	r.Use(middleware.Cors([]string{"test"}))
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	handler := NewHandler("dummy", authService)
	handler.SetupRoutes(r, reqRateLimiter, 5, metricsManager)

	return r, authService
}

func TestNewMiscHandler(t *testing.T) {
	mainRouter := mux.NewRouter()
	handler := NewHandler("dummy", &testAuthenticator{})
	handler.SetupRoutes(mainRouter, nil, 5, metrics.NewTestManager())
	require.NotNil(t, handler)
	require.NotNil(t, mainRouter)

	for caseName, route := range map[string]struct {
		name   string
		path   string
		method string
	}{
		"route-get": {
			name:   "root",
			path:   "/",
			method: "GET",
		},
		"route-post": {
			name:   "root",
			path:   "/",
			method: "POST",
		},
		"route-options": {
			name:   "root",
			path:   "/",
			method: "OPTIONS",
		},
		"version": {
			name:   "version",
			path:   "/version",
			method: "GET",
		},
		"login": {
			name:   "login",
			path:   "/a/login",
			method: "POST",
		},
		"logout": {
			name:   "logout",
			path:   "/a/logout",
			method: "GET",
		},
		"logout-options": {
			name:   "logout",
			path:   "/a/logout",
			method: "OPTIONS",
		},
	} {
		t.Run(caseName, func(t *testing.T) {
			req, err := http.NewRequest(route.method, route.path, nil)
			require.NoError(t, err)

			routeMatch := &mux.RouteMatch{}
			route := mainRouter.Get(route.name)
			require.NotNil(t, route)
			isMatch := route.Match(req, routeMatch)
			assert.True(t, isMatch, caseName)
		})
	}
}

func TestRootAndVersion(t *testing.T) {
	rdb, _ := redismock.NewClientMock()
	defer rdb.Close()
	r, _ := setupMiscRouterForTests(t, rdb, &testRequestRateLimiter{})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "I'm OK, thanks ;)", rr.Body.String())

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/version", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "dummy", rr.Body.String())
}

func TestLogin(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer rdb.Close()

	reqRateLimiter := &testRequestRateLimiter{
		Limits: map[string]int{},
	}
	r, _ := setupMiscRouterForTests(t, rdb, reqRateLimiter)

	reqRateLimiter.Limits[testClientKey] = 1

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/a/login", strings.NewReader(`{"username":"testuser","password":"testpass"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "test")

	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var loginResp LoginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &loginResp))
	assert.Equal(t, testToken, loginResp.Token)
	assert.JSONEq(t, `{"jwt_token":"test_token"}`, rr.Body.String())

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.TokenCookieName, cookies[0].Name)
	assert.Equal(t, testToken, cookies[0].Value)
	assert.Equal(t, 30*24*60*60, cookies[0].MaxAge)
	require.NoError(t, mock.ExpectationsWereMet())

	// next time fails
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusTooEarly, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Body.String(), "retry after"))
}

func TestLogin_WrongCredentials(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer rdb.Close()

	reqRateLimiter := &testRequestRateLimiter{
		Limits: map[string]int{testClientKey: 3},
	}
	r, _ := setupMiscRouterForTests(t, rdb, reqRateLimiter)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/a/login", nil)
	req.PostForm = url.Values{}
	req.PostForm.Add("username", testUsername)
	req.PostForm.Add("password", "wrong")
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error_msg":"wrong credentials"}`, rr.Body.String())
	assert.Empty(t, rr.Result().Cookies())

	rr = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/a/login", nil)
	req.PostForm = url.Values{}
	req.PostForm.Add("username", testUsername)
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error_msg":"password empty"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/a/login", strings.NewReader(`{"username":`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error_msg":"invalid login request"}`, rr.Body.String())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogout(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer rdb.Close()

	reqRateLimiter := &testRequestRateLimiter{
		Limits: map[string]int{testClientKey: 3},
	}
	r, authService := setupMiscRouterForTests(t, rdb, reqRateLimiter)

	// no token
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/a/logout", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// unknown token
	rr = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/a/logout", nil)
	req.Header.Set("Authorization", "Bearer unknown")
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/a/logout", nil)
	req.AddCookie(&http.Cookie{Name: auth.TokenCookieName, Value: testToken})
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "logged-out", rr.Body.String())

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.TokenCookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Equal(t, []string{testToken}, authService.loggedOut)

	require.NoError(t, mock.ExpectationsWereMet())
}
