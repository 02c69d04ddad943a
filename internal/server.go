package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/calories"
	"github.com/2beens/fittrack/internal/catalog"
	"github.com/2beens/fittrack/internal/config"
	"github.com/2beens/fittrack/internal/db"
	"github.com/2beens/fittrack/internal/mcp"
	"github.com/2beens/fittrack/internal/middleware"
	"github.com/2beens/fittrack/internal/misc"
	"github.com/2beens/fittrack/internal/report"
	"github.com/2beens/fittrack/internal/stats"
	"github.com/2beens/fittrack/internal/storage"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/internal/workouts"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config *config.Config
	dbPool *pgxpool.Pool
	// closed on shutdown, set for backends holding resources (badger)
	storageCloser io.Closer

	redisClient    *redis.Client
	loginChecker   *auth.LoginChecker
	authService    *auth.Service
	sessionCleanup *cron.Cron

	estimator       *calories.Estimator
	workoutsService *workouts.Service
	statsService    *stats.Service
	catalogClient   *catalog.Client

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	AdminUsername           string
	AdminPasswordHash       string
	RedisPassword           string
	PostgresPassword        string
	ExercisesApiKey         string
	HoneycombTracingEnabled bool
	// RedisClient overrides the client built from the config (tests)
	RedisClient *redis.Client
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config

	location, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "fittrack-backend")
	if err != nil {
		return nil, err
	}

	rdb := params.RedisClient
	if rdb == nil {
		rdb = redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
			Password: params.RedisPassword,
			DB:       0, // use default DB
		})
		if params.HoneycombTracingEnabled {
			rdb.AddHook(redisotel.NewTracingHook())
		}
	}

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	s := &Server{
		config:       cfg,
		versionInfo:  params.VersionInfo,
		redisClient:  rdb,
		otelShutdown: otelShutdown,
	}

	kv, extraCollectors, err := s.setupStorage(ctx, params, rdb)
	if err != nil {
		return nil, fmt.Errorf("setup %s storage: %w", cfg.StorageBackend, err)
	}

	s.promRegistry = metrics.SetupPrometheus(extraCollectors...)
	s.metricsManager = metrics.NewManager("fittrack", "main", s.promRegistry)
	s.metricsManager.GaugeLifeSignal.Set(0) // set to 1 once serving

	s.authService = auth.NewAuthService(&auth.Admin{
		Username:     params.AdminUsername,
		PasswordHash: params.AdminPasswordHash,
	}, cfg.SessionTTL.Duration, rdb)
	s.loginChecker = auth.NewLoginChecker(cfg.SessionTTL.Duration, rdb)

	s.sessionCleanup, err = auth.StartSessionCleanup(ctx, s.authService, auth.DefaultCleanupSchedule, s.metricsManager)
	if err != nil {
		return nil, fmt.Errorf("start session cleanup: %w", err)
	}

	s.estimator = calories.NewEstimator(calories.DefaultRules)
	s.workoutsService = workouts.NewService(workouts.NewStore(kv, cfg.WorkoutsKey), s.estimator)
	s.statsService = stats.NewService(s.workoutsService, location)

	tracedHttpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   cfg.ExercisesApiTimeout.Duration,
	}
	s.catalogClient = catalog.NewClient(catalog.ClientParams{
		ApiUrl:         cfg.ExercisesApiUrl,
		ApiKey:         params.ExercisesApiKey,
		HttpClient:     tracedHttpClient,
		MetricsManager: s.metricsManager,
	})

	return s, nil
}

// setupStorage opens the key-value substrate holding the workout log.
// Returns prometheus collectors specific to the chosen backend.
func (s *Server) setupStorage(
	ctx context.Context,
	params NewServerParams,
	rdb *redis.Client,
) (storage.KV, []prometheus.Collector, error) {
	cfg := params.Config
	switch cfg.StorageBackend {
	case config.StorageMemory:
		log.Warnln("using in-memory workouts storage, workouts are lost on restart")
		return storage.NewMemory(), nil, nil
	case config.StorageFile:
		kv, err := storage.NewFile(cfg.StoragePath)
		return kv, nil, err
	case config.StorageBadger:
		kv, err := storage.OpenBadger(cfg.StoragePath)
		if err != nil {
			return nil, nil, err
		}
		s.storageCloser = kv
		return kv, nil, nil
	case config.StorageRedis:
		return storage.NewRedis(rdb), nil, nil
	case config.StoragePostgres:
		dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
			DBHost:         cfg.PostgresHost,
			DBPort:         cfg.PostgresPort,
			DBName:         cfg.PostgresDBName,
			DBPassword:     params.PostgresPassword,
			TracingEnabled: params.HoneycombTracingEnabled,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("new db pool: %w", err)
		}
		if err := dbPool.Ping(ctx); err != nil {
			log.Warnf("failed to ping db: %s", err)
		}
		s.dbPool = dbPool

		kv := storage.NewPostgres(dbPool)
		if err := kv.EnsureSchema(ctx); err != nil {
			return nil, nil, err
		}
		return kv, []prometheus.Collector{db.NewPoolCollector(dbPool, cfg.PostgresDBName)}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend: %s", cfg.StorageBackend)
	}
}

func (s *Server) routerSetup() (*mux.Router, error) {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	reqRateLimiter := redis_rate.NewLimiter(s.redisClient)
	miscHandler := misc.NewHandler(s.versionInfo, s.authService)
	miscHandler.SetupRoutes(r, reqRateLimiter, s.config.LoginRateLimitAllowedPerMin, s.metricsManager)

	workoutsHandler := workouts.NewHandler(s.workoutsService, s.metricsManager)
	reportHandler := report.NewHandler(s.workoutsService, s.statsService)
	r.HandleFunc("/workouts", workoutsHandler.HandleList).Methods("GET", "OPTIONS").Name("list-workouts")
	r.HandleFunc("/workouts/recent", workoutsHandler.HandleRecent).Methods("GET", "OPTIONS").Name("recent-workouts")
	r.HandleFunc("/workouts/export.xlsx", reportHandler.HandleExport).Methods("GET", "OPTIONS").Name("export-workouts")
	r.HandleFunc("/workouts", workoutsHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-workout")
	r.HandleFunc("/workouts/{id}", workoutsHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-workout")

	statsHandler := stats.NewHandler(s.statsService)
	r.HandleFunc("/stats/summary", statsHandler.HandleSummary).Methods("GET", "OPTIONS").Name("stats-summary")
	r.HandleFunc("/stats/progress", statsHandler.HandleProgress).Methods("GET", "OPTIONS").Name("stats-progress")
	r.HandleFunc("/stats/frequency", statsHandler.HandleFrequency).Methods("GET", "OPTIONS").Name("stats-frequency")

	caloriesHandler := calories.NewHandler(s.estimator)
	r.HandleFunc("/calories/estimate", caloriesHandler.HandleEstimate).Methods("GET", "OPTIONS").Name("estimate-calories")

	catalogHandler := catalog.NewHandler(s.catalogClient)
	r.HandleFunc("/exercises", catalogHandler.HandleSearch).Methods("GET", "OPTIONS").Name("search-exercises")

	mcpServer := mcp.NewServer(s.statsService, s.workoutsService, s.estimator, s.versionInfo)
	r.Handle("/mcp", mcp.NewHTTPHandler(mcpServer)).Methods("GET", "POST", "DELETE", "OPTIONS").Name("mcp")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "DELETE", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.loginChecker)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.CorsAllowedOrigins))
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r, nil
}

func (s *Server) Serve(host string, port int) {
	router, err := s.routerSetup()
	if err != nil {
		log.Fatalf("failed to setup router: %s", err)
	}

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
	))
	metricsAddr := net.JoinHostPort(s.config.MetricsHost, s.config.MetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:              metricsAddr,
		Handler:           metricsRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	if s.sessionCleanup != nil {
		s.sessionCleanup.Stop()
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	// stop taking requests before closing what they depend on
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.storageCloser != nil {
		if err := s.storageCloser.Close(); err != nil {
			log.Errorf("failed to close workouts storage: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
