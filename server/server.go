package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"agro-collector/cache"
	"agro-collector/confs"
	"agro-collector/db"
	"agro-collector/handlers"
	httpHandler "agro-collector/handlers/http"
	"agro-collector/history"
	"agro-collector/repositories"
	"agro-collector/services"
	"agro-collector/usecases"
	"agro-collector/weather"
	"agro-collector/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	app       *gin.Engine
	db        db.Database
	cfg       *confs.Config
	logger    *slog.Logger
	history   history.Store
	manager   *ws.Manager
	scheduler *services.Scheduler
}

type Option func(*Server)

// WithHistory enables reading history recording and the history endpoint.
func WithHistory(store history.Store) Option {
	return func(s *Server) { s.history = store }
}

func NewServer(cfg *confs.Config, database db.Database, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		app:    gin.Default(),
		db:     database,
		cfg:    cfg,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupRoutes()
	return s
}

// Router exposes the configured engine, mainly for tests.
func (s *Server) Router() http.Handler { return s.app }

func (s *Server) Scheduler() *services.Scheduler { return s.scheduler }

func (s *Server) setupRoutes() {
	// Setup CORS middleware; preflight requests are answered here
	config := cors.DefaultConfig()
	if len(s.cfg.CORSOrigins) > 0 {
		config.AllowOrigins = s.cfg.CORSOrigins
	} else {
		config.AllowAllOrigins = true
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Client-Info", "Apikey"}
	s.app.Use(cors.New(config))

	// Setup healthcheck route
	s.app.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "OK",
		})
	})

	// WebSocket manager doubles as the collector's notification publisher
	s.manager = ws.NewManager(s.logger)

	collectorOpts := []services.CollectorOption{services.WithPublisher(s.manager)}
	if s.history != nil {
		collectorOpts = append(collectorOpts, services.WithRecorder(s.history))
	}
	collectorService := services.NewDatabaseCollector(s.db, s.cfg.Collector, s.logger, collectorOpts...)
	s.scheduler = services.NewScheduler(collectorService, cache.NewRunCache(s.cfg.Collector.RunHistory), s.cfg.Collector.Interval, s.logger)

	// Initialize use cases
	sensorUseCase := usecases.NewSensorUseCase(repositories.NewSensorPgRepository(s.db), s.history)
	notificationUseCase := usecases.NewNotificationUseCase(repositories.NewNotificationPgRepository(s.db))
	zoneUseCase := usecases.NewZoneUseCase(repositories.NewZonePgRepository(s.db))

	// Initialize handlers
	collectorHandler := handlers.NewCollectorHandler(s.scheduler)
	wsHandler := handlers.NewWSHandler(s.manager, s.logger)
	sensorHandler := httpHandler.NewSensorHandler(sensorUseCase)
	notificationHandler := httpHandler.NewNotificationHandler(notificationUseCase)
	zoneHandler := httpHandler.NewZoneHandler(zoneUseCase)
	weatherHandler := httpHandler.NewWeatherHandler(weather.NewClient(s.cfg.Weather.URL, s.cfg.Weather.APIKey, s.logger))

	// Setup API routes
	api := s.app.Group("/api/v1")
	{
		collector := api.Group("/collector")
		{
			collector.POST("/run", collectorHandler.RunCollector)
			collector.GET("/run", collectorHandler.RunCollector)
			collector.OPTIONS("/run", collectorHandler.Preflight)
			collector.GET("/runs", collectorHandler.ListRuns)
			collector.DELETE("/runs", collectorHandler.ClearRuns)
			collector.GET("/runs/latest", collectorHandler.LatestRun)
			collector.GET("/stats", collectorHandler.GetRunStats)
		}

		sensors := api.Group("/sensors")
		{
			sensors.GET("", sensorHandler.GetAllSensors)
			sensors.GET("/:id", sensorHandler.GetSensor)
			sensors.PUT("/:id/settings", sensorHandler.UpdateSettings)
			sensors.GET("/:id/history", sensorHandler.GetSensorHistory)
		}

		api.GET("/companies/:company_id/zones", zoneHandler.GetCompanyZones)

		// User-specific routes
		users := api.Group("/users")
		{
			users.GET("/:user_id/notifications", notificationHandler.GetUserNotifications)
			users.PUT("/:user_id/notifications/read", notificationHandler.MarkAllRead)
		}

		api.PUT("/notifications/:id/read", notificationHandler.MarkRead)
		api.GET("/notifications/connected", wsHandler.GetConnectedUsers)
		api.GET("/weather", weatherHandler.GetCurrentWeather)
	}

	s.app.GET("/ws/notifications", wsHandler.HandleNotificationWS)
}

// Start runs the scheduler and serves HTTP until ctx is cancelled.
// Collector runs still in flight are waited for before it returns, so the caller may
// close the database afterwards.
func (s *Server) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.scheduler.Start(ctx)

	srv := &http.Server{Addr: s.cfg.HTTPAddr, Handler: s.app}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		cancel()
		s.waitForRuns()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down http server")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()
		err := srv.Shutdown(shutdownCtx)
		s.waitForRuns()
		return err
	}
}

func (s *Server) waitForRuns() {
	s.logger.Info("waiting for collector runs to finish")
	s.scheduler.Wait()
}
