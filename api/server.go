// Package api serves the dashboard REST API and websocket feed.
//
// @title Logistics Sentinel API
// @version 1.0
// @description Shipment delay forecasting and security anomaly detection.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/klipseyuw/INFO-492-Demo-sub000/api/docs"
	"github.com/klipseyuw/INFO-492-Demo-sub000/api/handlers"
	"github.com/klipseyuw/INFO-492-Demo-sub000/api/middleware"
	"github.com/klipseyuw/INFO-492-Demo-sub000/api/websocket"
	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/auth"
	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/metrics"
	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/config"
)

const maxRequestBytes = 4 << 20

// Dependencies are the collaborators behind the handlers. Anomalies,
// Predictions and Database are optional; leave them nil (not a typed nil
// pointer) when the service runs without persistence.
type Dependencies struct {
	Sentinel    handlers.Sentinel
	Users       handlers.UserStore
	Anomalies   handlers.AnomalyStore
	Predictions handlers.PredictionStore
	Database    handlers.HealthChecker
	Metrics     *metrics.Metrics
}

type Server struct {
	router      *gin.Engine
	httpServer  *http.Server
	config      *config.Config
	deps        Dependencies
	authService *auth.Service
	wsHub       *websocket.Hub
	wsBridge    *websocket.EventBridge
}

func NewServer(cfg *config.Config, deps Dependencies) *Server {
	if cfg.App.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.App.Mode == "test" {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.Get()
	}

	wsHub := websocket.NewHub(&cfg.WebSocket)
	wsHub.OnClientCount(func(n int) { deps.Metrics.WebSocketClients.Set(float64(n)) })

	s := &Server{
		router:      gin.New(),
		config:      cfg,
		deps:        deps,
		authService: auth.NewService(cfg.API.JWTSecret, cfg.API.JWTDuration, cfg.API.JWTIssuer),
		wsHub:       wsHub,
	}

	s.setupMiddleware()
	s.setupRoutes()

	go wsHub.Run()

	if deps.Sentinel != nil {
		s.wsBridge = websocket.NewEventBridge(wsHub, deps.Sentinel.SubscribeAllEvents())
		s.wsBridge.Start()
	}

	return s
}

func (s *Server) setupMiddleware() {
	api := s.config.API

	s.router.Use(gin.Recovery())
	s.router.Use(middleware.SecurityHeaders(api.CookieSecure))
	s.router.Use(middleware.CORS(middleware.CORSFromConfig(api.CORS)))
	s.router.Use(middleware.TraceID())
	s.router.Use(middleware.RequestLogger("/health", "/health/live", "/health/ready", "/metrics"))
	s.router.Use(middleware.RequestSizeLimit(maxRequestBytes))

	rateLimiter := middleware.NewRateLimiter(api.RateLimit, time.Minute, api.RateLimitTTL)
	s.router.Use(middleware.RateLimit(rateLimiter))
}

func (s *Server) setupRoutes() {
	api := s.config.API

	healthHandler := handlers.NewHealthHandler(map[string]handlers.HealthChecker{
		"database": s.deps.Database,
		"source":   s.deps.Sentinel,
	})
	authHandler := handlers.NewAuthHandler(s.deps.Users, s.authService, api)
	predictionHandler := handlers.NewPredictionHandler(s.deps.Sentinel, s.deps.Predictions, &api)
	anomalyHandler := handlers.NewAnomalyHandler(s.deps.Sentinel, s.deps.Anomalies, &api)
	metricsHandler := handlers.NewMetricsHandler(s.deps.Metrics.Handler())

	// Public routes
	s.router.GET("/health", healthHandler.Health)
	s.router.GET("/health/ready", healthHandler.Ready)
	s.router.GET("/health/live", healthHandler.Live)
	s.router.GET("/metrics", metricsHandler.Serve)
	s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authGroup := s.router.Group("/auth")
	authGroup.POST("/login", middleware.AuthRateLimiter(api.LoginRateLimit, api.RateLimitTTL), authHandler.Login)
	authGroup.POST("/logout", authHandler.Logout)

	jwt := middleware.JWTAuth(s.authService, api.CookieName)

	// Browsers cannot set headers on the upgrade request, so the cookie
	// carries the session here.
	s.router.GET("/ws", jwt, websocket.ServeWebSocket(s.wsHub))

	// Both of these run a full engine cycle against the source.
	cycleLimiter := middleware.NewEndpointRateLimiter(api.RateLimitTTL)
	cycleLimiter.AddEndpoint("/api/shipments/predictions", api.CycleRateLimit, time.Minute)
	cycleLimiter.AddEndpoint("/api/anomalies/current", api.CycleRateLimit, time.Minute)

	protected := s.router.Group("/api")
	protected.Use(jwt, cycleLimiter.Middleware())
	{
		protected.POST("/predictions", predictionHandler.Predict)
		protected.GET("/predictions/recent", predictionHandler.Recent)
		protected.GET("/shipments/predictions", predictionHandler.ShipmentPredictions)

		protected.POST("/anomalies/evaluate", anomalyHandler.Evaluate)
		protected.GET("/anomalies", anomalyHandler.List)
		protected.GET("/anomalies/current", anomalyHandler.Current)
		protected.GET("/anomalies/rules", anomalyHandler.Rules)
	}
}

func (s *Server) Start() error {
	api := s.config.API

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", api.Port),
		Handler:      s.router,
		ReadTimeout:  api.ReadTimeout,
		WriteTimeout: api.WriteTimeout,
		IdleTimeout:  api.IdleTimeout,
	}

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.wsBridge != nil {
		s.wsBridge.Stop()
	}
	s.wsHub.Stop()

	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) AuthService() *auth.Service {
	return s.authService
}

func (s *Server) WebSocketHub() *websocket.Hub {
	return s.wsHub
}
