package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	_ "meeting-transcriber/docs" // Generated swagger docs
	apierrors "meeting-transcriber/internal/api/errors"
	"meeting-transcriber/internal/api/middleware"
	v1routes "meeting-transcriber/internal/api/v1/routes"
	"meeting-transcriber/internal/api/v1/services"
	"meeting-transcriber/internal/app/metrics"
	"meeting-transcriber/internal/logging"
)

// Config represents API server configuration
type Config struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	Environment  string
	// CredentialsTTL is the lifetime of issued credentials when the caller does not ask for one.
	CredentialsTTL time.Duration
}

// Server is the credential broker
type Server struct {
	config     Config
	router     *gin.Engine
	httpServer *http.Server
	logger     *zap.Logger
}

// NewServer creates the broker. Metrics are registered with registry and served on /metrics.
func NewServer(config Config, issuer services.Issuer, registry *prometheus.Registry, logger *zap.Logger) *Server {
	logger = logging.OrNop(logger)

	if config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	brokerMetrics := metrics.NewBrokerMetrics(registry)

	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog(logger, brokerMetrics))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	router.GET("/health", health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1routes.RegisterRoutes(router, &v1routes.ServiceContainer{
		Issuer:     issuer,
		DefaultTTL: config.CredentialsTTL,
		Metrics:    brokerMetrics,
	})

	router.NoRoute(func(c *gin.Context) {
		middleware.HandleError(c, apierrors.NewNotFoundError("route"))
	})

	addr := fmt.Sprintf("%s:%s", config.Host, config.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return &Server{
		config:     config,
		router:     router,
		httpServer: httpServer,
		logger:     logger,
	}
}

// health reports liveness
//
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{} "Broker is up"
// @Router /health [get]
func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	})
}

// Start serves in the background. The returned channel receives the error that stopped
// the listener, if any, and is closed when it stops.
func (s *Server) Start() <-chan error {
	s.logger.Info("Starting credential broker",
		zap.String("address", s.httpServer.Addr),
		zap.String("environment", s.config.Environment),
	)

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Failed to start server", zap.Error(err))
			errCh <- err
		}
	}()
	return errCh
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down credential broker...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	s.logger.Info("Credential broker shutdown complete")
	return nil
}

// Router returns the Gin router (useful for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
