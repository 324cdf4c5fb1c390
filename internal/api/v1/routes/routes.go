package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"meeting-transcriber/internal/api/v1/handlers"
	"meeting-transcriber/internal/api/v1/services"
	"meeting-transcriber/internal/app/credentials"
	"meeting-transcriber/internal/app/metrics"
)

// ServiceContainer holds what the broker routes depend on.
type ServiceContainer struct {
	Issuer     services.Issuer
	DefaultTTL time.Duration
	Metrics    *metrics.BrokerMetrics
}

// RegisterRoutes registers the credential routes. The path is fixed by existing clients.
func RegisterRoutes(router gin.IRoutes, container *ServiceContainer) {
	credentialsHandler := handlers.NewCredentialsHandler(container.Issuer, container.DefaultTTL, container.Metrics)
	router.GET(credentials.AssumeRolePath, credentialsHandler.AssumeRole)
}
