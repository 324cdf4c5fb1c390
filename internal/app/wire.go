//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"meeting-transcriber/internal/api/server"
	"meeting-transcriber/internal/app/workflow"
	"meeting-transcriber/internal/config"
)

// InitializeSession builds a session talking to the pipeline described by cfg.
func InitializeSession(cfg *config.PortalConfig, opts SessionOptions) (*workflow.Session, error) {
	wire.Build(
		NewCredentialProvider,
		NewStoreFactory,
		provideClock,
		provideWorkflowMetrics,
		provideUploader,
		providePoller,
		providePresenter,
		provideSessionConfig,
		workflow.NewSession,
	)
	return &workflow.Session{}, nil
}

// InitializeBroker builds the credential broker server.
func InitializeBroker(cfg *config.BrokerConfig, registry *prometheus.Registry, logger *zap.Logger) (*server.Server, error) {
	wire.Build(
		provideIssuer,
		provideServerConfig,
		server.NewServer,
	)
	return &server.Server{}, nil
}
