package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/facebookgo/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"meeting-transcriber/internal/api/server"
	"meeting-transcriber/internal/api/v1/services"
	"meeting-transcriber/internal/app/credentials"
	"meeting-transcriber/internal/app/metrics"
	"meeting-transcriber/internal/app/storage"
	"meeting-transcriber/internal/app/transcript"
	"meeting-transcriber/internal/app/workflow"
	"meeting-transcriber/internal/config"
)

// SessionOptions are the runtime collaborators of a session that do not come from config.
type SessionOptions struct {
	Logger   *zap.Logger
	Registry prometheus.Registerer
	Clock    clock.Clock
	Progress workflow.ReaderWrapper
	Observer workflow.Observer
	Recorder workflow.Recorder
}

// NewCredentialProvider returns the client of the credential endpoint.
func NewCredentialProvider(cfg *config.PortalConfig) credentials.Provider {
	return credentials.NewHTTPProvider(cfg.CredentialsAPIURL, cfg.RequestTimeout)
}

// NewStoreFactory builds object stores for the configured bucket.
func NewStoreFactory(cfg *config.PortalConfig) storage.Factory {
	return storage.NewFactory(storage.Config{
		Endpoint: cfg.S3Endpoint,
		Bucket:   cfg.BucketName,
		Region:   cfg.Region,
		UseSSL:   cfg.S3UseSSL,
		PartSize: cfg.UploadPartSize,
		Timeout:  cfg.RequestTimeout,
	})
}

func provideClock(opts SessionOptions) clock.Clock {
	if opts.Clock != nil {
		return opts.Clock
	}
	return clock.New()
}

func provideWorkflowMetrics(opts SessionOptions) *metrics.WorkflowMetrics {
	return metrics.NewWorkflowMetrics(opts.Registry)
}

func provideUploader(cfg *config.PortalConfig, provider credentials.Provider, stores storage.Factory, clk clock.Clock, opts SessionOptions, m *metrics.WorkflowMetrics) *workflow.Uploader {
	u := workflow.NewUploader(provider, stores, cfg.Layout(), clk, opts.Logger, m)
	u.Progress = opts.Progress
	return u
}

func providePoller(cfg *config.PortalConfig, stores storage.Factory, clk clock.Clock, opts SessionOptions, m *metrics.WorkflowMetrics) *workflow.Poller {
	return workflow.NewPoller(stores, cfg.Layout(), cfg.PresignTTL, clk, opts.Logger, m)
}

func providePresenter(opts SessionOptions) (*workflow.Presenter, error) {
	stage, err := transcript.NewStage("")
	if err != nil {
		return nil, err
	}
	return workflow.NewPresenter(stage, opts.Logger), nil
}

func provideSessionConfig(cfg *config.PortalConfig, clk clock.Clock, opts SessionOptions, m *metrics.WorkflowMetrics) workflow.SessionConfig {
	return workflow.SessionConfig{
		Layout:       cfg.Layout(),
		PollInterval: cfg.PollInterval,
		Clock:        clk,
		Logger:       opts.Logger,
		Metrics:      m,
		Recorder:     opts.Recorder,
		Observer:     opts.Observer,
	}
}

func provideIssuer(cfg *config.BrokerConfig) (services.Issuer, error) {
	switch cfg.Mode {
	case "sts":
		return services.NewSTSIssuer(services.STSConfig{
			Endpoint:        cfg.STSEndpoint,
			AccessKey:       cfg.AccessKey,
			SecretKey:       cfg.SecretKey,
			Region:          cfg.Region,
			RoleARN:         cfg.RoleARN,
			RoleSessionName: cfg.RoleSessionName,
		}, &http.Client{Timeout: 30 * time.Second}), nil
	case "static":
		return services.NewStaticIssuer(cfg.AccessKey, cfg.SecretKey, nil), nil
	default:
		return nil, fmt.Errorf("unknown broker mode %q", cfg.Mode)
	}
}

func provideServerConfig(cfg *config.BrokerConfig) server.Config {
	return server.Config{
		Host:           cfg.Host,
		Port:           cfg.Port,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   45 * time.Second,
		IdleTimeout:    60 * time.Second,
		Environment:    cfg.Environment,
		CredentialsTTL: cfg.CredentialsTTL,
	}
}
