package broker

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"meeting-transcriber/cmd/mtp/cmd/common"
	"meeting-transcriber/internal/app"
	"meeting-transcriber/internal/config"
)

var port string

func init() {
	Cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides BROKER_PORT)")
}

// Cmd represents the broker command
var Cmd = &cobra.Command{
	Use:   "broker",
	Short: "Serve temporary upload credentials on GET /assumerole",
	Long: `Serve temporary upload credentials on GET /assumerole

- mode "sts" assumes FRONTEND_ROLE_ARN through STS_ENDPOINT for every request
- mode "static" hands out BROKER_ACCESS_KEY/BROKER_SECRET_KEY (local MinIO)
- /health, /metrics and /swagger/index.html are served alongside`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := common.Logger()
		defer logger.Sync()

		cfg, err := config.LoadBrokerConfig(common.ConfigPath)
		if err != nil {
			return err
		}
		if port != "" {
			cfg.Port = port
		}

		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		srv, err := app.InitializeBroker(cfg, registry, logger)
		if err != nil {
			return err
		}

		ctx, stop := common.SignalContext(cmd.Context())
		defer stop()

		errCh := srv.Start()
		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		logger.Info("Received shutdown signal", zap.String("mode", cfg.Mode))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}
