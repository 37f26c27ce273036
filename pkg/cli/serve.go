package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/svcmock/restdispatch/pkg/config"
	"github.com/svcmock/restdispatch/pkg/engine"
	"github.com/svcmock/restdispatch/pkg/logging"
	"github.com/svcmock/restdispatch/pkg/metrics"
	"github.com/svcmock/restdispatch/pkg/proxy"
	"github.com/svcmock/restdispatch/pkg/store"
	"github.com/svcmock/restdispatch/pkg/telemetry"
	"github.com/svcmock/restdispatch/pkg/tracing"
)

var (
	serveConfigPath   string
	serveServicesGlob string
	serveAddress      string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST mock dispatch server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "path to a JSON or YAML configuration file")
	serveCmd.Flags().StringVar(&serveServicesGlob, "services", "services/**/*.yaml", "glob (relative to the working directory) of service definition files")
	serveCmd.Flags().StringVar(&serveAddress, "address", "", "listen address, overriding the configuration file")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if serveConfigPath != "" {
		loaded, err := config.Load(serveConfigPath)
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		cfg = loaded
	}
	if serveAddress != "" {
		cfg.Server.Address = serveAddress
	}

	log := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: logging.ParseFormat(cfg.Log.Format),
	})
	if cfg.Log.LokiURL != "" {
		level := logging.ParseLevel(cfg.Log.Level)
		local := log.Handler()
		loki := logging.NewLokiHandler(cfg.Log.LokiURL,
			logging.WithLokiLevel(level),
			logging.WithLokiLabels(map[string]string{"address": cfg.Server.Address}))
		log = slog.New(logging.NewMultiHandler(local, loki))
	}

	services, responses, err := config.LoadServicesGlob(".", serveServicesGlob)
	if err != nil {
		return fmt.Errorf("loading services: %w", err)
	}

	serviceRepo := store.NewMemoryServiceRepository()
	responseRepo := store.NewMemoryResponseRepository()
	for _, svc := range services {
		serviceRepo.Put(svc)
	}
	for _, resp := range responses {
		responseRepo.Put(resp)
	}
	log.Info("services loaded", "count", len(services), "responses", len(responses))

	stateRepo := store.NewMemoryServiceStateRepository()

	handler := engine.NewHandler(serviceRepo, responseRepo, stateRepo, log)
	handler.SetConfig(cfg)
	handler.SetProxyClient(proxy.NewHTTPClient(30 * time.Second))
	handler.SetTelemetrySink(telemetry.NewLogSink(log))

	var exporter tracing.Exporter
	if cfg.Tracing.OTLPEndpoint != "" {
		exporter = tracing.NewOTLPExporter(cfg.Tracing.OTLPEndpoint)
	} else {
		exporter = tracing.NewNoopExporter()
	}
	tracerOpts := []tracing.TracerOption{tracing.WithExporter(exporter)}
	if ratio := cfg.Tracing.SampleRatio; ratio > 0 {
		tracerOpts = append(tracerOpts, tracing.WithSampler(tracing.NewRatioSampler(ratio)))
	}
	tracer := tracing.NewTracer("restdispatch", tracerOpts...)
	handler.SetTracer(tracer)
	defer func() {
		if err := tracer.Shutdown(context.Background()); err != nil {
			log.Warn("tracer shutdown failed", "error", err)
		}
	}()

	registry := handler.EnableMetrics()
	_ = metrics.ServicesLoaded.Set(float64(len(services)))

	server := engine.NewServer(cfg.Server, handler, tracer, registry, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("listening", "address", cfg.Server.Address)
	return server.ListenAndServe(ctx)
}
