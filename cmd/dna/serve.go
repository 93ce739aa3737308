package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/dna-dev/dna/internal/config"
	"github.com/dna-dev/dna/pkg/registry"
	"github.com/dna-dev/dna/pkg/server"
	"github.com/dna-dev/dna/pkg/telemetry"
)

func serveCmd(load func() (*config.Config, error)) *cobra.Command {
	var (
		port     int
		host     string
		encoding string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the element host server",
		Long: `Start the HTTP and WebSocket server hosting the bundled elements.

Routes:
  GET /healthz          liveness
  GET /elements         registered elements and builtins
  GET /metrics          Prometheus metrics (if enabled)
  GET /render/{tag}     server-side HTML
  GET /ws/{tag}         WebSocket session

Examples:
  dna serve
  dna serve --port=8080 --encoding=cbor
  dna serve -c dna.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if encoding != "" {
				cfg.Server.Encoding = encoding
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServe(cfg)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from dna.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from dna.json)")
	cmd.Flags().StringVar(&encoding, "encoding", "", "Frame encoding: json or cbor (default from dna.json)")

	return cmd
}

func runServe(cfg *config.Config) error {
	logger := cfg.Logger(os.Stderr)

	reg, err := newRegistry(registry.WithLogger(logger))
	if err != nil {
		return err
	}

	opts := []server.Option{server.WithLogger(logger)}
	if cfg.Metrics.Enabled {
		promReg := prometheus.NewRegistry()
		promReg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics := telemetry.NewPrometheus(
			telemetry.WithNamespace(cfg.Metrics.Namespace),
			telemetry.WithRegistry(promReg),
		)
		opts = append(opts, server.WithMetrics(metrics, promReg))
	}
	if cfg.Tracing.Enabled {
		opts = append(opts, server.WithTracing(telemetry.NewTracing(
			telemetry.WithTracerName(cfg.Tracing.TracerName),
			telemetry.WithTracerProvider(otel.GetTracerProvider()),
		)))
	}

	srv, err := server.New(reg, server.FromConfig(cfg), opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	printBanner()
	fmt.Println("  serve")
	fmt.Println()
	success("Listening on http://%s", cfg.Address())
	for _, e := range reg.Entries() {
		info("ws://%s/ws/%s", cfg.Address(), e.Definition.TagName)
	}
	fmt.Println()

	return srv.Run(ctx)
}
