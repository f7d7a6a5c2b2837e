package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/metric"
	"github.com/c360studio/semstreams/natsclient"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/c360studio/semgraph/config"
	"github.com/c360studio/semgraph/graph"
	rdfconvert "github.com/c360studio/semgraph/processor/rdf-convert"
	rdfexport "github.com/c360studio/semgraph/processor/rdf-export"
)

// graphStream holds the entities published by the converter.
const graphStream = "GRAPH"

// App runs the conversion service: NATS, the rdf-convert and rdf-export components
// and the metrics endpoint.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	embeddedServer *server.Server
	natsClient     *natsclient.Client
	metrics        *metric.MetricsRegistry
	converter      *rdfconvert.Component
	exporter       *rdfexport.Component
	httpServer     *http.Server
}

// NewApp creates an application with the given configuration.
func NewApp(cfg *config.Config, logger *slog.Logger) *App {
	return &App{cfg: cfg, logger: logger}
}

// Start brings up NATS and the converter.
func (a *App) Start(ctx context.Context) error {
	if err := a.startNATS(ctx); err != nil {
		return fmt.Errorf("start NATS: %w", err)
	}

	if a.cfg.Service.PublishEntities {
		if err := a.ensureStream(ctx); err != nil {
			return err
		}
	}

	a.metrics = metric.NewMetricsRegistry()

	rawConfig, err := json.Marshal(a.componentConfig())
	if err != nil {
		return fmt.Errorf("marshal rdf-convert config: %w", err)
	}
	comp, err := rdfconvert.NewComponent(rawConfig, component.Dependencies{
		NATSClient:      a.natsClient,
		MetricsRegistry: a.metrics,
		Logger:          a.logger,
	})
	if err != nil {
		return fmt.Errorf("create rdf-convert: %w", err)
	}
	a.converter = comp.(*rdfconvert.Component)

	if err := a.converter.Initialize(); err != nil {
		return fmt.Errorf("initialize rdf-convert: %w", err)
	}
	if err := a.converter.Start(ctx); err != nil {
		return fmt.Errorf("start rdf-convert: %w", err)
	}

	if a.cfg.Service.SaveSnapshots {
		if err := a.startExporter(ctx); err != nil {
			return err
		}
	}

	if a.cfg.Metrics.Addr != "" {
		a.startMetrics()
	}
	return nil
}

// componentConfig translates the service section into rdf-convert configuration.
func (a *App) componentConfig() rdfconvert.Config {
	cc := rdfconvert.DefaultConfig()
	cc.Namespaces = a.cfg.Namespaces
	if a.cfg.Input.Format != "" {
		cc.InputFormat = a.cfg.Input.Format
	}
	if a.cfg.Output.Format != "" {
		cc.OutputFormat = a.cfg.Output.Format
	}
	cc.SaveSnapshots = a.cfg.Service.SaveSnapshots
	cc.SnapshotHistory = a.cfg.Service.SnapshotHistory
	cc.PublishEntities = a.cfg.Service.PublishEntities
	cc.Ports.Inputs[0].Subject = a.cfg.Service.Subject
	return cc
}

func (a *App) startExporter(ctx context.Context) error {
	ec := rdfexport.DefaultConfig()
	ec.Ports.Inputs[0].Subject = a.cfg.Service.ExportSubject
	ec.SnapshotHistory = a.cfg.Service.SnapshotHistory
	if a.cfg.Output.Profile != "" {
		ec.Profile = a.cfg.Output.Profile
	}

	rawConfig, err := json.Marshal(ec)
	if err != nil {
		return fmt.Errorf("marshal rdf-export config: %w", err)
	}
	comp, err := rdfexport.NewComponent(rawConfig, component.Dependencies{
		NATSClient: a.natsClient,
		Logger:     a.logger,
	})
	if err != nil {
		return fmt.Errorf("create rdf-export: %w", err)
	}
	a.exporter = comp.(*rdfexport.Component)

	if err := a.exporter.Initialize(); err != nil {
		return fmt.Errorf("initialize rdf-export: %w", err)
	}
	if err := a.exporter.Start(ctx); err != nil {
		return fmt.Errorf("start rdf-export: %w", err)
	}
	return nil
}

func (a *App) natsURL() string {
	if envURL := os.Getenv("NATS_URL"); envURL != "" {
		return envURL
	}
	if !a.cfg.NATS.Embedded {
		return a.cfg.NATS.URL
	}
	return ""
}

func (a *App) startNATS(ctx context.Context) error {
	url := a.natsURL()
	if url == "" {
		a.logger.Info("Starting embedded NATS server")
		opts := &server.Options{
			Port:      -1, // Random available port
			JetStream: true,
			StoreDir:  filepath.Join(os.TempDir(), "semgraph-nats"),
			NoLog:     true,
			NoSigs:    true,
		}

		ns, err := server.NewServer(opts)
		if err != nil {
			return fmt.Errorf("create embedded NATS server: %w", err)
		}

		go ns.Start()

		if !ns.ReadyForConnections(5 * time.Second) {
			ns.Shutdown()
			return fmt.Errorf("embedded NATS server failed to start")
		}

		a.embeddedServer = ns
		url = ns.ClientURL()
	}

	a.logger.Info("Connecting to NATS", "url", url)

	client, err := natsclient.NewClient(url,
		natsclient.WithName(appName),
		natsclient.WithMaxReconnects(-1),
		natsclient.WithReconnectWait(time.Second),
	)
	if err != nil {
		return fmt.Errorf("create NATS client: %w", err)
	}
	if err := client.Connect(ctx); err != nil {
		return wrapNATSError(err, url)
	}

	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.WaitForConnection(connCtx); err != nil {
		return wrapNATSError(err, url)
	}

	a.natsClient = client
	a.logger.Info("Connected to NATS", "url", url)
	return nil
}

// wrapNATSError adds guidance when an external server cannot be reached.
func wrapNATSError(err error, url string) error {
	errStr := err.Error()
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no servers available") ||
		strings.Contains(errStr, "timeout") {
		return fmt.Errorf(`NATS connection failed: %w

NATS is not running at %s.

Unset NATS_URL and set nats.embedded to true to run an in-process server.`, err, url)
	}
	return fmt.Errorf("NATS connection failed: %w", err)
}

func (a *App) ensureStream(ctx context.Context) error {
	js, err := a.natsClient.JetStream()
	if err != nil {
		return fmt.Errorf("get JetStream: %w", err)
	}
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     graphStream,
		Subjects: []string{"graph.ingest.>"},
		MaxAge:   24 * time.Hour,
		Storage:  jetstream.FileStorage,
	})
	if err != nil {
		return fmt.Errorf("ensure stream %s: %w", graphStream, err)
	}
	a.logger.Debug("JetStream stream ready", "stream", graphStream, "subject", graph.GraphIngestSubject)
	return nil
}

func (a *App) startMetrics() {
	mux := http.NewServeMux()
	mux.Handle(a.cfg.Metrics.Path, promhttp.HandlerFor(a.metrics.PrometheusRegistry(), promhttp.HandlerOpts{}))

	a.httpServer = &http.Server{
		Addr:              a.cfg.Metrics.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Metrics server failed", "error", err)
		}
	}()
	a.logger.Info("Metrics endpoint listening", "addr", a.cfg.Metrics.Addr, "path", a.cfg.Metrics.Path)
}

// Shutdown stops everything Start brought up.
func (a *App) Shutdown(timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(ctx); err != nil {
			a.logger.Warn("Metrics server shutdown", "error", err)
		}
	}
	if a.exporter != nil {
		if err := a.exporter.Stop(timeout); err != nil {
			a.logger.Warn("rdf-export stop", "error", err)
		}
	}
	if a.converter != nil {
		if err := a.converter.Stop(timeout); err != nil {
			a.logger.Warn("rdf-convert stop", "error", err)
		}
	}
	if a.natsClient != nil {
		if err := a.natsClient.Close(ctx); err != nil {
			a.logger.Warn("NATS close", "error", err)
		}
	}
	if a.embeddedServer != nil {
		a.embeddedServer.Shutdown()
		a.embeddedServer.WaitForShutdown()
	}
}

func serveCmd(opts *globalOptions) *cobra.Command {
	var (
		subject string
		natsURL string
		metrics string
		save    bool
		publish bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve conversion requests over NATS",
		Long: `Serve answers conversion requests on a NATS request/reply subject.

Without --nats-url (or NATS_URL) an embedded NATS server with JetStream is
started. Converted graphs can be kept in a snapshot bucket and published as
entities to the graph ingest stream. With snapshots enabled, stored graphs are
served in any output format on the export subject.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if subject != "" {
				cfg.Service.Subject = subject
			}
			if natsURL != "" {
				cfg.NATS.URL = natsURL
				cfg.NATS.Embedded = false
			}
			if cmd.Flags().Changed("metrics-addr") {
				cfg.Metrics.Addr = metrics
			}
			cfg.Service.SaveSnapshots = cfg.Service.SaveSnapshots || save
			cfg.Service.PublishEntities = cfg.Service.PublishEntities || publish
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			app := NewApp(cfg, opts.logger)
			defer app.Shutdown(10 * time.Second)
			if err := app.Start(ctx); err != nil {
				return err
			}

			opts.logger.Info("Semgraph ready",
				"version", Version,
				"subject", cfg.Service.Subject)

			<-ctx.Done()
			opts.logger.Info("Shutting down")
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "Request subject (default from config)")
	cmd.Flags().StringVar(&natsURL, "nats-url", "", "External NATS server URL")
	cmd.Flags().StringVar(&metrics, "metrics-addr", "", "Metrics listen address (empty disables)")
	cmd.Flags().BoolVar(&save, "save", false, "Store converted graphs as snapshots")
	cmd.Flags().BoolVar(&publish, "publish", false, "Publish converted entities to the graph stream")
	return cmd
}
