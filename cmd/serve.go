package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/teemow/driveagent/internal/confirm"
	"github.com/teemow/driveagent/internal/instrumentation"
	"github.com/teemow/driveagent/internal/logging"
	"github.com/teemow/driveagent/internal/resources"
	"github.com/teemow/driveagent/internal/server"
	"github.com/teemow/driveagent/internal/tools/drive_tools"
)

const shutdownTimeout = 10 * time.Second

type serveOptions struct {
	transport      string
	httpAddr       string
	allowRemote    bool
	metricsEnabled bool
	metricsAddr    string
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server that exposes the GoogleDrive_*
tools to AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport on /mcp

Confirmation:
  Gated tools ask for approval on the controlling terminal. Without a
  terminal they are denied. Use --yolo to approve everything.

Authentication:
  A Google OAuth token must have been saved to the token file beforehand.
  With GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET set, expired tokens are
  refreshed and written back.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.transport, "transport", "stdio", "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&opts.httpAddr, "http-addr", server.DefaultHTTPAddr, "HTTP server address (for streamable-http transport)")
	cmd.Flags().BoolVar(&opts.allowRemote, "allow-remote", false, "Allow the HTTP transport to bind to non-loopback addresses. The transport has no authentication.")
	cmd.Flags().BoolVar(&opts.metricsEnabled, "metrics-enabled", true, "Serve Prometheus metrics on a dedicated port (streamable-http only)")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address")

	return cmd
}

func runServe(cmd *cobra.Command, opts serveOptions) error {
	if opts.transport != "stdio" && opts.transport != "streamable-http" {
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", opts.transport)
	}

	// Setup graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := newLogger()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Error("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	approver, closer := newApprover(cfg, logger)
	defer closer.Close()

	gate := confirm.NewGate(cfg.Policy(), approver,
		confirm.WithLogger(logger),
		confirm.WithRecorder(provider.Metrics()),
	)

	serverContext, err := server.NewServerContext(ctx, cfg, gate,
		server.WithMetrics(provider.Metrics()),
		server.WithAuditLogger(instrumentation.NewAuditLogger(logger, instrConfig.AuditLogging)),
		server.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() { _ = serverContext.Shutdown() }()

	mcpSrv, err := newMCPServer(serverContext)
	if err != nil {
		return err
	}

	logger.Info("starting driveagent MCP server",
		slog.String("transport", opts.transport),
		slog.String("version", version),
		slog.Any("gated_tools", gate.Policy().Tools()))

	if opts.transport == "stdio" {
		return runStdioServer(mcpSrv)
	}
	return runStreamableHTTPServer(ctx, mcpSrv, serverContext, provider, opts, logger)
}

// newMCPServer creates the MCP server with the Drive tools and agent resources.
func newMCPServer(sc *server.ServerContext) (*mcpserver.MCPServer, error) {
	instructions, err := sc.Config().SystemPrompt()
	if err != nil {
		return nil, err
	}

	mcpSrv := mcpserver.NewMCPServer("driveagent", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false),
		mcpserver.WithInstructions(instructions),
	)

	if err := drive_tools.RegisterDriveTools(mcpSrv, sc); err != nil {
		return nil, fmt.Errorf("failed to register Drive tools: %w", err)
	}
	if err := resources.RegisterResources(mcpSrv, sc); err != nil {
		return nil, fmt.Errorf("failed to register resources: %w", err)
	}
	return mcpSrv, nil
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	if err := mcpserver.ServeStdio(mcpSrv); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// runStreamableHTTPServer runs the MCP HTTP server and, when the Prometheus
// exporter is active, the metrics server until ctx is cancelled or either
// server fails.
func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, provider *instrumentation.Provider, opts serveOptions, logger *slog.Logger) error {
	httpSrv, err := server.NewHTTPServer(mcpSrv, sc, server.HTTPServerConfig{
		Addr:        opts.httpAddr,
		AllowRemote: opts.allowRemote,
	})
	if err != nil {
		return err
	}

	var metricsSrv *server.MetricsServer
	if opts.metricsEnabled && provider.Enabled() && provider.PrometheusHandler() != nil {
		metricsSrv, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    opts.metricsAddr,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(httpSrv.Start)
	if metricsSrv != nil {
		g.Go(metricsSrv.Start)
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown failed", logging.Err(err))
		}
		if metricsSrv != nil {
			if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
				logger.Error("metrics server shutdown failed", logging.Err(err))
			}
		}
		return nil
	})

	return g.Wait()
}
