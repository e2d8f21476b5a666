package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/teemow/driveagent/internal/config"
	"github.com/teemow/driveagent/internal/confirm"
	"github.com/teemow/driveagent/internal/drive"
	"github.com/teemow/driveagent/internal/google"
	"github.com/teemow/driveagent/internal/instrumentation"
	"github.com/teemow/driveagent/internal/logging"
)

// HTTPClientProvider returns an authenticated HTTP client per Google account.
// *google.FileTokenProvider implements it.
type HTTPClientProvider interface {
	HTTPClientForAccount(ctx context.Context, account string) (*http.Client, error)
}

// ServerContext holds what every tool handler needs: the configuration, the
// confirmation gate, Drive clients per account and the observability sinks.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	config *config.Config
	gate   *confirm.Gate

	tokens       HTTPClientProvider
	driveOptions drive.Options
	driveClients map[string]*drive.Client // account name -> client

	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger
	logger      *slog.Logger

	mu       sync.RWMutex
	shutdown bool
}

// Option configures a ServerContext.
type Option func(*ServerContext)

// WithTokenProvider sets where Drive clients get their credentials.
func WithTokenProvider(p HTTPClientProvider) Option {
	return func(sc *ServerContext) { sc.tokens = p }
}

// WithDriveOptions sets the base options of every Drive client. Account and
// HTTPClient are filled per account.
func WithDriveOptions(opts drive.Options) Option {
	return func(sc *ServerContext) { sc.driveOptions = opts }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(sc *ServerContext) { sc.metrics = m }
}

// WithAuditLogger sets the tool audit logger.
func WithAuditLogger(al *instrumentation.AuditLogger) Option {
	return func(sc *ServerContext) { sc.auditLogger = al }
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(logger *slog.Logger) Option {
	return func(sc *ServerContext) {
		if logger != nil {
			sc.logger = logger
		}
	}
}

// NewServerContext creates a server context. Drive clients are created
// lazily on first use, so a missing token only fails the tools that need it.
func NewServerContext(ctx context.Context, cfg *config.Config, gate *confirm.Gate, opts ...Option) (*ServerContext, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if gate == nil {
		return nil, fmt.Errorf("confirmation gate is required")
	}

	shutdownCtx, cancel := context.WithCancel(ctx)
	sc := &ServerContext{
		ctx:          shutdownCtx,
		cancel:       cancel,
		config:       cfg.Clone(),
		gate:         gate,
		driveClients: make(map[string]*drive.Client),
		logger:       slog.Default(),
		driveOptions: drive.Options{
			InlineDownloadLimit: cfg.InlineDownloadLimit,
			UploadLimit:         cfg.UploadLimit,
		},
	}
	for _, opt := range opts {
		opt(sc)
	}
	if sc.tokens == nil {
		sc.tokens = google.NewFileTokenProvider(google.TokenSourceOptions{
			TokenFile:    cfg.TokenFile,
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
		})
	}

	return sc, nil
}

// Context returns the server context. It is cancelled by Shutdown.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Config returns a copy of the agent configuration.
func (sc *ServerContext) Config() *config.Config {
	return sc.config.Clone()
}

// Gate returns the confirmation gate.
func (sc *ServerContext) Gate() *confirm.Gate {
	return sc.gate
}

// Metrics returns the metrics recorder, or nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// AuditLogger returns the audit logger, or nil.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.auditLogger
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// DriveClientForAccount returns the Drive client of an account, creating
// and caching it on first use.
func (sc *ServerContext) DriveClientForAccount(account string) (*drive.Client, error) {
	if account == "" {
		account = google.DefaultAccount
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil, fmt.Errorf("server is shutting down")
	}
	if client, ok := sc.driveClients[account]; ok {
		return client, nil
	}

	httpClient, err := sc.tokens.HTTPClientForAccount(sc.ctx, account)
	if err != nil {
		return nil, fmt.Errorf("account %q: %w", account, err)
	}

	opts := sc.driveOptions
	opts.Account = account
	opts.HTTPClient = httpClient
	client, err := drive.NewClient(sc.ctx, opts)
	if err != nil {
		return nil, err
	}

	sc.logger.Debug("created drive client", logging.Account(account))
	sc.driveClients[account] = client
	return client, nil
}

// SetDriveClientForAccount installs a Drive client for an account.
func (sc *ServerContext) SetDriveClientForAccount(account string, client *drive.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.driveClients[account] = client
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown cancels the server context. It is safe to call more than once.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
