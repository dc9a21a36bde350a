package cli

import (
	"github.com/brendan.keane/lurl/internal/http"
	"github.com/brendan.keane/lurl/internal/mcp"
	"github.com/brendan.keane/lurl/internal/metrics"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// MCPHandler handles MCP server commands
type MCPHandler struct {
	logger  zerolog.Logger
	version string
	metrics *metrics.Metrics
	factory ExecutorFactory
}

// NewMCPHandler creates a new MCP command handler. Invocations made by the
// server are recorded on a fresh metrics registry.
func NewMCPHandler(logger zerolog.Logger, version string) *MCPHandler {
	m := metrics.New()
	return NewMCPHandlerWithFactory(logger, version, m, http.NewClientFactory(logger, m))
}

// NewMCPHandlerWithFactory creates an MCP handler around factory. m may be nil.
func NewMCPHandlerWithFactory(logger zerolog.Logger, version string, m *metrics.Metrics, factory ExecutorFactory) *MCPHandler {
	return &MCPHandler{
		logger:  logger.With().Str("handler", "mcp").Logger(),
		version: version,
		metrics: m,
		factory: factory,
	}
}

// Execute builds the MCP server and serves it on stdio
func (h *MCPHandler) Execute(cmd *cobra.Command, args []string) error {
	server, err := h.Build(cmd, args)
	if err != nil {
		return err
	}

	h.logger.Debug().Msg("MCP server created, starting message loop")
	return server.Start()
}

// Build loads configuration and creates the MCP server without starting it.
// An optional argument restricts the server to targets under that
// lambda:// prefix.
func (h *MCPHandler) Build(cmd *cobra.Command, args []string) (*mcp.Server, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load configuration")
		return nil, err
	}

	if len(args) > 0 {
		cfg.MCP.TargetPrefix = args[0]
	}

	if err := cfg.Validate(); err != nil {
		h.logger.Error().Err(err).Msg("configuration validation failed")
		return nil, err
	}
	if err := cfg.MCP.Validate(); err != nil {
		h.logger.Error().Err(err).Msg("MCP configuration validation failed")
		return nil, err
	}

	h.logger.Debug().
		Str("target_prefix", cfg.MCP.TargetPrefix).
		Strs("allowed_methods", cfg.MCP.AllowedMethods).
		Str("metrics_addr", cfg.MCP.MetricsAddr).
		Str("backend", cfg.Backend).
		Msg("starting MCP server")

	executor, err := h.factory.CreateExecutor(commandContext(cmd), cfg)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to create executor for MCP server")
		return nil, err
	}

	return mcp.NewServer(h.logger, cfg, executor, h.metrics, h.version), nil
}
