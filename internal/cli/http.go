package cli

import (
	"context"

	"github.com/brendan.keane/lurl/internal/config"
	"github.com/brendan.keane/lurl/internal/errors"
	"github.com/brendan.keane/lurl/internal/http"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// ExecutorFactory creates executors for a loaded configuration.
// *http.ClientFactory satisfies it.
type ExecutorFactory interface {
	CreateExecutor(ctx context.Context, cfg *config.Config) (http.Executor, error)
}

// HTTPHandler handles single invocation commands
type HTTPHandler struct {
	logger  zerolog.Logger
	factory ExecutorFactory
}

// NewHTTPHandler creates a new invocation command handler
func NewHTTPHandler(logger zerolog.Logger) *HTTPHandler {
	return NewHTTPHandlerWithFactory(logger, http.NewClientFactory(logger, nil))
}

// NewHTTPHandlerWithFactory creates a handler that builds executors with factory
func NewHTTPHandlerWithFactory(logger zerolog.Logger, factory ExecutorFactory) *HTTPHandler {
	return &HTTPHandler{
		logger:  logger.With().Str("handler", "http").Logger(),
		factory: factory,
	}
}

// Execute invokes the function addressed by args[0] and prints the response
func (h *HTTPHandler) Execute(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load configuration")
		return err
	}

	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	cfg.Path = path

	if len(cfg.Methods) > 1 {
		h.logger.Error().Strs("methods", cfg.Methods).Msg("multiple methods not allowed for a single invocation")
		return errors.New(errors.ErrorTypeValidation, "cannot specify multiple HTTP methods for a single request").
			WithContext("methods", cfg.Methods).
			WithContext("suggestion", "use -X with a single method (e.g., -X POST)")
	}

	if err := cfg.Validate(); err != nil {
		h.logger.Error().Err(err).Msg("configuration validation failed")
		return err
	}

	if path == "" {
		h.logger.Warn().Msg("no target provided")
		return errors.New(errors.ErrorTypeValidation, "a lambda:// URL or path is required").
			WithContext("field", "target").
			WithContext("suggestion", "provide a URL such as lambda://my-function/path, or a path with --server")
	}

	h.logger.Debug().
		Str("method", cfg.PrimaryMethod()).
		Str("path", path).
		Str("backend", cfg.Backend).
		Msg("processing invocation command")

	ctx := commandContext(cmd)
	executor, err := h.factory.CreateExecutor(ctx, cfg)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to create executor")
		return err
	}

	return executor.Execute(ctx, path)
}

// loadConfig prefers the configuration the root command stored in the
// context and falls back to parsing flags
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if cfg, ok := config.FromContext(commandContext(cmd)); ok {
		return cfg, nil
	}
	return config.LoadFromFlags(cmd.Flags())
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
