package http

import (
	"context"

	"github.com/brendan.keane/lurl/internal/config"
	"github.com/brendan.keane/lurl/internal/logger"
	"github.com/brendan.keane/lurl/internal/metrics"
	lurlhttp "github.com/brendan.keane/lurl/pkg/http"
	"github.com/rs/zerolog"
)

// ClientFactory centralizes executor creation with dependency injection support
type ClientFactory struct {
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// NewClientFactory creates a new client factory. m may be nil.
func NewClientFactory(log zerolog.Logger, m *metrics.Metrics) *ClientFactory {
	return &ClientFactory{
		logger:  log,
		metrics: m,
	}
}

// CreateExecutor builds a Lambda client from cfg and wraps it in an Executor.
// Region and backend problems surface here, before any invocation.
func (f *ClientFactory) CreateExecutor(ctx context.Context, cfg *config.Config) (Executor, error) {
	log := logger.ForBackend(f.logger, cfg.Backend, cfg.Region)
	opts := append(cfg.ClientOptions(), lurlhttp.WithLogger(log))
	client, err := lurlhttp.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return f.CreateExecutorWithFetcher(cfg, client), nil
}

// CreateExecutorWithFetcher creates an Executor around an existing fetcher
// This is useful for testing with mock invokers
func (f *ClientFactory) CreateExecutorWithFetcher(cfg *config.Config, fetcher Fetcher) Executor {
	return NewExecutorWithDependencies(
		f.logger.With().Str("component", "executor").Logger(),
		fetcher,
		NewURLResolver(cfg),
		NewResponseHandler(f.logger, cfg),
		cfg,
		f.metrics,
	)
}
