package http

import (
	"context"
	"time"

	"github.com/brendan.keane/lurl/internal/config"
	"github.com/brendan.keane/lurl/internal/metrics"
	lurlhttp "github.com/brendan.keane/lurl/pkg/http"
	"github.com/rs/zerolog"
)

// executor implements Executor interface using injected dependencies
type executor struct {
	logger          zerolog.Logger
	fetcher         Fetcher
	urlResolver     URLResolver
	responseHandler ResponseHandler
	requestBuilder  *RequestBuilder
	config          *config.Config
	metrics         *metrics.Metrics
}

// NewExecutorWithDependencies creates a new executor with injected dependencies.
// m may be nil.
func NewExecutorWithDependencies(
	logger zerolog.Logger,
	fetcher Fetcher,
	urlResolver URLResolver,
	responseHandler ResponseHandler,
	config *config.Config,
	m *metrics.Metrics,
) Executor {
	return &executor{
		logger:          logger,
		fetcher:         fetcher,
		urlResolver:     urlResolver,
		responseHandler: responseHandler,
		requestBuilder:  NewRequestBuilder(logger, config),
		config:          config,
		metrics:         m,
	}
}

// Execute invokes path with the configured method, headers, query and body,
// then prints the response
func (e *executor) Execute(ctx context.Context, path string) error {
	req := Request{
		Method:      e.config.PrimaryMethod(),
		Target:      path,
		Headers:     e.config.Headers,
		QueryParams: e.config.QueryParams,
		Data:        e.config.Data,
	}

	resp, targetURL, opts, _, err := e.executeRequest(ctx, req)
	if err != nil {
		return err
	}

	return e.responseHandler.HandleResponse(resp, targetURL, opts)
}

// ExecuteForMCP invokes req and returns the response data
// This is used by the MCP server to capture the response without printing to stdout
func (e *executor) ExecuteForMCP(ctx context.Context, req Request) (*Result, error) {
	resp, _, _, duration, err := e.executeRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	result, err := e.responseHandler.HandleResponseForMCP(resp)
	if err != nil {
		return nil, err
	}
	result.Duration = duration
	return result, nil
}

// executeRequest is the shared path for Execute and ExecuteForMCP
func (e *executor) executeRequest(ctx context.Context, req Request) (*lurlhttp.Response, string, lurlhttp.Options, time.Duration, error) {
	logger := e.logger.With().
		Str("method", req.Method).
		Str("path", req.Target).
		Logger()

	// Resolve target URL
	targetURL, err := e.urlResolver.ResolveURL(ctx, req.Target)
	if err != nil {
		logger.Error().Err(err).Msg("failed to resolve target URL")
		return nil, "", lurlhttp.Options{}, 0, err
	}

	// Add query parameters
	targetURL, err = ApplyQueryParameters(targetURL, req.QueryParams)
	if err != nil {
		logger.Error().Err(err).Msg("failed to apply query parameters")
		return nil, "", lurlhttp.Options{}, 0, err
	}

	logger.Debug().Str("target_url", targetURL).Msg("URL resolved")

	opts, err := e.requestBuilder.Build(req)
	if err != nil {
		logger.Error().Err(err).Msg("failed to build request")
		return nil, "", lurlhttp.Options{}, 0, err
	}

	startTime := time.Now()
	resp, err := e.fetcher.Fetch(ctx, targetURL, opts)
	duration := time.Since(startTime)

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	e.metrics.ObserveInvocation(e.config.Backend, duration, status, err)

	if err != nil {
		logger.Error().
			Err(err).
			Dur("duration", duration).
			Msg("invocation failed")
		return nil, "", lurlhttp.Options{}, duration, err
	}

	logger.Debug().
		Int("status", resp.StatusCode).
		Dur("duration", duration).
		Msg("invocation completed")

	return resp, targetURL, opts, duration, nil
}
