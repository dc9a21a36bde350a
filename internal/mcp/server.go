// Package mcp exposes function invocation as a Model Context Protocol tool
// over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/brendan.keane/lurl/internal/config"
	"github.com/brendan.keane/lurl/internal/errors"
	lurlinternal "github.com/brendan.keane/lurl/internal/http"
	"github.com/brendan.keane/lurl/internal/logger"
	"github.com/brendan.keane/lurl/internal/metrics"
	lurlhttp "github.com/brendan.keane/lurl/pkg/http"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
)

const (
	serverName = "lurl"

	// ToolInvoke is the name of the single tool the server registers.
	ToolInvoke = "invoke"

	defaultContextLines = 5
)

const invokeDescription = "Invoke an AWS Lambda function through an API Gateway proxy event, as if making an HTTP request. " +
	"Targets are lambda:// URLs (lambda://name[:version]/path or lambda://name.stage.version/path) or paths relative to the configured server. " +
	"Supports optional response filtering via 'regex' (text search with context) or 'jmespath' (JSON filtering) to reduce token usage for large responses."

// Server serves the invoke tool over stdio
type Server struct {
	logger   zerolog.Logger
	config   *config.Config
	executor lurlinternal.Executor
	metrics  *metrics.Metrics
	mcp      *server.MCPServer
}

// NewServer creates an MCP server that invokes functions through executor.
// m may be nil.
func NewServer(log zerolog.Logger, cfg *config.Config, executor lurlinternal.Executor, m *metrics.Metrics, version string) *Server {
	s := &Server{
		logger:   logger.ForComponent(log, "mcp_server"),
		config:   cfg,
		executor: executor,
		metrics:  m,
	}

	opts := []server.ServerOption{server.WithToolCapabilities(false)}
	if cfg.MCP.Description != "" {
		opts = append(opts, server.WithInstructions(cfg.MCP.Description))
	}
	s.mcp = server.NewMCPServer(serverName, version, opts...)
	s.mcp.AddTool(s.invokeTool(), s.handleInvoke)

	return s
}

func (s *Server) invokeTool() mcp.Tool {
	methodDesc := "HTTP method (GET, POST, PUT, DELETE, PATCH, HEAD, OPTIONS). Defaults to GET, or POST when a body is given."
	if len(s.config.MCP.AllowedMethods) > 0 {
		methodDesc += " Allowed: " + strings.Join(s.config.MCP.AllowedMethods, ", ") + "."
	}

	urlDesc := "lambda:// URL or path, e.g. lambda://users-api:prod/users"
	if s.config.MCP.TargetPrefix != "" {
		urlDesc += ". Must be under " + s.config.MCP.TargetPrefix + "; relative paths are resolved against it"
	}

	return mcp.NewTool(ToolInvoke,
		mcp.WithDescription(invokeDescription),
		mcp.WithString("url", mcp.Required(), mcp.Description(urlDesc)),
		mcp.WithString("method", mcp.Description(methodDesc)),
		mcp.WithArray("headers",
			mcp.Description(`Request headers in "Name: value" form`),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithArray("query",
			mcp.Description(`Query parameters in "key=value" form`),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("body", mcp.Description("Request body")),
		mcp.WithNumber("timeout", mcp.Description("Invocation timeout in seconds")),
		mcp.WithString("regex", mcp.Description("Regex pattern to search the response body, returning matches with surrounding context. Cannot be used with jmespath.")),
		mcp.WithString("jmespath", mcp.Description("JMESPath expression to filter a JSON response body (https://jmespath.org). Cannot be used with regex.")),
		mcp.WithNumber("context_lines", mcp.Description("Context around regex matches, in ~80 character lines (default 5)")),
	)
}

// Start serves MCP on stdin/stdout until stdin closes. When a metrics
// address is configured, Prometheus metrics are served alongside.
func (s *Server) Start() error {
	if addr := s.config.MCP.MetricsAddr; addr != "" && s.metrics != nil {
		go s.serveMetrics(addr)
	}

	s.logger.Debug().
		Str("target_prefix", s.config.MCP.TargetPrefix).
		Strs("allowed_methods", s.config.MCP.AllowedMethods).
		Msg("MCP server started, reading from stdin")

	if err := server.ServeStdio(s.mcp); err != nil {
		return errors.Wrap(err, errors.ErrorTypeMCP, "MCP stdio server failed")
	}

	s.logger.Debug().Msg("MCP server stopped")
	return nil
}

func (s *Server) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", s.metrics.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.logger.Info().Str("addr", addr).Msg("serving metrics")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error().Err(err).Str("addr", addr).Msg("metrics server failed")
	}
}

// handleInvoke runs one invoke tool call. Failures are reported as tool
// errors so the model can see and react to them.
func (s *Server) handleInvoke(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log := logger.ForMCP(s.logger, ToolInvoke)

	target, err := request.RequireString("url")
	if err != nil || strings.TrimSpace(target) == "" {
		return mcp.NewToolResultError("missing required parameter: url"), nil
	}

	body := request.GetString("body", "")
	method := lurlhttp.ResolveMethod(strings.TrimSpace(request.GetString("method", "")), body != "")

	if err := s.checkMethod(method); err != nil {
		log.Warn().Str("method", method).Strs("allowed", s.config.MCP.AllowedMethods).Msg("method not in allowed list")
		return mcp.NewToolResultError(err.Error()), nil
	}

	scoped, err := s.scopeTarget(target)
	if err != nil {
		log.Warn().Str("url", target).Str("prefix", s.config.MCP.TargetPrefix).Msg("target outside allowed prefix")
		return mcp.NewToolResultError(err.Error()), nil
	}

	regexPattern := strings.TrimSpace(request.GetString("regex", ""))
	jmesExpr := strings.TrimSpace(request.GetString("jmespath", ""))
	if regexPattern != "" && jmesExpr != "" {
		return mcp.NewToolResultError("cannot use both regex and jmespath filters"), nil
	}

	req := lurlinternal.Request{
		Method:      method,
		Target:      scoped,
		Headers:     request.GetStringSlice("headers", nil),
		QueryParams: request.GetStringSlice("query", nil),
		Data:        body,
	}
	if secs := request.GetFloat("timeout", 0); secs > 0 {
		req.Timeout = time.Duration(secs * float64(time.Second))
	}

	log.Debug().
		Str("method", req.Method).
		Str("url", req.Target).
		Int("headers", len(req.Headers)).
		Int("query_params", len(req.QueryParams)).
		Bool("has_body", req.Data != "").
		Msg("invoking function via MCP")

	result, err := s.executor.ExecuteForMCP(ctx, req)
	if err != nil {
		log.Error().Err(err).Msg("invocation failed via MCP")
		return mcp.NewToolResultError(errors.UserMessage(err)), nil
	}

	var filtered *FilterResult
	switch {
	case regexPattern != "":
		filtered, err = filterRegex(result.Body, regexPattern, int(request.GetFloat("context_lines", defaultContextLines)))
	case jmesExpr != "":
		filtered, err = filterJMESPath(result.Body, jmesExpr)
	}
	if err != nil {
		log.Error().Err(err).Msg("response filter failed")
		return mcp.NewToolResultError(errors.UserMessage(err)), nil
	}

	return formatResult(result, filtered), nil
}

func (s *Server) checkMethod(method string) error {
	allowed := s.config.MCP.AllowedMethods
	if len(allowed) == 0 {
		return nil
	}
	for _, m := range allowed {
		if strings.EqualFold(m, method) {
			return nil
		}
	}
	return errors.Newf(errors.ErrorTypeMCP, "method %s not allowed. Allowed methods: %s", method, strings.Join(allowed, ", "))
}

// scopeTarget confines target to the configured prefix. Relative paths are
// joined onto the prefix; absolute URLs must start with it at a path
// boundary, so lambda://users does not admit lambda://users-admin.
func (s *Server) scopeTarget(target string) (string, error) {
	prefix := s.config.MCP.TargetPrefix
	if prefix == "" {
		return target, nil
	}

	if !strings.Contains(target, "://") {
		return strings.TrimSuffix(prefix, "/") + "/" + strings.TrimPrefix(target, "/"), nil
	}

	if withinPrefix(target, prefix) {
		return target, nil
	}
	return "", errors.Newf(errors.ErrorTypeMCP, "target %s not allowed. Must be under %s", target, prefix)
}

func withinPrefix(target, prefix string) bool {
	if len(target) < len(prefix) || !strings.EqualFold(target[:len(prefix)], prefix) {
		return false
	}
	if strings.HasSuffix(prefix, "/") || len(target) == len(prefix) {
		return true
	}
	switch target[len(prefix)] {
	case '/', '?', '#':
		return true
	}
	return false
}

// formatResult renders the status line, headers and body (or its filtered
// form) as tool text. Filter metadata follows as a second JSON text block.
func formatResult(result *lurlinternal.Result, filtered *FilterResult) *mcp.CallToolResult {
	var b strings.Builder
	fmt.Fprintf(&b, "HTTP %d %s\n", result.StatusCode, http.StatusText(result.StatusCode))

	names := make([]string, 0, len(result.Headers))
	for name := range result.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, value := range result.Headers[name] {
			fmt.Fprintf(&b, "%s: %s\n", name, value)
		}
	}
	b.WriteString("\n")

	if filtered == nil {
		b.WriteString(result.Body)
		return mcp.NewToolResultText(b.String())
	}

	b.WriteString(filtered.Content)
	out := mcp.NewToolResultText(b.String())
	if meta, err := json.Marshal(map[string]interface{}{"_meta": filtered.Meta}); err == nil {
		out.Content = append(out.Content, mcp.NewTextContent(string(meta)))
	}
	return out
}
