package http

import (
	"context"
	"time"

	lurlhttp "github.com/brendan.keane/lurl/pkg/http"
)

// Request is one CLI or MCP call before URL resolution.
type Request struct {
	Method      string
	Target      string   // lambda:// URL, or a path resolved against the server
	Headers     []string // "Name: value"
	QueryParams []string // "key=value"
	Data        string
	Timeout     time.Duration
}

// Result is a function response captured for MCP.
type Result struct {
	StatusCode int
	Headers    map[string][]string
	Body       string
	Duration   time.Duration
}

// Executor defines the core invocation interface
// This enables easy mocking and testing of CLI and MCP callers
type Executor interface {
	// Execute invokes path with the configured flags and prints the response (CLI mode)
	Execute(ctx context.Context, path string) error

	// ExecuteForMCP invokes req and returns the structured response (MCP mode)
	ExecuteForMCP(ctx context.Context, req Request) (*Result, error)
}

// Fetcher is satisfied by *lurlhttp.Client.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, opts lurlhttp.Options) (*lurlhttp.Response, error)
}

// URLResolver defines interface for resolving target URLs
type URLResolver interface {
	ResolveURL(ctx context.Context, path string) (string, error)
}

// ResponseHandler defines interface for handling function responses
// Allows testing response processing separately from invocation
type ResponseHandler interface {
	HandleResponse(resp *lurlhttp.Response, targetURL string, opts lurlhttp.Options) error
	HandleResponseForMCP(resp *lurlhttp.Response) (*Result, error)
}
