package http

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/brendan.keane/lurl/internal/config"
	"github.com/brendan.keane/lurl/internal/errors"
	"github.com/brendan.keane/lurl/internal/metrics"
	lurlhttp "github.com/brendan.keane/lurl/pkg/http"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
)

type mockFetcher struct {
	payload string
	err     error
	urls    []string
	opts    []lurlhttp.Options
}

func (m *mockFetcher) Fetch(ctx context.Context, rawURL string, opts lurlhttp.Options) (*lurlhttp.Response, error) {
	m.urls = append(m.urls, rawURL)
	m.opts = append(m.opts, opts)
	if m.err != nil {
		return nil, m.err
	}
	return lurlhttp.DecodeResponse([]byte(m.payload))
}

type mockURLResolver struct {
	url   string
	err   error
	calls []string
}

func (m *mockURLResolver) ResolveURL(ctx context.Context, path string) (string, error) {
	m.calls = append(m.calls, path)
	return m.url, m.err
}

type mockResponseHandler struct {
	err        error
	handled    []string
	handledMCP int
}

func (m *mockResponseHandler) HandleResponse(resp *lurlhttp.Response, targetURL string, opts lurlhttp.Options) error {
	m.handled = append(m.handled, targetURL)
	return m.err
}

func (m *mockResponseHandler) HandleResponseForMCP(resp *lurlhttp.Response) (*Result, error) {
	m.handledMCP++
	if m.err != nil {
		return nil, m.err
	}
	body, _ := resp.Text()
	return &Result{StatusCode: resp.StatusCode, Headers: resp.Headers(), Body: body}, nil
}

type mockError struct {
	msg string
}

func (e *mockError) Error() string {
	return e.msg
}

func TestExecutor_Execute(t *testing.T) {
	tests := []struct {
		name          string
		config        *config.Config
		payload       string
		fetchError    error
		resolveURL    string
		resolveError  error
		responseError error
		path          string
		expectedURL   string
		expectedError bool
	}{
		{
			name:        "successful GET request",
			config:      &config.Config{Methods: []string{"GET"}},
			payload:     `{"statusCode": 200, "body": "{\"message\": \"success\"}"}`,
			resolveURL:  "lambda://users-api/users",
			path:        "/users",
			expectedURL: "lambda://users-api/users",
		},
		{
			name:        "query parameters appended",
			config:      &config.Config{Methods: []string{"GET"}, QueryParams: []string{"limit=10"}},
			payload:     `{"statusCode": 200}`,
			resolveURL:  "lambda://users-api/users",
			path:        "/users",
			expectedURL: "lambda://users-api/users?limit=10",
		},
		{
			name:          "URL resolution failure",
			config:        &config.Config{Methods: []string{"GET"}},
			resolveError:  &mockError{msg: "failed to resolve URL"},
			path:          "/users",
			expectedError: true,
		},
		{
			name:          "invocation failure",
			config:        &config.Config{Methods: []string{"GET"}},
			fetchError:    errors.New(errors.ErrorTypeTransport, "invocation failed"),
			resolveURL:    "lambda://users-api/users",
			path:          "/users",
			expectedError: true,
		},
		{
			name:          "response handling failure",
			config:        &config.Config{Methods: []string{"GET"}},
			payload:       `{"statusCode": 200}`,
			resolveURL:    "lambda://users-api/users",
			responseError: &mockError{msg: "response handling failed"},
			path:          "/users",
			expectedError: true,
		},
		{
			name:          "invalid header",
			config:        &config.Config{Methods: []string{"GET"}, Headers: []string{"Bad Header: x"}},
			resolveURL:    "lambda://users-api/users",
			path:          "/users",
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &mockFetcher{payload: tt.payload, err: tt.fetchError}
			resolver := &mockURLResolver{url: tt.resolveURL, err: tt.resolveError}
			handler := &mockResponseHandler{err: tt.responseError}

			executor := NewExecutorWithDependencies(zerolog.New(io.Discard), fetcher, resolver, handler, tt.config, nil)

			err := executor.Execute(context.Background(), tt.path)

			if tt.expectedError {
				if err == nil {
					t.Error("Execute() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Execute() unexpected error: %v", err)
			}
			if len(fetcher.urls) != 1 || fetcher.urls[0] != tt.expectedURL {
				t.Errorf("fetched %v, expected %q", fetcher.urls, tt.expectedURL)
			}
			if len(handler.handled) != 1 || handler.handled[0] != tt.expectedURL {
				t.Errorf("handled %v, expected %q", handler.handled, tt.expectedURL)
			}
		})
	}
}

func TestExecutor_ExecuteForMCP(t *testing.T) {
	cfg := &config.Config{Methods: []string{"GET"}, Headers: []string{"X-Ignored: yes"}}
	fetcher := &mockFetcher{payload: `{"statusCode": 201, "multiValueHeaders": {"Content-Type": ["application/json"]}, "body": "{\"id\": 2}"}`}
	resolver := &mockURLResolver{url: "lambda://users-api/users"}
	handler := &mockResponseHandler{}

	executor := NewExecutorWithDependencies(zerolog.New(io.Discard), fetcher, resolver, handler, cfg, nil)

	result, err := executor.ExecuteForMCP(context.Background(), Request{
		Method:  "POST",
		Target:  "/users",
		Headers: []string{"X-Trace: 1"},
		Data:    `{"name": "New User"}`,
		Timeout: time.Second,
	})
	if err != nil {
		t.Fatalf("ExecuteForMCP() unexpected error: %v", err)
	}

	if result.StatusCode != 201 || result.Body != `{"id": 2}` {
		t.Errorf("result = %+v", result)
	}
	if got := result.Headers["content-type"]; len(got) != 1 || got[0] != "application/json" {
		t.Errorf("content-type = %v", got)
	}

	opts := fetcher.opts[0]
	if opts.Method != "POST" || opts.Body != `{"name": "New User"}` || opts.Timeout != time.Second {
		t.Errorf("options = %+v", opts)
	}
	if opts.Headers.Get("X-Trace") != "1" {
		t.Errorf("X-Trace = %q", opts.Headers.Get("X-Trace"))
	}
	if opts.Headers.Get("X-Ignored") != "" {
		t.Error("MCP requests should not inherit CLI headers from the executor config")
	}
	if handler.handledMCP != 1 {
		t.Errorf("HandleResponseForMCP called %d times", handler.handledMCP)
	}
}

func TestExecutor_ExecuteForMCP_Error(t *testing.T) {
	cfg := &config.Config{Methods: []string{"GET"}}
	fetcher := &mockFetcher{err: errors.New(errors.ErrorTypeUpstream, "function not found")}
	executor := NewExecutorWithDependencies(zerolog.New(io.Discard), fetcher, &mockURLResolver{url: "lambda://missing/"}, &mockResponseHandler{}, cfg, nil)

	_, err := executor.ExecuteForMCP(context.Background(), Request{Target: "lambda://missing/"})
	if !errors.IsType(err, errors.ErrorTypeUpstream) {
		t.Errorf("ExecuteForMCP() error = %v, want upstream error", err)
	}
}

func TestExecutor_RecordsMetrics(t *testing.T) {
	cfg := &config.Config{Methods: []string{"GET"}, Backend: "sdk"}
	m := metrics.New()
	resolver := &mockURLResolver{url: "lambda://fn/"}

	ok := NewExecutorWithDependencies(zerolog.New(io.Discard), &mockFetcher{payload: `{"statusCode": 404}`}, resolver, &mockResponseHandler{}, cfg, m)
	if err := ok.Execute(context.Background(), "/"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	failing := NewExecutorWithDependencies(zerolog.New(io.Discard), &mockFetcher{err: errors.New(errors.ErrorTypeTransport, "timed out")}, resolver, &mockResponseHandler{}, cfg, m)
	_ = failing.Execute(context.Background(), "/")

	if got := testutil.ToFloat64(m.InvocationsTotal.WithLabelValues("sdk", metrics.OutcomeSuccess)); got != 1 {
		t.Errorf("success count = %v", got)
	}
	if got := testutil.ToFloat64(m.InvocationsTotal.WithLabelValues("sdk", "transport")); got != 1 {
		t.Errorf("transport count = %v", got)
	}
	if got := testutil.ToFloat64(m.FunctionStatus.WithLabelValues("4xx")); got != 1 {
		t.Errorf("4xx count = %v", got)
	}
}
