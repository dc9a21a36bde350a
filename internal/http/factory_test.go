package http

import (
	"context"
	"io"
	"testing"

	"github.com/brendan.keane/lurl/internal/config"
	"github.com/brendan.keane/lurl/internal/errors"
	"github.com/rs/zerolog"
)

func TestClientFactory_CreateExecutor(t *testing.T) {
	factory := NewClientFactory(zerolog.New(io.Discard), nil)

	tests := []struct {
		name    string
		config  *config.Config
		env     map[string]string
		wantErr errors.ErrorType
	}{
		{
			name:   "explicit region",
			config: &config.Config{Methods: []string{"GET"}, Backend: "signed", Region: "us-east-1"},
		},
		{
			name:   "sdk backend",
			config: &config.Config{Methods: []string{"GET"}, Backend: "sdk", Region: "us-east-1"},
		},
		{
			name:   "region from environment",
			config: &config.Config{Methods: []string{"GET"}, Backend: "signed"},
			env:    map[string]string{"AWS_REGION": "eu-west-1"},
		},
		{
			name:    "missing region",
			config:  &config.Config{Methods: []string{"GET"}, Backend: "signed"},
			wantErr: errors.ErrorTypeConfig,
		},
		{
			name:    "unknown backend",
			config:  &config.Config{Methods: []string{"GET"}, Backend: "carrier-pigeon", Region: "us-east-1"},
			wantErr: errors.ErrorTypeConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("AWS_REGION", "")
			t.Setenv("AWS_DEFAULT_REGION", "")
			t.Setenv("AWS_ACCESS_KEY_ID", "AKID")
			t.Setenv("AWS_SECRET_ACCESS_KEY", "SECRET")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			executor, err := factory.CreateExecutor(context.Background(), tt.config)

			if tt.wantErr != "" {
				if !errors.IsType(err, tt.wantErr) {
					t.Errorf("CreateExecutor() error = %v, want %s error", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateExecutor() unexpected error: %v", err)
			}
			if executor == nil {
				t.Error("CreateExecutor() returned nil executor without error")
			}
		})
	}
}

func TestClientFactory_CreateExecutorWithFetcher(t *testing.T) {
	factory := NewClientFactory(zerolog.New(io.Discard), nil)
	cfg := &config.Config{Methods: []string{"GET"}, Server: "lambda://users-api"}
	fetcher := &mockFetcher{payload: `{"statusCode": 200}`}

	executor := factory.CreateExecutorWithFetcher(cfg, fetcher)

	if _, err := executor.ExecuteForMCP(context.Background(), Request{Method: "GET", Target: "/users"}); err != nil {
		t.Fatalf("ExecuteForMCP() error = %v", err)
	}
	if len(fetcher.urls) != 1 || fetcher.urls[0] != "lambda://users-api/users" {
		t.Errorf("fetched %v", fetcher.urls)
	}
}
