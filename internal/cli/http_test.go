package cli

import (
	"context"
	"io"
	"testing"

	"github.com/brendan.keane/lurl/internal/config"
	"github.com/brendan.keane/lurl/internal/errors"
	"github.com/brendan.keane/lurl/internal/http"
	"github.com/brendan.keane/lurl/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type fakeFactory struct {
	inv     *testutil.MockInvoker
	err     error
	configs []*config.Config
}

func (f *fakeFactory) CreateExecutor(ctx context.Context, cfg *config.Config) (http.Executor, error) {
	f.configs = append(f.configs, cfg)
	if f.err != nil {
		return nil, f.err
	}
	return testutil.NewExecutor(cfg, f.inv), nil
}

func newCommand(t *testing.T, flags ...string) *cobra.Command {
	t.Helper()
	t.Setenv(config.EnvServer, "")
	t.Setenv(config.EnvBackend, "")
	t.Setenv(config.EnvConfig, "")
	t.Setenv("AWS_REGION", "us-east-1")

	cmd := &cobra.Command{}
	config.RegisterFlags(cmd.Flags())
	if err := cmd.Flags().Parse(flags); err != nil {
		t.Fatalf("parsing flags: %v", err)
	}
	return cmd
}

func TestNewHTTPHandler(t *testing.T) {
	handler := NewHTTPHandler(zerolog.New(io.Discard))
	if handler == nil || handler.factory == nil {
		t.Fatal("NewHTTPHandler should return a handler with a factory")
	}
}

func TestHTTPHandler_Execute(t *testing.T) {
	tests := []struct {
		name       string
		flags      []string
		args       []string
		wantErr    errors.ErrorType
		wantCalls  int
		wantMethod string
		wantPath   string
	}{
		{
			name:       "absolute URL",
			args:       []string{"lambda://users-api/users"},
			wantCalls:  1,
			wantMethod: "GET",
			wantPath:   "/users",
		},
		{
			name:       "path against server",
			flags:      []string{"--server", "lambda://users-api", "-X", "POST", "-d", `{"name": "x"}`},
			args:       []string{"/users"},
			wantCalls:  1,
			wantMethod: "POST",
			wantPath:   "/users",
		},
		{
			name:    "multiple methods",
			flags:   []string{"-X", "GET,POST"},
			args:    []string{"lambda://users-api/users"},
			wantErr: errors.ErrorTypeValidation,
		},
		{
			name:    "invalid method",
			flags:   []string{"-X", "FETCH"},
			args:    []string{"lambda://users-api/users"},
			wantErr: errors.ErrorTypeValidation,
		},
		{
			name:    "missing target",
			wantErr: errors.ErrorTypeValidation,
		},
		{
			name:    "relative path without server",
			args:    []string{"/users"},
			wantErr: errors.ErrorTypeConfig,
		},
		{
			name:    "unknown backend",
			flags:   []string{"--backend", "carrier-pigeon"},
			args:    []string{"lambda://users-api/users"},
			wantErr: errors.ErrorTypeConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newCommand(t, tt.flags...)
			inv := testutil.NewMockInvoker(200, "", nil)
			handler := NewHTTPHandlerWithFactory(zerolog.New(io.Discard), &fakeFactory{inv: inv})

			err := handler.Execute(cmd, tt.args)

			if tt.wantErr != "" {
				testutil.AssertErrorType(t, err, tt.wantErr, "Execute")
			} else {
				testutil.AssertNoError(t, err, "Execute")
			}
			testutil.AssertMockCalled(t, inv.Calls(), tt.wantCalls, "invoker")
			if tt.wantCalls > 0 {
				testutil.AssertEventMethod(t, inv.LastEvent(), tt.wantMethod, "Execute")
				testutil.AssertEventPath(t, inv.LastEvent(), tt.wantPath, "Execute")
			}
		})
	}
}

func TestHTTPHandler_UsesContextConfig(t *testing.T) {
	cmd := newCommand(t)
	cfg := testutil.NewConfigBuilder().WithMethod("DELETE").Build()
	cmd.SetContext(config.WithConfig(context.Background(), cfg))

	factory := &fakeFactory{inv: testutil.NewMockInvoker(204, "", nil)}
	handler := NewHTTPHandlerWithFactory(zerolog.New(io.Discard), factory)

	testutil.AssertNoError(t, handler.Execute(cmd, []string{"lambda://users-api/users/1"}), "Execute")

	if len(factory.configs) != 1 || factory.configs[0] != cfg {
		t.Fatal("handler should use the configuration stored in the command context")
	}
	testutil.AssertStringEqual(t, cfg.Path, "lambda://users-api/users/1", "config path")
	testutil.AssertEventMethod(t, factory.inv.LastEvent(), "DELETE", "Execute")
}

func TestHTTPHandler_FactoryError(t *testing.T) {
	cmd := newCommand(t)
	factory := &fakeFactory{err: errors.New(errors.ErrorTypeConfig, "AWS region not configured")}
	handler := NewHTTPHandlerWithFactory(zerolog.New(io.Discard), factory)

	err := handler.Execute(cmd, []string{"lambda://users-api/"})

	testutil.AssertErrorType(t, err, errors.ErrorTypeConfig, "Execute")
}

func BenchmarkNewHTTPHandler(b *testing.B) {
	logger := zerolog.New(io.Discard)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = NewHTTPHandler(logger)
	}
}
