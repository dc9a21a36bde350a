package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSignedInvoker(t *testing.T, handler http.HandlerFunc) *SignedInvoker {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	creds := credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "SECRET", "")
	return NewSignedInvoker("us-east-1", creds, WithEndpoint(srv.URL), WithHTTPClient(srv.Client()))
}

func TestSignedInvoker_Request(t *testing.T) {
	var (
		gotPath      string
		gotQualifier string
		gotAuth      string
		gotType      string
		gotBody      string
	)
	inv := newTestSignedInvoker(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQualifier = r.URL.Query().Get("Qualifier")
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		_, _ = w.Write([]byte(`{"statusCode":200,"body":"ok"}`))
	})

	payload, err := inv.Invoke(context.Background(), &Invocation{
		FunctionName: "function-name",
		Qualifier:    "10",
		Payload:      []byte(`{"httpMethod":"GET"}`),
	})
	require.NoError(t, err)

	assert.Equal(t, `{"statusCode":200,"body":"ok"}`, string(payload))
	assert.Equal(t, "/2015-03-31/functions/function-name/invocations", gotPath)
	assert.Equal(t, "10", gotQualifier)
	assert.True(t, strings.HasPrefix(gotAuth, "AWS4-HMAC-SHA256"), "authorization = %q", gotAuth)
	assert.Contains(t, gotAuth, "/us-east-1/lambda/aws4_request")
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, `{"httpMethod":"GET"}`, gotBody)
}

func TestSignedInvoker_NoQualifier(t *testing.T) {
	var rawQuery string
	inv := newTestSignedInvoker(t, func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := inv.Invoke(context.Background(), &Invocation{FunctionName: "fn", Payload: []byte(`{}`)})
	require.NoError(t, err)
	assert.Empty(t, rawQuery)
}

func TestSignedInvoker_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{
			name:        "service message",
			status:      http.StatusNotFound,
			body:        `{"Type":"User","Message":"function not found"}`,
			wantMessage: "function not found",
		},
		{
			name:        "lowercase message",
			status:      http.StatusTooManyRequests,
			body:        `{"message":"Rate Exceeded."}`,
			wantMessage: "Rate Exceeded.",
		},
		{
			name:        "plain text body",
			status:      http.StatusBadGateway,
			body:        "bad gateway",
			wantMessage: "bad gateway",
		},
		{
			name:        "empty body",
			status:      http.StatusForbidden,
			body:        "",
			wantMessage: "Forbidden",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := newTestSignedInvoker(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := inv.Invoke(context.Background(), &Invocation{FunctionName: "function-name", Payload: []byte(`{}`)})
			require.Error(t, err)
			assert.Equal(t, tt.wantMessage, err.Error())
			assert.Equal(t, KindUpstream, KindOf(err))
		})
	}
}

func TestSignedInvoker_FunctionError(t *testing.T) {
	inv := newTestSignedInvoker(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Amz-Function-Error", "Unhandled")
		_, _ = w.Write([]byte(`{"errorMessage":"boom","errorType":"Error"}`))
	})

	_, err := inv.Invoke(context.Background(), &Invocation{FunctionName: "fn", Payload: []byte(`{}`)})
	require.Error(t, err)
	assert.Equal(t, "boom", err.Error())
	assert.Equal(t, KindUpstream, KindOf(err))
}

func TestSignedInvoker_Timeout(t *testing.T) {
	inv := newTestSignedInvoker(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(500 * time.Millisecond):
		}
	})

	start := time.Now()
	_, err := inv.Invoke(context.Background(), &Invocation{
		FunctionName: "slow",
		Payload:      []byte(`{}`),
		Timeout:      50 * time.Millisecond,
	})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 450*time.Millisecond)
	assert.Equal(t, KindTransport, KindOf(err))
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "error chain should carry the deadline: %v", err)
}

func TestSignedInvoker_ConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	creds := credentials.NewStaticCredentialsProvider("AKID", "SECRET", "")
	inv := NewSignedInvoker("us-east-1", creds, WithEndpoint(endpoint))

	_, err := inv.Invoke(context.Background(), &Invocation{FunctionName: "fn", Payload: []byte(`{}`)})
	require.Error(t, err)
	assert.Equal(t, KindTransport, KindOf(err))
}

func TestSignedInvoker_CredentialFailure(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	defer srv.Close()

	creds := aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
		return aws.Credentials{}, errors.New("no credentials")
	})
	inv := NewSignedInvoker("us-east-1", creds, WithEndpoint(srv.URL))

	_, err := inv.Invoke(context.Background(), &Invocation{FunctionName: "fn", Payload: []byte(`{}`)})
	require.Error(t, err)
	assert.Equal(t, KindAuth, KindOf(err))
	assert.False(t, called, "request should not be sent without credentials")
}

func TestNewSignedInvoker_DefaultEndpoint(t *testing.T) {
	inv := NewSignedInvoker("eu-west-2", credentials.NewStaticCredentialsProvider("a", "b", ""))
	assert.Equal(t, "https://lambda.eu-west-2.amazonaws.com", inv.endpoint)
}
