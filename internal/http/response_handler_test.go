package http

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/brendan.keane/lurl/internal/config"
	"github.com/brendan.keane/lurl/internal/errors"
	lurlhttp "github.com/brendan.keane/lurl/pkg/http"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, payload string) *lurlhttp.Response {
	t.Helper()
	resp, err := lurlhttp.DecodeResponse([]byte(payload))
	require.NoError(t, err)
	return resp
}

func TestResponseHandler_HandleResponse(t *testing.T) {
	payload := `{"statusCode": 201, "multiValueHeaders": {"Content-Type": ["application/json"], "X-Request-Id": ["abc"]}, "body": "{\"id\": 1}"}`

	tests := []struct {
		name        string
		config      *config.Config
		wantOut     []string
		wantErrOut  []string
		emptyErrOut bool
	}{
		{
			name:        "body only",
			config:      &config.Config{},
			wantOut:     []string{`{"id": 1}`},
			emptyErrOut: true,
		},
		{
			name:        "include headers",
			config:      &config.Config{IncludeHeaders: true},
			wantOut:     []string{"HTTP/1.1 201 Created\n", "content-type: application/json\n", "x-request-id: abc\n", "\n\n{\"id\": 1}"},
			emptyErrOut: true,
		},
		{
			name:    "verbose",
			config:  &config.Config{Verbose: true},
			wantOut: []string{`{"id": 1}`},
			wantErrOut: []string{
				"lambda://users-api:prod/users",
				"Function: users-api",
				"Qualifier: prod",
				"User-Agent",
				"HTTP/1.1 201 Created",
				"x-request-id",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			handler := NewResponseHandlerWithWriters(zerolog.New(io.Discard), tt.config, &out, &errOut)

			headers := lurlhttp.NewHeader()
			headers.Set("User-Agent", UserAgent)
			err := handler.HandleResponse(decode(t, payload), "lambda://users-api:prod/users", lurlhttp.Options{Method: "GET", Headers: headers})
			require.NoError(t, err)

			for _, want := range tt.wantOut {
				assert.Contains(t, out.String(), want)
			}
			for _, want := range tt.wantErrOut {
				assert.Contains(t, errOut.String(), want)
			}
			if tt.emptyErrOut {
				assert.Empty(t, errOut.String())
			}
		})
	}
}

func TestResponseHandler_VerboseTracePrefixes(t *testing.T) {
	var out, errOut bytes.Buffer
	handler := NewResponseHandlerWithWriters(zerolog.New(io.Discard), &config.Config{Verbose: true}, &out, &errOut)

	err := handler.HandleResponse(decode(t, `{"statusCode": 200, "body": "ok"}`), "lambda://orders.staging.v3/items", lurlhttp.Options{Body: "x=1"})
	require.NoError(t, err)

	var requestLines, responseLines int
	for _, line := range strings.Split(strings.TrimSpace(errOut.String()), "\n") {
		switch {
		case strings.HasPrefix(line, ">"):
			requestLines++
		case strings.HasPrefix(line, "<"):
			responseLines++
		default:
			t.Errorf("unprefixed trace line %q", line)
		}
	}
	assert.Positive(t, requestLines)
	assert.Positive(t, responseLines)
	assert.Contains(t, errOut.String(), "POST")
	assert.Contains(t, errOut.String(), "Stage: staging")
	assert.Contains(t, errOut.String(), "Qualifier: v3")
	assert.Equal(t, "ok", out.String())
}

func TestResponseHandler_InvalidBase64(t *testing.T) {
	var out bytes.Buffer
	handler := NewResponseHandlerWithWriters(zerolog.New(io.Discard), &config.Config{}, &out, io.Discard)

	err := handler.HandleResponse(decode(t, `{"statusCode": 200, "isBase64Encoded": true, "body": "!!!"}`), "lambda://fn/", lurlhttp.Options{})

	assert.True(t, errors.IsType(err, errors.ErrorTypeDecoding))
	assert.Empty(t, out.String())
}

func TestResponseHandler_HandleResponseForMCP(t *testing.T) {
	handler := NewResponseHandlerWithWriters(zerolog.New(io.Discard), &config.Config{}, io.Discard, io.Discard)

	result, err := handler.HandleResponseForMCP(decode(t, `{"statusCode": 404, "headers": {"Content-Type": "text/plain"}, "isBase64Encoded": true, "body": "bm90IGZvdW5k"}`))
	require.NoError(t, err)

	assert.Equal(t, 404, result.StatusCode)
	assert.Equal(t, "not found", result.Body)
	assert.Equal(t, []string{"text/plain"}, result.Headers["content-type"])
}
