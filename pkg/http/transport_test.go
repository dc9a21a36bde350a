package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransport_Lambda(t *testing.T) {
	rec := &recordingInvoker{response: events.APIGatewayProxyResponse{
		StatusCode:        201,
		MultiValueHeaders: map[string][]string{"Content-Type": {"application/json"}},
		Body:              `{"ok":true}`,
	}}
	httpClient := &http.Client{Transport: NewTransport(newTestClient(t, rec))}

	req, err := http.NewRequest(http.MethodPut, "lambda://function-name/items/1?force=true", strings.NewReader("payload"))
	require.NoError(t, err)
	req.Header.Add("X-Multi", "a")
	req.Header.Add("X-Multi", "b")

	resp, err := httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 201, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, `{"ok":true}`, string(body))

	assert.Equal(t, "PUT", rec.event.HTTPMethod)
	assert.Equal(t, "/items/1", rec.event.Path)
	assert.Equal(t, "true", rec.event.QueryStringParameters["force"])
	assert.Equal(t, []string{"a", "b"}, rec.event.MultiValueHeaders["X-Multi"])
	assert.Equal(t, "payload", rec.event.Body)
}

func TestTransport_FallsBackForOtherSchemes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("plain http"))
	}))
	defer srv.Close()

	rec := &recordingInvoker{}
	httpClient := &http.Client{Transport: NewTransport(newTestClient(t, rec))}

	resp, err := httpClient.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "plain http", string(body))
	assert.Zero(t, rec.calls)
}
