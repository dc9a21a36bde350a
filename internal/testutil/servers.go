package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// LambdaHandler answers one proxy event sent to the fake Invoke API
type LambdaHandler func(functionName, qualifier string, event events.APIGatewayProxyRequest) events.APIGatewayProxyResponse

// NewLambdaAPIServer serves the Lambda Invoke API path and hands each decoded
// proxy event to handler. Unknown paths answer 404 with a service error body.
func NewLambdaAPIServer(handler LambdaHandler) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		const prefix, suffix = "/2015-03-31/functions/", "/invocations"
		if r.Method != http.MethodPost || !strings.HasPrefix(r.URL.Path, prefix) || !strings.HasSuffix(r.URL.Path, suffix) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"Type":"User","Message":"Function not found"}`))
			return
		}
		name := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, prefix), suffix)

		body, _ := io.ReadAll(r.Body)
		var event events.APIGatewayProxyRequest
		if err := json.Unmarshal(body, &event); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"Message":"Could not parse request body into json"}`))
			return
		}

		resp := handler(name, r.URL.Query().Get("Qualifier"), event)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

// NewEchoLambdaServer answers every invocation with the received event as a JSON body
func NewEchoLambdaServer() *httptest.Server {
	return NewLambdaAPIServer(func(functionName, qualifier string, event events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
		body, _ := json.Marshal(event)
		return JSONResponse(http.StatusOK, string(body))
	})
}
