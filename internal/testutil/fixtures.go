// Package testutil provides shared mocks, fixtures and assertions for tests
package testutil

import (
	"encoding/base64"

	"github.com/aws/aws-lambda-go/events"
)

// Common function response bodies
const (
	UsersJSON   = `[{"id": 1, "name": "Test User"}]`
	CreatedJSON = `{"id": 2, "name": "New User"}`
	ErrorJSON   = `{"error": "not found"}`
)

// Common targets
const (
	FunctionURL = "lambda://users-api"
	StageURL    = "lambda://users-api.prod.3"
)

// JSONResponse is a proxy response with a JSON content type
func JSONResponse(statusCode int, body string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode:        statusCode,
		MultiValueHeaders: map[string][]string{"Content-Type": {"application/json"}},
		Body:              body,
	}
}

// RedirectResponse is a 302 pointing at location
func RedirectResponse(location string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: 302,
		Headers:    map[string]string{"Location": location},
	}
}

// Base64Response is a proxy response whose body is base64 encoded
func Base64Response(statusCode int, body []byte) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode:      statusCode,
		Body:            base64.StdEncoding.EncodeToString(body),
		IsBase64Encoded: true,
	}
}
