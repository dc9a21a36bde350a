package http

import (
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/brendan.keane/lurl/internal/errors"
	"github.com/google/uuid"
)

const envelopeProtocol = "HTTP/1.1"

// Options are the per-call HTTP-client settings.
type Options struct {
	// Method defaults to GET without a body and POST with one.
	Method string
	// Headers may be nil. Build with NewHeader or HeaderFrom.
	Headers *Values
	// Body must be a string or nil. Anything else is rejected before the
	// function is invoked; bodies are never serialized on the caller's behalf.
	Body interface{}
	// Timeout overrides the backend default when positive.
	Timeout time.Duration
	// Retries overrides the client default when non-nil, so a pointer to 0
	// disables retries for one call. Only the SDK backend retries.
	Retries *int
}

// ResolveMethod returns the effective HTTP method for a call.
func ResolveMethod(method string, hasBody bool) string {
	if method != "" {
		return strings.ToUpper(method)
	}
	if hasBody {
		return http.MethodPost
	}
	return http.MethodGet
}

// bodyString enforces the string-only body rule.
func bodyString(body interface{}) (string, bool, error) {
	switch b := body.(type) {
	case nil:
		return "", false, nil
	case string:
		return b, b != "", nil
	default:
		return "", false, errors.Newf(errors.ErrorTypeConfig, "body must be a string, got %T", body).
			WithContext("config_type", "body")
	}
}

// BuildRequest maps a target and call options onto an API Gateway proxy
// event.
func BuildRequest(target *Target, opts Options) (*events.APIGatewayProxyRequest, error) {
	body, hasBody, err := bodyString(opts.Body)
	if err != nil {
		return nil, err
	}
	method := ResolveMethod(opts.Method, hasBody)

	headers := NewHeader()
	if creds := target.Credentials; creds != nil {
		headers.Set("authorization", basicAuth(creds))
	}
	headers.Merge(opts.Headers)

	query, err := ParseQuery(target.RawQuery)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid query string").
			WithContext("config_type", "url").
			WithContext("query", target.RawQuery)
	}

	contextPath := target.Path
	if target.HasStage() {
		contextPath = "/" + target.Stage + target.Path
		if target.RawQuery != "" {
			contextPath += "?" + target.RawQuery
		}
	}

	now := time.Now()
	return &events.APIGatewayProxyRequest{
		Path:                            target.Path,
		HTTPMethod:                      method,
		Headers:                         headers.SingleValue(),
		MultiValueHeaders:               headers.MultiValue(),
		QueryStringParameters:           query.SingleValue(),
		MultiValueQueryStringParameters: query.MultiValue(),
		RequestContext: events.APIGatewayProxyRequestContext{
			Path:             contextPath,
			Protocol:         envelopeProtocol,
			Stage:            target.Stage,
			HTTPMethod:       method,
			RequestID:        uuid.NewString(),
			RequestTimeEpoch: now.UnixMilli(),
		},
		Body:            body,
		IsBase64Encoded: false,
	}, nil
}

func basicAuth(creds *Credentials) string {
	token := base64.StdEncoding.EncodeToString([]byte(creds.Username + ":" + creds.Password))
	return "Basic " + token
}

// ParseQuery splits a raw query string into ordered multi-value parameters.
// An empty query yields nil.
func ParseQuery(rawQuery string) (*Values, error) {
	if rawQuery == "" {
		return nil, nil
	}
	query := NewQuery()
	for _, part := range strings.Split(rawQuery, "&") {
		if part == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(part, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, err
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, err
		}
		query.Add(key, value)
	}
	if query.Len() == 0 {
		return nil, nil
	}
	return query, nil
}
