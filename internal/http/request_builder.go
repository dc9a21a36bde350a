package http

import (
	"strings"

	"github.com/brendan.keane/lurl/internal/config"
	"github.com/brendan.keane/lurl/internal/errors"
	lurlhttp "github.com/brendan.keane/lurl/pkg/http"
	"github.com/rs/zerolog"
)

// UserAgent is sent with every invocation unless a header overrides it.
const UserAgent = "lurl"

// RequestBuilder turns CLI and MCP input into call options
type RequestBuilder struct {
	logger zerolog.Logger
	config *config.Config
}

// NewRequestBuilder creates a new request builder
func NewRequestBuilder(logger zerolog.Logger, cfg *config.Config) *RequestBuilder {
	return &RequestBuilder{
		logger: logger.With().Str("component", "request_builder").Logger(),
		config: cfg,
	}
}

// Build creates the call options for req: headers, body and timeout.
// The first -H for a name replaces defaults; later ones for the same name
// add values.
func (b *RequestBuilder) Build(req Request) (lurlhttp.Options, error) {
	logger := b.logger.With().
		Str("method", req.Method).
		Str("target", req.Target).
		Logger()

	headers := lurlhttp.NewHeader()
	headers.Set("User-Agent", UserAgent)

	seen := lurlhttp.NewHeader()
	headerCount := 0
	for _, header := range req.Headers {
		name, value, err := ParseHeader(header)
		if err != nil {
			return lurlhttp.Options{}, err
		}
		if name == "" {
			continue
		}
		if seen.Values(name) == nil {
			headers.Set(name, value)
			seen.Set(name, value)
		} else {
			headers.Add(name, value)
		}
		headerCount++
	}

	if headerCount > 0 {
		logger.Debug().
			Int("custom_headers", headerCount).
			Msg("custom headers applied")
	}

	opts := lurlhttp.Options{
		Method:  req.Method,
		Headers: headers,
		Timeout: req.Timeout,
	}

	if req.Data != "" {
		opts.Body = req.Data
		logger.Debug().
			Int("body_length", len(req.Data)).
			Msg("request body added")

		// Set Content-Type header if no custom Content-Type was set
		if headers.Values("Content-Type") == nil {
			contentType := DetectContentType(req.Data)
			headers.Set("Content-Type", contentType)
			logger.Debug().
				Str("content_type", contentType).
				Msg("content type auto-detected")
		}
	}

	return opts, nil
}

// ParseHeader splits a curl-style "Name: value" header. A bare name yields
// an empty value; a name containing whitespace is rejected.
func ParseHeader(header string) (string, string, error) {
	name, value, _ := strings.Cut(header, ":")
	name = strings.TrimSpace(name)
	value = strings.TrimSpace(value)
	if strings.ContainsAny(name, " \t") {
		return "", "", errors.New(errors.ErrorTypeValidation, "invalid header").
			WithContext("field", "header").
			WithContext("header", header).
			WithContext("suggestion", `use the form "Name: value"`)
	}
	return name, value, nil
}

// DetectContentType guesses the Content-Type for a request body
func DetectContentType(data string) string {
	trimmed := strings.TrimSpace(data)

	// Check if it looks like JSON
	if (strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}")) ||
		(strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]")) {
		return "application/json"
	}

	// Default to form-encoded
	return "application/x-www-form-urlencoded"
}
