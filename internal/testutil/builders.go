package testutil

import (
	"github.com/brendan.keane/lurl/internal/config"
)

// ConfigBuilder provides a fluent interface for building test configurations
type ConfigBuilder struct {
	config *config.Config
}

// NewConfigBuilder creates a new config builder with sensible defaults
func NewConfigBuilder() *ConfigBuilder {
	cfg := config.NewConfig()
	cfg.Region = "us-east-1"
	return &ConfigBuilder{config: cfg}
}

// WithMethods sets the HTTP methods
func (b *ConfigBuilder) WithMethods(methods ...string) *ConfigBuilder {
	b.config.Methods = methods
	return b
}

// WithMethod sets a single HTTP method (convenience)
func (b *ConfigBuilder) WithMethod(method string) *ConfigBuilder {
	b.config.Methods = []string{method}
	return b
}

// WithHeaders sets "Name: value" headers
func (b *ConfigBuilder) WithHeaders(headers ...string) *ConfigBuilder {
	b.config.Headers = headers
	return b
}

// WithQueryParams sets "key=value" query parameters
func (b *ConfigBuilder) WithQueryParams(params ...string) *ConfigBuilder {
	b.config.QueryParams = params
	return b
}

// WithData sets the request body
func (b *ConfigBuilder) WithData(data string) *ConfigBuilder {
	b.config.Data = data
	return b
}

// WithServer sets the base lambda:// URL
func (b *ConfigBuilder) WithServer(server string) *ConfigBuilder {
	b.config.Server = server
	return b
}

// WithVerbose enables verbose output
func (b *ConfigBuilder) WithVerbose() *ConfigBuilder {
	b.config.Verbose = true
	return b
}

// WithIncludeHeaders enables -i output
func (b *ConfigBuilder) WithIncludeHeaders() *ConfigBuilder {
	b.config.IncludeHeaders = true
	return b
}

// WithBackend selects the invocation backend
func (b *ConfigBuilder) WithBackend(backend string) *ConfigBuilder {
	b.config.Backend = backend
	return b
}

// WithAllowedMethods restricts MCP tool calls to methods
func (b *ConfigBuilder) WithAllowedMethods(methods ...string) *ConfigBuilder {
	b.config.MCP.AllowedMethods = methods
	return b
}

// WithTargetPrefix restricts MCP tool calls to URLs under prefix
func (b *ConfigBuilder) WithTargetPrefix(prefix string) *ConfigBuilder {
	b.config.MCP.TargetPrefix = prefix
	return b
}

// Build returns the configured Config
func (b *ConfigBuilder) Build() *config.Config {
	return b.config
}
