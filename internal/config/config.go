package config

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/brendan.keane/lurl/internal/errors"
	lurlhttp "github.com/brendan.keane/lurl/pkg/http"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"
)

// Environment variables read by LoadFromFlags.
const (
	EnvServer         = "LURL_SERVER"
	EnvBackend        = "LURL_BACKEND"
	EnvConfig         = "LURL_CONFIG"
	EnvMCPDescription = "LURL_MCP_DESCRIPTION"
)

var validMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS"}

// Config holds all application configuration
type Config struct {
	// Request settings
	Methods        []string
	Path           string
	Headers        []string
	QueryParams    []string
	Data           string
	Server         string
	Verbose        bool
	IncludeHeaders bool
	Debug          bool

	// Invocation settings
	Backend    string
	Region     string
	Timeout    time.Duration
	Retries    int
	ConfigFile string

	// MCP settings
	MCP MCPConfig
}

// MCPConfig holds MCP-specific configuration
type MCPConfig struct {
	Description    string   // Server description for LLM context
	AllowedMethods []string // Empty means all methods
	TargetPrefix   string   // lambda:// prefix every tool call must stay under
	MetricsAddr    string   // Serve Prometheus metrics here when set
}

// Profile is the layout of a TOML profile file.
type Profile struct {
	Region  string   `toml:"region"`
	Backend string   `toml:"backend"`
	Timeout string   `toml:"timeout"`
	Retries *int     `toml:"retries"`
	Server  string   `toml:"server"`
	Headers []string `toml:"headers"`

	MCP struct {
		Description string `toml:"description"`
		MetricsAddr string `toml:"metrics_addr"`
	} `toml:"mcp"`
}

// contextKey is a custom type for context keys
type contextKey string

// configKey is the context key for storing config
const configKey contextKey = "config"

// WithConfig adds config to context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) (*Config, bool) {
	cfg, ok := ctx.Value(configKey).(*Config)
	return cfg, ok
}

// NewConfig creates a Config with default values
func NewConfig() *Config {
	return &Config{
		Methods: []string{"GET"},
		Backend: string(lurlhttp.BackendSigned),
	}
}

// RegisterFlags defines every flag LoadFromFlags reads.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.StringSliceP("request", "X", []string{"GET"}, "HTTP method (GET, POST, PUT, DELETE, PATCH, HEAD, OPTIONS)")
	flags.StringArrayP("header", "H", nil, "Pass custom header(s) to the function (can be used multiple times)")
	flags.StringArrayP("param", "p", nil, "Query parameters (can be used multiple times)")
	flags.StringP("data", "d", "", "Request body")
	flags.BoolP("verbose", "v", false, "Verbose output (show request and response details)")
	flags.BoolP("include", "i", false, "Include response headers in output")
	flags.Bool("debug", false, "Enable debug logging")
	flags.String("server", "", "Base lambda:// URL for relative paths (env "+EnvServer+")")
	flags.String("backend", string(lurlhttp.BackendSigned), "Invocation backend: signed or sdk (env "+EnvBackend+")")
	flags.String("region", "", "AWS region (defaults to AWS_REGION, then AWS_DEFAULT_REGION)")
	flags.Duration("timeout", 0, "Per-invocation timeout (0 uses the backend default)")
	flags.Int("retries", 0, "Retry attempts for the sdk backend")
	flags.String("config", "", "TOML profile file (env "+EnvConfig+")")
	flags.String("mcp-desc", "", "MCP server description (env "+EnvMCPDescription+")")
	flags.String("metrics-addr", "", "Serve Prometheus metrics on this address in MCP mode")
}

// LoadProfile reads a TOML profile from path.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to read config file").
			WithContext("config_type", "file").
			WithContext("path", path)
	}

	var profile Profile
	if err := toml.Unmarshal(data, &profile); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to parse config file").
			WithContext("config_type", "file").
			WithContext("path", path)
	}
	return &profile, nil
}

// LoadFromFlags creates a Config from command line flags. Values are layered
// as defaults, then the profile file, then the environment, then flags the
// user actually set.
func LoadFromFlags(flags *pflag.FlagSet) (*Config, error) {
	config := NewConfig()

	var err error

	// Profile file from flag or environment
	if config.ConfigFile, err = getString(flags, "config"); err != nil {
		return nil, err
	}
	if config.ConfigFile == "" {
		config.ConfigFile = os.Getenv(EnvConfig)
	}
	if config.ConfigFile != "" {
		profile, err := LoadProfile(config.ConfigFile)
		if err != nil {
			return nil, err
		}
		if err := config.applyProfile(profile); err != nil {
			return nil, err
		}
	}

	config.applyEnv()

	// Core flags
	if flags.Changed("request") {
		if config.Methods, err = flags.GetStringSlice("request"); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get methods flag")
		}
	}
	// Normalize methods to uppercase
	for i, method := range config.Methods {
		config.Methods[i] = strings.ToUpper(strings.TrimSpace(method))
	}
	// Default to GET if no methods specified
	if len(config.Methods) == 0 {
		config.Methods = []string{"GET"}
	}

	headers, err := getStringArray(flags, "header")
	if err != nil {
		return nil, err
	}
	// Flag headers come after profile headers so they win on a name collision
	config.Headers = append(config.Headers, headers...)

	if config.QueryParams, err = getStringArray(flags, "param"); err != nil {
		return nil, err
	}
	if config.Data, err = getString(flags, "data"); err != nil {
		return nil, err
	}
	if config.Verbose, err = getBool(flags, "verbose"); err != nil {
		return nil, err
	}
	if config.IncludeHeaders, err = getBool(flags, "include"); err != nil {
		return nil, err
	}
	if config.Debug, err = getBool(flags, "debug"); err != nil {
		return nil, err
	}

	// Flags that override profile and environment only when set
	if flags.Changed("server") {
		config.Server, _ = flags.GetString("server")
	}
	if flags.Changed("backend") {
		config.Backend, _ = flags.GetString("backend")
	}
	if flags.Changed("region") {
		config.Region, _ = flags.GetString("region")
	}
	if flags.Changed("timeout") {
		if config.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get timeout flag")
		}
	}
	if flags.Changed("retries") {
		if config.Retries, err = flags.GetInt("retries"); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get retries flag")
		}
	}

	// MCP-specific flags
	if flags.Changed("mcp-desc") {
		config.MCP.Description, _ = flags.GetString("mcp-desc")
	}
	if flags.Changed("metrics-addr") {
		config.MCP.MetricsAddr, _ = flags.GetString("metrics-addr")
	}
	if flags.Changed("request") {
		config.MCP.AllowedMethods = config.Methods
	}

	return config, nil
}

func (c *Config) applyProfile(p *Profile) error {
	if p.Region != "" {
		c.Region = p.Region
	}
	if p.Backend != "" {
		c.Backend = p.Backend
	}
	if p.Timeout != "" {
		d, err := time.ParseDuration(p.Timeout)
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeConfig, "invalid timeout in config file").
				WithContext("config_type", "timeout").
				WithContext("value", p.Timeout)
		}
		c.Timeout = d
	}
	if p.Retries != nil {
		c.Retries = *p.Retries
	}
	if p.Server != "" {
		c.Server = p.Server
	}
	c.Headers = append(c.Headers, p.Headers...)
	if p.MCP.Description != "" {
		c.MCP.Description = p.MCP.Description
	}
	if p.MCP.MetricsAddr != "" {
		c.MCP.MetricsAddr = p.MCP.MetricsAddr
	}
	return nil
}

func (c *Config) applyEnv() {
	if server := os.Getenv(EnvServer); server != "" {
		c.Server = server
	}
	if backend := os.Getenv(EnvBackend); backend != "" {
		c.Backend = backend
	}
	if region := os.Getenv("AWS_REGION"); region != "" {
		c.Region = region
	} else if region := os.Getenv("AWS_DEFAULT_REGION"); region != "" {
		c.Region = region
	}
	if desc := os.Getenv(EnvMCPDescription); desc != "" {
		c.MCP.Description = desc
	}
}

// PrimaryMethod returns the first method for HTTP requests
func (c *Config) PrimaryMethod() string {
	if len(c.Methods) > 0 {
		return c.Methods[0]
	}
	return "GET"
}

// ClientOptions translates the invocation settings for lurlhttp.NewClient.
// An empty region is left to the client's own environment lookup.
func (c *Config) ClientOptions() []lurlhttp.ClientOption {
	opts := []lurlhttp.ClientOption{
		lurlhttp.WithBackend(lurlhttp.Backend(c.Backend)),
		lurlhttp.WithTimeout(c.Timeout),
		lurlhttp.WithRetries(c.Retries),
	}
	if c.Region != "" {
		opts = append(opts, lurlhttp.WithRegion(c.Region))
	}
	return opts
}

// Validate ensures the configuration is valid
func (c *Config) Validate() error {
	for _, method := range c.Methods {
		if !isValidMethod(method) {
			return errors.New(errors.ErrorTypeValidation, "invalid HTTP method").
				WithContext("method", method).
				WithContext("valid_methods", validMethods)
		}
	}

	if !lurlhttp.Backend(c.Backend).Valid() {
		return errors.Newf(errors.ErrorTypeConfig, "unknown backend %q", c.Backend).
			WithContext("config_type", "backend").
			WithContext("suggestion", "use --backend signed or --backend sdk")
	}
	if c.Timeout < 0 {
		return errors.New(errors.ErrorTypeConfig, "timeout must not be negative").
			WithContext("config_type", "timeout")
	}
	if c.Retries < 0 {
		return errors.New(errors.ErrorTypeConfig, "retries must not be negative").
			WithContext("config_type", "retries")
	}
	if c.Server != "" && !hasLambdaScheme(c.Server) {
		return errors.New(errors.ErrorTypeConfig, "server must be a lambda:// URL").
			WithContext("config_type", "url").
			WithContext("server", c.Server)
	}

	return nil
}

// Validate ensures MCP configuration is valid
func (c *MCPConfig) Validate() error {
	for _, method := range c.AllowedMethods {
		if !isValidMethod(strings.ToUpper(method)) {
			return errors.New(errors.ErrorTypeValidation, "invalid HTTP method in allowed methods").
				WithContext("method", method).
				WithContext("valid_methods", validMethods)
		}
	}

	if c.TargetPrefix != "" && !hasLambdaScheme(c.TargetPrefix) {
		return errors.New(errors.ErrorTypeConfig, "MCP target prefix must be a lambda:// URL").
			WithContext("config_type", "mcp").
			WithContext("target_prefix", c.TargetPrefix)
	}

	return nil
}

func isValidMethod(method string) bool {
	for _, valid := range validMethods {
		if method == valid {
			return true
		}
	}
	return false
}

func hasLambdaScheme(rawURL string) bool {
	scheme, _, ok := strings.Cut(rawURL, "://")
	return ok && strings.EqualFold(scheme, lurlhttp.Scheme)
}

func getString(flags *pflag.FlagSet, name string) (string, error) {
	if flags.Lookup(name) == nil {
		return "", nil
	}
	v, err := flags.GetString(name)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrorTypeConfig, "failed to get %s flag", name)
	}
	return v, nil
}

// getStringArray reads repeatable flags whose values may contain commas.
func getStringArray(flags *pflag.FlagSet, name string) ([]string, error) {
	if flags.Lookup(name) == nil {
		return nil, nil
	}
	v, err := flags.GetStringArray(name)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrorTypeConfig, "failed to get %s flag", name)
	}
	return v, nil
}

func getBool(flags *pflag.FlagSet, name string) (bool, error) {
	if flags.Lookup(name) == nil {
		return false, nil
	}
	v, err := flags.GetBool(name)
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrorTypeConfig, "failed to get %s flag", name)
	}
	return v, nil
}
