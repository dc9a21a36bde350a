package http

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/brendan.keane/lurl/internal/errors"
	"github.com/rs/zerolog"
)

// Config is the process-level configuration of a Client. It is built and
// validated once, when the client is created.
type Config struct {
	Region  string
	Backend Backend
	// Timeout is the default per-call timeout; zero selects the backend
	// default.
	Timeout time.Duration
	// Retries is the default retry count for the SDK backend.
	Retries int
}

// LoadConfig reads the region from AWS_REGION, falling back to
// AWS_DEFAULT_REGION, and selects the signed backend.
func LoadConfig() Config {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = os.Getenv("AWS_DEFAULT_REGION")
	}
	return Config{
		Region:  region,
		Backend: BackendSigned,
	}
}

// Validate fails fast on configuration that would make every call fail.
func (c Config) Validate() error {
	if c.Region == "" {
		return errors.New(errors.ErrorTypeConfig, "AWS region not configured").
			WithContext("config_type", "region").
			WithContext("suggestion", "set AWS_REGION or AWS_DEFAULT_REGION environment variable")
	}
	if !c.Backend.Valid() {
		return errors.Newf(errors.ErrorTypeConfig, "unknown backend %q", c.Backend).
			WithContext("config_type", "backend").
			WithContext("valid_backends", []Backend{BackendSigned, BackendSDK})
	}
	if c.Timeout < 0 {
		return errors.New(errors.ErrorTypeConfig, "timeout must not be negative").
			WithContext("config_type", "timeout")
	}
	if c.Retries < 0 {
		return errors.New(errors.ErrorTypeConfig, "retries must not be negative").
			WithContext("config_type", "retries")
	}
	return nil
}

// Client executes HTTP-style requests against lambda:// URLs. A Client holds
// no per-call state and is safe for concurrent use.
type Client struct {
	config  Config
	invoker Invoker
	logger  zerolog.Logger
}

// ClientOption configures NewClient.
type ClientOption func(*clientOptions)

type clientOptions struct {
	config  Config
	invoker Invoker
	logger  zerolog.Logger
}

// WithRegion overrides the region read from the environment.
func WithRegion(region string) ClientOption {
	return func(o *clientOptions) { o.config.Region = region }
}

// WithBackend selects the invocation backend.
func WithBackend(b Backend) ClientOption {
	return func(o *clientOptions) { o.config.Backend = b }
}

// WithTimeout sets the default per-call timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(o *clientOptions) { o.config.Timeout = d }
}

// WithRetries sets the default retry count for the SDK backend.
func WithRetries(n int) ClientOption {
	return func(o *clientOptions) { o.config.Retries = n }
}

// WithInvoker bypasses backend construction.
func WithInvoker(inv Invoker) ClientOption {
	return func(o *clientOptions) { o.invoker = inv }
}

// WithLogger attaches a logger. Clients are silent by default.
func WithLogger(l zerolog.Logger) ClientOption {
	return func(o *clientOptions) { o.logger = l }
}

// NewClient builds a Client from the environment and opts. The region is
// checked before AWS configuration is loaded, so a missing region never
// reaches the network. AWS_ENDPOINT_URL, when set, replaces the Lambda
// endpoint for both backends.
func NewClient(ctx context.Context, opts ...ClientOption) (*Client, error) {
	o := &clientOptions{config: LoadConfig(), logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(o)
	}
	if err := o.config.Validate(); err != nil {
		return nil, err
	}

	if o.invoker == nil {
		awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(o.config.Region))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "loading AWS config").
				WithContext("suggestion", "ensure AWS credentials are configured")
		}
		o.invoker = newInvoker(o.config, awsCfg)
	}

	c, err := New(o.config, o.invoker)
	if err != nil {
		return nil, err
	}
	c.logger = o.logger.With().Str("component", "lambda_client").Logger()
	return c, nil
}

func newInvoker(cfg Config, awsCfg aws.Config) Invoker {
	if cfg.Backend == BackendSDK {
		return NewSDKInvoker(lambda.NewFromConfig(awsCfg))
	}
	var opts []SignedOption
	if awsCfg.BaseEndpoint != nil {
		opts = append(opts, WithEndpoint(*awsCfg.BaseEndpoint))
	}
	return NewSignedInvoker(cfg.Region, awsCfg.Credentials, opts...)
}

// New builds a Client around an existing invoker.
func New(cfg Config, invoker Invoker) (*Client, error) {
	if cfg.Backend == "" {
		cfg.Backend = BackendSigned
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if invoker == nil {
		return nil, errors.New(errors.ErrorTypeConfig, "invoker is required").
			WithContext("config_type", "backend")
	}
	return &Client{config: cfg, invoker: invoker, logger: zerolog.Nop()}, nil
}

// Config returns the client's configuration.
func (c *Client) Config() Config {
	return c.config
}

// Fetch invokes the function addressed by rawURL with an API Gateway proxy
// event built from opts and returns its decoded response. Application status
// codes, including 4xx and 5xx, come back as a normal Response; only failures
// of the invocation itself are errors.
func (c *Client) Fetch(ctx context.Context, rawURL string, opts Options) (*Response, error) {
	target, err := ParseTarget(rawURL)
	if err != nil {
		return nil, err
	}

	event, err := BuildRequest(target, opts)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "marshaling proxy event")
	}

	inv := &Invocation{
		FunctionName: target.FunctionName,
		Qualifier:    target.Qualifier,
		Payload:      payload,
		Timeout:      c.timeout(opts.Timeout),
		Retries:      c.retries(opts.Retries),
	}

	logger := c.logger.With().
		Str("function", inv.FunctionName).
		Str("qualifier", inv.Qualifier).
		Str("method", event.HTTPMethod).
		Str("path", event.RequestContext.Path).
		Logger()
	logger.Debug().Int("payload_length", len(payload)).Dur("timeout", inv.Timeout).Msg("invoking function")

	startTime := time.Now()
	raw, err := c.invoker.Invoke(ctx, inv)
	duration := time.Since(startTime)
	if err != nil {
		classified := transportError(err, inv.FunctionName, inv.Timeout)
		logger.Debug().Err(classified).Dur("duration", duration).Str("kind", string(classified.Type)).Msg("invocation failed")
		return nil, classified
	}

	resp, err := DecodeResponse(raw)
	if err != nil {
		return nil, err
	}

	logger.Debug().Int("status", resp.StatusCode).Dur("duration", duration).Msg("invocation completed")
	return resp, nil
}

func (c *Client) timeout(d time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	if c.config.Timeout > 0 {
		return c.config.Timeout
	}
	return c.config.Backend.DefaultTimeout()
}

func (c *Client) retries(n *int) int {
	if n != nil {
		return *n
	}
	return c.config.Retries
}

// Fetch is a one-shot helper that builds a Client from the environment.
func Fetch(ctx context.Context, rawURL string, opts Options) (*Response, error) {
	client, err := NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return client.Fetch(ctx, rawURL, opts)
}
