package http

import (
	"context"
	"time"
)

// Backend selects how functions are invoked.
type Backend string

const (
	// BackendSigned sends a SigV4-signed POST to the Lambda Invoke endpoint.
	BackendSigned Backend = "signed"
	// BackendSDK calls Invoke through the AWS SDK Lambda client.
	BackendSDK Backend = "sdk"
)

// Default per-call timeouts for each backend.
const (
	DefaultSignedTimeout = 30 * time.Second
	DefaultSDKTimeout    = 3 * time.Second
)

// DefaultTimeout returns the per-call timeout used when none is configured.
func (b Backend) DefaultTimeout() time.Duration {
	if b == BackendSDK {
		return DefaultSDKTimeout
	}
	return DefaultSignedTimeout
}

// Valid reports whether b names a known backend.
func (b Backend) Valid() bool {
	return b == BackendSigned || b == BackendSDK
}

// Invocation is a single request handed to an Invoker.
type Invocation struct {
	FunctionName string
	Qualifier    string
	// Payload is the serialized proxy event.
	Payload []byte
	// Timeout bounds the whole call. Invokers apply their default when zero.
	Timeout time.Duration
	// Retries is the number of additional attempts the transport may make.
	Retries int
}

// Invoker executes a function and returns its raw response payload. It does
// not interpret the payload. Failures are returned as transport or upstream
// errors.
type Invoker interface {
	Invoke(ctx context.Context, inv *Invocation) ([]byte, error)
}

// InvokerFunc adapts a function to the Invoker interface.
type InvokerFunc func(ctx context.Context, inv *Invocation) ([]byte, error)

// Invoke calls f.
func (f InvokerFunc) Invoke(ctx context.Context, inv *Invocation) ([]byte, error) {
	return f(ctx, inv)
}

func withTimeout(ctx context.Context, timeout, fallback time.Duration) (context.Context, context.CancelFunc, time.Duration) {
	if timeout <= 0 {
		timeout = fallback
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, cancel, timeout
}
