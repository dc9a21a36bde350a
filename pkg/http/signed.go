package http

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/brendan.keane/lurl/internal/errors"
)

const (
	signingService = "lambda"
	invokePath     = "/2015-03-31/functions/%s/invocations"
)

// HTTPDoer is the subset of *http.Client used by SignedInvoker.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// SignedInvoker invokes functions by POSTing a SigV4-signed request to the
// Lambda Invoke API.
type SignedInvoker struct {
	region      string
	credentials aws.CredentialsProvider
	httpClient  HTTPDoer
	endpoint    string
	signer      *v4.Signer
	now         func() time.Time
}

// SignedOption configures a SignedInvoker.
type SignedOption func(*SignedInvoker)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(c HTTPDoer) SignedOption {
	return func(s *SignedInvoker) { s.httpClient = c }
}

// WithEndpoint overrides https://lambda.<region>.amazonaws.com.
func WithEndpoint(endpoint string) SignedOption {
	return func(s *SignedInvoker) { s.endpoint = endpoint }
}

// NewSignedInvoker creates an invoker signing with creds for region.
func NewSignedInvoker(region string, creds aws.CredentialsProvider, opts ...SignedOption) *SignedInvoker {
	s := &SignedInvoker{
		region:      region,
		credentials: creds,
		httpClient:  http.DefaultClient,
		endpoint:    fmt.Sprintf("https://lambda.%s.amazonaws.com", region),
		signer:      v4.NewSigner(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Invoke implements Invoker.
func (s *SignedInvoker) Invoke(ctx context.Context, inv *Invocation) ([]byte, error) {
	ctx, cancel, timeout := withTimeout(ctx, inv.Timeout, DefaultSignedTimeout)
	defer cancel()

	req, err := s.newRequest(ctx, inv)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, transportError(err, inv.FunctionName, timeout)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(err, inv.FunctionName, timeout)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, upstreamError(resp.StatusCode, body).
			WithContext("function", inv.FunctionName)
	}
	if kind := resp.Header.Get("X-Amz-Function-Error"); kind != "" {
		return nil, functionError(kind, body).
			WithContext("function", inv.FunctionName)
	}

	return body, nil
}

func (s *SignedInvoker) newRequest(ctx context.Context, inv *Invocation) (*http.Request, error) {
	target := s.endpoint + fmt.Sprintf(invokePath, url.PathEscape(inv.FunctionName))
	if inv.Qualifier != "" {
		target += "?" + url.Values{"Qualifier": {inv.Qualifier}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(inv.Payload))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to create invoke request").
			WithContext("function", inv.FunctionName)
	}
	req.Header.Set("Content-Type", "application/json")

	creds, err := s.credentials.Retrieve(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeAuth, "failed to retrieve AWS credentials").
			WithContext("suggestion", "check AWS credential configuration")
	}

	hash := sha256.Sum256(inv.Payload)
	if err := s.signer.SignHTTP(ctx, creds, req, hex.EncodeToString(hash[:]), signingService, s.region, s.now()); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeAuth, "failed to sign request with SigV4").
			WithContext("service", signingService).
			WithContext("region", s.region)
	}

	return req, nil
}
