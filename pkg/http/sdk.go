package http

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/smithy-go"
	"github.com/brendan.keane/lurl/internal/errors"
)

// LambdaAPI is the part of *lambda.Client used by SDKInvoker.
type LambdaAPI interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// SDKInvoker invokes functions through the AWS SDK Lambda client. Retries
// are delegated to the SDK retryer.
type SDKInvoker struct {
	api LambdaAPI
}

// NewSDKInvoker wraps a Lambda client.
func NewSDKInvoker(api LambdaAPI) *SDKInvoker {
	return &SDKInvoker{api: api}
}

// Invoke implements Invoker.
func (s *SDKInvoker) Invoke(ctx context.Context, inv *Invocation) ([]byte, error) {
	ctx, cancel, timeout := withTimeout(ctx, inv.Timeout, DefaultSDKTimeout)
	defer cancel()

	input := &lambda.InvokeInput{
		FunctionName:   aws.String(inv.FunctionName),
		InvocationType: types.InvocationTypeRequestResponse,
		Payload:        inv.Payload,
	}
	if inv.Qualifier != "" {
		input.Qualifier = aws.String(inv.Qualifier)
	}

	attempts := inv.Retries + 1
	output, err := s.api.Invoke(ctx, input, func(o *lambda.Options) {
		o.RetryMaxAttempts = attempts
	})
	if err != nil {
		return nil, s.classify(ctx, err, inv, timeout)
	}

	if output.FunctionError != nil {
		return nil, functionError(*output.FunctionError, output.Payload).
			WithContext("function", inv.FunctionName)
	}

	return output.Payload, nil
}

// classify separates errors the Lambda API answered with from calls that
// never completed.
func (s *SDKInvoker) classify(ctx context.Context, err error, inv *Invocation, timeout time.Duration) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		if !stderrors.Is(err, ctxErr) {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		return transportError(err, inv.FunctionName, timeout)
	}

	var apiErr smithy.APIError
	if !stderrors.As(err, &apiErr) {
		return transportError(err, inv.FunctionName, timeout)
	}

	status := 0
	var respErr *awshttp.ResponseError
	if stderrors.As(err, &respErr) {
		status = respErr.HTTPStatusCode()
	}

	message := apiErr.ErrorMessage()
	if message == "" {
		message = apiErr.ErrorCode()
	}
	return errors.New(errors.ErrorTypeUpstream, message).
		WithContext("status_code", status).
		WithContext("error_type", apiErr.ErrorCode()).
		WithContext("function", inv.FunctionName)
}
