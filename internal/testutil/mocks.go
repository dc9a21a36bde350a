package testutil

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/brendan.keane/lurl/internal/config"
	httpinternal "github.com/brendan.keane/lurl/internal/http"
	lurlhttp "github.com/brendan.keane/lurl/pkg/http"
	"github.com/rs/zerolog"
)

// MockInvoker is a lurlhttp.Invoker that records every invocation and
// answers with a fixed proxy response or error. Safe for concurrent use.
type MockInvoker struct {
	Response events.APIGatewayProxyResponse
	Error    error

	mu          sync.Mutex
	invocations []*lurlhttp.Invocation
	events      []events.APIGatewayProxyRequest
}

// Invoke implements lurlhttp.Invoker
func (m *MockInvoker) Invoke(ctx context.Context, inv *lurlhttp.Invocation) ([]byte, error) {
	var event events.APIGatewayProxyRequest
	if err := json.Unmarshal(inv.Payload, &event); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.invocations = append(m.invocations, inv)
	m.events = append(m.events, event)
	m.mu.Unlock()

	if m.Error != nil {
		return nil, m.Error
	}
	return json.Marshal(m.Response)
}

// Calls returns the number of invocations made
func (m *MockInvoker) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.invocations)
}

// LastInvocation returns the most recent invocation, or nil
func (m *MockInvoker) LastInvocation() *lurlhttp.Invocation {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.invocations) == 0 {
		return nil
	}
	return m.invocations[len(m.invocations)-1]
}

// LastEvent returns the proxy event of the most recent invocation
func (m *MockInvoker) LastEvent() events.APIGatewayProxyRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.events) == 0 {
		return events.APIGatewayProxyRequest{}
	}
	return m.events[len(m.events)-1]
}

// NewMockInvoker creates an invoker answering with status, body and headers
func NewMockInvoker(statusCode int, body string, headers map[string]string) *MockInvoker {
	return &MockInvoker{Response: events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    headers,
		Body:       body,
	}}
}

// MockLambdaAPI is a lurlhttp.LambdaAPI that records inputs and the options
// the invoker applies
type MockLambdaAPI struct {
	Output *lambda.InvokeOutput
	Error  error

	Inputs  []*lambda.InvokeInput
	Options []lambda.Options
}

// Invoke implements lurlhttp.LambdaAPI
func (m *MockLambdaAPI) Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error) {
	var opts lambda.Options
	for _, fn := range optFns {
		fn(&opts)
	}
	m.Inputs = append(m.Inputs, params)
	m.Options = append(m.Options, opts)
	return m.Output, m.Error
}

// NewMockLambdaAPI creates a Lambda API answering with a marshaled proxy response
func NewMockLambdaAPI(resp events.APIGatewayProxyResponse) *MockLambdaAPI {
	payload, _ := json.Marshal(resp)
	return &MockLambdaAPI{Output: &lambda.InvokeOutput{StatusCode: 200, Payload: payload}}
}

// MockError provides a simple mock error implementation
type MockError struct {
	Message string
}

func (e *MockError) Error() string {
	return e.Message
}

// NewMockError creates a mock error
func NewMockError(message string) *MockError {
	return &MockError{Message: message}
}

// NewTestClient builds a lurlhttp.Client around inv for us-east-1
func NewTestClient(inv lurlhttp.Invoker) *lurlhttp.Client {
	client, err := lurlhttp.New(lurlhttp.Config{Region: "us-east-1"}, inv)
	if err != nil {
		panic(err)
	}
	return client
}

// NewExecutor creates an executor for cfg backed by inv
func NewExecutor(cfg *config.Config, inv lurlhttp.Invoker) httpinternal.Executor {
	factory := httpinternal.NewClientFactory(zerolog.New(io.Discard), nil)
	return factory.CreateExecutorWithFetcher(cfg, NewTestClient(inv))
}

// NewSuccessfulExecutor creates an executor whose function always answers 200 with body
func NewSuccessfulExecutor(body string) httpinternal.Executor {
	inv := NewMockInvoker(200, body, map[string]string{"Content-Type": "application/json"})
	return NewExecutor(NewConfigBuilder().Build(), inv)
}

// NewFailingExecutor creates an executor whose invocations always fail
func NewFailingExecutor(errorMessage string) httpinternal.Executor {
	inv := &MockInvoker{Error: NewMockError(errorMessage)}
	return NewExecutor(NewConfigBuilder().Build(), inv)
}
