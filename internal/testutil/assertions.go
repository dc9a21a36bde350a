package testutil

import (
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/brendan.keane/lurl/internal/errors"
)

// Custom assertion helpers to reduce boilerplate in tests

// AssertNoError fails the test if err is not nil
func AssertNoError(t *testing.T, err error, msg string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: got error %v, expected none", msg, err)
	}
}

// AssertError fails the test if err is nil
func AssertError(t *testing.T, err error, msg string) {
	t.Helper()
	if err == nil {
		t.Fatalf("%s: expected error, got none", msg)
	}
}

// AssertErrorContains fails the test if err is nil or doesn't contain the expected substring
func AssertErrorContains(t *testing.T, err error, expected string, msg string) {
	t.Helper()
	if err == nil {
		t.Fatalf("%s: expected error containing %q, got none", msg, expected)
	}
	if !strings.Contains(err.Error(), expected) {
		t.Fatalf("%s: expected error containing %q, got %q", msg, expected, err.Error())
	}
}

// AssertEqual fails the test if got != expected
func AssertEqual(t *testing.T, got, expected interface{}, msg string) {
	t.Helper()
	if got != expected {
		t.Fatalf("%s: got %v, expected %v", msg, got, expected)
	}
}

// AssertStringEqual fails the test if got != expected (string-specific for cleaner output)
func AssertStringEqual(t *testing.T, got, expected string, msg string) {
	t.Helper()
	if got != expected {
		t.Fatalf("%s: got %q, expected %q", msg, got, expected)
	}
}

// AssertStringContains fails the test if str doesn't contain substring
func AssertStringContains(t *testing.T, str, substring string, msg string) {
	t.Helper()
	if !strings.Contains(str, substring) {
		t.Fatalf("%s: expected %q to contain %q", msg, str, substring)
	}
}

// AssertStringNotContains fails the test if str contains substring
func AssertStringNotContains(t *testing.T, str, substring string, msg string) {
	t.Helper()
	if strings.Contains(str, substring) {
		t.Fatalf("%s: expected %q to not contain %q", msg, str, substring)
	}
}

// AssertSliceEqual fails the test if slices don't have the same elements in the same order
func AssertSliceEqual(t *testing.T, got, expected []string, msg string) {
	t.Helper()
	if len(got) != len(expected) {
		t.Fatalf("%s: got %d elements, expected %d\ngot: %v\nexpected: %v", msg, len(got), len(expected), got, expected)
	}

	for i, g := range got {
		if g != expected[i] {
			t.Fatalf("%s: element %d: got %q, expected %q\ngot: %v\nexpected: %v", msg, i, g, expected[i], got, expected)
		}
	}
}

// AssertSliceContains fails the test if slice doesn't contain element
func AssertSliceContains(t *testing.T, slice []string, element string, msg string) {
	t.Helper()
	for _, item := range slice {
		if item == element {
			return
		}
	}
	t.Fatalf("%s: expected slice %v to contain %q", msg, slice, element)
}

// AssertErrorType fails the test if err is not a LurlError of the expected type
func AssertErrorType(t *testing.T, err error, expected errors.ErrorType, msg string) {
	t.Helper()
	if err == nil {
		t.Fatalf("%s: expected %s error, got none", msg, expected)
	}
	if got := errors.GetType(err); got != expected {
		t.Fatalf("%s: got %s error %q, expected %s", msg, got, err.Error(), expected)
	}
}

// AssertEventHeader fails the test if the proxy event doesn't carry the expected header value
func AssertEventHeader(t *testing.T, event events.APIGatewayProxyRequest, header, expectedValue string, msg string) {
	t.Helper()
	for name, value := range event.Headers {
		if strings.EqualFold(name, header) {
			if value != expectedValue {
				t.Fatalf("%s: header %q: got %q, expected %q", msg, header, value, expectedValue)
			}
			return
		}
	}
	t.Fatalf("%s: header %q not set, headers: %v", msg, header, event.Headers)
}

// AssertEventMethod fails the test if the proxy event method doesn't match expected
func AssertEventMethod(t *testing.T, event events.APIGatewayProxyRequest, expectedMethod string, msg string) {
	t.Helper()
	if event.HTTPMethod != expectedMethod {
		t.Fatalf("%s: got method %q, expected %q", msg, event.HTTPMethod, expectedMethod)
	}
}

// AssertEventPath fails the test if the proxy event path doesn't match expected
func AssertEventPath(t *testing.T, event events.APIGatewayProxyRequest, expectedPath string, msg string) {
	t.Helper()
	if event.Path != expectedPath {
		t.Fatalf("%s: got path %q, expected %q", msg, event.Path, expectedPath)
	}
}

// AssertEventQuery fails the test if the proxy event doesn't carry the expected query values
func AssertEventQuery(t *testing.T, event events.APIGatewayProxyRequest, param string, expected []string, msg string) {
	t.Helper()
	AssertSliceEqual(t, event.MultiValueQueryStringParameters[param], expected, msg+": query param "+param)
}

// AssertMockCalled fails the test if the mock wasn't called the expected number of times
func AssertMockCalled(t *testing.T, actualCalls, expectedCalls int, mockName string) {
	t.Helper()
	if actualCalls != expectedCalls {
		t.Fatalf("Mock %s: expected %d calls, got %d", mockName, expectedCalls, actualCalls)
	}
}

// AssertMockCalledWith fails the test if the mock wasn't called with expected parameters
func AssertMockCalledWith(t *testing.T, calls []string, expectedCall string, mockName string) {
	t.Helper()
	for _, call := range calls {
		if call == expectedCall {
			return
		}
	}
	t.Fatalf("Mock %s: expected call with %q, got calls: %v", mockName, expectedCall, calls)
}

// Helper functions for common test patterns

// SkipIfShort skips the test if running with -short flag (for integration tests)
func SkipIfShort(t *testing.T, reason string) {
	t.Helper()
	if testing.Short() {
		t.Skipf("Skipping in short mode: %s", reason)
	}
}