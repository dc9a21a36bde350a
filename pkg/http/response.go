package http

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/brendan.keane/lurl/internal/errors"
)

// Response is a function's proxy response seen through an HTTP-client lens.
// The body is decoded on first use and cached.
type Response struct {
	StatusCode int

	header *Values
	raw    string
	base64 bool

	once sync.Once
	text string
	err  error
}

// DecodeResponse parses a proxy response payload. Body decoding is deferred
// to Text and JSON.
func DecodeResponse(payload []byte) (*Response, error) {
	var envelope events.APIGatewayProxyResponse
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeDecoding, "malformed function response").
			WithContext("payload_length", len(payload))
	}
	return newResponse(&envelope), nil
}

func newResponse(envelope *events.APIGatewayProxyResponse) *Response {
	header := NewHeader()

	// Sorted so keys that differ only in case merge deterministically.
	names := make([]string, 0, len(envelope.MultiValueHeaders))
	for name := range envelope.MultiValueHeaders {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		header.Add(strings.ToLower(name), envelope.MultiValueHeaders[name]...)
	}

	names = names[:0]
	for name := range envelope.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		lower := strings.ToLower(name)
		if header.Values(lower) == nil {
			header.Add(lower, envelope.Headers[name])
		}
	}

	return &Response{
		StatusCode: envelope.StatusCode,
		header:     header,
		raw:        envelope.Body,
		base64:     envelope.IsBase64Encoded,
	}
}

// Header returns every value of name, matched case-insensitively, joined
// with ", ". Missing headers yield "".
func (r *Response) Header(name string) string {
	return r.header.Get(name)
}

// Values returns the values of name, matched case-insensitively.
func (r *Response) Values(name string) []string {
	return r.header.Values(name)
}

// Headers returns a copy of all headers keyed by lowercase name.
func (r *Response) Headers() map[string][]string {
	if h := r.header.MultiValue(); h != nil {
		return h
	}
	return map[string][]string{}
}

// Text returns the decoded body. A base64 body that does not decode is an
// error here, not when the response was received.
func (r *Response) Text() (string, error) {
	r.once.Do(func() {
		if !r.base64 {
			r.text = r.raw
			return
		}
		decoded, err := base64.StdEncoding.DecodeString(r.raw)
		if err != nil {
			r.err = errors.Wrap(err, errors.ErrorTypeDecoding, "response body is not valid base64")
			return
		}
		r.text = string(decoded)
	})
	return r.text, r.err
}

// JSON decodes the body into v.
func (r *Response) JSON(v interface{}) error {
	text, err := r.Text()
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(text), v); err != nil {
		return errors.Wrap(err, errors.ErrorTypeDecoding, "response body is not valid JSON")
	}
	return nil
}

// HTTPResponse converts r into a *net/http.Response for req.
func (r *Response) HTTPResponse(req *http.Request) (*http.Response, error) {
	text, err := r.Text()
	if err != nil {
		return nil, err
	}

	resp := &http.Response{
		StatusCode:    r.StatusCode,
		Status:        fmt.Sprintf("%d %s", r.StatusCode, http.StatusText(r.StatusCode)),
		Header:        make(http.Header),
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Body:          io.NopCloser(bytes.NewReader([]byte(text))),
		ContentLength: int64(len(text)),
		Request:       req,
	}
	for _, name := range r.header.Keys() {
		for _, value := range r.header.Values(name) {
			resp.Header.Add(name, value)
		}
	}
	return resp, nil
}
