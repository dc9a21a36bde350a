package http

import (
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/brendan.keane/lurl/internal/errors"
)

// Transport implements http.RoundTripper with Lambda support. Requests for
// lambda:// URLs are invoked through Client; everything else goes to Base.
type Transport struct {
	Client *Client
	// Base handles non-lambda schemes. Nil means http.DefaultTransport.
	Base http.RoundTripper
}

// NewTransport creates a transport backed by client.
func NewTransport(client *Client) *Transport {
	return &Transport{Client: client}
}

// RoundTrip implements the http.RoundTripper interface
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !strings.EqualFold(req.URL.Scheme, Scheme) {
		base := t.Base
		if base == nil {
			base = http.DefaultTransport
		}
		return base.RoundTrip(req)
	}

	opts, err := optionsFromRequest(req)
	if err != nil {
		return nil, err
	}

	resp, err := t.Client.Fetch(req.Context(), req.URL.String(), opts)
	if err != nil {
		return nil, err
	}
	return resp.HTTPResponse(req)
}

func optionsFromRequest(req *http.Request) (Options, error) {
	opts := Options{Method: req.Method}

	if len(req.Header) > 0 {
		opts.Headers = NewHeader()
		for _, name := range sortedKeys(req.Header) {
			opts.Headers.Add(name, req.Header[name]...)
		}
	}

	if req.Body != nil && req.Body != http.NoBody {
		defer req.Body.Close()
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return Options{}, errors.Wrap(err, errors.ErrorTypeInternal, "reading request body")
		}
		if len(body) > 0 {
			opts.Body = string(body)
		}
	}

	return opts, nil
}

func sortedKeys(h http.Header) []string {
	keys := make([]string, 0, len(h))
	for key := range h {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
