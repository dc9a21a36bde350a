package http

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"

	"github.com/brendan.keane/lurl/internal/config"
	lurlhttp "github.com/brendan.keane/lurl/pkg/http"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
)

// traceStyles colors the verbose request/response trace. Rendering is
// plain when the writer is not a terminal.
type traceStyles struct {
	prefix  lipgloss.Style
	method  map[string]lipgloss.Style
	target  lipgloss.Style
	header  lipgloss.Style
	status  map[int]lipgloss.Style
	neutral lipgloss.Style
}

func newTraceStyles(r *lipgloss.Renderer) traceStyles {
	badge := func(color string) lipgloss.Style {
		return r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color(color)).
			Padding(0, 1)
	}
	return traceStyles{
		prefix: r.NewStyle().Foreground(lipgloss.Color("#ABB2BF")),
		method: map[string]lipgloss.Style{
			"GET":     badge("#61AFEF"),
			"POST":    badge("#98C379"),
			"PUT":     badge("#E5C07B"),
			"DELETE":  badge("#E06C75"),
			"PATCH":   badge("#C678DD"),
			"HEAD":    badge("#56B6C2"),
			"OPTIONS": badge("#ABB2BF"),
		},
		target: r.NewStyle().Foreground(lipgloss.Color("#E5C07B")).Bold(true),
		header: r.NewStyle().Foreground(lipgloss.Color("#98C379")),
		status: map[int]lipgloss.Style{
			2: r.NewStyle().Foreground(lipgloss.Color("#98C379")).Bold(true),
			3: r.NewStyle().Foreground(lipgloss.Color("#61AFEF")).Bold(true),
			4: r.NewStyle().Foreground(lipgloss.Color("#E5C07B")).Bold(true),
			5: r.NewStyle().Foreground(lipgloss.Color("#E06C75")).Bold(true),
		},
		neutral: r.NewStyle().Bold(true),
	}
}

func (s traceStyles) methodBadge(method string) string {
	if style, ok := s.method[method]; ok {
		return style.Render(method)
	}
	return s.neutral.Render(method)
}

func (s traceStyles) statusLine(code int) string {
	line := fmt.Sprintf("HTTP/1.1 %d %s", code, http.StatusText(code))
	if style, ok := s.status[code/100]; ok {
		return style.Render(line)
	}
	return s.neutral.Render(line)
}

// responseHandler implements ResponseHandler interface
type responseHandler struct {
	logger zerolog.Logger
	config *config.Config
	out    io.Writer
	errOut io.Writer
	styles traceStyles
}

// NewResponseHandler creates a response handler writing to stdout and stderr
func NewResponseHandler(logger zerolog.Logger, config *config.Config) ResponseHandler {
	return NewResponseHandlerWithWriters(logger, config, os.Stdout, os.Stderr)
}

// NewResponseHandlerWithWriters creates a response handler with explicit
// writers for the body and for the verbose trace
func NewResponseHandlerWithWriters(logger zerolog.Logger, config *config.Config, out, errOut io.Writer) ResponseHandler {
	return &responseHandler{
		logger: logger.With().Str("component", "response_handler").Logger(),
		config: config,
		out:    out,
		errOut: errOut,
		styles: newTraceStyles(lipgloss.NewRenderer(errOut)),
	}
}

// HandleResponse prints the response body, preceded by the status line and
// headers with -i, or by a full trace on stderr with -v
func (h *responseHandler) HandleResponse(resp *lurlhttp.Response, targetURL string, opts lurlhttp.Options) error {
	logger := h.logger.With().
		Int("status", resp.StatusCode).
		Str("content_type", resp.Header("content-type")).
		Logger()

	// Show request details if verbose
	if h.config.Verbose {
		h.showRequestDetails(targetURL, opts)
	}

	body, err := resp.Text()
	if err != nil {
		logger.Error().Err(err).Msg("failed to decode response body")
		return err
	}

	logger.Debug().
		Int("body_length", len(body)).
		Msg("response body decoded")

	// Print response details based on flags
	if h.config.Verbose {
		h.showResponseDetails(resp)
	} else if h.config.IncludeHeaders {
		h.showResponseHeaders(resp)
	}

	// Always print response body
	fmt.Fprint(h.out, body)

	logger.Debug().
		Bool("verbose", h.config.Verbose).
		Bool("include_headers", h.config.IncludeHeaders).
		Msg("response displayed")

	return nil
}

// HandleResponseForMCP returns the response as structured data
func (h *responseHandler) HandleResponseForMCP(resp *lurlhttp.Response) (*Result, error) {
	body, err := resp.Text()
	if err != nil {
		h.logger.Error().Err(err).Int("status", resp.StatusCode).Msg("failed to decode response body")
		return nil, err
	}

	h.logger.Debug().
		Int("status", resp.StatusCode).
		Int("body_length", len(body)).
		Msg("response body decoded for MCP")

	return &Result{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers(),
		Body:       body,
	}, nil
}

// showRequestDetails writes the invocation target and request headers
func (h *responseHandler) showRequestDetails(targetURL string, opts lurlhttp.Options) {
	prefix := h.styles.prefix.Render(">")
	body, _ := opts.Body.(string)
	method := lurlhttp.ResolveMethod(opts.Method, body != "")

	fmt.Fprintf(h.errOut, "%s %s %s\n", prefix, h.styles.methodBadge(method), h.styles.target.Render(targetURL))
	if target, err := lurlhttp.ParseTarget(targetURL); err == nil {
		fmt.Fprintf(h.errOut, "%s Function: %s\n", prefix, target.FunctionName)
		if target.Qualifier != "" {
			fmt.Fprintf(h.errOut, "%s Qualifier: %s\n", prefix, target.Qualifier)
		}
		if target.HasStage() {
			fmt.Fprintf(h.errOut, "%s Stage: %s\n", prefix, target.Stage)
		}
	}

	if opts.Headers != nil {
		for _, name := range opts.Headers.Keys() {
			for _, value := range opts.Headers.Values(name) {
				fmt.Fprintf(h.errOut, "%s %s: %s\n", prefix, h.styles.header.Render(name), value)
			}
		}
	}
	fmt.Fprintf(h.errOut, "%s\n", prefix)
}

// showResponseDetails writes the status line and headers for verbose mode
func (h *responseHandler) showResponseDetails(resp *lurlhttp.Response) {
	prefix := h.styles.prefix.Render("<")
	fmt.Fprintf(h.errOut, "%s %s\n", prefix, h.styles.statusLine(resp.StatusCode))
	headers := resp.Headers()
	for _, name := range sortedNames(headers) {
		for _, value := range headers[name] {
			fmt.Fprintf(h.errOut, "%s %s: %s\n", prefix, h.styles.header.Render(name), value)
		}
	}
	fmt.Fprintf(h.errOut, "%s\n", prefix)
}

// showResponseHeaders writes the status line and headers for include mode
func (h *responseHandler) showResponseHeaders(resp *lurlhttp.Response) {
	fmt.Fprintf(h.out, "HTTP/1.1 %d %s\n", resp.StatusCode, http.StatusText(resp.StatusCode))
	headers := resp.Headers()
	for _, name := range sortedNames(headers) {
		for _, value := range headers[name] {
			fmt.Fprintf(h.out, "%s: %s\n", name, value)
		}
	}
	fmt.Fprintln(h.out) // Empty line between headers and body
}

func sortedNames(headers map[string][]string) []string {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
