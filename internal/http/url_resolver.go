package http

import (
	"context"
	"strings"

	"github.com/brendan.keane/lurl/internal/config"
	"github.com/brendan.keane/lurl/internal/errors"
)

// urlResolver implements URLResolver interface
type urlResolver struct {
	config *config.Config
}

// NewURLResolver creates a new URL resolver with the given configuration
func NewURLResolver(config *config.Config) URLResolver {
	return &urlResolver{config: config}
}

// ResolveURL returns absolute URLs unchanged and joins anything else onto
// the --server base. Scheme and host validation is left to the client so
// every caller gets the same configuration errors.
func (r *urlResolver) ResolveURL(ctx context.Context, path string) (string, error) {
	if path == "" {
		return "", errors.New(errors.ErrorTypeValidation, "path is required").
			WithContext("suggestion", "provide a lambda:// URL or a path as an argument")
	}

	if strings.Contains(path, "://") {
		return path, nil
	}

	if r.config.Server == "" {
		return "", errors.New(errors.ErrorTypeConfig, "no server URL available").
			WithContext("config_type", "url").
			WithContext("path", path).
			WithContext("suggestion", "use --server lambda://function or provide a full lambda:// URL")
	}

	base := r.config.Server
	var baseQuery string
	if i := strings.IndexByte(base, '?'); i >= 0 {
		base, baseQuery = base[:i], base[i+1:]
	}

	// Ensure path starts with /
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	resolved := strings.TrimSuffix(base, "/") + path
	if baseQuery != "" {
		if strings.Contains(resolved, "?") {
			resolved += "&" + baseQuery
		} else {
			resolved += "?" + baseQuery
		}
	}
	return resolved, nil
}
