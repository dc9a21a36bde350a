package http

import (
	"net/url"
	"strings"
)

// ApplyQueryParameters appends "key=value" parameters to a target URL.
// The URL is extended as a string because lambda:// hosts with alias
// qualifiers are not valid net/url authorities.
func ApplyQueryParameters(targetURL string, queryParams []string) (string, error) {
	if len(queryParams) == 0 {
		return targetURL, nil
	}

	base, fragment, hasFragment := strings.Cut(targetURL, "#")

	var encoded []string
	for _, param := range queryParams {
		// Split on first = to get key and value
		key, value, _ := strings.Cut(param, "=")
		if key == "" {
			continue
		}
		encoded = append(encoded, url.QueryEscape(key)+"="+url.QueryEscape(value))
	}
	if len(encoded) == 0 {
		return targetURL, nil
	}

	separator := "?"
	if strings.Contains(base, "?") {
		separator = "&"
		if strings.HasSuffix(base, "?") || strings.HasSuffix(base, "&") {
			separator = ""
		}
	}

	result := base + separator + strings.Join(encoded, "&")
	if hasFragment {
		result += "#" + fragment
	}
	return result, nil
}
