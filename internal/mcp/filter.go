package mcp

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/brendan.keane/lurl/internal/errors"
	"github.com/jmespath/go-jmespath"
)

// Each regex context "line" is roughly this many bytes of body.
const charsPerLine = 80

const minContextChars = 100

// FilterResult is a response body narrowed by a regex or JMESPath filter.
type FilterResult struct {
	Content string                 `json:"content"`
	Meta    map[string]interface{} `json:"_meta"`
}

// estimateTokens approximates token count using chars/4
func estimateTokens(data string) int {
	return len(data) / 4
}

func sizeMeta(content, source string) map[string]interface{} {
	return map[string]interface{}{
		"tokens": map[string]interface{}{
			"returned": estimateTokens(content),
			"source":   estimateTokens(source),
		},
		"bytes": map[string]interface{}{
			"returned": len(content),
			"source":   len(source),
		},
	}
}

type window struct {
	start int
	end   int
}

// filterRegex returns every match in body with contextLines of surrounding
// text. Overlapping windows are merged.
func filterRegex(body, pattern string, contextLines int) (*FilterResult, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, "invalid regex pattern").
			WithContext("pattern", pattern)
	}

	contextChars := max(contextLines*charsPerLine, minContextChars)

	matches := re.FindAllStringIndex(body, -1)
	meta := sizeMeta("", body)
	meta["filter"] = map[string]interface{}{
		"type":          "regex",
		"pattern":       pattern,
		"total_matches": len(matches),
	}
	if len(matches) == 0 {
		return &FilterResult{Meta: meta}, nil
	}

	var merged []window
	for _, m := range matches {
		w := window{start: max(0, m[0]-contextChars), end: min(len(body), m[1]+contextChars)}
		if n := len(merged); n > 0 && w.start <= merged[n-1].end {
			merged[n-1].end = max(merged[n-1].end, w.end)
			continue
		}
		merged = append(merged, w)
	}

	blocks := make([]string, 0, len(merged))
	for i, w := range merged {
		excerpt := body[w.start:w.end]
		if w.start > 0 {
			excerpt = "..." + excerpt
		}
		if w.end < len(body) {
			excerpt += "..."
		}
		blocks = append(blocks, fmt.Sprintf("=== Context Window %d (bytes %d-%d) ===\n%s", i+1, w.start, w.end, excerpt))
	}

	content := strings.Join(blocks, "\n\n")
	meta = sizeMeta(content, body)
	meta["filter"] = map[string]interface{}{
		"type":           "regex",
		"pattern":        pattern,
		"total_matches":  len(matches),
		"merged_windows": len(merged),
	}
	return &FilterResult{Content: content, Meta: meta}, nil
}

// filterJMESPath evaluates expression against a JSON body and returns the
// result as indented JSON.
func filterJMESPath(body, expression string) (*FilterResult, error) {
	var data interface{}
	if err := json.Unmarshal([]byte(body), &data); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeDecoding, "response body is not valid JSON")
	}

	result, err := jmespath.Search(expression, data)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, "invalid jmespath expression").
			WithContext("expression", expression)
	}

	filtered, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "failed to marshal filtered result")
	}

	count := 0
	if arr, ok := result.([]interface{}); ok {
		count = len(arr)
	} else if result != nil {
		count = 1
	}

	content := string(filtered)
	meta := sizeMeta(content, body)
	meta["filter"] = map[string]interface{}{
		"type":         "jmespath",
		"expression":   expression,
		"result_count": count,
	}
	return &FilterResult{Content: content, Meta: meta}, nil
}
