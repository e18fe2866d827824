package media

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// MediaURL appends the alt=media marker that asks the endpoint for raw
// content instead of metadata. The existing query string is left byte for
// byte intact, so encoded reserved characters and valueless parameters
// survive untouched.
func MediaURL(rawURL string) string {
	switch {
	case strings.HasSuffix(rawURL, "?") || strings.HasSuffix(rawURL, "&"):
		return rawURL + "alt=media"
	case strings.Contains(rawURL, "?"):
		return rawURL + "&alt=media"
	default:
		return rawURL + "?alt=media"
	}
}

// responseTotal extracts the full resource length from the Content-Range
// header ("bytes start-end/total"), or from Content-Length when a 200
// response carried the whole resource.
func responseTotal(resp *http.Response, offset int64) (int64, bool) {
	if cr := resp.Header.Get("Content-Range"); cr != "" {
		if total, err := parseContentRangeTotal(cr); err == nil && total >= 0 {
			return total, true
		}
	}
	if resp.StatusCode == http.StatusOK && offset == 0 && resp.ContentLength >= 0 {
		return resp.ContentLength, true
	}
	return 0, false
}

// parseContentRangeTotal returns the total from "bytes start-end/total",
// or -1 for an unknown ("*") total.
func parseContentRangeTotal(header string) (int64, error) {
	value := strings.TrimPrefix(header, "bytes ")
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid Content-Range: %s", header)
	}
	if parts[1] == "*" {
		return -1, nil
	}
	return strconv.ParseInt(parts[1], 10, 64)
}
