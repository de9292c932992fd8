// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import "strings"

// NormalizeURL returns the deduplication key for a URL: the scheme is
// stripped and trailing slashes are removed. Nothing else is rewritten, so
// "https://a.org/x/" and "http://a.org/x" share a key while
// "https://www.a.org/x" does not.
func NormalizeURL(raw string) string {
	key := strings.TrimSpace(raw)
	if i := strings.Index(key, "://"); i >= 0 {
		key = key[i+3:]
	} else {
		key = strings.TrimPrefix(key, "//")
	}
	return strings.TrimRight(key, "/")
}
