// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import "fmt"

// DefaultUserAgent is sent when no User-Agent is configured.
const DefaultUserAgent = "article-engine/0.1 (+https://github.com/pdiddy/article-engine)"

// UserAgent builds the descriptive User-Agent sent to providers and fetched
// sites. A contact address, when known, is appended so operators can reach
// us about misbehaving traffic.
func UserAgent(version, contact string) string {
	if version == "" {
		version = "dev"
	}
	if contact == "" {
		return fmt.Sprintf("article-engine/%s (+https://github.com/pdiddy/article-engine)", version)
	}
	return fmt.Sprintf("article-engine/%s (+mailto:%s)", version, contact)
}
