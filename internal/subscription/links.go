package subscription

import (
	"net/url"
	"path"
	"strings"
)

var (
	subscriptionExtensions = map[string]bool{".txt": true, ".yaml": true, ".yml": true, ".json": true, ".sub": true}
	webPageExtensions      = map[string]bool{".htm": true, ".html": true, ".php": true, ".asp": true, ".jsp": true}
)

// IsSubscriptionLink reports whether raw looks like a fetchable
// subscription: an http(s) URL whose path is not a web page. Paths without
// an extension are accepted.
func IsSubscriptionLink(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	ext := strings.ToLower(path.Ext(strings.TrimSuffix(u.Path, "/")))
	if webPageExtensions[ext] {
		return false
	}
	if subscriptionExtensions[ext] || ext == "" {
		return true
	}
	// dotted final segments such as /sub/v2.1 are not file types
	return !isAlpha(ext[1:])
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
