package feedback

import (
	"net/url"
	"strings"
)

// PageSection derives a human-readable section label from a page URL path.
// The first path segment names the section; dashes and underscores become
// spaces and words are title-cased. The root path maps to "Home".
func PageSection(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "Unknown"
	}

	path := strings.Trim(u.Path, "/")
	if path == "" {
		return "Home"
	}

	segment := path
	if i := strings.Index(path, "/"); i >= 0 {
		segment = path[:i]
	}

	segment = strings.NewReplacer("-", " ", "_", " ").Replace(segment)

	words := strings.Fields(segment)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	if len(words) == 0 {
		return "Home"
	}
	return strings.Join(words, " ")
}

// Origin normalizes a URL to its scheme://host[:port] origin, lowercased.
// Returns empty string if the URL has no host.
func Origin(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return ""
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme == "" {
		scheme = "https"
	}
	return scheme + "://" + strings.ToLower(u.Host)
}

// SameOrigin reports whether two URLs share a normalized origin.
// Either side being unparseable counts as no match.
func SameOrigin(a, b string) bool {
	oa, ob := Origin(a), Origin(b)
	return oa != "" && oa == ob
}
