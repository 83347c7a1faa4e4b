package throttle

import (
	"net/url"
	"strings"
)

// pattern is a glob-style URL matcher compiled once at registration time.
// Matching is performed against host + path of the URL.
//
// Supported patterns:
//   - "api.stripe.com/*" matches any path on that host
//   - "api.openai.com/v1/chat/*" matches only chat endpoints
//   - "api.example.com/v1/specific" exact match
type pattern struct {
	raw string

	// subtree is set when the pattern ends in "/*": everything at or
	// under this prefix matches.
	subtree   string
	isSubtree bool

	// chunks are the literal fragments between "*" wildcards.
	chunks []string
}

// compilePattern parses a glob pattern. Trailing slashes are stripped so
// "host/path/" and "host/path" are equivalent.
func compilePattern(raw string) pattern {
	trimmed := strings.TrimRight(raw, "/")
	p := pattern{
		raw:    trimmed,
		chunks: strings.Split(trimmed, "*"),
	}
	if strings.HasSuffix(trimmed, "/*") {
		p.subtree = strings.TrimSuffix(trimmed, "/*")
		p.isSubtree = true
	}
	return p
}

// match reports whether the request URL matches the pattern.
func (p pattern) match(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	target := strings.TrimRight(parsed.Host+parsed.Path, "/")

	if target == p.raw {
		return true
	}

	if p.isSubtree {
		if target == p.subtree || strings.HasPrefix(target, p.subtree+"/") {
			return true
		}
	}

	return matchChunks(p.chunks, target)
}

// matchChunks checks that every literal fragment appears in order, with the
// first anchored at the start and the last at the end. A "*" between
// fragments matches any sequence of characters, including none.
func matchChunks(chunks []string, s string) bool {
	if len(chunks) == 1 {
		// No wildcard at all; only an exact match qualifies.
		return s == chunks[0]
	}

	first, last := chunks[0], chunks[len(chunks)-1]
	if !strings.HasPrefix(s, first) || !strings.HasSuffix(s, last) {
		return false
	}
	s = s[len(first):]
	if len(s) < len(last) {
		return false
	}
	s = s[:len(s)-len(last)]

	for _, c := range chunks[1 : len(chunks)-1] {
		if c == "" {
			continue
		}
		i := strings.Index(s, c)
		if i < 0 {
			return false
		}
		s = s[i+len(c):]
	}
	return true
}
