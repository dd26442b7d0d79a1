package engine

import (
	"net"
	"strings"
)

// DefaultBlockedDomains are hosts the engine never runs on.
var DefaultBlockedDomains = []string{
	"google.",
	"bing.com",
	"duckduckgo.com",
	"yahoo.com",
}

// Blocklist matches host names against blocked domain patterns.
// A pattern ending in "." ("google.") matches any host with that label
// followed by further labels; other patterns match the host itself or any
// subdomain of it.
type Blocklist []string

// Blocked reports whether host falls under the blocklist.
func (b Blocklist) Blocked(host string) bool {
	host = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(host), "."))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if host == "" {
		return false
	}
	for _, p := range b {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if label, ok := strings.CutSuffix(p, "."); ok {
			if hasInnerLabel(host, label) {
				return true
			}
			continue
		}
		if host == p || strings.HasSuffix(host, "."+p) {
			return true
		}
	}
	return false
}

// hasInnerLabel reports whether label is one of host's labels other than the last.
func hasInnerLabel(host, label string) bool {
	labels := strings.Split(host, ".")
	for _, l := range labels[:len(labels)-1] {
		if l == label {
			return true
		}
	}
	return false
}
