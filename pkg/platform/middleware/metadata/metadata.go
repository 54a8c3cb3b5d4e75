// Package metadata reads caller facts from inbound requests.
package metadata

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

const unknownIP = "unknown"

// ClientIPFromRequest returns the caller's address. Proxy headers are trusted in
// order (the first X-Forwarded-For hop, then X-Real-IP) and skipped when they do
// not hold a valid address; RemoteAddr is the fallback.
func ClientIPFromRequest(r *http.Request) string {
	first, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ",")
	for _, candidate := range []string{first, r.Header.Get("X-Real-IP")} {
		if ip, ok := parseIP(candidate); ok {
			return ip
		}
	}

	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if ip, ok := parseIP(host); ok {
		return ip
	}
	if host != "" {
		return host
	}
	return unknownIP
}

func parseIP(s string) (string, bool) {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return "", false
	}
	return addr.Unmap().String(), true
}
