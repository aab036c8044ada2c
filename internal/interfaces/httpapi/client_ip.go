package httpapi

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// clientIPHeaders are consulted in order before falling back to the socket
// address. Fly.io sets Fly-Client-IP and strips spoofed copies.
var clientIPHeaders = []string{"Fly-Client-IP", "X-Forwarded-For", "X-Real-IP"}

func resolveClientIP(r *http.Request) string {
	for _, header := range clientIPHeaders {
		if ip := parseClientIP(r.Header.Get(header)); ip != "" {
			return ip
		}
	}
	return parseClientIP(r.RemoteAddr)
}

// parseClientIP takes the first hop of a forwarded list and drops any port.
func parseClientIP(raw string) string {
	first, _, _ := strings.Cut(raw, ",")
	first = strings.TrimSpace(first)
	if host, _, err := net.SplitHostPort(first); err == nil {
		first = host
	}
	addr, err := netip.ParseAddr(first)
	if err != nil {
		return ""
	}
	return addr.Unmap().String()
}
