// Package security carries the hardening middleware for the JSON API:
// response headers and client IP extraction behind trusted proxies.
package security

import (
	"net"
	"net/http"
	"strings"
)

// Headers sets the baseline security headers on every response.
func Headers(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Cross-Origin-Resource-Policy", "same-origin")
		next.ServeHTTP(w, r)
	})
}

// Resolver extracts the real client IP, trusting forwarded headers only when
// the direct peer is a known proxy.
type Resolver struct {
	trustedProxies []*net.IPNet
}

func NewResolver() *Resolver {
	return &Resolver{
		trustedProxies: []*net.IPNet{
			mustCIDR("127.0.0.0/8"),
			mustCIDR("10.0.0.0/8"),
			mustCIDR("172.16.0.0/12"),
			mustCIDR("192.168.0.0/16"),
		},
	}
}

// AddTrustedProxy adds a proxy network whose forwarded headers are honored.
func (r *Resolver) AddTrustedProxy(cidr string) error {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		return err
	}
	r.trustedProxies = append(r.trustedProxies, network)
	return nil
}

// ClientIP returns the originating client address of the request.
func (r *Resolver) ClientIP(req *http.Request) string {
	directIP, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		directIP = req.RemoteAddr
	}

	parsed := net.ParseIP(directIP)
	if parsed == nil || !r.isTrustedProxy(parsed) {
		return directIP
	}

	if xff := req.Header.Get("X-Forwarded-For"); xff != "" {
		// The first entry is the original client.
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}
	if xri := req.Header.Get("X-Real-IP"); xri != "" {
		if net.ParseIP(xri) != nil {
			return xri
		}
	}
	return directIP
}

func (r *Resolver) isTrustedProxy(ip net.IP) bool {
	for _, network := range r.trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

func mustCIDR(cidr string) *net.IPNet {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		panic("bad builtin CIDR " + cidr + ": " + err.Error())
	}
	return network
}
