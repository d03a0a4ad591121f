package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHeaders(t *testing.T) {
	handler := Headers(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xri        string
		want       string
	}{
		{
			name:       "direct connection",
			remoteAddr: "203.0.113.9:1234",
			want:       "203.0.113.9",
		},
		{
			name:       "forwarded for behind trusted proxy",
			remoteAddr: "127.0.0.1:1234",
			xff:        "203.0.113.9, 10.0.0.1",
			want:       "203.0.113.9",
		},
		{
			name:       "forwarded for ignored from untrusted peer",
			remoteAddr: "203.0.113.9:1234",
			xff:        "198.51.100.1",
			want:       "203.0.113.9",
		},
		{
			name:       "real ip behind trusted proxy",
			remoteAddr: "192.168.1.1:1234",
			xri:        "203.0.113.9",
			want:       "203.0.113.9",
		},
		{
			name:       "garbage forwarded header falls back to peer",
			remoteAddr: "127.0.0.1:1234",
			xff:        "not-an-ip",
			want:       "127.0.0.1",
		},
	}

	resolver := NewResolver()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			if got := resolver.ClientIP(req); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
