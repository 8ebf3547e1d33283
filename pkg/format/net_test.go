package format

import (
	"net/url"
	"testing"
)

func TestAddr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		host string
		port int
		want string
	}{
		{"IPv4 address", "192.168.1.1", 8080, "192.168.1.1:8080"},
		{"hostname", "example.com", 443, "example.com:443"},
		{"all interfaces", "", 9001, ":9001"},
		{"IPv6 address", "::1", 8080, "[::1]:8080"},
		{"IPv6 any", "::", 9001, "[::]:9001"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Addr(tc.host, tc.port); got != tc.want {
				t.Errorf("Addr(%q, %d) = %q; want %q", tc.host, tc.port, got, tc.want)
			}
		})
	}
}

func TestWebSocketURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		secure bool
		host   string
		port   int
		query  url.Values
		want   string
	}{
		{"plain default host", false, "", 9001, nil, "ws://localhost:9001/ws/real-time"},
		{"secure with query", true, "example.com", 443, url.Values{"user_name": {"alice"}}, "wss://example.com:443/ws/real-time?user_name=alice"},
		{"ipv6", false, "::1", 9001, nil, "ws://[::1]:9001/ws/real-time"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := WebSocketURL(tc.secure, tc.host, tc.port, "/ws/real-time", tc.query); got != tc.want {
				t.Errorf("WebSocketURL() = %q; want %q", got, tc.want)
			}
		})
	}
}
