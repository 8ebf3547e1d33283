// Package format renders addresses and URLs for log lines and CLI output.
package format

import (
	"fmt"
	"net/url"
	"strings"
)

// Addr joins host and port, bracketing IPv6 hosts.
func Addr(host string, port int) string {
	if strings.ContainsAny(host, ":") { // IPv6
		return fmt.Sprintf("[%s]:%d", host, port)
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// WebSocketURL builds the URL a client dials to reach path on host:port.
// An empty host means the local machine.
func WebSocketURL(secure bool, host string, port int, path string, query url.Values) string {
	if host == "" {
		host = "localhost"
	}
	scheme := "ws"
	if secure {
		scheme = "wss"
	}
	u := url.URL{
		Scheme:   scheme,
		Host:     Addr(host, port),
		Path:     path,
		RawQuery: query.Encode(),
	}
	return u.String()
}
