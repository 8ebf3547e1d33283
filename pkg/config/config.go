// Package config holds the validated settings of focusws: flag-backed
// server settings and environment-backed realtime settings.
package config

import (
	"fmt"
	"time"
)

// DefaultPort is the port the hello server binds when none is given.
const DefaultPort = 9001

// Server contains the settings of the HTTP listener.
type Server struct {
	Host        string
	Port        int
	Verbose     bool
	MetricsAddr string
	SSL         bool
	CertFile    string
	KeyFile     string
	Timeout     time.Duration
}

// Validate checks the Server configuration and returns every problem found.
func (c *Server) Validate() []error {
	var errors []error

	if err := validatePort(c.Port); err != nil {
		errors = append(errors, fmt.Errorf("'--port': %s", err))
	}

	if (c.CertFile == "") != (c.KeyFile == "") {
		errors = append(errors, fmt.Errorf("'--cert' and '--key' must be used together"))
	}

	if c.SSL && c.CertFile != "" {
		errors = append(errors, fmt.Errorf("'--ssl' generates its own certificate, do not combine with '--cert'"))
	}

	if c.Timeout < 0 {
		errors = append(errors, fmt.Errorf("'--timeout' must not be negative"))
	}

	return errors
}

// TLS reports whether the listener should speak TLS.
func (c *Server) TLS() bool {
	return c.SSL || c.CertFile != ""
}
