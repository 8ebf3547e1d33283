// Package server runs the HTTP listeners of focusws: the catch-all hello
// server, which optionally hosts the realtime endpoint, and the metrics
// server.
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"brainbuddy/focusws/pkg/certs"
	"brainbuddy/focusws/pkg/config"
	"brainbuddy/focusws/pkg/format"
	"brainbuddy/focusws/pkg/log"
	"brainbuddy/focusws/pkg/metrics"
	"brainbuddy/focusws/pkg/realtime"
)

// Server is an HTTP server bound to one address.
type Server struct {
	addr      string
	tlsConfig func() (*tls.Config, error)
	timeout   time.Duration
	logger    *log.Logger

	srv      *http.Server
	listener net.Listener
}

// New returns the hello server described by cfg. A non-nil rt is mounted on
// the realtime path; every other path gets the hello handler.
func New(cfg *config.Server, rt http.Handler, logger *log.Logger) *Server {
	handler := routes(rt)
	if logger.Verbose() {
		handler = log.Middleware(logger, handler)
	}

	s := &Server{
		addr:    format.Addr(cfg.Host, cfg.Port),
		timeout: cfg.Timeout,
		logger:  logger,
		srv:     newHTTPServer(handler),
	}

	switch {
	case cfg.CertFile != "":
		s.tlsConfig = func() (*tls.Config, error) {
			cert, err := certs.Load(cfg.CertFile, cfg.KeyFile)
			if err != nil {
				return nil, err
			}
			return certs.ServerConfig(cert), nil
		}
	case cfg.SSL:
		s.tlsConfig = func() (*tls.Config, error) {
			_, cert, err := certs.SelfSigned(certs.DefaultHosts(cfg.Host))
			if err != nil {
				return nil, fmt.Errorf("certs.SelfSigned(): %w", err)
			}
			return certs.ServerConfig(cert), nil
		}
	}

	return s
}

// routes sends the exact realtime path to rt and everything else to the
// hello handler. Paths are taken as sent, never cleaned or redirected.
func routes(rt http.Handler) http.Handler {
	hello := Hello()
	if rt == nil {
		return hello
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == realtime.Path {
			rt.ServeHTTP(w, r)
			return
		}
		hello.ServeHTTP(w, r)
	})
}

// NewMetrics returns a plain HTTP server exposing /metrics on addr.
func NewMetrics(addr string, timeout time.Duration, logger *log.Logger) *Server {
	return &Server{
		addr:    addr,
		timeout: timeout,
		logger:  logger,
		srv:     newHTTPServer(metrics.Handler()),
	}
}

func newHTTPServer(handler http.Handler) *http.Server {
	return &http.Server{
		Handler: handler,

		// Realtime sessions are long-lived, so only the headers are bounded.
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       0,
		WriteTimeout:      0,
		IdleTimeout:       60 * time.Second,
	}
}

// OnShutdown registers f to run when Serve begins a graceful shutdown.
// Hijacked connections are not tracked by net/http, so open WebSocket
// sessions must be closed through such a hook.
func (s *Server) OnShutdown(f func()) {
	s.srv.RegisterOnShutdown(f)
}

// Listen binds the server's address. It is separate from Serve so that the
// caller learns about bind failures before serving.
func (s *Server) Listen() error {
	tcpAddr, err := net.ResolveTCPAddr("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("net.ResolveTCPAddr(tcp, %s): %w", s.addr, err)
	}

	var l net.Listener
	l, err = net.ListenTCP("tcp", tcpAddr)
	if err != nil {
		return fmt.Errorf("net.ListenTCP(tcp, %s): %w", tcpAddr.String(), err)
	}

	if s.tlsConfig != nil {
		cfg, err := s.tlsConfig()
		if err != nil {
			_ = l.Close()
			return fmt.Errorf("configuring TLS: %w", err)
		}
		l = tls.NewListener(l, cfg)
	}

	s.listener = l
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Port returns the bound TCP port, or 0 before Listen.
func (s *Server) Port() int {
	if tcp, ok := s.Addr().(*net.TCPAddr); ok {
		return tcp.Port
	}
	return 0
}

// Serve serves until ctx is cancelled, then shuts down gracefully within
// the configured timeout. It calls Listen first if needed.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}
	return serveWithContext(ctx, s.srv, s.listener, s.timeout)
}

// serveWithContext runs server on listener until ctx is cancelled or the
// server fails on its own.
func serveWithContext(ctx context.Context, server *http.Server, listener net.Listener, timeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			_ = server.Close()
		}

		err := <-errCh
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving after cancellation: %w", err)

	case err := <-errCh:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http.Server.Serve(): %w", err)
	}
}
