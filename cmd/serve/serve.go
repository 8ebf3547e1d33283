// Package serve implements the serve command, which runs the hello server
// and, when configured, the realtime focus endpoint.
package serve

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"brainbuddy/focusws/cmd/shared"
	"brainbuddy/focusws/pkg/config"
	"brainbuddy/focusws/pkg/log"
	"brainbuddy/focusws/pkg/server"

	"github.com/coder/websocket"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

// GetCommand returns the CLI command for serve mode.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Serve the hello route and the realtime endpoint",
		Action: Action,
		Flags:  shared.GetServeFlags(),
	}
}

// Action runs the server configured by cmd's flags and the BB_*
// environment. The root command uses it too.
func Action(ctx context.Context, cmd *cli.Command) error {
	cfg := &config.Server{
		Host:        cmd.String(shared.HostFlag),
		Port:        int(cmd.Int(shared.PortFlag)),
		Verbose:     cmd.Bool(shared.VerboseFlag),
		MetricsAddr: cmd.String(shared.MetricsFlag),
		SSL:         cmd.Bool(shared.SSLFlag),
		CertFile:    cmd.String(shared.CertFlag),
		KeyFile:     cmd.String(shared.KeyFlag),
		Timeout:     time.Duration(cmd.Int(shared.TimeoutFlag)) * time.Millisecond,
	}

	logger := log.New(os.Stderr, cfg.Verbose)

	rtCfg, err := config.LoadRealtime()
	if err != nil {
		logger.ErrorMsg("Reading environment: %s\n", err)
		return fmt.Errorf("exiting")
	}

	if errs := config.Validate(cfg, rtCfg); len(errs) > 0 {
		logger.ErrorMsg("Argument validation errors:\n")
		for _, err := range errs {
			logger.ErrorMsg(" - %s\n", err)
		}
		return fmt.Errorf("exiting")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := shared.SetupSignalHandling(cancel)
	defer stop()

	return run(ctx, os.Stdout, cfg, rtCfg, logger)
}

// run serves until ctx is cancelled. The startup and stop lines go to
// stdout; failing to listen is reported there and is not an error.
func run(ctx context.Context, stdout io.Writer, cfg *config.Server, rtCfg *config.Realtime, logger *log.Logger) error {
	rt, err := newRealtime(ctx, rtCfg, logger)
	if err != nil {
		logger.ErrorMsg("Setting up realtime endpoint: %s\n", err)
		return fmt.Errorf("exiting")
	}
	defer rt.Close()

	defer fmt.Fprintln(stdout, "Server has stopped.")

	srv := server.New(cfg, rt.Handler(), logger)
	if rt.Hub != nil {
		srv.OnShutdown(func() {
			rt.Hub.CloseAll(websocket.StatusGoingAway, "server shutting down")
		})
	}

	if err := srv.Listen(); err != nil {
		fmt.Fprintf(stdout, "Failed to listen on port %d\n", cfg.Port)
		logger.VerboseMsg("%s", err)
		return nil
	}
	fmt.Fprintf(stdout, "Server listening on port %d\n", srv.Port())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(gctx)
	})

	if cfg.MetricsAddr != "" {
		m := server.NewMetrics(cfg.MetricsAddr, cfg.Timeout, logger)
		if err := m.Listen(); err != nil {
			logger.ErrorMsg("Metrics disabled: %s\n", err)
		} else {
			logger.InfoMsg("Serving metrics on %s\n", m.Addr())
			g.Go(func() error {
				return m.Serve(gctx)
			})
		}
	}

	if err := g.Wait(); err != nil {
		logger.ErrorMsg("Serving: %s\n", err)
	}

	// Shutdown does not wait for hijacked connections, so sessions closed
	// by the hub may still be saving their scores.
	waitCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()
	if err := rt.Wait(waitCtx); err != nil {
		logger.ErrorMsg("Sessions still open after %s: %s\n", cfg.Timeout, err)
	}
	return nil
}
