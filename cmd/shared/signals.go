package shared

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"
)

// SetupSignalHandling calls cancel on the first interrupt or termination
// signal so the server can shut down gracefully. A second signal exits
// immediately with 128+signal. The returned function stops listening.
func SetupSignalHandling(cancel context.CancelFunc) (stop func()) {
	sigCh := make(chan os.Signal, 2)

	// always handle Interrupt (portable)
	sigs := []os.Signal{os.Interrupt}

	// add Unix-only signals
	if runtime.GOOS != "windows" {
		sigs = append(sigs, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)
		// SIGPIPE should generally be ignored to avoid process termination on broken pipes
		signal.Ignore(syscall.SIGPIPE)
	}

	signal.Notify(sigCh, sigs...)

	done := make(chan struct{})
	go func() {
		var s os.Signal
		select {
		case s = <-sigCh:
			cancel()
		case <-done:
			return
		}

		select {
		case <-sigCh:
			if ss, ok := s.(syscall.Signal); ok {
				os.Exit(128 + int(ss))
			}
			os.Exit(1)
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}
