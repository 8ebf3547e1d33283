package serve

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"brainbuddy/focusws/pkg/auth"
	"brainbuddy/focusws/pkg/blacklist"
	"brainbuddy/focusws/pkg/config"
	"brainbuddy/focusws/pkg/frames"
	"brainbuddy/focusws/pkg/hub"
	"brainbuddy/focusws/pkg/inference"
	"brainbuddy/focusws/pkg/log"
	"brainbuddy/focusws/pkg/realtime"
	"brainbuddy/focusws/pkg/semaphore"
	"brainbuddy/focusws/pkg/server"
	"brainbuddy/focusws/pkg/store"
)

// inferenceTimeout bounds one request to the inference service.
const inferenceTimeout = 30 * time.Second

// realtimeDeps holds what the realtime endpoint was built from. A zero
// value means the endpoint is disabled.
type realtimeDeps struct {
	handler *realtime.Handler
	Hub     *hub.Hub
	closers []io.Closer
}

// Handler returns the endpoint's handler, or nil when it is disabled.
func (d *realtimeDeps) Handler() http.Handler {
	if d.handler == nil {
		return nil
	}
	return d.handler
}

// Wait waits for open sessions to finish persisting. A disabled endpoint
// has nothing to wait for.
func (d *realtimeDeps) Wait(ctx context.Context) error {
	if d.handler == nil {
		return nil
	}
	return d.handler.Wait(ctx)
}

// Close releases the store and the Redis client.
func (d *realtimeDeps) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		errs = append(errs, d.closers[i].Close())
	}
	return errors.Join(errs...)
}

func newRealtime(ctx context.Context, cfg *config.Realtime, logger *log.Logger) (*realtimeDeps, error) {
	deps := &realtimeDeps{}
	if !cfg.Enabled() {
		logger.VerboseMsg("%sJWT_SECRET_KEY not set, %s is disabled", config.EnvPrefix, realtime.Path)
		return deps, nil
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return deps, err
	}
	deps.closers = append(deps.closers, st)

	var bl blacklist.Blacklist
	if cfg.RedisAddr != "" {
		r, client, err := blacklist.Dial(ctx, cfg.RedisAddr, cfg.BlackListID)
		if err != nil {
			_ = deps.Close()
			return &realtimeDeps{}, err
		}
		deps.closers = append(deps.closers, client)
		bl = r
		logger.VerboseMsg("Using Redis blacklist at %s/%d", cfg.RedisAddr, cfg.BlackListID)
	} else {
		bl = blacklist.NewMemory()
		logger.VerboseMsg("Using in-process blacklist")
	}

	var est inference.Estimator = inference.Static{Focused: true}
	if cfg.InferenceURL != "" {
		est = inference.NewHTTP(cfg.InferenceURL, &http.Client{Timeout: inferenceTimeout})
		logger.VerboseMsg("Scoring batches with %s", cfg.InferenceURL)
	}

	var fw *frames.Writer
	if cfg.FrameDir != "" {
		fw = frames.NewWriter(cfg.FrameDir, logger)
	}

	deps.Hub = hub.New()
	deps.handler = realtime.NewHandler(realtime.Options{
		Config:    cfg,
		Verifier:  auth.NewVerifier(cfg, st, bl),
		Scores:    st,
		Hub:       deps.Hub,
		Estimator: est,
		Frames:    fw,
		Sessions:  semaphore.New(cfg.MaxSessions),
		Logger:    logger,
		Fallback:  server.Hello(),
	})

	logger.InfoMsg("Realtime endpoint enabled at %s (store %s)\n", realtime.Path, cfg.DBPath)
	return deps, nil
}
