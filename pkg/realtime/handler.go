// Package realtime serves the /ws/real-time focus tracking endpoint.
//
// A client opens a WebSocket with its access and refresh cookies and a
// user_name query parameter. Once the token pair is accepted the server
// repeatedly greets the client with "Hello" and collects a batch of camera
// frames, scores each batch and stores the session's focus score when the
// session ends.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"brainbuddy/focusws/pkg/auth"
	"brainbuddy/focusws/pkg/config"
	"brainbuddy/focusws/pkg/frames"
	"brainbuddy/focusws/pkg/hub"
	"brainbuddy/focusws/pkg/inference"
	"brainbuddy/focusws/pkg/log"
	"brainbuddy/focusws/pkg/metrics"
	"brainbuddy/focusws/pkg/semaphore"
	"brainbuddy/focusws/pkg/store"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// Path is the route the handler is mounted on.
const Path = "/ws/real-time"

// maxFrameSize bounds a single camera frame.
const maxFrameSize = 4 << 20

// TokenVerifier decides whether a token pair may open a session.
type TokenVerifier interface {
	Verify(ctx context.Context, access, refresh, user string) (auth.Verdict, error)
}

// ScoreRecorder persists the outcome of a session.
type ScoreRecorder interface {
	InsertDaily(ctx context.Context, rec store.DailyRecord) error
}

// Options wires the handler to its collaborators. Frames and Sessions may
// be nil. A nil Fallback answers non-WebSocket requests with 404.
type Options struct {
	Config    *config.Realtime
	Verifier  TokenVerifier
	Scores    ScoreRecorder
	Hub       *hub.Hub
	Estimator inference.Estimator
	Frames    *frames.Writer
	Sessions  *semaphore.SessionSemaphore
	Logger    *log.Logger
	Fallback  http.Handler
}

// Handler upgrades authenticated requests to focus tracking sessions.
type Handler struct {
	Options

	running sync.WaitGroup
}

// NewHandler returns a Handler using opts.
func NewHandler(opts Options) *Handler {
	if opts.Hub == nil {
		opts.Hub = hub.New()
	}
	if opts.Estimator == nil {
		opts.Estimator = inference.Static{Focused: true}
	}
	return &Handler{Options: opts}
}

type errorDetail struct {
	Detail string `json:"detail"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !isUpgrade(r) {
		if h.Fallback != nil {
			h.Fallback.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
		return
	}

	access := cookieValue(r, h.Config.AccessCookie)
	if access == "" {
		h.refuse(w, http.StatusForbidden, "None Access Token", "no_access")
		return
	}
	refresh := cookieValue(r, h.Config.RefreshCookie)
	if refresh == "" {
		h.refuse(w, http.StatusForbidden, "None Refresh Token", "no_refresh")
		return
	}
	user := r.URL.Query().Get("user_name")
	if user == "" {
		h.refuse(w, http.StatusForbidden, "None User Name", "no_user")
		return
	}

	if !h.Sessions.TryAcquire() {
		h.refuse(w, http.StatusServiceUnavailable, http.StatusText(http.StatusServiceUnavailable), "busy")
		return
	}
	defer h.Sessions.Release()

	h.running.Add(1)
	defer h.running.Done()

	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.Logger.ErrorMsg("websocket.Accept(): %s\n", err)
		return
	}
	defer c.CloseNow()
	c.SetReadLimit(maxFrameSize)

	defer func() {
		if r := recover(); r != nil {
			h.Logger.ErrorMsg("Session panic: %v\n", r)
		}
	}()

	ctx := r.Context()
	verdict, err := h.Verifier.Verify(ctx, access, refresh, user)
	if verdict == "" {
		h.Logger.ErrorMsg("Verifying tokens of %s: %s\n", user, err)
		_ = c.Close(websocket.StatusInternalError, "internal error")
		return
	}
	if err != nil {
		h.Logger.ErrorMsg("Verifying tokens of %s: %s\n", user, err)
	}
	metrics.Verdicts.WithLabelValues(string(verdict)).Inc()

	if rej, refused := verdict.Rejection(); refused {
		h.Logger.VerboseMsg("Refusing %s from %s: %s", user, r.RemoteAddr, verdict)
		_ = wsjson.Write(ctx, c, rej)
		_ = c.Close(websocket.StatusCode(rej.Code), rej.Message)
		return
	}

	h.Logger.InfoMsg("Session of %s from %s opened\n", user, r.RemoteAddr)
	s := &session{
		h:        h,
		ws:       c,
		user:     user,
		subject:  queryOr(r, "subject", "unknown"),
		location: queryOr(r, "location", "unknown"),
	}
	s.run(ctx)
	h.Logger.InfoMsg("Session of %s from %s closed\n", user, r.RemoteAddr)
}

// Wait blocks until every upgraded request has finished, including saving
// its score, or until ctx is done.
func (h *Handler) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.running.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Handler) refuse(w http.ResponseWriter, status int, detail, reason string) {
	metrics.Rejected.WithLabelValues(reason).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorDetail{Detail: detail})
}

func isUpgrade(r *http.Request) bool {
	if !strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return false
	}
	for _, v := range r.Header.Values("Connection") {
		for _, token := range strings.Split(v, ",") {
			if strings.EqualFold(strings.TrimSpace(token), "upgrade") {
				return true
			}
		}
	}
	return false
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

func queryOr(r *http.Request, key, def string) string {
	if v := r.URL.Query().Get(key); v != "" {
		return v
	}
	return def
}
