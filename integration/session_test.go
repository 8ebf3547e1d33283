// Package integration runs complete realtime sessions against the hello
// server with every component wired the way the serve command wires them.
package integration

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"brainbuddy/focusws/pkg/auth"
	"brainbuddy/focusws/pkg/blacklist"
	"brainbuddy/focusws/pkg/config"
	"brainbuddy/focusws/pkg/format"
	"brainbuddy/focusws/pkg/frames"
	"brainbuddy/focusws/pkg/hub"
	"brainbuddy/focusws/pkg/inference"
	"brainbuddy/focusws/pkg/log"
	"brainbuddy/focusws/pkg/realtime"
	"brainbuddy/focusws/pkg/semaphore"
	"brainbuddy/focusws/pkg/server"
	"brainbuddy/focusws/pkg/store"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

func pngFrame(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

// inferenceStub alternates between focused and unfocused answers.
func inferenceStub(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req inference.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		n := calls.Add(1)
		focus := 0
		if n%2 == 1 {
			focus = 1
		}
		_ = json.NewEncoder(w).Encode(inference.Response{Focus: focus, Prob: 0.9})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestRealtimeSession_TLS(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	dir := t.TempDir()
	rtCfg := &config.Realtime{
		JWTSecret:         "integration-secret",
		JWTAlgorithm:      "HS256",
		Issuer:            "KSEB_04",
		AccessCookie:      "access",
		RefreshCookie:     "refresh",
		AccessType:        "queen",
		RefreshType:       "nevercry",
		AccessTTLSeconds:  900,
		RefreshTTLSeconds: 3600,
		DBPath:            filepath.Join(dir, "brainbuddy.db"),
		Frames:            3,
		FrameTimeout:      2 * time.Second,
		FrameDir:          filepath.Join(dir, "frames"),
		MaxSessions:       2,
	}
	if errs := rtCfg.Validate(); len(errs) > 0 {
		t.Fatalf("Validate() = %v", errs)
	}

	st, err := store.Open(rtCfg.DBPath)
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	defer st.Close()

	stub, calls := inferenceStub(t)
	logger := log.New(io.Discard, true)
	h := hub.New()

	rt := realtime.NewHandler(realtime.Options{
		Config:    rtCfg,
		Verifier:  auth.NewVerifier(rtCfg, st, blacklist.NewMemory()),
		Scores:    st,
		Hub:       h,
		Estimator: inference.NewHTTP(stub.URL, stub.Client()),
		Frames:    frames.NewWriter(rtCfg.FrameDir, logger),
		Sessions:  semaphore.New(rtCfg.MaxSessions),
		Logger:    logger,
		Fallback:  server.Hello(),
	})

	srv := server.New(&config.Server{Host: "127.0.0.1", Port: 0, SSL: true, Timeout: time.Second}, rt, logger)
	srv.OnShutdown(func() { h.CloseAll(websocket.StatusGoingAway, "server shutting down") })
	if err := srv.Listen(); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ctx) }()

	pair, err := auth.NewIssuer(rtCfg).IssueAndRecord(ctx, "alice", st)
	if err != nil {
		t.Fatalf("IssueAndRecord() error = %v", err)
	}

	client := &http.Client{Transport: &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
	}}
	header := http.Header{}
	header.Set("Cookie", fmt.Sprintf("access=%s; refresh=%s", pair.Access, pair.Refresh))

	target := format.WebSocketURL(true, "127.0.0.1", srv.Port(), realtime.Path, url.Values{
		"user_name": {"alice"},
		"subject":   {"physics"},
		"location":  {"library"},
	})

	sessionCtx, sessionCancel := context.WithTimeout(ctx, 10*time.Second)
	defer sessionCancel()
	c, _, err := websocket.Dial(sessionCtx, target, &websocket.DialOptions{HTTPClient: client, HTTPHeader: header})
	if err != nil {
		t.Fatalf("websocket.Dial(%s) error = %v", target, err)
	}
	defer c.CloseNow()

	frame := pngFrame(t)
	for batch := 0; batch < 2; batch++ {
		var greeting string
		if err := wsjson.Read(sessionCtx, c, &greeting); err != nil || greeting != "Hello" {
			t.Fatalf("batch %d greeting = %q, %v", batch, greeting, err)
		}
		for i := 0; i < rtCfg.Frames; i++ {
			if err := c.Write(sessionCtx, websocket.MessageBinary, frame); err != nil {
				t.Fatalf("Write() error = %v", err)
			}
		}
	}

	var greeting string
	if err := wsjson.Read(sessionCtx, c, &greeting); err != nil {
		t.Fatalf("third greeting: %v", err)
	}
	if err := c.Close(websocket.StatusNormalClosure, "done"); err != nil {
		t.Logf("Close() = %v", err)
	}

	var recs []store.DailyRecord
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) && len(recs) == 0 {
		recs, err = st.ListDaily(context.Background(), "alice")
		if err != nil {
			t.Fatalf("ListDaily() error = %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	if len(recs) != 1 {
		t.Fatalf("len(records) = %d; want 1", len(recs))
	}
	if recs[0].Score != 50 || recs[0].Subject != "physics" || recs[0].Location != "library" {
		t.Errorf("record = %+v; want score 50 for physics at library", recs[0])
	}
	if calls.Load() != 2 {
		t.Errorf("inference calls = %d; want 2", calls.Load())
	}

	total, err := st.GetTotalScore(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetTotalScore() error = %v", err)
	}
	if total.TotalCount != 1 {
		t.Errorf("TotalCount = %d; want 1", total.TotalCount)
	}

	userDir := filepath.Join(rtCfg.FrameDir, "alice")
	batches, err := os.ReadDir(userDir)
	if err != nil {
		t.Fatalf("reading %s: %v", userDir, err)
	}
	if len(batches) == 0 {
		t.Error("frames should have been written to disk")
	}

	cancel()
	select {
	case err := <-serveErr:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve() did not return")
	}
}
