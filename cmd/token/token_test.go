package token

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"brainbuddy/focusws/pkg/auth"
	"brainbuddy/focusws/pkg/blacklist"
	"brainbuddy/focusws/pkg/config"
	"brainbuddy/focusws/pkg/store"
)

func TestGetCommand(t *testing.T) {
	t.Parallel()

	cmd := GetCommand()
	if cmd == nil {
		t.Fatal("GetCommand() returned nil")
	}
	if cmd.Name != "token" {
		t.Errorf("command name = %q; want %q", cmd.Name, "token")
	}
	if cmd.Action == nil {
		t.Fatal("command action should not be nil")
	}
}

func testConfig(t *testing.T) *config.Realtime {
	t.Helper()
	return &config.Realtime{
		JWTSecret:         "test-secret",
		JWTAlgorithm:      "HS256",
		Issuer:            "KSEB_04",
		AccessCookie:      "access",
		RefreshCookie:     "refresh",
		AccessType:        "queen",
		RefreshType:       "nevercry",
		AccessTTLSeconds:  900,
		RefreshTTLSeconds: 3600,
		DBPath:            filepath.Join(t.TempDir(), "token.db"),
	}
}

func TestIssue(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	var out bytes.Buffer
	target := "ws://localhost:9001/ws/real-time?user_name=alice"

	if err := issue(context.Background(), &out, cfg, "alice", target); err != nil {
		t.Fatalf("issue() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("output has %d lines; want 3:\n%s", len(lines), out.String())
	}
	access, ok := strings.CutPrefix(lines[0], "access=")
	if !ok {
		t.Fatalf("first line = %q; want access cookie", lines[0])
	}
	refresh, ok := strings.CutPrefix(lines[1], "refresh=")
	if !ok {
		t.Fatalf("second line = %q; want refresh cookie", lines[1])
	}
	if lines[2] != target {
		t.Errorf("third line = %q; want %q", lines[2], target)
	}

	// the printed pair must open a session
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	defer st.Close()

	verdict, err := auth.NewVerifier(cfg, st, blacklist.NewMemory()).Verify(context.Background(), access, refresh, "alice")
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if verdict != auth.Valid {
		t.Errorf("Verify() = %s; want valid", verdict)
	}
}

func TestIssue_EmptyUser(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	if err := issue(context.Background(), &out, testConfig(t), "", "ws://x"); err == nil {
		t.Error("issue() should reject an empty user")
	}
	if out.Len() != 0 {
		t.Errorf("nothing should be printed on error, got %q", out.String())
	}
}
