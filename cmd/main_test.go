package main

import (
	"testing"
)

func TestNewCommand(t *testing.T) {
	t.Parallel()

	cmd := newCommand()

	if cmd.Action == nil {
		t.Fatal("root command must serve when no subcommand is given")
	}
	if len(cmd.Flags) == 0 {
		t.Error("root command should accept the serve flags")
	}

	expected := map[string]bool{"serve": false, "token": false, "version": false}
	for _, sub := range cmd.Commands {
		if _, ok := expected[sub.Name]; ok {
			expected[sub.Name] = true
		}
	}
	for name, found := range expected {
		if !found {
			t.Errorf("missing expected subcommand: %q", name)
		}
	}
}
