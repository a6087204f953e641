package hook

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/irccd/irccd/internal/event"
	"github.com/rs/zerolog"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "hook.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write hook script: %v", err)
	}
	return path
}

func TestRunPassesArgvInDeclarationOrder(t *testing.T) {
	out := filepath.Join(t.TempDir(), "argv.txt")
	script := writeScript(t, `printf '%s\n' "$@" > `+out+`
`)
	h := Hook{Name: "capture", Exec: script}
	ev := event.NewJoin("freenode", "alice", "#general")

	Run(context.Background(), h, ev, zerolog.Nop())

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read captured argv: %v", err)
	}
	want := "onJoin\nfreenode\nalice\n#general\n"
	if string(got) != want {
		t.Fatalf("argv = %q, want %q", got, want)
	}
}

func TestArgsForOrdering(t *testing.T) {
	cases := []struct {
		ev   event.Event
		want []string
	}{
		{event.NewConnect("s"), []string{"s"}},
		{event.NewKick("s", "a", "#c", "b", "spam"), []string{"s", "a", "#c", "b", "spam"}},
		{event.NewNames("s", "#c", []string{"a", "b"}), []string{"s", "#c", "a,b"}},
		{event.NewNick("s", "old", "new"), []string{"s", "old", "new"}},
	}
	for _, c := range cases {
		got := ArgsFor(c.ev)
		if len(got) != len(c.want) {
			t.Fatalf("ArgsFor(%T) = %v, want %v", c.ev, got, c.want)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Fatalf("ArgsFor(%T)[%d] = %q, want %q", c.ev, i, got[i], c.want[i])
			}
		}
	}
}

func TestRunDoesNotBlockOnFailingHook(t *testing.T) {
	script := writeScript(t, "exit 1\n")
	h := Hook{Name: "failing", Exec: script}

	done := make(chan struct{})
	go func() {
		Run(context.Background(), h, event.NewConnect("freenode"), zerolog.Nop())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return for a failing hook")
	}
}
