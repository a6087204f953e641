package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestNewFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "irccd.log")
	log := New(Options{Sink: SinkFile, Path: path})
	log.Info().Str("server", "freenode").Msg("connected")

	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(body), &fields); err != nil {
		t.Fatalf("log line is not a JSON object: %v (%q)", err, body)
	}
	if fields["server"] != "freenode" || fields["message"] != "connected" {
		t.Fatalf("unexpected fields: %+v", fields)
	}
}

func TestForPluginAndForServerTagging(t *testing.T) {
	path := filepath.Join(t.TempDir(), "irccd.log")
	base := New(Options{Sink: SinkFile, Path: path})

	ForPlugin(base, "hangman").Warn().Msg("plugin warning")
	ForServer(base, "freenode").Debug().Msg("server debug, suppressed by default level")

	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	lines := bytes.Split(bytes.TrimSpace(body), []byte("\n"))
	if len(lines) != 1 {
		t.Fatalf("expected only the warn line at default InfoLevel, got %d lines: %q", len(lines), body)
	}
	var fields map[string]any
	if err := json.Unmarshal(lines[0], &fields); err != nil {
		t.Fatalf("log line is not a JSON object: %v", err)
	}
	if fields["plugin"] != "hangman" {
		t.Fatalf("unexpected fields: %+v", fields)
	}
}

func TestNewVerboseEnablesDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "irccd.log")
	log := New(Options{Sink: SinkFile, Path: path, Verbose: true})
	log.Debug().Msg("debug line")

	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		t.Fatal("expected a debug line to be written when Verbose is set")
	}
}
