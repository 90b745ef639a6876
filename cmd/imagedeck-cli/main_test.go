package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newFakeDaemon(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": "ok", "connected": true})
	})
	mux.HandleFunc("/api/version", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"version": "1.2.3"})
	})
	mux.HandleFunc("/api/session/queue", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"queue": map[string]any{
				"pending": []map[string]any{
					{"id": "abc", "status": "running", "progress": 40, "prompt": "a harbor"},
				},
				"queue_remaining": 1,
			},
			"connected": true,
		})
	})
	mux.HandleFunc("/api/jobs/status", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]string{
			{"id": "backend-scan", "name": "Backend Scan", "status": "idle"},
		})
	})
	mux.HandleFunc("/api/session/generate", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"prompt_id": "xyz", "number": 3})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func runCommand(t *testing.T, server *httptest.Server, args ...string) string {
	t.Helper()
	cmd := newRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(append(args, "--server", server.URL))
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Command %v failed: %v", args, err)
	}
	return out.String()
}

func TestStatusCommand(t *testing.T) {
	server := newFakeDaemon(t)
	out := runCommand(t, server, "status")
	if !strings.Contains(out, "1.2.3") {
		t.Errorf("Expected version in output, got:\n%s", out)
	}
	if !strings.Contains(out, "ok") {
		t.Errorf("Expected health status in output, got:\n%s", out)
	}
}

func TestQueueCommand(t *testing.T) {
	server := newFakeDaemon(t)
	out := runCommand(t, server, "queue")
	if !strings.Contains(out, "a harbor") || !strings.Contains(out, "40%") {
		t.Errorf("Expected pending task in output, got:\n%s", out)
	}
}

func TestJobsCommand(t *testing.T) {
	server := newFakeDaemon(t)
	out := runCommand(t, server, "jobs")
	if !strings.Contains(out, "backend-scan") {
		t.Errorf("Expected job listing, got:\n%s", out)
	}
}

func TestGenerateCommand(t *testing.T) {
	server := newFakeDaemon(t)
	out := runCommand(t, server, "generate", "a quiet harbor", "--steps", "28")
	if !strings.Contains(out, "xyz") {
		t.Errorf("Expected prompt id in output, got:\n%s", out)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("Expected untouched string, got %q", got)
	}
	long := strings.Repeat("x", 20)
	if got := truncate(long, 10); got != "xxxxxxx..." {
		t.Errorf("Unexpected truncation: %q", got)
	}
}
