package jobs_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"imagedeck/internal/backend"
	"imagedeck/internal/config"
	"imagedeck/internal/gallery"
	"imagedeck/internal/jobs"
	"imagedeck/internal/models"
	"imagedeck/internal/websocket"
)

// newScanContext wires a job context against a mock backend so the
// registered jobs can be exercised end to end.
func newScanContext(t *testing.T, scanCalls *int32) *fakeJobContext {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/scan":
			atomic.AddInt32(scanCalls, 1)
			json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
		case "/api/images":
			json.NewEncoder(w).Encode(models.ImageList{
				Total:   1,
				Page:    1,
				Images:  []*models.ImageRecord{{FilePath: "/out/a.png", FileName: "a.png"}},
				HasMore: false,
			})
		case "/api/comfy/queue":
			json.NewEncoder(w).Encode(models.QueueSnapshot{})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	hub := websocket.NewHub()
	go hub.Run()

	client := backend.New(server.URL, time.Second)
	ctx := &fakeJobContext{
		cfg:     &config.Config{},
		ws:      hub,
		client:  client,
		gallery: gallery.New(client, hub, gallery.DefaultOptions()),
	}
	ctx.jobMgr = jobs.NewManager(ctx)
	jobs.RegisterAll(ctx)
	return ctx
}

func TestBackendScanJob(t *testing.T) {
	var scanCalls int32
	ctx := newScanContext(t, &scanCalls)

	if err := ctx.JobManager().RunJob(jobs.JobBackendScan, ctx); err != nil {
		t.Fatalf("RunJob failed: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		done := false
		for _, s := range ctx.JobManager().GetStatus() {
			if s.ID == jobs.JobBackendScan && s.Status == "success" {
				done = true
			}
		}
		if done {
			break
		}
		select {
		case <-deadline:
			t.Fatal("backend-scan job did not finish in time")
		case <-time.After(10 * time.Millisecond):
		}
	}

	if got := atomic.LoadInt32(&scanCalls); got != 1 {
		t.Errorf("Expected 1 scan call, got %d", got)
	}
	if len(ctx.Gallery().Images()) != 1 {
		t.Errorf("Expected gallery to hold 1 image after scan, got %d", len(ctx.Gallery().Images()))
	}
}

func TestGalleryRefreshJob(t *testing.T) {
	var scanCalls int32
	ctx := newScanContext(t, &scanCalls)

	if err := ctx.JobManager().RunJob(jobs.JobGalleryRefresh, ctx); err != nil {
		t.Fatalf("RunJob failed: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for len(ctx.Gallery().Images()) == 0 {
		select {
		case <-deadline:
			t.Fatal("gallery-refresh job did not populate the gallery in time")
		case <-time.After(10 * time.Millisecond):
		}
	}

	if got := atomic.LoadInt32(&scanCalls); got != 0 {
		t.Errorf("Refresh job should not trigger a backend scan, got %d calls", got)
	}
}
