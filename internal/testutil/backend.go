package testutil

import (
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"imagedeck/internal/models"
)

// MockBackend is a stand-in for the workbench backend. Tests mutate its
// fields to shape the responses, and inspect the call counters afterwards.
type MockBackend struct {
	mu            sync.Mutex
	Images        []*models.ImageRecord
	Filters       models.FilterOptions
	Queue         models.QueueSnapshot
	ScanCalls     int
	GenerateCalls []map[string]any
	server        *httptest.Server
}

// NewMockBackend starts a mock backend server. It is shut down
// automatically when the test completes.
func NewMockBackend(t *testing.T) *MockBackend {
	t.Helper()

	mb := &MockBackend{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/images", mb.handleImages)
	mux.HandleFunc("/api/filters", func(w http.ResponseWriter, r *http.Request) {
		mb.mu.Lock()
		defer mb.mu.Unlock()
		json.NewEncoder(w).Encode(mb.Filters)
	})
	mux.HandleFunc("/api/scan", func(w http.ResponseWriter, r *http.Request) {
		mb.mu.Lock()
		mb.ScanCalls++
		mb.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/api/comfy/queue", func(w http.ResponseWriter, r *http.Request) {
		mb.mu.Lock()
		defer mb.mu.Unlock()
		json.NewEncoder(w).Encode(mb.Queue)
	})
	mux.HandleFunc("/api/comfy/status", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"connected": true})
	})
	mux.HandleFunc("/api/comfy/generate", func(w http.ResponseWriter, r *http.Request) {
		var params map[string]any
		json.NewDecoder(r.Body).Decode(&params)
		mb.mu.Lock()
		mb.GenerateCalls = append(mb.GenerateCalls, params)
		mb.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{"prompt_id": "mock-prompt", "number": 1})
	})
	mux.HandleFunc("/api/ai/optimize", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"chunk\": \"a moody \"}\n\n")
		fmt.Fprint(w, "data: {\"chunk\": \"harbor scene\"}\n\n")
		fmt.Fprint(w, "data: {\"done\": true}\n\n")
	})
	mux.HandleFunc("/api/image/raw", func(w http.ResponseWriter, r *http.Request) {
		img := image.NewRGBA(image.Rect(0, 0, 64, 48))
		w.Header().Set("Content-Type", "image/png")
		png.Encode(w, img)
	})

	mb.server = httptest.NewServer(mux)
	t.Cleanup(mb.server.Close)
	return mb
}

// URL returns the mock server's base URL.
func (mb *MockBackend) URL() string { return mb.server.URL }

// LastGenerate returns the most recent generate request body, or nil.
func (mb *MockBackend) LastGenerate() map[string]any {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	if len(mb.GenerateCalls) == 0 {
		return nil
	}
	return mb.GenerateCalls[len(mb.GenerateCalls)-1]
}

// SetImages replaces the image listing served by /api/images.
func (mb *MockBackend) SetImages(images []*models.ImageRecord) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.Images = images
}

// SetQueue replaces the queue snapshot served by /api/comfy/queue.
func (mb *MockBackend) SetQueue(q models.QueueSnapshot) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.Queue = q
}

func (mb *MockBackend) handleImages(w http.ResponseWriter, r *http.Request) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	json.NewEncoder(w).Encode(models.ImageList{
		Total:   len(mb.Images),
		Page:    1,
		Images:  mb.Images,
		HasMore: false,
	})
}
