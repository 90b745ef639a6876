package api_test

import (
	"bytes"
	"encoding/json"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"testing"

	"imagedeck/internal/models"
	"imagedeck/internal/testutil"
)

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestGalleryEndpoints(t *testing.T) {
	mock := testutil.NewMockBackend(t)
	mock.SetImages([]*models.ImageRecord{
		{FilePath: "/out/a.png", FileName: "a.png"},
		{FilePath: "/out/b.png", FileName: "b.png"},
	})
	server, _ := testutil.SetupTestServer(t, mock.URL())
	router := server.Router()

	// The gallery starts empty until the first refresh.
	rr := doRequest(t, router, "GET", "/api/session/gallery", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusOK)
	}
	var state struct {
		Images   []*models.ImageRecord `json:"images"`
		Selected *models.ImageRecord   `json:"selected"`
		HasMore  bool                  `json:"has_more"`
	}
	json.Unmarshal(rr.Body.Bytes(), &state)
	if len(state.Images) != 0 {
		t.Errorf("Expected empty gallery before refresh, got %d images", len(state.Images))
	}

	rr = doRequest(t, router, "POST", "/api/session/refresh", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("refresh returned %v", rr.Code)
	}
	json.Unmarshal(rr.Body.Bytes(), &state)
	if len(state.Images) != 2 {
		t.Fatalf("Expected 2 images after refresh, got %d", len(state.Images))
	}
	// The first image becomes the selection.
	if state.Selected == nil || state.Selected.FilePath != "/out/a.png" {
		t.Errorf("Expected /out/a.png selected, got %+v", state.Selected)
	}
}

func TestSelectEndpoint(t *testing.T) {
	mock := testutil.NewMockBackend(t)
	mock.SetImages([]*models.ImageRecord{
		{FilePath: "/out/a.png"},
		{FilePath: "/out/b.png"},
	})
	server, _ := testutil.SetupTestServer(t, mock.URL())
	router := server.Router()

	doRequest(t, router, "POST", "/api/session/refresh", nil)

	rr := doRequest(t, router, "POST", "/api/session/select", map[string]string{"path": "/out/b.png"})
	if rr.Code != http.StatusOK {
		t.Fatalf("select returned %v: %s", rr.Code, rr.Body.String())
	}
	var selected models.ImageRecord
	json.Unmarshal(rr.Body.Bytes(), &selected)
	if selected.FilePath != "/out/b.png" {
		t.Errorf("Expected /out/b.png, got %q", selected.FilePath)
	}

	rr = doRequest(t, router, "POST", "/api/session/select", map[string]string{"path": "/out/missing.png"})
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown path, got %v", rr.Code)
	}

	rr = doRequest(t, router, "POST", "/api/session/select", map[string]string{})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing path, got %v", rr.Code)
	}
}

func TestFilterEndpoints(t *testing.T) {
	mock := testutil.NewMockBackend(t)
	server, _ := testutil.SetupTestServer(t, mock.URL())
	router := server.Router()

	rr := doRequest(t, router, "POST", "/api/session/filter", map[string]string{
		"keyword": "harbor",
		"folder":  "landscapes",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("filter returned %v: %s", rr.Code, rr.Body.String())
	}

	rr = doRequest(t, router, "GET", "/api/session/filter", nil)
	var filter struct {
		Keyword string
		Folder  string
	}
	json.Unmarshal(rr.Body.Bytes(), &filter)
	if filter.Keyword != "harbor" || filter.Folder != "landscapes" {
		t.Errorf("Filter did not round trip: %+v", filter)
	}
}

func TestQueueEndpoint(t *testing.T) {
	mock := testutil.NewMockBackend(t)
	mock.SetQueue(models.QueueSnapshot{QueueRemaining: 2})
	server, _ := testutil.SetupTestServer(t, mock.URL())
	router := server.Router()

	// No poll has happened yet, so the queue is empty but the
	// endpoint still answers.
	rr := doRequest(t, router, "GET", "/api/session/queue", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("queue returned %v", rr.Code)
	}
}

func TestThumbnailEndpoint(t *testing.T) {
	mock := testutil.NewMockBackend(t)
	server, _ := testutil.SetupTestServer(t, mock.URL())
	router := server.Router()

	rr := doRequest(t, router, "GET", "/api/session/image/thumb?path=/out/a.png&mtime=100&width=32", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("thumb returned %v: %s", rr.Code, rr.Body.String())
	}
	img, err := jpeg.Decode(bytes.NewReader(rr.Body.Bytes()))
	if err != nil {
		t.Fatalf("Thumbnail is not a valid JPEG: %v", err)
	}
	if img.Bounds().Dx() != 32 {
		t.Errorf("Expected width 32, got %d", img.Bounds().Dx())
	}

	rr = doRequest(t, router, "GET", "/api/session/image/thumb", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing path, got %v", rr.Code)
	}
}

func TestRawImageEndpoint(t *testing.T) {
	mock := testutil.NewMockBackend(t)
	server, _ := testutil.SetupTestServer(t, mock.URL())
	router := server.Router()

	rr := doRequest(t, router, "GET", "/api/session/image/raw?path=/out/a.png", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("raw returned %v", rr.Code)
	}
	if rr.Body.Len() == 0 {
		t.Error("Expected image bytes in response")
	}
}
