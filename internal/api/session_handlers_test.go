package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"imagedeck/internal/jobs"
	"imagedeck/internal/models"
	"imagedeck/internal/testutil"
)

func TestParamsEndpoints(t *testing.T) {
	mock := testutil.NewMockBackend(t)
	server, _ := testutil.SetupTestServer(t, mock.URL())
	router := server.Router()

	rr := doRequest(t, router, "GET", "/api/session/params", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("params returned %v", rr.Code)
	}
	var params models.GenParams
	json.Unmarshal(rr.Body.Bytes(), &params)
	if params.Steps != 20 || params.Sampler != "euler" {
		t.Errorf("Expected defaults before saving, got %+v", params)
	}

	params.Prompt = "a quiet harbor at dawn"
	params.Steps = 28
	rr = doRequest(t, router, "PUT", "/api/session/params", params)
	if rr.Code != http.StatusOK {
		t.Fatalf("save params returned %v: %s", rr.Code, rr.Body.String())
	}

	rr = doRequest(t, router, "GET", "/api/session/params", nil)
	json.Unmarshal(rr.Body.Bytes(), &params)
	if params.Prompt != "a quiet harbor at dawn" || params.Steps != 28 {
		t.Errorf("Params did not round trip: %+v", params)
	}
}

func TestSettingsEndpoints(t *testing.T) {
	mock := testutil.NewMockBackend(t)
	server, _ := testutil.SetupTestServer(t, mock.URL())
	router := server.Router()

	rr := doRequest(t, router, "GET", "/api/session/settings", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("settings returned %v", rr.Code)
	}
	var settings struct {
		WheelMode  string `json:"wheel_mode"`
		RandomSeed bool   `json:"random_seed"`
		Theme      string `json:"theme"`
	}
	json.Unmarshal(rr.Body.Bytes(), &settings)
	if settings.WheelMode != "zoom" || !settings.RandomSeed || settings.Theme != "dark" {
		t.Errorf("Unexpected default settings: %+v", settings)
	}

	rr = doRequest(t, router, "PUT", "/api/session/settings", map[string]interface{}{
		"wheel_mode":   "navigate",
		"random_seed":  false,
		"theme":        "light",
		"panel_widths": map[string]int{"gallery": 320},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("save settings returned %v: %s", rr.Code, rr.Body.String())
	}
	json.Unmarshal(rr.Body.Bytes(), &settings)
	if settings.WheelMode != "navigate" || settings.RandomSeed || settings.Theme != "light" {
		t.Errorf("Settings did not round trip: %+v", settings)
	}

	rr = doRequest(t, router, "PUT", "/api/session/settings", map[string]string{"wheel_mode": "spin"})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid wheel mode, got %v", rr.Code)
	}
}

func TestHistoryEndpoints(t *testing.T) {
	mock := testutil.NewMockBackend(t)
	server, _ := testutil.SetupTestServer(t, mock.URL())
	router := server.Router()

	for _, text := range []string{"first", "second"} {
		rr := doRequest(t, router, "POST", "/api/session/history", map[string]string{
			"polarity": "positive",
			"text":     text,
		})
		if rr.Code != http.StatusOK {
			t.Fatalf("add history returned %v: %s", rr.Code, rr.Body.String())
		}
	}

	rr := doRequest(t, router, "GET", "/api/session/history?polarity=positive", nil)
	var payload struct {
		History []string `json:"history"`
	}
	json.Unmarshal(rr.Body.Bytes(), &payload)
	if len(payload.History) != 2 || payload.History[0] != "second" {
		t.Errorf("Unexpected history: %v", payload.History)
	}

	rr = doRequest(t, router, "POST", "/api/session/history", map[string]string{
		"polarity": "sideways",
		"text":     "x",
	})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid polarity, got %v", rr.Code)
	}

	rr = doRequest(t, router, "DELETE", "/api/session/history?polarity=positive", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("clear history returned %v", rr.Code)
	}
	rr = doRequest(t, router, "GET", "/api/session/history?polarity=positive", nil)
	payload.History = nil
	json.Unmarshal(rr.Body.Bytes(), &payload)
	if len(payload.History) != 0 {
		t.Errorf("Expected empty history after clear, got %v", payload.History)
	}
}

func TestGenerateEndpoint(t *testing.T) {
	mock := testutil.NewMockBackend(t)
	server, _ := testutil.SetupTestServer(t, mock.URL())
	router := server.Router()

	rr := doRequest(t, router, "POST", "/api/session/generate", map[string]interface{}{
		"prompt":          "a quiet harbor at dawn",
		"negative_prompt": "blurry",
		"seed":            42,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("generate returned %v: %s", rr.Code, rr.Body.String())
	}
	var result struct {
		PromptID string `json:"prompt_id"`
	}
	json.Unmarshal(rr.Body.Bytes(), &result)
	if result.PromptID != "mock-prompt" {
		t.Errorf("Expected mock-prompt, got %q", result.PromptID)
	}

	// Random seed is on by default, so the submitted seed is replaced.
	sent := mock.LastGenerate()
	if sent == nil {
		t.Fatal("Backend never received a generate request")
	}
	if seed, ok := sent["seed"].(float64); !ok || seed != -1 {
		t.Errorf("Expected seed -1 with random seed enabled, got %v", sent["seed"])
	}
	// Defaults were filled in before submitting.
	if steps, ok := sent["steps"].(float64); !ok || steps != 20 {
		t.Errorf("Expected default steps 20, got %v", sent["steps"])
	}

	// The prompts land in the history.
	rr = doRequest(t, router, "GET", "/api/session/history?polarity=positive", nil)
	var payload struct {
		History []string `json:"history"`
	}
	json.Unmarshal(rr.Body.Bytes(), &payload)
	if len(payload.History) != 1 || payload.History[0] != "a quiet harbor at dawn" {
		t.Errorf("Expected prompt in history, got %v", payload.History)
	}

	// With random seed off, the submitted seed goes through untouched.
	doRequest(t, router, "PUT", "/api/session/settings", map[string]interface{}{"random_seed": false})
	doRequest(t, router, "POST", "/api/session/generate", map[string]interface{}{
		"prompt": "second try",
		"seed":   42,
	})
	sent = mock.LastGenerate()
	if seed, ok := sent["seed"].(float64); !ok || seed != 42 {
		t.Errorf("Expected seed 42 with random seed disabled, got %v", sent["seed"])
	}
}

func TestCancelEndpoint(t *testing.T) {
	mock := testutil.NewMockBackend(t)
	server, _ := testutil.SetupTestServer(t, mock.URL())
	router := server.Router()

	rr := doRequest(t, router, "POST", "/api/session/cancel", map[string]string{})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing prompt_id, got %v", rr.Code)
	}
}

func TestJobsEndpoints(t *testing.T) {
	mock := testutil.NewMockBackend(t)
	server, app := testutil.SetupTestServer(t, mock.URL())
	jobs.RegisterAll(app)
	router := server.Router()

	rr := doRequest(t, router, "GET", "/api/jobs/status", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("jobs status returned %v", rr.Code)
	}
	var statuses []*jobs.JobStatus
	json.Unmarshal(rr.Body.Bytes(), &statuses)
	if len(statuses) != 2 {
		t.Errorf("Expected 2 registered jobs, got %d", len(statuses))
	}

	rr = doRequest(t, router, "POST", "/api/jobs/run", map[string]string{"job_id": jobs.JobBackendScan})
	if rr.Code != http.StatusAccepted {
		t.Fatalf("run job returned %v: %s", rr.Code, rr.Body.String())
	}

	// Wait for the job to finish before submitting another.
	deadline := time.After(2 * time.Second)
	for {
		var done bool
		for _, s := range app.JobManager().GetStatus() {
			if s.ID == jobs.JobBackendScan && (s.Status == "success" || s.Status == "failed") {
				done = true
			}
		}
		if done {
			break
		}
		select {
		case <-deadline:
			t.Fatal("job did not finish in time")
		case <-time.After(10 * time.Millisecond):
		}
	}

	rr = doRequest(t, router, "POST", "/api/jobs/run", map[string]string{"job_id": "nope"})
	if rr.Code != http.StatusConflict {
		t.Errorf("Expected 409 for unknown job, got %v", rr.Code)
	}
}

func TestViewerOptionsEndpoint(t *testing.T) {
	mock := testutil.NewMockBackend(t)
	server, _ := testutil.SetupTestServer(t, mock.URL())
	router := server.Router()

	rr := doRequest(t, router, "GET", "/api/session/viewer-options", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("viewer-options returned %v", rr.Code)
	}
	var opts map[string]float64
	json.Unmarshal(rr.Body.Bytes(), &opts)
	// The test config leaves the viewer section empty, so the stock
	// constants come through.
	if opts["max_scale"] != 20 || opts["swipe_threshold"] != 50 || opts["edge_swipe_threshold"] != 65 {
		t.Errorf("Unexpected viewer options: %v", opts)
	}
}

func TestOptimizeEndpoint(t *testing.T) {
	mock := testutil.NewMockBackend(t)
	server, _ := testutil.SetupTestServer(t, mock.URL())
	router := server.Router()

	rr := doRequest(t, router, "POST", "/api/session/optimize", map[string]string{
		"mode":       "generate",
		"user_input": "harbor",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("optimize returned %v: %s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	for _, want := range []string{`"chunk":"a moody "`, `"chunk":"harbor scene"`, `"done":true`} {
		if !bytes.Contains([]byte(body), []byte(want)) {
			t.Errorf("Expected %s in stream, got:\n%s", want, body)
		}
	}
}

func TestVersionAndHealth(t *testing.T) {
	mock := testutil.NewMockBackend(t)
	server, _ := testutil.SetupTestServer(t, mock.URL())
	router := server.Router()

	rr := doRequest(t, router, "GET", "/api/version", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("version returned %v", rr.Code)
	}
	var version struct {
		Version string `json:"version"`
	}
	json.Unmarshal(rr.Body.Bytes(), &version)
	if version.Version != "test" {
		t.Errorf("Expected version test, got %q", version.Version)
	}

	rr = doRequest(t, router, "GET", "/api/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("health returned %v", rr.Code)
	}
}
