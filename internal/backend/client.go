// HTTP client for the gallery/ComfyUI backend. The backend is an
// external collaborator; everything here is a thin wrapper over its
// JSON contract.

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"imagedeck/internal/models"
)

// Client talks to the workbench backend.
type Client struct {
	client  *http.Client
	baseURL string
}

// New creates a new Client for the given base URL, e.g.
// "http://127.0.0.1:8000".
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// StatusError is returned for any non-2xx backend response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.Code, e.Body)
}

// ListQuery is the filter and pagination state for an image listing.
type ListQuery struct {
	Keyword  string
	Folder   string
	Model    string
	Lora     string
	Sort     string
	Page     int
	PageSize int
}

// ListImages fetches one page of the filtered image list.
func (c *Client) ListImages(ctx context.Context, q ListQuery) (*models.ImageList, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/images", nil)
	if err != nil {
		return nil, err
	}

	qs := req.URL.Query()
	qs.Add("keyword", q.Keyword)
	if q.Folder != "" {
		qs.Add("folder", q.Folder)
	}
	if q.Model != "" {
		qs.Add("model", q.Model)
	}
	if q.Lora != "" {
		qs.Add("lora", q.Lora)
	}
	if q.Sort != "" {
		qs.Add("sort", q.Sort)
	}
	if q.Page > 0 {
		qs.Add("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		qs.Add("page_size", strconv.Itoa(q.PageSize))
	}
	req.URL.RawQuery = qs.Encode()

	var list models.ImageList
	if err := c.doJSON(req, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetFilters fetches every available filter option.
func (c *Client) GetFilters(ctx context.Context) (*models.FilterOptions, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/filters", nil)
	if err != nil {
		return nil, err
	}
	var opts models.FilterOptions
	if err := c.doJSON(req, &opts); err != nil {
		return nil, err
	}
	return &opts, nil
}

// GetMetadata fetches the parsed generation metadata for one image.
func (c *Client) GetMetadata(ctx context.Context, path string) (*models.ImageMetadata, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/metadata", nil)
	if err != nil {
		return nil, err
	}
	qs := req.URL.Query()
	qs.Add("path", path)
	req.URL.RawQuery = qs.Encode()

	var meta models.ImageMetadata
	if err := c.doJSON(req, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// RawImage streams the original image bytes. The caller must close the
// returned reader.
func (c *Client) RawImage(ctx context.Context, path string) (io.ReadCloser, error) {
	return c.openImage(ctx, "/api/image/raw", path, 0)
}

// Thumbnail streams a backend-generated thumbnail of the given size.
func (c *Client) Thumbnail(ctx context.Context, path string, size int) (io.ReadCloser, error) {
	return c.openImage(ctx, "/api/image/thumb", path, size)
}

func (c *Client) openImage(ctx context.Context, endpoint, path string, size int) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+endpoint, nil)
	if err != nil {
		return nil, err
	}
	qs := req.URL.Query()
	qs.Add("path", path)
	if size > 0 {
		qs.Add("size", strconv.Itoa(size))
	}
	req.URL.RawQuery = qs.Encode()

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	return resp.Body, nil
}

// DeleteImage removes an image file through the backend.
func (c *Client) DeleteImage(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, "DELETE", c.baseURL+"/api/image", nil)
	if err != nil {
		return err
	}
	qs := req.URL.Query()
	qs.Add("path", path)
	req.URL.RawQuery = qs.Encode()

	var result struct {
		Success bool `json:"success"`
	}
	if err := c.doJSON(req, &result); err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("backend refused to delete %s", path)
	}
	return nil
}

// TriggerScan asks the backend to rescan its folders. Fire-and-forget:
// the response only acknowledges that a scan ran.
func (c *Client) TriggerScan(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/scan", nil)
	if err != nil {
		return err
	}
	var result struct {
		Success   bool `json:"success"`
		NewImages int  `json:"new_images"`
	}
	return c.doJSON(req, &result)
}

// ComfyStatus checks whether the backend can reach ComfyUI.
func (c *Client) ComfyStatus(ctx context.Context) (*models.ComfyStatus, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/comfy/status", nil)
	if err != nil {
		return nil, err
	}
	// The status payload is ComfyUI's own system_stats on success and
	// {"connected": false} on failure; only the flag matters here.
	var raw map[string]interface{}
	if err := c.doJSON(req, &raw); err != nil {
		return nil, err
	}
	if v, ok := raw["connected"].(bool); ok {
		return &models.ComfyStatus{Connected: v}, nil
	}
	return &models.ComfyStatus{Connected: true}, nil
}

// ComfyQueue fetches the current generation queue snapshot.
func (c *Client) ComfyQueue(ctx context.Context) (*models.QueueSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/comfy/queue", nil)
	if err != nil {
		return nil, err
	}
	var snap models.QueueSnapshot
	if err := c.doJSON(req, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// ComfyModels lists the checkpoint models ComfyUI has available.
func (c *Client) ComfyModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/comfy/models", nil)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := c.doJSON(req, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// SamplersSchedulers lists the sampler and scheduler names ComfyUI
// supports.
func (c *Client) SamplersSchedulers(ctx context.Context) (samplers, schedulers []string, err error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/comfy/samplers_schedulers", nil)
	if err != nil {
		return nil, nil, err
	}
	var result struct {
		Samplers   []string `json:"samplers"`
		Schedulers []string `json:"schedulers"`
	}
	if err := c.doJSON(req, &result); err != nil {
		return nil, nil, err
	}
	return result.Samplers, result.Schedulers, nil
}

// GenerateResult is the backend's acknowledgment of a submitted job.
type GenerateResult struct {
	PromptID string `json:"prompt_id"`
	Number   int    `json:"number"`
}

// Generate submits a generation job. A seed of -1 asks the backend to
// randomize it.
func (c *Client) Generate(ctx context.Context, params models.GenParams) (*GenerateResult, error) {
	req, err := c.postJSON(ctx, "/api/comfy/generate", params)
	if err != nil {
		return nil, err
	}
	var result GenerateResult
	if err := c.doJSON(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CancelTask removes one pending job from the queue.
func (c *Client) CancelTask(ctx context.Context, promptID string) error {
	req, err := c.postJSON(ctx, "/api/comfy/cancel_task", map[string]string{"prompt_id": promptID})
	if err != nil {
		return err
	}
	return c.doJSON(req, nil)
}

// Interrupt aborts the currently running job.
func (c *Client) Interrupt(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/comfy/interrupt", nil)
	if err != nil {
		return err
	}
	return c.doJSON(req, nil)
}

func (c *Client) postJSON(ctx context.Context, endpoint string, body interface{}) (*http.Request, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// doJSON executes the request and decodes the response into out (which
// may be nil to discard the body). Non-2xx responses become a
// *StatusError.
func (c *Client) doJSON(req *http.Request, out interface{}) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", req.URL.Path, err)
	}
	return nil
}
