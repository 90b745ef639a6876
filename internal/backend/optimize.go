// Pull-based client for the AI prompt optimization stream. The backend
// answers POST /api/ai/optimize with server-sent-event style lines
// ("data: {...}\n"); the consumer drives the stream by calling Next,
// so stopping is just not pulling anymore.

package backend

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// OptimizeRequest describes a prompt generation or optimization call.
// Mode is one of "generate", "optimize", "negative" or "image".
type OptimizeRequest struct {
	Mode           string `json:"mode"`
	UserInput      string `json:"user_input"`
	ExistingPrompt string `json:"existing_prompt,omitempty"`
	ImageB64       string `json:"image_b64,omitempty"`
	SystemPrompt   string `json:"system_prompt,omitempty"`
}

// OptimizeStream yields decoded text chunks from the backend. Next
// returns io.EOF once the stream signals completion.
type OptimizeStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	done    bool
}

type optimizeEvent struct {
	Chunk string `json:"chunk"`
	Done  bool   `json:"done"`
	Error string `json:"error"`
}

// Optimize starts a streaming prompt optimization. The caller owns the
// returned stream and must Close it.
func (c *Client) Optimize(ctx context.Context, or OptimizeRequest) (*OptimizeStream, error) {
	req, err := c.postJSON(ctx, "/api/ai/optimize", or)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	return &OptimizeStream{
		body:    resp.Body,
		scanner: bufio.NewScanner(resp.Body),
	}, nil
}

// Next returns the next decoded text chunk. It returns io.EOF when the
// stream completes (a done event or the connection closing), and a
// non-EOF error if the backend reported one mid-stream.
func (s *OptimizeStream) Next() (string, error) {
	if s.done {
		return "", io.EOF
	}
	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data: ") {
			// Heartbeats, comments and blank separators are skipped.
			continue
		}
		payload := strings.TrimPrefix(line, "data: ")

		var ev optimizeEvent
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			// A malformed line is skipped rather than killing the stream.
			continue
		}
		if ev.Error != "" {
			s.done = true
			return "", fmt.Errorf("optimize stream error: %s", ev.Error)
		}
		if ev.Chunk != "" {
			// A chunk may arrive together with the done flag.
			if ev.Done {
				s.done = true
			}
			return ev.Chunk, nil
		}
		if ev.Done {
			s.done = true
			return "", io.EOF
		}
	}
	s.done = true
	if err := s.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// Close releases the underlying connection. Safe to call at any point;
// a consumer that stops pulling should Close to stop the transfer.
func (s *OptimizeStream) Close() error {
	s.done = true
	return s.body.Close()
}
