package models

// ProgressUpdate is the event shape broadcast to UI clients over the
// websocket hub whenever session state changes.
type ProgressUpdate struct {
	Event     string  `json:"event"` // e.g. "gallery_synced", "queue_update", "job_status"
	Message   string  `json:"message,omitempty"`
	Progress  float64 `json:"progress,omitempty"`
	Connected bool    `json:"connected"`
	Done      bool    `json:"done,omitempty"`
}
