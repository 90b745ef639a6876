package models

// QueueTask is one entry in the ComfyUI work queue.
type QueueTask struct {
	ID       string `json:"id"`
	Status   string `json:"status"` // "pending" or "running"
	Progress int    `json:"progress"`
	Prompt   string `json:"prompt"`
	LoraInfo string `json:"lora_info"`
}

// HistoryTask is a recently finished job, as reported by the backend.
type HistoryTask struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Description string `json:"description"`
}

// QueueSnapshot is the full queue state returned by one poll. It is
// replaced wholesale each cycle and never persisted.
type QueueSnapshot struct {
	Pending        []QueueTask   `json:"pending"`
	History        []HistoryTask `json:"history"`
	QueueRemaining int           `json:"queue_remaining"`
}

// ActiveCount returns the number of jobs still pending or running. The
// sync coordinator watches this go from positive to zero to detect
// completion of a generation batch.
func (s *QueueSnapshot) ActiveCount() int {
	if s == nil {
		return 0
	}
	if s.QueueRemaining > len(s.Pending) {
		return s.QueueRemaining
	}
	return len(s.Pending)
}

// ComfyStatus reports whether the backend can reach ComfyUI at all.
type ComfyStatus struct {
	Connected bool `json:"connected"`
}
