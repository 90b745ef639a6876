package models

// GenParams is a user-editable generation request. It is persisted on
// every change and round-trips exactly through the session store, with
// defaults filled for any missing key.
type GenParams struct {
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negative_prompt"`
	Model          string  `json:"model"`
	Lora           string  `json:"lora"`
	LoraWeight     float64 `json:"lora_weight"`
	Resolution     string  `json:"resolution"`
	Steps          int     `json:"steps"`
	CFG            float64 `json:"cfg"`
	Sampler        string  `json:"sampler"`
	Scheduler      string  `json:"scheduler"`
	Seed           int64   `json:"seed"` // -1 means the backend picks a random seed
	Denoise        float64 `json:"denoise"`
	BatchSize      int     `json:"batch_size"`
	Shift          float64 `json:"shift"`
}

// DefaultGenParams returns the backend's documented defaults.
func DefaultGenParams() GenParams {
	return GenParams{
		LoraWeight: 1.0,
		Resolution: "512x768",
		Steps:      20,
		CFG:        7.0,
		Sampler:    "euler",
		Scheduler:  "normal",
		Seed:       -1,
		Denoise:    1.0,
		BatchSize:  1,
		Shift:      3.0,
	}
}

// FillDefaults replaces zero-valued fields that have non-zero defaults.
// Older persisted rows may predate a field; reading them must still
// produce a usable request.
func (p *GenParams) FillDefaults() {
	d := DefaultGenParams()
	if p.LoraWeight == 0 {
		p.LoraWeight = d.LoraWeight
	}
	if p.Resolution == "" {
		p.Resolution = d.Resolution
	}
	if p.Steps == 0 {
		p.Steps = d.Steps
	}
	if p.CFG == 0 {
		p.CFG = d.CFG
	}
	if p.Sampler == "" {
		p.Sampler = d.Sampler
	}
	if p.Scheduler == "" {
		p.Scheduler = d.Scheduler
	}
	if p.Seed == 0 {
		p.Seed = d.Seed
	}
	if p.Denoise == 0 {
		p.Denoise = d.Denoise
	}
	if p.BatchSize == 0 {
		p.BatchSize = d.BatchSize
	}
	if p.Shift == 0 {
		p.Shift = d.Shift
	}
}
