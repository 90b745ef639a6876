// This file defines the core data structures (models) for the workbench.
// These structs mirror the JSON shapes served by the gallery backend.

package models

// ImageRecord represents a single generated image known to the backend.
// Its identity within a gallery session is the file path; everything else
// is a display attribute. Records are replaced wholesale on refresh except
// when the same path reappears, in which case new fields are merged into
// the existing record so open viewers keep their object identity.
type ImageRecord struct {
	FilePath string `json:"file_path"`
	FileName string `json:"file_name"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	// ModTime is the last-modified timestamp reported by the backend,
	// used as a cache-busting version token for thumbnails.
	ModTime int64  `json:"mtime,omitempty"`
	Folder  string `json:"folder,omitempty"`
	Model   string `json:"model,omitempty"`
	Lora    string `json:"lora,omitempty"`
}

// Merge copies the refreshed attributes of other into r, preserving r's
// identity (pointer). The path is the identity key and never changes.
func (r *ImageRecord) Merge(other *ImageRecord) {
	r.FileName = other.FileName
	r.Width = other.Width
	r.Height = other.Height
	r.ModTime = other.ModTime
	r.Folder = other.Folder
	r.Model = other.Model
	r.Lora = other.Lora
}

// ImageList is the response of the backend's image listing endpoint.
type ImageList struct {
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	Images   []*ImageRecord `json:"images"`
	HasMore  bool           `json:"has_more"`
}

// FilterOptions holds every value the backend knows how to filter or
// generate with.
type FilterOptions struct {
	Folders     []string `json:"folders"`
	Models      []string `json:"models"`
	Loras       []string `json:"loras"`
	Resolutions []string `json:"resolutions"`
	Samplers    []string `json:"samplers"`
	Schedulers  []string `json:"schedulers"`
}

// LoraRef is a LoRA annotation parsed out of an image's metadata.
type LoraRef struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// ImageMetadata is the parsed generation metadata for one image.
type ImageMetadata struct {
	Prompt         string                 `json:"prompt"`
	NegativePrompt string                 `json:"negative_prompt"`
	Loras          []LoraRef              `json:"loras"`
	Params         map[string]interface{} `json:"params"`
	TechInfo       map[string]interface{} `json:"tech_info,omitempty"`
	Tool           string                 `json:"tool,omitempty"`
}
