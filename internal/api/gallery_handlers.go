package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"

	"imagedeck/internal/gallery"
	"imagedeck/internal/models"
)

// galleryState is the full gallery snapshot returned to the frontend.
type galleryState struct {
	Images    []*models.ImageRecord `json:"images"`
	Selected  *models.ImageRecord   `json:"selected,omitempty"`
	HasMore   bool                  `json:"has_more"`
	Connected bool                  `json:"connected"`
	Filter    gallery.Filter        `json:"filter"`
}

func (s *Server) galleryState() galleryState {
	g := s.app.Gallery()
	return galleryState{
		Images:    g.Images(),
		Selected:  g.Selected(),
		HasMore:   g.HasMore(),
		Connected: g.Connected(),
		Filter:    g.Filter(),
	}
}

func (s *Server) handleGetGallery(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, s.galleryState())
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Path == "" {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	selected := s.app.Gallery().Select(payload.Path)
	if selected == nil {
		RespondWithError(w, http.StatusNotFound, "Image not in gallery")
		return
	}
	RespondWithJSON(w, http.StatusOK, selected)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.app.Gallery().Refresh(r.Context()); err != nil {
		RespondWithError(w, http.StatusBadGateway, "Gallery refresh failed")
		return
	}
	RespondWithJSON(w, http.StatusOK, s.galleryState())
}

func (s *Server) handleLoadMore(w http.ResponseWriter, r *http.Request) {
	if err := s.app.Gallery().LoadMore(r.Context()); err != nil {
		RespondWithError(w, http.StatusBadGateway, "Failed to load more images")
		return
	}
	RespondWithJSON(w, http.StatusOK, s.galleryState())
}

func (s *Server) handleGetFilter(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, s.app.Gallery().Filter())
}

func (s *Server) handleSetFilter(w http.ResponseWriter, r *http.Request) {
	var filter gallery.Filter
	if err := json.NewDecoder(r.Body).Decode(&filter); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := s.app.Gallery().SetFilter(r.Context(), filter); err != nil {
		RespondWithError(w, http.StatusBadGateway, "Failed to apply filter")
		return
	}
	RespondWithJSON(w, http.StatusOK, s.galleryState())
}

func (s *Server) handleGetFilterOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := s.app.Backend().GetFilters(r.Context())
	if err != nil {
		RespondWithError(w, http.StatusBadGateway, "Failed to fetch filter options")
		return
	}
	RespondWithJSON(w, http.StatusOK, opts)
}

func (s *Server) handleGetQueue(w http.ResponseWriter, r *http.Request) {
	g := s.app.Gallery()
	RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"queue":     g.Queue(),
		"connected": g.Connected(),
	})
}

func (s *Server) handleGetMetadata(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		RespondWithError(w, http.StatusBadRequest, "Missing path parameter")
		return
	}
	meta, err := s.app.Backend().GetMetadata(r.Context(), path)
	if err != nil {
		RespondWithError(w, http.StatusBadGateway, "Failed to fetch metadata")
		return
	}
	RespondWithJSON(w, http.StatusOK, meta)
}

func (s *Server) handleGetRawImage(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		RespondWithError(w, http.StatusBadRequest, "Missing path parameter")
		return
	}
	rc, err := s.app.Backend().RawImage(r.Context(), path)
	if err != nil {
		RespondWithError(w, http.StatusBadGateway, "Failed to fetch image")
		return
	}
	defer rc.Close()

	w.Header().Set("Cache-Control", "max-age=3600")
	if _, err := io.Copy(w, rc); err != nil {
		log.Printf("Error streaming image %s: %v", path, err)
	}
}

func (s *Server) handleGetThumbnail(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		RespondWithError(w, http.StatusBadRequest, "Missing path parameter")
		return
	}
	mtime, _ := strconv.ParseInt(r.URL.Query().Get("mtime"), 10, 64)
	width, err := strconv.Atoi(r.URL.Query().Get("width"))
	if err != nil || width <= 0 {
		width = 200
	}

	data, err := s.app.Thumbs().Get(r.Context(), path, mtime, width)
	if err != nil {
		RespondWithError(w, http.StatusBadGateway, "Failed to generate thumbnail")
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "max-age=86400")
	w.Write(data)
}

func (s *Server) handleDeleteImage(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		RespondWithError(w, http.StatusBadRequest, "Missing path parameter")
		return
	}
	if err := s.app.Backend().DeleteImage(r.Context(), path); err != nil {
		RespondWithError(w, http.StatusBadGateway, "Failed to delete image")
		return
	}
	// The listing changed; pull the fresh one before answering.
	if err := s.app.Gallery().Refresh(r.Context()); err != nil {
		log.Printf("Gallery refresh after delete failed: %v", err)
	}
	RespondWithJSON(w, http.StatusOK, s.galleryState())
}
