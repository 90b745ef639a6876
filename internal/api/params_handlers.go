package api

import (
	"encoding/json"
	"net/http"

	"imagedeck/internal/models"
	"imagedeck/internal/viewer"
)

func (s *Server) handleGetParams(w http.ResponseWriter, r *http.Request) {
	params, err := s.store.GetGenParams()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to load generation parameters")
		return
	}
	RespondWithJSON(w, http.StatusOK, params)
}

func (s *Server) handleSaveParams(w http.ResponseWriter, r *http.Request) {
	var params models.GenParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	params.FillDefaults()
	if err := s.store.SaveGenParams(params); err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to save generation parameters")
		return
	}
	RespondWithJSON(w, http.StatusOK, params)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	polarity := r.URL.Query().Get("polarity")
	history, err := s.store.GetPromptHistory(polarity)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to load prompt history")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]interface{}{"history": history})
}

func (s *Server) handleAddHistory(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Polarity string `json:"polarity"`
		Text     string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := s.store.AddPromptHistory(payload.Polarity, payload.Text); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	polarity := r.URL.Query().Get("polarity")
	if err := s.store.ClearPromptHistory(polarity); err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to clear prompt history")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleGetViewerOptions serves the configured gesture constants. The
// frontend viewer controller is built with these instead of its
// compiled-in defaults.
func (s *Server) handleGetViewerOptions(w http.ResponseWriter, r *http.Request) {
	cfg := s.app.Config().Viewer
	opts := viewer.DefaultOptions()
	if cfg.MaxScale > 0 {
		opts.MaxScale = cfg.MaxScale
	}
	if cfg.ZoomStep > 0 {
		opts.ZoomStep = cfg.ZoomStep
	}
	if cfg.WheelSwitchThreshold > 0 {
		opts.WheelSwitchThreshold = cfg.WheelSwitchThreshold
	}
	if cfg.SwipeThreshold > 0 {
		opts.SwipeThreshold = cfg.SwipeThreshold
	}
	if cfg.EdgeSwipeThreshold > 0 {
		opts.EdgeSwipeThreshold = cfg.EdgeSwipeThreshold
	}
	RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"max_scale":              opts.MaxScale,
		"zoom_step":              opts.ZoomStep,
		"wheel_switch_threshold": opts.WheelSwitchThreshold,
		"swipe_threshold":        opts.SwipeThreshold,
		"edge_swipe_threshold":   opts.EdgeSwipeThreshold,
		"wheel_reset_window_ms":  opts.WheelResetWindow.Milliseconds(),
	})
}

// sessionSettings bundles the persisted UI preferences.
type sessionSettings struct {
	WheelMode   string         `json:"wheel_mode"`
	RandomSeed  bool           `json:"random_seed"`
	Theme       string         `json:"theme"`
	PanelWidths map[string]int `json:"panel_widths"`
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	wheelMode, err := s.store.GetWheelMode()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}
	randomSeed, err := s.store.GetRandomSeed()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}
	theme, err := s.store.GetTheme()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}
	widths, err := s.store.GetPanelWidths()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}
	RespondWithJSON(w, http.StatusOK, sessionSettings{
		WheelMode:   wheelMode,
		RandomSeed:  randomSeed,
		Theme:       theme,
		PanelWidths: widths,
	})
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var settings sessionSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if settings.WheelMode != "" {
		if err := s.store.SetWheelMode(settings.WheelMode); err != nil {
			RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if err := s.store.SetRandomSeed(settings.RandomSeed); err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to save settings")
		return
	}
	if settings.Theme != "" {
		if err := s.store.SetTheme(settings.Theme); err != nil {
			RespondWithError(w, http.StatusInternalServerError, "Failed to save settings")
			return
		}
	}
	if settings.PanelWidths != nil {
		if err := s.store.SetPanelWidths(settings.PanelWidths); err != nil {
			RespondWithError(w, http.StatusInternalServerError, "Failed to save settings")
			return
		}
	}
	s.handleGetSettings(w, r)
}
