package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"imagedeck/internal/backend"
	"imagedeck/internal/models"
	"imagedeck/internal/store"
)

// handleGenerate submits a generation task to the backend. The submitted
// parameters become the new persisted defaults, and the prompts are
// recorded in the history.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var params models.GenParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	params.FillDefaults()

	randomSeed, err := s.store.GetRandomSeed()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}
	if randomSeed {
		// -1 tells the backend to roll its own seed.
		params.Seed = -1
	}

	result, err := s.app.Backend().Generate(r.Context(), params)
	if err != nil {
		RespondWithError(w, http.StatusBadGateway, fmt.Sprintf("Generation failed: %v", err))
		return
	}

	if err := s.store.SaveGenParams(params); err != nil {
		log.Printf("Failed to persist generation parameters: %v", err)
	}
	if err := s.store.AddPromptHistory(store.PolarityPositive, params.Prompt); err != nil {
		log.Printf("Failed to record prompt history: %v", err)
	}
	if err := s.store.AddPromptHistory(store.PolarityNegative, params.NegativePrompt); err != nil {
		log.Printf("Failed to record prompt history: %v", err)
	}

	RespondWithJSON(w, http.StatusOK, result)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		PromptID string `json:"prompt_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.PromptID == "" {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := s.app.Backend().CancelTask(r.Context(), payload.PromptID); err != nil {
		RespondWithError(w, http.StatusBadGateway, "Failed to cancel task")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleInterrupt(w http.ResponseWriter, r *http.Request) {
	if err := s.app.Backend().Interrupt(r.Context()); err != nil {
		RespondWithError(w, http.StatusBadGateway, "Failed to interrupt generation")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleComfyStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.app.Backend().ComfyStatus(r.Context())
	if err != nil {
		RespondWithJSON(w, http.StatusOK, models.ComfyStatus{Connected: false})
		return
	}
	RespondWithJSON(w, http.StatusOK, status)
}

func (s *Server) handleComfyModels(w http.ResponseWriter, r *http.Request) {
	modelNames, err := s.app.Backend().ComfyModels(r.Context())
	if err != nil {
		RespondWithError(w, http.StatusBadGateway, "Failed to fetch model list")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]interface{}{"models": modelNames})
}

func (s *Server) handleSamplersSchedulers(w http.ResponseWriter, r *http.Request) {
	samplers, schedulers, err := s.app.Backend().SamplersSchedulers(r.Context())
	if err != nil {
		RespondWithError(w, http.StatusBadGateway, "Failed to fetch samplers and schedulers")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"samplers":   samplers,
		"schedulers": schedulers,
	})
}

// handleOptimize relays the backend's prompt optimization stream to the
// client as server-sent events, one data line per chunk.
func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req backend.OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		RespondWithError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	stream, err := s.app.Backend().Optimize(r.Context(), req)
	if err != nil {
		RespondWithError(w, http.StatusBadGateway, "Failed to start optimization")
		return
	}
	defer stream.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	for {
		chunk, err := stream.Next()
		if err != nil {
			if err != io.EOF {
				writeSSE(w, map[string]interface{}{"error": err.Error()})
			}
			break
		}
		writeSSE(w, map[string]interface{}{"chunk": chunk})
		flusher.Flush()
	}
	writeSSE(w, map[string]interface{}{"done": true})
	flusher.Flush()
}

func writeSSE(w http.ResponseWriter, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
}
