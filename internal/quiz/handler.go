package quiz

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/linguloop/backend/internal/completion"
	"github.com/linguloop/backend/internal/generator"
	"github.com/linguloop/backend/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionID"]

	var req models.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if req.LoopID == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "loop_id is required"})
		return
	}
	if !models.ValidDifficulties[req.Difficulty] {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "difficulty must be 'easy', 'medium', or 'hard'"})
		return
	}

	resp, err := h.service.GenerateForDifficulty(r.Context(), sessionID, req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) SelectPreset(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionID"]

	var req models.SelectPresetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if req.LoopID == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "loop_id is required"})
		return
	}
	if req.Distribution.Total() <= 0 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "distribution must request at least one question"})
		return
	}

	if err := h.service.GenerateFromPreset(r.Context(), sessionID, req); err != nil {
		writeError(w, err)
		return
	}

	cache, err := h.service.ActiveCache(r.Context(), req.GroupID, sessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, models.SelectPresetResponse{
		PresetID: req.PresetID,
		Counts:   cache.Counts,
		Tokens:   cache.ShareTokens,
	})
}

func (h *Handler) GetQuestionCache(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	entry, err := h.service.ActiveCache(r.Context(), vars["groupID"], vars["sessionID"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

func (h *Handler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	h.service.Invalidate(vars["groupID"], vars["sessionID"])
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetActivePreset(w http.ResponseWriter, r *http.Request) {
	preset, err := h.service.ActivePreset(r.Context(), mux.Vars(r)["sessionID"])
	if err != nil {
		writeError(w, err)
		return
	}
	if preset == nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "No active preset"})
		return
	}
	writeJSON(w, http.StatusOK, preset)
}

func (h *Handler) GetSharedSet(w http.ResponseWriter, r *http.Request) {
	set, err := h.service.FetchByShareToken(r.Context(), mux.Vars(r)["token"])
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Question set not found"})
			return
		}
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Invalid share token"})
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (h *Handler) PutLoop(w http.ResponseWriter, r *http.Request) {
	var loop models.TranscriptLoop
	if err := json.NewDecoder(r.Body).Decode(&loop); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if loop.ID == "" || loop.EndTime <= loop.StartTime {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "loop requires an id and a positive time range"})
		return
	}

	if err := h.service.PutLoop(r.Context(), &loop); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, loop)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrGenerationInFlight):
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "A generation is already in flight for this session"})
	case errors.Is(err, sql.ErrNoRows):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Not found"})
	default:
		var provErr *completion.ProviderError
		var malErr *generator.MalformedError
		if errors.As(err, &provErr) || errors.As(err, &malErr) {
			writeJSON(w, http.StatusBadGateway, models.ErrorResponse{Error: "Generation failed: " + err.Error()})
			return
		}
		log.Printf("WARN: request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("WARN: failed to encode response: %v", err)
	}
}
