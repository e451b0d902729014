package assistant

import (
	"encoding/json"
	"net/http"

	"fmasite/internal/content/model"
	"fmasite/pkg/validate"
)

type Handler struct {
	Assistant *Assistant
	Validator *validate.RequestValidator
}

func NewHandler(a *Assistant, v *validate.RequestValidator) *Handler {
	return &Handler{Assistant: a, Validator: v}
}

type textResponse struct {
	Text string `json:"text"`
}

// Draft serves POST /api/assistant/draft.
func (h *Handler) Draft(w http.ResponseWriter, r *http.Request) {
	var req model.DraftRequest
	if !h.decode(w, r, &req) {
		return
	}
	writeText(w, h.Assistant.Draft(r.Context(), req.Topic))
}

// Translate serves POST /api/assistant/translate.
func (h *Handler) Translate(w http.ResponseWriter, r *http.Request) {
	var req model.TranslateRequest
	if !h.decode(w, r, &req) {
		return
	}
	writeText(w, h.Assistant.Translate(r.Context(), req.Text))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	if err := h.Validator.Validate(req); err != nil {
		http.Error(w, "Invalid request: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func writeText(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(textResponse{Text: text})
}
