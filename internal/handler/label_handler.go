package handler

import (
	"encoding/json"
	"net/http"

	"github.com/issuetracker/backend/internal/model"
	"github.com/issuetracker/backend/internal/service"
)

// LabelHandler serves /api/labels.
type LabelHandler struct {
	svc service.LabelService
}

func NewLabelHandler(svc service.LabelService) *LabelHandler {
	return &LabelHandler{svc: svc}
}

// List handles GET /api/labels.
func (h *LabelHandler) List(w http.ResponseWriter, r *http.Request) {
	labels, err := h.svc.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "list")
		return
	}
	if labels == nil {
		labels = []*model.Label{}
	}
	writeJSON(w, http.StatusOK, labels)
}

// Create handles POST /api/labels. A taken name is 409.
func (h *LabelHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	label, err := h.svc.Create(r.Context(), req.Name)
	if err != nil {
		writeServiceError(w, r, err, "create")
		return
	}
	writeJSON(w, http.StatusCreated, label)
}
