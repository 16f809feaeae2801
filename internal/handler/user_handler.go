package handler

import (
	"encoding/json"
	"net/http"

	"github.com/issuetracker/backend/internal/model"
	"github.com/issuetracker/backend/internal/service"
)

// UserHandler serves /api/users.
type UserHandler struct {
	svc service.UserService
}

func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// List handles GET /api/users?offset=&limit=.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	offset, limit, ok := pageParams(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_pagination")
		return
	}

	users, err := h.svc.List(r.Context(), model.ListOptions{Offset: offset, Limit: limit})
	if err != nil {
		writeServiceError(w, r, err, "list")
		return
	}
	if users == nil {
		users = []*model.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

// Get handles GET /api/users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id")
		return
	}

	user, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "get", "user_id", id)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type createUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Create handles POST /api/users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	user, err := h.svc.Create(r.Context(), req.Name, req.Email)
	if err != nil {
		writeServiceError(w, r, err, "create")
		return
	}
	writeJSON(w, http.StatusCreated, user)
}
