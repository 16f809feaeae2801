package handler

import (
	"net/http"

	"github.com/issuetracker/backend/internal/model"
	"github.com/issuetracker/backend/internal/service"
)

// CommentHandler serves the global comment feed.
type CommentHandler struct {
	svc service.CommentService
}

func NewCommentHandler(svc service.CommentService) *CommentHandler {
	return &CommentHandler{svc: svc}
}

// List handles GET /api/comments?offset=&limit=.
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	offset, limit, ok := pageParams(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_pagination")
		return
	}

	comments, err := h.svc.List(r.Context(), model.ListOptions{Offset: offset, Limit: limit})
	if err != nil {
		writeServiceError(w, r, err, "list")
		return
	}
	if comments == nil {
		comments = []*model.Comment{}
	}
	writeJSON(w, http.StatusOK, comments)
}
