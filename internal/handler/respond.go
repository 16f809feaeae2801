package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/issuetracker/backend/internal/logging"
	"github.com/issuetracker/backend/internal/repository"
	"github.com/issuetracker/backend/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// writeServiceError maps the service error taxonomy onto HTTP. Anything
// unclassified is logged and reported as "<op>_failed".
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, op string, attrs ...any) {
	log := logging.FromContext(r.Context())
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, repository.ErrVersionConflict):
		log.Info(op+" version conflict", attrs...)
		writeJSON(w, http.StatusConflict, map[string]string{
			"error":   "version_conflict",
			"message": "the issue has been modified by someone else; reload and retry",
		})
	case errors.Is(err, repository.ErrDuplicate):
		writeError(w, http.StatusConflict, "already_exists")
	case errors.Is(err, service.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":   "invalid_argument",
			"message": strings.TrimPrefix(err.Error(), service.ErrInvalidArgument.Error()+": "),
		})
	default:
		log.Error(op+" failed", append(attrs, "error", err)...)
		writeError(w, http.StatusInternalServerError, op+"_failed")
	}
}

// pathID parses the {id} path value.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

// pageParams reads offset (or skip) and limit. Missing values are zero and
// left for the service to default.
func pageParams(r *http.Request) (offset, limit int, ok bool) {
	q := r.URL.Query()
	raw := q.Get("offset")
	if raw == "" {
		raw = q.Get("skip")
	}
	var err error
	if raw != "" {
		if offset, err = strconv.Atoi(raw); err != nil || offset < 0 {
			return 0, 0, false
		}
	}
	if raw := q.Get("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit < 0 {
			return 0, 0, false
		}
	}
	return offset, limit, true
}
