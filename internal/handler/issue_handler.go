package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/issuetracker/backend/internal/logging"
	"github.com/issuetracker/backend/internal/model"
	"github.com/issuetracker/backend/internal/service"
	"github.com/issuetracker/backend/internal/storage"
	"github.com/issuetracker/backend/pkg/identity"
)

// maxImportBytes caps the size of an uploaded CSV.
const maxImportBytes = 10 << 20

// ImportRecorder receives the row counts of finished imports.
type ImportRecorder interface {
	ImportFinished(created, failed int)
}

// IssueHandler serves /api/issues and its sub-resources.
type IssueHandler struct {
	svc      service.IssueService
	archive  storage.Storage // nil = uploads are not archived
	recorder ImportRecorder  // nil = not recorded
}

func NewIssueHandler(svc service.IssueService, archive storage.Storage, recorder ImportRecorder) *IssueHandler {
	return &IssueHandler{svc: svc, archive: archive, recorder: recorder}
}

type createIssueRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	AssigneeID  *int64  `json:"assignee_id"`
}

// Create handles POST /api/issues.
func (h *IssueHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createIssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	issue, err := h.svc.Create(r.Context(), model.NewIssue{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		writeServiceError(w, r, err, "create")
		return
	}
	writeJSON(w, http.StatusCreated, issue)
}

// List handles GET /api/issues?status=&offset=&limit=.
func (h *IssueHandler) List(w http.ResponseWriter, r *http.Request) {
	offset, limit, ok := pageParams(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_pagination")
		return
	}

	issues, err := h.svc.List(r.Context(), model.IssueListOptions{
		Status: r.URL.Query().Get("status"),
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		writeServiceError(w, r, err, "list")
		return
	}
	if issues == nil {
		issues = []*model.Issue{}
	}
	writeJSON(w, http.StatusOK, issues)
}

// Get handles GET /api/issues/{id}.
func (h *IssueHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id")
		return
	}

	issue, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "get", "issue_id", id)
		return
	}
	writeJSON(w, http.StatusOK, issue)
}

// hasJSONKey reports whether key is present in raw, even with a null value.
func hasJSONKey(raw map[string]json.RawMessage, key string) bool {
	_, ok := raw[key]
	return ok
}

func isJSONNull(b json.RawMessage) bool {
	return string(bytes.TrimSpace(b)) == "null"
}

var errBadPatch = errors.New("bad patch")

// patchFromJSON builds an IssuePatch from a decoded body. A key that is
// absent leaves the field alone; a key that is null clears it.
func patchFromJSON(raw map[string]json.RawMessage) (model.IssuePatch, error) {
	var patch model.IssuePatch

	for _, key := range []string{"title", "status"} {
		if !hasJSONKey(raw, key) {
			continue
		}
		// null title/status is handed to the service as "" and rejected there.
		v := ""
		if !isJSONNull(raw[key]) {
			if err := json.Unmarshal(raw[key], &v); err != nil {
				return patch, errBadPatch
			}
		}
		if key == "title" {
			patch.Title = &v
		} else {
			patch.Status = &v
		}
	}

	if hasJSONKey(raw, "description") {
		if isJSONNull(raw["description"]) {
			patch.Description = model.Null[string]()
		} else {
			var v string
			if err := json.Unmarshal(raw["description"], &v); err != nil {
				return patch, errBadPatch
			}
			patch.Description = model.Some(v)
		}
	}

	if hasJSONKey(raw, "assignee_id") {
		if isJSONNull(raw["assignee_id"]) {
			patch.AssigneeID = model.Null[int64]()
		} else {
			var v int64
			if err := json.Unmarshal(raw["assignee_id"], &v); err != nil {
				return patch, errBadPatch
			}
			patch.AssigneeID = model.Some(v)
		}
	}
	return patch, nil
}

// Update handles PATCH /api/issues/{id}. The body must carry the version the
// caller last read; a stale one is answered with 409.
func (h *IssueHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id")
		return
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil || raw == nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	var version int
	if b, ok := raw["version"]; !ok || isJSONNull(b) {
		writeError(w, http.StatusBadRequest, "version_required")
		return
	} else if err := json.Unmarshal(b, &version); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_version")
		return
	}

	patch, err := patchFromJSON(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	issue, err := h.svc.Update(r.Context(), id, patch, version)
	if err != nil {
		writeServiceError(w, r, err, "update", "issue_id", id, "expected_version", version)
		return
	}
	writeJSON(w, http.StatusOK, issue)
}

// decodeLabelIDs accepts either a bare JSON array or {"label_ids": [...]}.
func decodeLabelIDs(body io.Reader) ([]int64, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return nil, err
	}
	var ids []int64
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
		err := json.Unmarshal(trimmed, &ids)
		return ids, err
	}
	var req struct {
		LabelIDs []int64 `json:"label_ids"`
	}
	err := json.Unmarshal(raw, &req)
	return req.LabelIDs, err
}

// SetLabels handles PUT /api/issues/{id}/labels.
func (h *IssueHandler) SetLabels(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id")
		return
	}
	labelIDs, err := decodeLabelIDs(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	labels, err := h.svc.SetLabels(r.Context(), id, labelIDs)
	if err != nil {
		writeServiceError(w, r, err, "set_labels", "issue_id", id)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Labels updated", "labels": labels})
}

type addCommentRequest struct {
	AuthorID *int64 `json:"author_id"`
	Body     string `json:"body"`
}

// AddComment handles POST /api/issues/{id}/comments. Without author_id in
// the body the X-User-ID identity is used.
func (h *IssueHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id")
		return
	}

	var req addCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if req.AuthorID == nil {
		if uid, ok := identity.UserIDFromContext(r.Context()); ok {
			req.AuthorID = &uid
		} else {
			writeError(w, http.StatusBadRequest, "author_required")
			return
		}
	}

	comment, err := h.svc.AddComment(r.Context(), id, *req.AuthorID, req.Body)
	if err != nil {
		writeServiceError(w, r, err, "add_comment", "issue_id", id)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// ListComments handles GET /api/issues/{id}/comments.
func (h *IssueHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id")
		return
	}

	comments, err := h.svc.ListComments(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "list_comments", "issue_id", id)
		return
	}
	if comments == nil {
		comments = []*model.Comment{}
	}
	writeJSON(w, http.StatusOK, comments)
}

// Timeline handles GET /api/issues/{id}/timeline.
func (h *IssueHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id")
		return
	}

	history, err := h.svc.Timeline(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "timeline", "issue_id", id)
		return
	}
	if history == nil {
		history = []*model.IssueHistory{}
	}
	writeJSON(w, http.StatusOK, history)
}

type bulkStatusRequest struct {
	IssueIDs []int64 `json:"issue_ids"`
	Status   string  `json:"status"`
}

// BulkStatus handles POST /api/issues/bulk-status.
func (h *IssueHandler) BulkStatus(w http.ResponseWriter, r *http.Request) {
	var req bulkStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	result, err := h.svc.BulkSetStatus(r.Context(), req.IssueIDs, req.Status)
	if err != nil {
		writeServiceError(w, r, err, "bulk_status", "issue_count", len(req.IssueIDs))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Import handles POST /api/issues/import with a multipart "file" field.
func (h *IssueHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file_required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "file_unreadable")
		return
	}

	log := logging.FromContext(r.Context())
	if h.archive != nil {
		key := storage.ImportKey()
		if _, err := h.archive.Save(r.Context(), key, bytes.NewReader(data), "text/csv"); err != nil {
			log.Warn("import archive failed", "key", key, "error", err)
		} else {
			log.Info("import archived", "key", key, "bytes", len(data))
		}
	}

	result, err := service.ImportCSV(r.Context(), h.svc, bytes.NewReader(data))
	if err != nil {
		writeServiceError(w, r, err, "import")
		return
	}
	if h.recorder != nil {
		h.recorder.ImportFinished(result.Created, result.Failed)
	}
	if result.Failed > 0 {
		log.Info("import rejected rows", "created", result.Created, "failed", result.Failed,
			"first_error", strings.TrimSpace(result.Errors[0].Error))
	}
	writeJSON(w, http.StatusOK, result)
}
