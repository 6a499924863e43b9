package handlers

import (
	"net/http"
	"planboard/internal/handlers/dto"
	"planboard/internal/logger"
	"planboard/internal/models/task"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func (h *Handler) ShareProject(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	info, err := h.service.ShareProject(r.Context(), userID(r), id)
	if err != nil {
		handleError(w, err, "share_project")
		return
	}

	logOut("project shared", start, http.StatusOK, zap.String("project_id", id.String()))
	responseWithJSON(w, http.StatusOK, toPayload("share_url", info.URL), toPayload("share_token", info.Token))
}

func (h *Handler) UnshareProject(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.UnshareProject(r.Context(), userID(r), id); err != nil {
		handleError(w, err, "unshare_project")
		return
	}

	logOut("project unshared", start, http.StatusNoContent, zap.String("project_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetSharedProject(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	p, err := h.service.GetSharedProject(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		handleError(w, err, "get_shared_project")
		return
	}
	// The owner and the token stay private.
	view := *p
	view.UserID = ""
	view.ShareToken = ""

	logOut("shared project fetched", start, http.StatusOK, zap.String("project_id", p.UUID.String()))
	responseWithJSON(w, http.StatusOK, toPayload("project", dto.FromProject(&view)))
}

func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	comments, err := h.service.ListComments(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		handleError(w, err, "list_comments")
		return
	}

	logOut("comments listed", start, http.StatusOK, zap.Int("count", len(comments)))
	responseWithJSON(w, http.StatusOK, toPayload("comments", comments))
}

func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.CommentRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	c, err := h.service.AddComment(r.Context(), chi.URLParam(r, "token"), request.Content, request.AuthorName)
	if err != nil {
		handleError(w, err, "add_comment")
		return
	}

	logOut("comment added", start, http.StatusCreated, zap.String("comment_id", c.UUID.String()))
	responseWithJSON(w, http.StatusCreated, toPayload("comment", c))
}

func (h *Handler) SetApproval(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	taskID, ok := pathUUID(w, r, "taskId")
	if !ok {
		return
	}
	var request dto.ApprovalRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	t, err := h.service.SetApproval(r.Context(), chi.URLParam(r, "token"), taskID, task.ApprovalStatus(request.Status), request.Reason)
	if err != nil {
		handleError(w, err, "set_approval")
		return
	}

	logOut("approval recorded", start, http.StatusOK, zap.String("task_id", taskID.String()), zap.String("approval_status", request.Status))
	responseWithJSON(w, http.StatusOK, toPayload("task", dto.FromTask(t, h.now())))
}
