package handlers

import (
	"net/http"
	"planboard/internal/handlers/dto"
	"planboard/internal/logger"
	"time"

	"go.uber.org/zap"
)

func (h *Handler) ListMilestones(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	ms, err := h.service.ListMilestones(r.Context(), userID(r), id)
	if err != nil {
		handleError(w, err, "list_milestones")
		return
	}

	logOut("milestones listed", start, http.StatusOK, zap.Int("count", len(ms)))
	responseWithJSON(w, http.StatusOK, toPayload("milestones", ms))
}

func (h *Handler) CreateMilestone(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var request dto.CreateMilestoneRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	m, err := h.service.CreateMilestone(r.Context(), userID(r), id, request.Title, request.Date.Time)
	if err != nil {
		handleError(w, err, "create_milestone")
		return
	}

	logOut("milestone created", start, http.StatusCreated, zap.String("milestone_id", m.ID()))
	responseWithJSON(w, http.StatusCreated, toPayload("milestone", m))
}

func (h *Handler) UpdateMilestone(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	milestoneID, ok := pathUUID(w, r, "milestoneId")
	if !ok {
		return
	}
	var request dto.UpdateMilestoneRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	m, err := h.service.UpdateMilestone(r.Context(), userID(r), id, milestoneID, request.Options()...)
	if err != nil {
		handleError(w, err, "update_milestone")
		return
	}

	logOut("milestone updated", start, http.StatusOK, zap.String("milestone_id", m.ID()))
	responseWithJSON(w, http.StatusOK, toPayload("milestone", m))
}

func (h *Handler) DeleteMilestone(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	milestoneID, ok := pathUUID(w, r, "milestoneId")
	if !ok {
		return
	}
	if err := h.service.DeleteMilestone(r.Context(), userID(r), id, milestoneID); err != nil {
		handleError(w, err, "delete_milestone")
		return
	}

	logOut("milestone deleted", start, http.StatusNoContent, zap.String("milestone_id", milestoneID.String()))
	w.WriteHeader(http.StatusNoContent)
}
