package handlers

import (
	"net/http"
	"planboard/internal/handlers/dto"
	"planboard/internal/logger"
	"planboard/internal/templates"
	"time"

	"go.uber.org/zap"
)

// ListWorkflowTemplates returns the built-in catalog next to the caller's own templates.
func (h *Handler) ListWorkflowTemplates(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	custom, err := h.service.ListWorkflowTemplates(r.Context(), userID(r))
	if err != nil {
		handleError(w, err, "list_workflow_templates")
		return
	}

	logOut("workflow templates listed", start, http.StatusOK, zap.Int("custom", len(custom)))
	responseWithJSON(w, http.StatusOK,
		toPayload("workflows", templates.Workflows()),
		toPayload("custom_workflows", custom))
}

func (h *Handler) CreateWorkflowTemplate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.CreateWorkflowTemplateRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	t, err := h.service.CreateWorkflowTemplate(r.Context(), userID(r), request.Name, request.Options()...)
	if err != nil {
		handleError(w, err, "create_workflow_template")
		return
	}

	logOut("workflow template created", start, http.StatusCreated, zap.String("template_id", t.ID()))
	responseWithJSON(w, http.StatusCreated, toPayload("workflow_template", t))
}

func (h *Handler) UpdateWorkflowTemplate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var request dto.UpdateWorkflowTemplateRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	t, err := h.service.UpdateWorkflowTemplate(r.Context(), userID(r), id, request.Options()...)
	if err != nil {
		handleError(w, err, "update_workflow_template")
		return
	}

	logOut("workflow template updated", start, http.StatusOK, zap.String("template_id", t.ID()))
	responseWithJSON(w, http.StatusOK, toPayload("workflow_template", t))
}

func (h *Handler) DeleteWorkflowTemplate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteWorkflowTemplate(r.Context(), userID(r), id); err != nil {
		handleError(w, err, "delete_workflow_template")
		return
	}

	logOut("workflow template deleted", start, http.StatusNoContent, zap.String("template_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListMilestoneTemplates(w http.ResponseWriter, r *http.Request) {
	responseWithJSON(w, http.StatusOK, toPayload("milestone_templates", templates.Milestones()))
}
