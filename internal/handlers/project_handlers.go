package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"planboard/internal/handlers/dto"
	"planboard/internal/logger"
	"planboard/internal/report"
	"planboard/internal/service"
	"planboard/internal/templates"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	projects, err := h.service.ListProjects(r.Context(), userID(r))
	if err != nil {
		handleError(w, err, "list_projects")
		return
	}

	logOut("projects listed", start, http.StatusOK, zap.Int("count", len(projects)))
	responseWithJSON(w, http.StatusOK, toPayload("projects", dto.FromProjectList(projects)))
}

func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.CreateProjectRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	created, err := h.service.CreateProject(r.Context(), userID(r), request.Title, request.Options()...)
	if err != nil {
		handleError(w, err, "create_project")
		return
	}

	logOut("project created", start, http.StatusCreated, zap.String("project_id", created.UUID.String()))
	responseWithJSON(w, http.StatusCreated, toPayload("project", dto.FromProject(created)))
}

func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	p, err := h.service.GetProject(r.Context(), userID(r), id)
	if err != nil {
		handleError(w, err, "get_project")
		return
	}

	logOut("project fetched", start, http.StatusOK, zap.String("project_id", id.String()))
	responseWithJSON(w, http.StatusOK, toPayload("project", dto.FromProject(p)))
}

func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var request dto.UpdateProjectRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	p, err := h.service.UpdateProject(r.Context(), userID(r), id, request.Options()...)
	if err != nil {
		handleError(w, err, "update_project")
		return
	}

	logOut("project updated", start, http.StatusOK, zap.String("project_id", id.String()))
	responseWithJSON(w, http.StatusOK, toPayload("project", dto.FromProject(p)))
}

func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteProject(r.Context(), userID(r), id); err != nil {
		handleError(w, err, "delete_project")
		return
	}

	logOut("project deleted", start, http.StatusNoContent, zap.String("project_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListProjectTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	tasks, err := h.service.ListProjectTasks(r.Context(), userID(r), id)
	if err != nil {
		handleError(w, err, "list_project_tasks")
		return
	}

	logOut("project tasks listed", start, http.StatusOK, zap.Int("count", len(tasks)))
	responseWithJSON(w, http.StatusOK, toPayload("tasks", dto.FromTaskList(tasks, h.now())))
}

func (h *Handler) CreateProjectTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var request dto.CreateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	created, err := h.service.CreateProjectTask(r.Context(), userID(r), id, request.Text, request.Options()...)
	if err != nil {
		handleError(w, err, "create_project_task")
		return
	}

	logOut("project task created", start, http.StatusCreated, zap.String("task_id", created.ID()))
	responseWithJSON(w, http.StatusCreated, toPayload("task", dto.FromTask(created, h.now())))
}

func (h *Handler) UpdateProjectTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	taskID, ok := pathUUID(w, r, "taskId")
	if !ok {
		return
	}
	var request dto.UpdateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	updated, err := h.service.UpdateProjectTask(r.Context(), userID(r), id, taskID, request.Options()...)
	if err != nil {
		handleError(w, err, "update_project_task")
		return
	}

	logOut("project task updated", start, http.StatusOK, zap.String("task_id", taskID.String()))
	responseWithJSON(w, http.StatusOK, toPayload("task", dto.FromTask(updated, h.now())))
}

func (h *Handler) DeleteProjectTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	taskID, ok := pathUUID(w, r, "taskId")
	if !ok {
		return
	}
	if err := h.service.DeleteProjectTask(r.Context(), userID(r), id, taskID); err != nil {
		handleError(w, err, "delete_project_task")
		return
	}

	logOut("project task deleted", start, http.StatusNoContent, zap.String("task_id", taskID.String()))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ApplyWorkflow(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var request dto.ApplyWorkflowRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	created, err := h.service.ApplyWorkflowTemplate(r.Context(), userID(r), id, request.TemplateID,
		request.StartDate.Ptr(), templates.ExpandOptions{SkipNonWorkingDays: request.SkipNonWorkingDays})
	if err != nil {
		handleError(w, err, "apply_workflow")
		return
	}

	logOut("workflow applied", start, http.StatusCreated, zap.String("template_id", request.TemplateID), zap.Int("count", len(created)))
	responseWithJSON(w, http.StatusCreated, toPayload("tasks", dto.FromTaskList(created, h.now())))
}

func (h *Handler) DeleteWorkflow(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	workflowID := chi.URLParam(r, "workflowId")
	n, err := h.service.DeleteWorkflow(r.Context(), userID(r), id, workflowID)
	if err != nil {
		handleError(w, err, "delete_workflow")
		return
	}

	logOut("workflow deleted", start, http.StatusOK, zap.String("workflow_id", workflowID), zap.Int("deleted", n))
	responseWithJSON(w, http.StatusOK, toPayload("deleted", n))
}

// Timeline answers with the laid out grid. Query: day_width (pixels per day) and
// collapsed (comma separated workflow ids).
func (h *Handler) Timeline(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	opts, err := timelineOptions(r)
	if err != nil {
		handleError(w, err, "timeline")
		return
	}
	_, grid, err := h.service.Timeline(r.Context(), userID(r), id, opts)
	if err != nil {
		handleError(w, err, "timeline")
		return
	}

	logOut("timeline built", start, http.StatusOK, zap.Int("days", grid.TotalDays), zap.Int("rows", len(grid.Rows)))
	responseWithJSON(w, http.StatusOK, toPayload("timeline", grid))
}

// ExportProject serves the project and its timeline as an XLSX workbook.
func (h *Handler) ExportProject(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	opts, err := timelineOptions(r)
	if err != nil {
		handleError(w, err, "export_project")
		return
	}
	p, grid, err := h.service.Timeline(r.Context(), userID(r), id, opts)
	if err != nil {
		handleError(w, err, "export_project")
		return
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, *p, grid); err != nil {
		handleError(w, err, "export_project")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="project-%s.xlsx"`, id))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())

	logOut("project exported", start, http.StatusOK, zap.String("project_id", id.String()), zap.Int("bytes", buf.Len()))
}

func timelineOptions(r *http.Request) (service.TimelineOptions, error) {
	var opts service.TimelineOptions
	if raw := r.URL.Query().Get("day_width"); raw != "" {
		dw, err := strconv.ParseFloat(raw, 64)
		if err != nil || dw <= 0 {
			return opts, service.NewValidationError("day_width", "must be a positive number")
		}
		opts.DayWidth = dw
	}
	if raw := r.URL.Query().Get("collapsed"); raw != "" {
		opts.Collapsed = make(map[string]bool)
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				opts.Collapsed[id] = true
			}
		}
	}
	return opts, nil
}
