package handlers

import (
	"bytes"
	"net/http"
	"planboard/internal/calendar"
	"planboard/internal/handlers/dto"
	"planboard/internal/logger"
	"planboard/internal/models/task"
	"time"

	"go.uber.org/zap"
)

func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	tasks, err := h.service.ListTasks(r.Context(), userID(r))
	if err != nil {
		handleError(w, err, "list_tasks")
		return
	}

	logOut("tasks listed", start, http.StatusOK, zap.Int("count", len(tasks)))
	responseWithJSON(w, http.StatusOK, toPayload("tasks", dto.FromTaskList(tasks, h.now())))
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.CreateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	created, err := h.service.CreateTask(r.Context(), userID(r), request.Text, request.Options()...)
	if err != nil {
		handleError(w, err, "create_task")
		return
	}

	logOut("task created", start, http.StatusCreated, zap.String("task_id", created.ID()))
	responseWithJSON(w, http.StatusCreated, toPayload("task", dto.FromTask(created, h.now())))
}

func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var request dto.UpdateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	updated, err := h.service.UpdateTask(r.Context(), userID(r), id, request.Options()...)
	if err != nil {
		handleError(w, err, "update_task")
		return
	}

	logOut("task updated", start, http.StatusOK, zap.String("task_id", id.String()))
	responseWithJSON(w, http.StatusOK, toPayload("task", dto.FromTask(updated, h.now())))
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteTask(r.Context(), userID(r), id); err != nil {
		handleError(w, err, "delete_task")
		return
	}

	logOut("task deleted", start, http.StatusNoContent, zap.String("task_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

// ExportTasks serves the user's daily tasks as an iCalendar file.
func (h *Handler) ExportTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	tasks, err := h.service.ListTasks(r.Context(), userID(r))
	if err != nil {
		handleError(w, err, "export_tasks")
		return
	}
	values := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		values = append(values, *t)
	}

	var buf bytes.Buffer
	if err := calendar.Write(&buf, values, h.now()); err != nil {
		handleError(w, err, "export_tasks")
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="tasks.ics"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())

	logOut("tasks exported", start, http.StatusOK, zap.Int("count", len(values)))
}

// ImportTasks reads an iCalendar body and creates a task per event.
func (h *Handler) ImportTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	evts, err := calendar.Import(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		logger.Warn("HTTP: failed to read calendar", zap.Error(err), zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid calendar: "+err.Error())
		return
	}

	created, err := h.service.ImportTasks(r.Context(), userID(r), evts)
	if err != nil {
		handleError(w, err, "import_tasks")
		return
	}

	logOut("tasks imported", start, http.StatusCreated, zap.Int("events", len(evts)), zap.Int("imported", len(created)))
	responseWithJSON(w, http.StatusCreated,
		toPayload("imported", len(created)),
		toPayload("tasks", dto.FromTaskList(created, h.now())))
}
