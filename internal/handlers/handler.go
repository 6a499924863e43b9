package handlers

import (
	"net/http"
	"planboard/internal/logger"
	"planboard/internal/middleware"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	hub     *Hub
	now     func() time.Time
}

func NewHandler(svc Service, hub *Hub) *Handler {
	if hub == nil {
		hub = NewHub()
	}
	return &Handler{service: svc, hub: hub, now: time.Now}
}

// Routes mounts the API on r. auth guards everything except health, the milestone
// catalog and the shared-project view.
func (h *Handler) Routes(r chi.Router, auth func(http.Handler) http.Handler) {
	r.Get("/health", h.HealthCheck)

	r.Get("/templates/milestones", h.ListMilestoneTemplates)

	r.Route("/shared/{token}", func(r chi.Router) {
		r.Get("/", h.GetSharedProject)
		r.Get("/comments", h.ListComments)
		r.Post("/comments", h.AddComment)
		r.Post("/tasks/{taskId}/approval", h.SetApproval)
		r.Get("/ws", h.SharedWebSocket)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth)

		r.Get("/ws", h.WebSocket)

		r.Route("/templates/workflows", func(r chi.Router) {
			r.Get("/", h.ListWorkflowTemplates)
			r.Post("/", h.CreateWorkflowTemplate)
			r.Patch("/{id}", h.UpdateWorkflowTemplate)
			r.Delete("/{id}", h.DeleteWorkflowTemplate)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", h.ListTasks)
			r.Post("/", h.CreateTask)
			r.Get("/export.ics", h.ExportTasks)
			r.Post("/import", h.ImportTasks)
			r.Patch("/{id}", h.UpdateTask)
			r.Delete("/{id}", h.DeleteTask)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.ListProjects)
			r.Post("/", h.CreateProject)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetProject)
				r.Patch("/", h.UpdateProject)
				r.Delete("/", h.DeleteProject)

				r.Get("/tasks", h.ListProjectTasks)
				r.Post("/tasks", h.CreateProjectTask)
				r.Patch("/tasks/{taskId}", h.UpdateProjectTask)
				r.Delete("/tasks/{taskId}", h.DeleteProjectTask)

				r.Get("/milestones", h.ListMilestones)
				r.Post("/milestones", h.CreateMilestone)
				r.Patch("/milestones/{milestoneId}", h.UpdateMilestone)
				r.Delete("/milestones/{milestoneId}", h.DeleteMilestone)

				r.Post("/workflows", h.ApplyWorkflow)
				r.Delete("/workflows/{workflowId}", h.DeleteWorkflow)

				r.Get("/timeline", h.Timeline)
				r.Get("/export.xlsx", h.ExportProject)

				r.Post("/share", h.ShareProject)
				r.Delete("/share", h.UnshareProject)
			})
		})
	})
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.service.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: health check failed", err)
		responseWithJSON(w, http.StatusServiceUnavailable, toPayload("status", "unavailable"))
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("status", "ok"))
}

// pathUUID parses a uuid URL parameter and answers 400 when it is malformed.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		logger.Warn("HTTP: invalid id",
			zap.String("param", name),
			zap.String("value", raw),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func userID(r *http.Request) string {
	return middleware.GetUserID(r.Context())
}

func logOut(msg string, start time.Time, status int, fields ...zap.Field) {
	fields = append(fields, zap.Duration("ms", time.Since(start)), zap.Int("http_status", status))
	logger.Info("HTTP_OUT: "+msg, fields...)
}
