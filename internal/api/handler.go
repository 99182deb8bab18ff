package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"task-planner/internal/service"
)

// Handler exposes the planner engine over JSON/HTTP.
type Handler struct {
	settings *service.SettingsService
	query    *service.QueryService
	tasks    *service.TaskService
	pageSize int
	log      *zap.Logger
	now      func() time.Time
}

func NewHandler(settings *service.SettingsService, query *service.QueryService, tasks *service.TaskService, pageSize int, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return &Handler{
		settings: settings,
		query:    query,
		tasks:    tasks,
		pageSize: pageSize,
		log:      log,
		now:      time.Now,
	}
}

// NewRouter mounts every route under /api/v1. All routes require X-User-ID.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Use(accessLog(h.log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(h.RequireUser)

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", h.getSettings)
			r.Post("/provision", h.provision)
			r.Patch("/items/{id}", h.updateItem)
			r.Delete("/items/{id}", h.deleteItem)
			r.Post("/items/{id}/default", h.setDefault)
			r.Get("/{kind}", h.getVocabulary)
			r.Post("/{kind}/items", h.addItem)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", h.listTasks)
			r.Post("/", h.createTask)
			r.Get("/count", h.countTasks)
			r.Get("/{id}", h.getTask)
			r.Patch("/{id}", h.updateTask)
			r.Delete("/{id}", h.deleteTask)
			r.Post("/{id}/complete", h.completeTask)
			r.Post("/{id}/reopen", h.reopenTask)
		})
	})
	return r
}

func (h *Handler) userID(r *http.Request) uint {
	id, _ := UserID(r.Context())
	return id
}
