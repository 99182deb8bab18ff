package api

import (
	"context"
	"net/http"
	"time"

	"task-planner/internal/service"
)

func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request) {
	q, err := parseTaskQuery(r.URL.Query(), time.UTC, h.pageSize)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	page, err := h.query.Query(r.Context(), h.userID(r), q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) countTasks(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	filter, err := parseFilter(values, time.UTC)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	n, err := h.query.Count(r.Context(), h.userID(r), filter, values.Get("search"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": n})
}

func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	input, err := req.input(h.now(), time.UTC)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	task, err := h.tasks.CreateTask(r.Context(), h.userID(r), input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (h *Handler) getTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	task, err := h.tasks.GetTask(r.Context(), h.userID(r), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *Handler) updateTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	patch, err := decodeTaskPatch(r, h.now(), time.UTC)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	task, err := h.tasks.UpdateTask(r.Context(), h.userID(r), id, patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *Handler) deleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	deleted, err := h.tasks.DeleteTask(r.Context(), h.userID(r), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !deleted {
		h.writeError(w, r, service.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) completeTask(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.tasks.CompleteTask)
}

func (h *Handler) reopenTask(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.tasks.ReopenTask)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, userID, taskID uint) (*service.TaskView, error)) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	task, err := op(r.Context(), h.userID(r), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}
