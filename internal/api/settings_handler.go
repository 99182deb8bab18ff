package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"task-planner/internal/model"
	"task-planner/internal/service"
)

type itemResponse struct {
	ID        uint   `json:"id"`
	Kind      string `json:"kind"`
	Name      string `json:"name"`
	Code      string `json:"code,omitempty"`
	Color     string `json:"color,omitempty"`
	Order     int    `json:"order"`
	IsDefault bool   `json:"is_default"`
	IsActive  bool   `json:"is_active"`
	IsFinal   bool   `json:"is_final,omitempty"`
	Unit      string `json:"unit,omitempty"`
	Value     int    `json:"value,omitempty"`
}

func newItemResponse(item model.VocabularyItem) itemResponse {
	return itemResponse{
		ID:        item.ID,
		Kind:      string(item.Kind),
		Name:      item.Name,
		Code:      item.Code,
		Color:     item.Color,
		Order:     item.Order,
		IsDefault: item.IsDefault,
		IsActive:  item.IsActive,
		IsFinal:   item.IsFinal,
		Unit:      string(item.Unit),
		Value:     item.Value,
	}
}

func newItemList(items []model.VocabularyItem) []itemResponse {
	out := make([]itemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, newItemResponse(item))
	}
	return out
}

type settingsResponse struct {
	Statuses   []itemResponse `json:"statuses"`
	Priorities []itemResponse `json:"priorities"`
	Durations  []itemResponse `json:"durations"`
	Types      []itemResponse `json:"task_types"`
}

func pathKind(r *http.Request) (model.Kind, error) {
	kind, err := model.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		return "", fmt.Errorf("%w: %v", service.ErrUnknownKind, err)
	}
	return kind, nil
}

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.GetSettings(r.Context(), h.userID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse{
		Statuses:   newItemList(settings.Statuses),
		Priorities: newItemList(settings.Priorities),
		Durations:  newItemList(settings.Durations),
		Types:      newItemList(settings.Types),
	})
}

func (h *Handler) getVocabulary(w http.ResponseWriter, r *http.Request) {
	kind, err := pathKind(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	items, err := h.settings.GetVocabulary(r.Context(), h.userID(r), kind)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newItemList(items))
}

func (h *Handler) provision(w http.ResponseWriter, r *http.Request) {
	created, err := h.settings.Provision(r.Context(), h.userID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make(map[string]int, len(created))
	for kind, n := range created {
		out[string(kind)] = n
	}
	writeJSON(w, http.StatusOK, map[string]any{"created": out})
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	kind, err := pathKind(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	item, err := h.settings.AddItem(r.Context(), h.userID(r), model.VocabularyItem{
		Kind:      kind,
		Name:      req.Name,
		Code:      req.Code,
		Color:     req.Color,
		Order:     req.Order,
		IsDefault: req.IsDefault,
		IsFinal:   req.IsFinal,
		Unit:      model.DurationUnit(req.Unit),
		Value:     req.Value,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newItemResponse(*item))
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req itemPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	item, err := h.settings.UpdateItem(r.Context(), h.userID(r), id, service.ItemPatch{
		Name:     req.Name,
		Code:     req.Code,
		Color:    req.Color,
		Order:    req.Order,
		IsActive: req.IsActive,
		IsFinal:  req.IsFinal,
		Unit:     req.Unit,
		Value:    req.Value,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newItemResponse(*item))
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	deleted, err := h.settings.DeleteItem(r.Context(), h.userID(r), id)
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

func (h *Handler) setDefault(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	item, err := h.settings.SetDefault(r.Context(), h.userID(r), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newItemResponse(*item))
}
