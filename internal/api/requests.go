package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"task-planner/internal/service"
)

var validate = validator.New()

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return validate.Struct(v)
}

func pathID(r *http.Request, name string) (uint, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", errBadRequest, name, raw)
	}
	return uint(id), nil
}

func optionalID(values url.Values, key string) (*uint, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s %q", errBadRequest, key, raw)
	}
	v := uint(id)
	return &v, nil
}

func optionalInt(values url.Values, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", errBadRequest, key, raw)
	}
	return n, nil
}

// parseFilter maps query-string parameters one-to-one onto the task filter.
func parseFilter(values url.Values, loc *time.Location) (service.TaskFilter, error) {
	var f service.TaskFilter
	var err error
	if f.StatusID, err = optionalID(values, "status_id"); err != nil {
		return f, err
	}
	if f.PriorityID, err = optionalID(values, "priority_id"); err != nil {
		return f, err
	}
	if f.TypeID, err = optionalID(values, "type_id"); err != nil {
		return f, err
	}
	if f.DurationID, err = optionalID(values, "duration_id"); err != nil {
		return f, err
	}
	if raw := strings.TrimSpace(values.Get("is_completed")); raw != "" {
		done, err := strconv.ParseBool(raw)
		if err != nil {
			return f, fmt.Errorf("%w: invalid is_completed %q", errBadRequest, raw)
		}
		f.IsCompleted = &done
	}
	if raw := values.Get("deadline_from"); raw != "" {
		from, err := service.ParseDate(raw, loc)
		if err != nil {
			return f, err
		}
		f.DeadlineFrom = &from
	}
	if raw := values.Get("deadline_to"); raw != "" {
		to, err := service.ParseDate(raw, loc)
		if err != nil {
			return f, err
		}
		f.DeadlineTo = &to
	}
	return f, nil
}

func parseTaskQuery(values url.Values, loc *time.Location, pageSize int) (service.TaskQuery, error) {
	var q service.TaskQuery
	var err error
	if q.Filter, err = parseFilter(values, loc); err != nil {
		return q, err
	}
	if q.Sort, err = service.ParseSort(values.Get("sort"), values.Get("order")); err != nil {
		return q, err
	}
	q.Search = values.Get("search")
	if q.Page.Page, err = optionalInt(values, "page", 1); err != nil {
		return q, err
	}
	if q.Page.Size, err = optionalInt(values, "per_page", pageSize); err != nil {
		return q, err
	}
	return q, nil
}

type createTaskRequest struct {
	Title       string  `json:"title" validate:"max=255"`
	Description string  `json:"description" validate:"max=4000"`
	StatusID    *uint   `json:"status_id"`
	PriorityID  *uint   `json:"priority_id"`
	TypeID      *uint   `json:"type_id"`
	DurationID  *uint   `json:"duration_id"`
	Deadline    *string `json:"deadline"`
}

func (req createTaskRequest) input(now time.Time, loc *time.Location) (service.TaskInput, error) {
	in := service.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		StatusID:    req.StatusID,
		PriorityID:  req.PriorityID,
		TypeID:      req.TypeID,
		DurationID:  req.DurationID,
	}
	if req.Deadline != nil && strings.TrimSpace(*req.Deadline) != "" {
		deadline, err := service.ParseDeadline(*req.Deadline, now, loc)
		if err != nil {
			return in, err
		}
		in.Deadline = &deadline
	}
	return in, nil
}

// decodeTaskPatch reads a JSON object where an absent key leaves the field
// untouched and an explicit null clears it.
func decodeTaskPatch(r *http.Request, now time.Time, loc *time.Location) (service.TaskPatch, error) {
	var patch service.TaskPatch
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return patch, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	for key, value := range raw {
		var err error
		switch key {
		case "title":
			patch.Title, err = decodeString(value)
		case "description":
			patch.Description, err = decodeString(value)
		case "status_id":
			patch.StatusID, err = decodeOptionalID(value)
		case "priority_id":
			patch.PriorityID, err = decodeOptionalID(value)
		case "type_id":
			patch.TypeID, err = decodeOptionalID(value)
		case "duration_id":
			patch.DurationID, err = decodeOptionalID(value)
		case "deadline":
			patch.Deadline, err = decodeOptionalTime(value, now, loc)
		case "completed_at":
			patch.CompletedAt, err = decodeOptionalTime(value, now, loc)
		default:
			err = fmt.Errorf("%w: unknown field %q", errBadRequest, key)
		}
		if err != nil {
			return patch, err
		}
	}
	if patch.Title != nil && len(*patch.Title) > 255 {
		return patch, fmt.Errorf("%w: title too long", errBadRequest)
	}
	return patch, nil
}

func isNull(value json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}

func decodeString(value json.RawMessage) (*string, error) {
	if isNull(value) {
		empty := ""
		return &empty, nil
	}
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return &s, nil
}

func decodeOptionalID(value json.RawMessage) (service.Optional[uint], error) {
	if isNull(value) {
		return service.SetNull[uint](), nil
	}
	var id uint
	if err := json.Unmarshal(value, &id); err != nil {
		return service.Optional[uint]{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return service.SetTo(id), nil
}

func decodeOptionalTime(value json.RawMessage, now time.Time, loc *time.Location) (service.Optional[time.Time], error) {
	if isNull(value) {
		return service.SetNull[time.Time](), nil
	}
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return service.Optional[time.Time]{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	t, err := service.ParseDeadline(s, now, loc)
	if err != nil {
		return service.Optional[time.Time]{}, err
	}
	return service.SetTo(t), nil
}

type itemRequest struct {
	Name      string `json:"name" validate:"required,max=64"`
	Code      string `json:"code" validate:"max=32"`
	Color     string `json:"color" validate:"omitempty,hexcolor"`
	Order     int    `json:"order"`
	IsDefault bool   `json:"is_default"`
	IsFinal   bool   `json:"is_final"`
	Unit      string `json:"unit"`
	Value     int    `json:"value" validate:"gte=0"`
}

type itemPatchRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=64"`
	Code     *string `json:"code" validate:"omitempty,max=32"`
	Color    *string `json:"color" validate:"omitempty,hexcolor"`
	Order    *int    `json:"order"`
	IsActive *bool   `json:"is_active"`
	IsFinal  *bool   `json:"is_final"`
	Unit     *string `json:"unit"`
	Value    *int    `json:"value" validate:"omitempty,gte=0"`
}
