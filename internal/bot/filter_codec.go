package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"task-planner/internal/service"
)

// maxCallbackData is Telegram's limit on inline button payloads, in bytes.
const maxCallbackData = 64

const codecDate = "20060102"

// Field keys of the compact filter encoding. The search term, if any, is
// always last so it may contain separators.
const (
	keyStatus    = "s"
	keyPriority  = "p"
	keyType      = "t"
	keyDuration  = "d"
	keyCompleted = "c"
	keyFrom      = "f"
	keyTo        = "u"
	keySearch    = "q"
)

// listState is what a paginated task list needs to re-run its query.
type listState struct {
	Filter service.TaskFilter
	Search string
}

// EncodeFilter renders state as "k=v;k=v" in at most budget bytes. The
// search term is shortened, on a rune boundary, to whatever room is left.
func EncodeFilter(state listState, budget int) string {
	var parts []string
	addID := func(key string, id *uint) {
		if id != nil {
			parts = append(parts, key+"="+strconv.FormatUint(uint64(*id), 10))
		}
	}
	addID(keyStatus, state.Filter.StatusID)
	addID(keyPriority, state.Filter.PriorityID)
	addID(keyType, state.Filter.TypeID)
	addID(keyDuration, state.Filter.DurationID)
	if state.Filter.IsCompleted != nil {
		v := "0"
		if *state.Filter.IsCompleted {
			v = "1"
		}
		parts = append(parts, keyCompleted+"="+v)
	}
	if state.Filter.DeadlineFrom != nil {
		parts = append(parts, keyFrom+"="+state.Filter.DeadlineFrom.Format(codecDate))
	}
	if state.Filter.DeadlineTo != nil {
		parts = append(parts, keyTo+"="+state.Filter.DeadlineTo.Format(codecDate))
	}

	out := strings.Join(parts, ";")
	if len(out) > budget {
		// drop trailing fields until it fits; ids come first
		for len(parts) > 0 && len(strings.Join(parts, ";")) > budget {
			parts = parts[:len(parts)-1]
		}
		return strings.Join(parts, ";")
	}

	search := strings.TrimSpace(state.Search)
	if search == "" {
		return out
	}
	prefix := keySearch + "="
	if out != "" {
		prefix = ";" + prefix
	}
	room := budget - len(out) - len(prefix)
	if room <= 0 {
		return out
	}
	return out + prefix + truncateBytes(search, room)
}

// DecodeFilter parses the output of EncodeFilter. Ids are accepted as any
// decimal string; dates are interpreted in loc.
func DecodeFilter(raw string, loc *time.Location) (listState, error) {
	var state listState
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return state, nil
	}
	if loc == nil {
		loc = time.UTC
	}

	rest := raw
	for rest != "" {
		var field string
		if rest = strings.TrimLeft(rest, " "); rest == "" {
			break
		}
		if strings.HasPrefix(rest, keySearch+"=") {
			state.Search = strings.TrimPrefix(rest, keySearch+"=")
			break
		}
		if i := strings.IndexByte(rest, ';'); i >= 0 {
			field, rest = rest[:i], rest[i+1:]
		} else {
			field, rest = rest, ""
		}
		key, value, ok := strings.Cut(strings.TrimSpace(field), "=")
		if !ok {
			return state, fmt.Errorf("malformed filter field %q", field)
		}
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		var err error
		switch key {
		case keyStatus:
			state.Filter.StatusID, err = decodeID(value)
		case keyPriority:
			state.Filter.PriorityID, err = decodeID(value)
		case keyType:
			state.Filter.TypeID, err = decodeID(value)
		case keyDuration:
			state.Filter.DurationID, err = decodeID(value)
		case keyCompleted:
			done, perr := strconv.ParseBool(value)
			if perr != nil {
				err = fmt.Errorf("invalid completion flag %q", value)
			}
			state.Filter.IsCompleted = &done
		case keyFrom:
			state.Filter.DeadlineFrom, err = decodeDate(value, loc)
		case keyTo:
			state.Filter.DeadlineTo, err = decodeDate(value, loc)
		default:
			err = fmt.Errorf("unknown filter key %q", key)
		}
		if err != nil {
			return listState{}, err
		}
	}
	return state, nil
}

func decodeID(value string) (*uint, error) {
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid id %q", value)
	}
	v := uint(id)
	return &v, nil
}

func decodeDate(value string, loc *time.Location) (*time.Time, error) {
	t, err := time.ParseInLocation(codecDate, value, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q", value)
	}
	return &t, nil
}

func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[:n]
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}
