package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// HTTPError is any non-2xx answer that is not a structured validation failure.
type HTTPError struct {
	StatusCode int
	Path       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error! Status: %d", e.StatusCode)
}

// FieldError is one entry of a FastAPI-style validation "detail" array.
type FieldError struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// Path joins the location parts with " -> ".
func (f FieldError) Path() string {
	parts := make([]string, 0, len(f.Loc))
	for _, p := range f.Loc {
		switch v := p.(type) {
		case float64:
			parts = append(parts, fmt.Sprintf("%g", v))
		default:
			parts = append(parts, fmt.Sprint(v))
		}
	}
	return strings.Join(parts, " -> ")
}

// ValidationError is a 400/422 answer carrying field-level messages.
type ValidationError struct {
	StatusCode int
	Fields     []FieldError
	Raw        string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "Validation Error: " + e.Raw
	}
	items := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		items = append(items, f.Path()+": "+f.Msg)
	}
	return "Validation Error: " + strings.Join(items, ", ")
}

// ErrTransport marks failures where no HTTP answer was received.
var ErrTransport = errors.New("backend unreachable")

// parseValidation decodes a validation body; anything unexpected is kept raw.
func parseValidation(status int, body []byte) *ValidationError {
	out := &ValidationError{StatusCode: status, Raw: strings.TrimSpace(string(body))}
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return out
	}
	var fields []FieldError
	if err := json.Unmarshal(payload.Detail, &fields); err != nil {
		return out
	}
	out.Fields = fields
	return out
}
