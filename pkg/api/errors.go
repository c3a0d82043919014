package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error is the single failure shape the pipeline resolves to. Status 0 means
// the request never reached the server.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

const (
	CodeNetwork       = "network_error"
	CodeBadDescriptor = "bad_request_descriptor"
	CodeUserBlocked   = "USER_BLOCKED"
)

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("api: %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("api: %d %s: %s", e.Status, e.Code, e.Message)
}

func (e *Error) Unauthorized() bool { return e.Status == http.StatusUnauthorized }

func (e *Error) Blocked() bool {
	return e.Status == http.StatusForbidden && e.Code == CodeUserBlocked
}

func networkError(err error) *Error {
	return &Error{
		Status:  0,
		Code:    CodeNetwork,
		Message: "cannot reach server",
		Details: err.Error(),
	}
}

func descriptorError(err error) *Error {
	return &Error{
		Status:  0,
		Code:    CodeBadDescriptor,
		Message: "invalid request",
		Details: err.Error(),
	}
}

// errorFromBody normalizes the backend's error payloads. The backend is not
// consistent: some endpoints return {code, message, details}, some wrap it as
// {"error": {...}}, some return {"error": "text"} or {"Message": "..."}.
func errorFromBody(status int, body []byte) *Error {
	out := &Error{Status: status, Code: defaultCode(status), Message: defaultMessage(status)}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return out
	}

	if inner, ok := doc["error"]; ok {
		var nested map[string]json.RawMessage
		if json.Unmarshal(inner, &nested) == nil {
			doc = nested
		} else {
			var text string
			if json.Unmarshal(inner, &text) == nil && text != "" {
				out.Message = text
			}
		}
	}

	if v := pickString(doc, "code", "Code"); v != "" {
		out.Code = v
	}
	if v := pickString(doc, "message", "Message", "msg"); v != "" {
		out.Message = v
	}
	if raw, ok := pickRaw(doc, "details", "Details"); ok {
		var details any
		if json.Unmarshal(raw, &details) == nil {
			out.Details = details
		}
	}
	return out
}

func pickRaw(doc map[string]json.RawMessage, keys ...string) (json.RawMessage, bool) {
	for _, k := range keys {
		if raw, ok := doc[k]; ok {
			return raw, true
		}
	}
	return nil, false
}

func pickString(doc map[string]json.RawMessage, keys ...string) string {
	raw, ok := pickRaw(doc, keys...)
	if !ok {
		return ""
	}
	var v string
	if json.Unmarshal(raw, &v) != nil {
		return ""
	}
	return v
}

func defaultCode(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusUnprocessableEntity, http.StatusBadRequest:
		return "validation"
	default:
		return "server_error"
	}
}

func defaultMessage(status int) string {
	return http.StatusText(status)
}
