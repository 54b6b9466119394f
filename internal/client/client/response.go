package client

import (
	"encoding/json"
	"net/http"
)

// Response is a decoded backend reply.
type Response struct {
	StatusCode int
	RequestID  string
	Body       json.RawMessage
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

func (r *Response) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

// ErrorMessage returns the body's "error" field, or "detail" when
// withDetail is set and "error" is absent. Non-string values are ignored.
func (r *Response) ErrorMessage(withDetail bool) string {
	var body struct {
		Error  any `json:"error"`
		Detail any `json:"detail"`
	}
	if err := r.Decode(&body); err != nil {
		return ""
	}
	if s, ok := body.Error.(string); ok && s != "" {
		return s
	}
	if withDetail {
		if s, ok := body.Detail.(string); ok && s != "" {
			return s
		}
	}
	return ""
}
