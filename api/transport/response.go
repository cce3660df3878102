package transport

import "encoding/json"

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope wraps every API response body, success or error.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  interface{} `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

// Meta is the free-form metadata block (paging, staleness, buffering).
type Meta map[string]interface{}

func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{Status: StatusSuccess, Data: data, Meta: meta}
}

// NewBuffered acknowledges a write that was queued for replay instead of stored.
func NewBuffered(data interface{}) Envelope {
	return NewSuccess(data, Meta{"buffered": true})
}

func NewError(code string, err interface{}, meta interface{}) Envelope {
	return Envelope{Status: StatusError, Code: code, Error: err, Meta: meta}
}

// NewFieldError reports per-field validation messages under meta.fields.
func NewFieldError(code, message string, fields map[string]string) Envelope {
	return NewError(code, message, Meta{"fields": fields})
}

// String is the best-effort JSON form, used by middleware and logs.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}
