package camino

import "encoding/json"

// Envelope is the result of every upstream operation.
//
// When Success is true, Data holds the upstream payload verbatim. When it is
// false, Data holds a locally built fallback that echoes the caller's input,
// Error carries the cause and Message carries recovery guidance.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func succeeded(payload json.RawMessage) Envelope {
	return Envelope{Success: true, Data: payload}
}

func failed(err *APIError, fallback any) Envelope {
	return Envelope{
		Success: false,
		Data:    fallback,
		Error:   err.Message,
		Message: err.Guidance,
	}
}
