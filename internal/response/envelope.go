// Package response defines the single JSON body shape returned by every endpoint.
//
//	{ "success": bool, "data"?: object, "message"?: string, "error"?: string }
package response

// Envelope is the uniform response body.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Data wraps a successful payload.
func Data(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

// Message wraps a successful, message-only outcome.
func Message(message string) Envelope {
	return Envelope{Success: true, Message: message}
}

// Failure wraps a client-visible error message.
func Failure(message string) Envelope {
	return Envelope{Success: false, Error: message}
}
