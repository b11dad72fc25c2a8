package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldTable      = "table"
	FieldError      = "error"
)

// Standard component names
const (
	ComponentApp  = "app"
	ComponentHTTP = "http"
)
