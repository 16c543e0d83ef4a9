package common

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    interface{}       `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// HealthResponse reports service liveness
type HealthResponse struct {
	Status         string `json:"status"`
	Environment    string `json:"environment"`
	ActiveSessions int    `json:"active_sessions"`
}
