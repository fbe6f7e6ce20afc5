package api

import "encoding/json"

// ServiceName identifies the service in status payloads.
const ServiceName = "stemmix"

// DependencyStatus describes an external binary the service relies on.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// StatusResponse is returned by GET /.
type StatusResponse struct {
	Status       string             `json:"status"`
	Service      string             `json:"service"`
	Version      string             `json:"version"`
	Endpoints    map[string]string  `json:"endpoints"`
	Dependencies []DependencyStatus `json:"dependencies"`
}

// ValidationErrorResponse is the 400 body for a rejected mix request.
// Received echoes the offending value and renders as null when absent.
type ValidationErrorResponse struct {
	Error     string          `json:"error"`
	Received  json.RawMessage `json:"received"`
	RequestID string          `json:"requestId"`
}

// ProcessingErrorResponse is the 500 body for a mix that failed after
// validation. RequestID is omitted only by the panic fallback.
type ProcessingErrorResponse struct {
	Error     string `json:"error"`
	Details   string `json:"details"`
	RequestID string `json:"requestId,omitempty"`
}

// ErrorResponse is the body for routing and transport errors.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

var endpoints = map[string]string{
	"GET /":        "Service status, version, and dependency availability",
	"GET /healthz": "Liveness probe; 503 when ffmpeg is unavailable",
	"POST /mix":    "Mix stems into one MP3: {\"stems\": [...], \"volumes\": [...]}",
}
