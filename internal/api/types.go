package api

// HealthResponse is the payload for GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}
