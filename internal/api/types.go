package api

// HealthResponse is the payload for GET /healthz.
type HealthResponse struct {
	Status   string   `json:"status"`
	Bots     int      `json:"bots"`
	BotNames []string `json:"bot_names"`
}

// errorResponse is the standard error payload.
type errorResponse struct {
	Error string `json:"error"`
}
