package types

type HealthStatus string

const (
	HealthStatusOK   HealthStatus = "OK"
	HealthStatusUp   HealthStatus = "UP"
	HealthStatusDown HealthStatus = "DOWN"
)

// Health is the body of GET /health. It never depends on persistence.
type Health struct {
	Status    HealthStatus `json:"status"`
	Message   string       `json:"message"`
	Timestamp string       `json:"timestamp"`
}

type HealthComponent struct {
	Status  HealthStatus `json:"status"`
	Details string       `json:"details,omitempty"`
}

// Readiness is the body of GET /health/readiness.
type Readiness struct {
	Status     HealthStatus               `json:"status"`
	Components map[string]HealthComponent `json:"components"`
	Version    string                     `json:"version"`
	Timestamp  string                     `json:"timestamp"`
	Uptime     string                     `json:"uptime"`
}
