package memory

// HealthState is the coarse health classification for one dependency.
type HealthState string

const (
	HealthHealthy   HealthState = "healthy"
	HealthUnhealthy HealthState = "unhealthy"
)

// HealthStatus is the explicit health result for a single dependency.
// Dependencies return this instead of stringified errors.
type HealthStatus struct {
	// Name identifies the dependency ("embedder", "vector_store", "cache").
	Name string `json:"name"`

	// State is the coarse classification.
	State HealthState `json:"state"`

	// Detail carries the failure description when unhealthy.
	Detail string `json:"detail,omitempty"`
}

// Healthy builds a healthy status for the named dependency.
func Healthy(name string) HealthStatus {
	return HealthStatus{Name: name, State: HealthHealthy}
}

// Unhealthy builds an unhealthy status carrying the error's description.
func Unhealthy(name string, err error) HealthStatus {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	return HealthStatus{Name: name, State: HealthUnhealthy, Detail: detail}
}
